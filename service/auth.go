package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"youtube-learner/config"
	"youtube-learner/constant"
	"youtube-learner/entities"
	"youtube-learner/repository"
)

// AuthError carries a stable kind so the client can map it to a message
// without parsing error strings.
type AuthError struct {
	Kind    constant.AuthErrorKind
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func newAuthError(kind constant.AuthErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// AuthService owns users and sessions. All record operations are scoped to
// the session resolved here.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*entities.Session, *entities.User, error)
	SignIn(ctx context.Context, email, password string) (*entities.Session, *entities.User, error)
	SignOut(ctx context.Context, token uuid.UUID) error
	Resolve(ctx context.Context, token uuid.UUID) (*entities.Session, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*entities.Session, *entities.User, error) {
	if !emailPattern.MatchString(email) {
		return nil, nil, newAuthError(constant.AuthErrorInvalidEmail, "Please enter a valid email address.")
	}
	if len(password) < minPasswordLength {
		return nil, nil, newAuthError(constant.AuthErrorWeakPassword, "Password must be at least 6 characters long.")
	}

	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return nil, nil, newAuthError(constant.AuthErrorEmailTaken, "This email is already registered. Please sign in.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to look up user")
		return nil, nil, newAuthError(constant.AuthErrorUnexpected, "An unexpected error occurred. Please try again.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, newAuthError(constant.AuthErrorUnexpected, "An unexpected error occurred. Please try again.")
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create user")
		return nil, nil, newAuthError(constant.AuthErrorUnexpected, "An unexpected error occurred. Please try again.")
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*entities.Session, *entities.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, newAuthError(constant.AuthErrorInvalidCredentials, "Invalid credentials. Please check your email and password.")
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to look up user")
		return nil, nil, newAuthError(constant.AuthErrorUnexpected, "An unexpected error occurred. Please try again.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, newAuthError(constant.AuthErrorInvalidCredentials, "Invalid credentials. Please check your email and password.")
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *authService) createSession(ctx context.Context, userId uuid.UUID) (*entities.Session, error) {
	session := &entities.Session{
		Token:     uuid.New(),
		UserId:    userId,
		ExpiresAt: time.Now().Add(s.cfg.Auth.SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create session")
		return nil, newAuthError(constant.AuthErrorUnexpected, "An unexpected error occurred. Please try again.")
	}
	return session, nil
}

func (s *authService) SignOut(ctx context.Context, token uuid.UUID) error {
	return s.repo.DeleteSession(ctx, token)
}

func (s *authService) Resolve(ctx context.Context, token uuid.UUID) (*entities.Session, error) {
	session, err := s.repo.FindSession(ctx, token)
	if err != nil {
		return nil, newAuthError(constant.AuthErrorInvalidCredentials, "Invalid or expired session.")
	}
	if session.Expired(time.Now()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, newAuthError(constant.AuthErrorInvalidCredentials, "Invalid or expired session.")
	}
	return session, nil
}
