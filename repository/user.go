package repository

import (
	"context"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"youtube-learner/entities"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entities.User) error
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error)
	CreateSession(ctx context.Context, session *entities.Session) error
	FindSession(ctx context.Context, token uuid.UUID) (*entities.Session, error)
	DeleteSession(ctx context.Context, token uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(videoRepo VideoRepository) UserRepository {
	return &userRepo{db: videoRepo.GetDB()}
}

func (r *userRepo) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).First(user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).First(user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) CreateSession(ctx context.Context, session *entities.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *userRepo) FindSession(ctx context.Context, token uuid.UUID) (*entities.Session, error) {
	session := &entities.Session{}
	err := r.db.WithContext(ctx).First(session, "token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *userRepo) DeleteSession(ctx context.Context, token uuid.UUID) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&entities.Session{}).Error
}
