package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"youtube-learner/constant"
	"youtube-learner/dto"
	"youtube-learner/entities"
	"youtube-learner/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
		return
	}

	session, user, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(session, user))
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
		return
	}

	session, user, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session, user))
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	session := c.MustGet(sessionKey).(*entities.Session)
	if err := h.auth.SignOut(c.Request.Context(), session.Token); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to sign out"})
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionResponse(session *entities.Session, user *entities.User) dto.SessionResponse {
	return dto.SessionResponse{
		Token:     session.Token.String(),
		UserId:    user.ID.String(),
		Email:     user.Email,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}
}

func writeAuthError(c *gin.Context, err error) {
	var authErr *service.AuthError
	if !errors.As(err, &authErr) {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "An unexpected error occurred. Please try again.", Kind: constant.AuthErrorUnexpected.String()})
		return
	}

	status := http.StatusBadRequest
	switch authErr.Kind {
	case constant.AuthErrorEmailTaken:
		status = http.StatusConflict
	case constant.AuthErrorInvalidCredentials:
		status = http.StatusUnauthorized
	case constant.AuthErrorUnexpected:
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.ErrorResponse{Error: authErr.Message, Kind: authErr.Kind.String()})
}
