package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"youtube-learner/dto"
	"youtube-learner/entities"
	"youtube-learner/service"
)

const sessionKey = "session"

// loggerMiddleware carries the server's zerolog context into request
// contexts so handlers and services can use zerolog.Ctx.
func loggerMiddleware(baseCtx context.Context) gin.HandlerFunc {
	logger := zerolog.Ctx(baseCtx)
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// authMiddleware resolves the bearer token into a session and aborts with
// 401 when it cannot.
func authMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing bearer token"})
			return
		}

		token, err := uuid.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "malformed session token"})
			return
		}

		session, err := authService.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid or expired session"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func currentSession(c *gin.Context) *entities.Session {
	return c.MustGet(sessionKey).(*entities.Session)
}

func currentUserId(c *gin.Context) uuid.UUID {
	return currentSession(c).UserId
}
