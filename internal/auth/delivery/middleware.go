package delivery

import (
	"strings"

	"agendamail-backend/internal/auth/usecase"
	"agendamail-backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperrors.Respond(c, apperrors.Auth("authorization header required"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			apperrors.Respond(c, apperrors.Auth("invalid authorization header format"))
			c.Abort()
			return
		}

		token := parts[1]
		user, err := authUsecase.ValidateToken(token)
		if err != nil {
			apperrors.Respond(c, apperrors.Auth("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("userEmail", user.Email)
		c.Next()
	}
}
