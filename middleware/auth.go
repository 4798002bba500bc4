package middleware

import (
	"fmt"
	"strings"

	"github.com/CuentaClara/cuenta-clara-backend/config"
	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDKey is the gin context key for the authenticated user's id.
	UserIDKey = "user_id"
	// UserNameKey is the gin context key for the authenticated user's display name.
	UserNameKey = "user_name"
)

type authClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and stores the user identity in
// the gin context. Tokens are HMAC-signed with the shared server secret.
func AuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization required"))
			c.Abort()
			return
		}

		claims := &authClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.JwtSecretKey), nil
		})
		if err != nil || !parsed.Valid {
			log.Warnw("Invalid JWT token", "path", c.Request.URL.Path, "error", err)
			_ = c.Error(apperrors.AuthenticationFailed("Invalid or expired token"))
			c.Abort()
			return
		}

		if claims.Subject == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Token is missing a subject"))
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserNameKey, claims.Name)

		c.Next()
	}
}
