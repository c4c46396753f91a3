package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Context keys for the authenticated identity. The identity provider
// issues HS256 tokens whose sub/email claims the core treats as trusted
// constants for the request.
const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
)

// authMiddleware verifies the bearer token and exposes the user identity
// on the request context.
func authMiddleware(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			logger.Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token claims",
			})
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "token has no subject",
			})
			return
		}

		email, _ := claims["email"].(string)

		c.Set(ctxUserID, sub)
		c.Set(ctxUserEmail, email)
		c.Next()
	}
}

// currentUser reads the identity set by authMiddleware.
func currentUser(c *gin.Context) (id, email string) {
	return c.GetString(ctxUserID), c.GetString(ctxUserEmail)
}
