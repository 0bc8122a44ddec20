package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// ContextUserKey is the gin context key the authenticated username is stored
// under.
const ContextUserKey = "auth_user"

// Claims is the accepted JWT payload. Username identifies the acting user in
// every downstream call.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTAuth verifies the Bearer token with the shared HMAC secret and stores
// the username in the request context. Tokens are issued elsewhere; this
// middleware only verifies.
func JWTAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("JWTAuth")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "malformed Authorization header")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Warn("Token verification failed", zap.Error(err))
			abortUnauthorized(c, "invalid token")
			return
		}
		if claims.Username == "" {
			abortUnauthorized(c, "token carries no username")
			return
		}

		c.Set(ContextUserKey, claims.Username)
		c.Next()
	}
}

// UserFromContext returns the authenticated username set by JWTAuth.
func UserFromContext(c *gin.Context) (string, error) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return "", models.ErrUnauthorized
	}
	username, ok := v.(string)
	if !ok || username == "" {
		return "", models.ErrUnauthorized
	}
	return username, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Code:    models.ErrCodeUnauthorized,
		Message: message,
	})
}
