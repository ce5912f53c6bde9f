// Package middleware carries the gin middleware for the baccarat API.
package middleware

import (
	"strings"

	"github.com/frankieli/baccarat_table/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// Identity resolves the caller from a Bearer token. Anonymous callers
// pass through: they may poll table state but not place bets.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn(c.Request.Context()).Err(err).Msg("invalid bearer token")
			c.Next()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["user_id"].(float64); ok {
				c.Set(userIDKey, int64(sub))
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user id, if any
func CurrentUser(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := v.(int64)
	return userID, ok
}
