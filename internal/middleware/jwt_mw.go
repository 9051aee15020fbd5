package middleware

import (
	"net/http"
	"strings"

	"worktime/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey   = "authUser"
	AuthRoleKey   = "authRole"
	AuthDeviceKey = "authDevice"
)

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil || claims.Username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AuthUserKey, claims.Username)
		c.Set(AuthRoleKey, claims.Role)
		c.Set(AuthDeviceKey, claims.DeviceID)

		c.Next()
	}
}
