package middleware

import (
	"net/http"
	"strings"

	"tasknest/tasknest/database"
	"tasknest/tasknest/services"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token in the Authorization header to a
// user through the persistent store and stores the identity in the request
// context. Requests without a valid, unexpired token are rejected with 401.
func AuthMiddleware(db *database.Database, authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// Extract token from Bearer schema
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		user, err := authService.ValidateToken(db, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// Store user info in the context for later use
		c.Set("userID", user.ID)
		c.Set("currentUser", user)

		c.Next()
	}
}
