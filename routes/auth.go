package routes

import (
	"errors"
	"net/http"

	"tasknest/tasknest/database"
	"tasknest/tasknest/services"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router *gin.Engine, db *database.Database, authService services.AuthServiceInterface) {
	router.GET("/token/", func(c *gin.Context) { GetToken(c, db, authService) })
}

// GetToken exchanges HTTP Basic credentials for a bearer token. An existing
// token is returned as-is while it stays comfortably within its validity
// window; a freshly minted token also carries its expiration.
func GetToken(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="token"`)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Basic authentication required"})
		return
	}

	user, err := authService.AuthenticateCredentials(db, username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", `Basic realm="token"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := authService.IssueToken(db, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.Fresh {
		c.JSON(http.StatusOK, gin.H{
			"token":           result.Token,
			"tokenExpiration": result.Expiration,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": result.Token})
}
