package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tasknest/tasknest/database"
	"tasknest/tasknest/middleware"
	"tasknest/tasknest/services"

	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(router *gin.Engine, db *database.Database, userService services.UserServiceInterface, authService services.AuthServiceInterface) {
	// Registration and profile reads are public.
	router.POST("/users/", func(c *gin.Context) { CreateUser(c, db, userService) })
	router.GET("/users/", func(c *gin.Context) { GetUsers(c, db, userService) })
	router.GET("/users/:id/", func(c *gin.Context) { GetUserById(c, db, userService) })

	protected := router.Group("/", middleware.AuthMiddleware(db, authService))
	{
		protected.PUT("/users/:id/", func(c *gin.Context) { UpdateUser(c, db, userService) })
		protected.DELETE("/users/:id/", func(c *gin.Context) { DeleteUser(c, db, userService) })
		protected.GET("/me", func(c *gin.Context) { GetCurrentUser(c) })
	}
}

func CreateUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON"})
		return
	}

	missing := []string{}
	for _, key := range []string{"username", "email", "password"} {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")),
		})
		return
	}

	username, _ := data["username"].(string)
	email, _ := data["email"].(string)
	password, _ := data["password"].(string)
	if username == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password must be non-empty strings"})
		return
	}

	createdUser, err := userService.CreateUser(db, username, email, password)
	if err != nil {
		if errors.Is(err, services.ErrResourceExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, createdUser)
}

func GetUserById(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user, err := userService.GetUserById(db, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func GetUsers(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	params := make(map[string]interface{})

	if username := c.Query("username"); username != "" {
		params["username"] = username
	}
	if email := c.Query("email"); email != "" {
		params["email"] = email
	}

	users, err := userService.GetUsers(db, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser lets a user edit their own profile. The service applies only
// username, email and password; everything else in the body is dropped. The
// response pairs the list of changed fields with the updated user.
func UpdateUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if userIDInterface.(uint) != uint(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to edit another user"})
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON"})
		return
	}

	updatedUser, changed, err := userService.UpdateUser(db, uint(id), fields)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, []interface{}{
		gin.H{"changedFields": changed},
		updatedUser,
	})
}

func DeleteUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if userIDInterface.(uint) != uint(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to delete another user"})
		return
	}

	if err := userService.DeleteUser(db, uint(id)); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Your account and tasks have been deleted"})
}

// GetCurrentUser redirects the caller to their own user page.
func GetCurrentUser(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/", userIDInterface.(uint)))
}
