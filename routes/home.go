package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterHomeRoutes(router *gin.Engine) {
	router.GET("/", Home)
}

func Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"title": "Task Tracker"})
}
