package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tasknest/tasknest/broker"
	"tasknest/tasknest/config"
	"tasknest/tasknest/database"
	"tasknest/tasknest/middleware"
	"tasknest/tasknest/routes"
	"tasknest/tasknest/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// The event stream is optional; the API works without a broker.
	if err := broker.InitProducer(cfg.NatsURL); err != nil {
		log.Printf("Warning: Failed to initialize NATS producer: %v", err)
		log.Println("The application will continue, but entity events will not be published")
	} else {
		defer broker.CloseProducer()
	}

	authService := services.NewAuthService()
	services.AuthServiceInstance = authService

	userService := services.NewUserService(authService)
	services.UserServiceInstance = userService

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.LoadHTMLGlob("templates/*")

	routes.RegisterHomeRoutes(router)
	routes.RegisterAuthRoutes(router, db, authService)
	routes.RegisterUserRoutes(router, db, userService, authService)
	routes.RegisterTaskRoutes(router, db, services.TaskServiceInstance, authService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		broker.CloseProducer()
		db.Close()
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
