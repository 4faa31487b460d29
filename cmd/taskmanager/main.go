package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/auth"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/config"
	handlers "github.com/Heritiana-Nofy/task-manager-mern/internal/http"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/logger"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/middleware"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/repository"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.Init("taskmanager", cfg.LogLevel)

	repo, err := repository.NewPostgresRepository(cfg.DB.DSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer repo.Close()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(repo.Users(), tokens, cfg.Auth.BcryptCost)
	taskService := service.NewTaskService(repo.Tasks(), repo.Users())

	handler := handlers.NewHandler(authService, taskService, log)
	router := handlers.NewRouter(handler, authService, log)

	// Middleware chain (order matters).
	var chained http.Handler = router
	chained = middleware.LoggingMiddleware(log)(chained)
	chained = middleware.MetricsMiddleware(chained)
	chained = middleware.CORSMiddleware(chained)
	chained = middleware.SecurityHeadersMiddleware(chained)
	chained = middleware.RequestIDMiddleware(chained)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: chained,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("task manager API starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
