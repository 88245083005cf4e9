package http

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo"

	"github.com/psapy/dv-backend/internal/container"
	"github.com/psapy/dv-backend/internal/presentation/http/middleware"
	"github.com/psapy/dv-backend/internal/presentation/http/routes"
	"github.com/psapy/dv-backend/pkg/logger"
)

// Server represents the HTTP server
type Server struct {
	container *container.Container
	server    *echo.Echo
}

// NewServer creates a new HTTP server
func NewServer(c *container.Container) *Server {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	return &Server{
		container: c,
		server:    e,
	}
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	routes.SetupRoutes(s.server, s.container)

	port := s.container.Config.Server.Port
	if port == "" {
		port = "8080"
	}

	logger.GetLogger().WithField("port", port).Info("Starting server")

	go func() {
		if err := s.server.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.GetLogger().WithError(err).Fatal("Server forced to shutdown")
	}

	logger.GetLogger().Info("Server exited")
	return nil
}
