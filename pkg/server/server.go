// Package server wires the HTTP surface of the file server: routing,
// middleware, request handlers and the embedded upload page.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/shibing624/file-server/pkg/config"
	"github.com/shibing624/file-server/pkg/history"
	"github.com/shibing624/file-server/pkg/logging"
	"github.com/shibing624/file-server/pkg/storage"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server hosts the file server HTTP API and web UI.
type Server struct {
	router   *gin.Engine
	settings *config.Settings
	logger   *logging.Logger
}

// New assembles the router with all middleware and routes over the given
// filesystem and settings.
func New(fs afero.Fs, settings *config.Settings, events *history.Log, logger *logging.Logger) *Server {
	store := storage.NewStore(fs, settings.StorageDir, logger)
	h := &handlers{
		settings: settings,
		store:    store,
		catalog:  storage.NewCatalog(fs, store.Root()),
		events:   events,
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.GET("/", h.index)
	router.GET("/health", h.health)
	router.GET("/api", h.apiInfo)
	router.POST("/upload", h.upload)
	router.GET("/list", h.list)
	router.DELETE("/delete/:filename", h.remove)
	router.GET("/files/:filename", h.serveFile)

	return &Server{
		router:   router,
		settings: settings,
		logger:   logger,
	}
}

// Router returns the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is canceled, then drains in-flight requests before
// returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.settings.ListenAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down File Server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownDone <- srv.Shutdown(shutdownCtx) //nolint:contextcheck // fresh ctx: the parent is already canceled
	}()

	s.logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("file server: %w", err)
	}
	if err := <-shutdownDone; err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
