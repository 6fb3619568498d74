// Package api serves the habit list and the hero over JSON for browser and
// battle clients.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/constants"
	"github.com/chadspratt/do-again-list/internal/logger"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	svc          *activity.Service
	defaultOwner string
	engine       *gin.Engine
}

func NewServer(svc *activity.Service, defaultOwner string) *Server {
	if defaultOwner == "" {
		defaultOwner = constants.DefaultOwner
	}
	s := &Server{svc: svc, defaultOwner: defaultOwner}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	events := r.Group("/api/events")
	events.GET("/", s.listEvents)
	events.POST("/create/", s.createEvent)
	events.POST("/:id/update/", s.updateEvent)
	events.POST("/:id/delete/", s.deleteEvent)
	events.POST("/:id/settings/", s.updateEventSettings)

	game := r.Group("/api/game")
	game.GET("/", s.gameState)
	game.POST("/sync/", s.syncBattle)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until ctx is cancelled, then drains in-flight
// requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request failed", append(kv, "errors", c.Errors.String())...)
			return
		}
		logger.Debug("Request", kv...)
	}
}

// owner is the X-Owner header, falling back to the server's default owner.
func (s *Server) owner(c *gin.Context) string {
	if o := c.GetHeader(constants.OwnerHeader); o != "" {
		return o
	}
	return s.defaultOwner
}
