// Package server exposes the terminal-facing surface: the voice websocket
// and a small REST API the touch UI polls.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taproom/taproom/internal/voice"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the POS server.
type StartOpts struct {
	DB       *gorm.DB
	Sessions *voice.Manager
	Port     int
	// LowStockThreshold and DigestCron drive the morning stock digest;
	// an empty cron expression disables it.
	LowStockThreshold float64
	DigestCron        string
	// SessionIdleTimeout closes voice sessions with no activity for this
	// long; zero disables the sweep.
	SessionIdleTimeout time.Duration
	Out                io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("server: db is required")
	}
	if opts.Sessions == nil {
		return fmt.Errorf("server: session manager is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts.DB)
	router.GET("/ws/voice", handleVoice(opts.Sessions))

	if opts.DigestCron != "" {
		go runLowStockDigest(ctx, opts.DB, opts.DigestCron, opts.LowStockThreshold, opts.Out)
	}
	if opts.SessionIdleTimeout > 0 {
		go reapIdleSessions(ctx, opts.Sessions, opts.SessionIdleTimeout)
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		opts.Sessions.CloseAll()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Terminal server running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// reapIdleSessions periodically closes voice sessions that have gone quiet.
func reapIdleSessions(ctx context.Context, sessions *voice.Manager, maxIdle time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.CloseIdle(maxIdle)
		}
	}
}
