// Package httpapi exposes the small always-on debug HTTP surface every
// daemon in this repo carries: a health probe and, for the indexer, a
// handful of running counters.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics holds the indexer's running counters. Every field is updated
// atomically so the HTTP handler can read them from any goroutine.
type Metrics struct {
	BlocksProcessed   atomic.Int64
	SwapsFound        atomic.Int64
	TransfersFound    atomic.Int64
	SandwichesFound   atomic.Int64
	LastProcessedSlot atomic.Int64
}

// Server is the per-daemon debug HTTP endpoint: /healthz always, /metrics
// when metrics is non-nil.
type Server struct {
	http *http.Server
}

// New builds the gin engine and wraps it in an http.Server with explicit
// timeouts, listening on port.
func New(port int, metrics *Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metrics != nil {
		r.GET("/metrics", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"blocks_processed":    metrics.BlocksProcessed.Load(),
				"swaps_found":         metrics.SwapsFound.Load(),
				"transfers_found":     metrics.TransfersFound.Load(),
				"sandwiches_found":    metrics.SandwichesFound.Load(),
				"last_processed_slot": metrics.LastProcessedSlot.Load(),
			})
		})
	}

	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       65 * time.Second,
		},
	}
}

// Run blocks serving until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
