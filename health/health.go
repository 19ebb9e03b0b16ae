// Package health expõe liveness e readiness com heptiolabs/healthcheck.
package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

// Pinger é qualquer dependência que responde a Ping (ex.: o RedisStatsStore).
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// GoroutineMax acima disso o processo é considerado travado. 0 usa 1000.
	GoroutineMax int
	// IndexFile precisa existir para o site estar pronto.
	IndexFile string
	// Stats só entra na readiness quando não é nil.
	Stats       Pinger
	PingTimeout time.Duration
	Logger      *zap.Logger
}

type Checker struct {
	h healthcheck.Handler
}

func New(opts Options) *Checker {
	if opts.GoroutineMax <= 0 {
		opts.GoroutineMax = 1000
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	h := healthcheck.NewHandler()
	h.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(opts.GoroutineMax))

	if opts.IndexFile != "" {
		index := opts.IndexFile
		h.AddReadinessCheck("site-index", func() error {
			if _, err := os.Stat(index); err != nil {
				return fmt.Errorf("index not readable: %w", err)
			}
			return nil
		})
	}

	if opts.Stats != nil {
		stats, timeout, log := opts.Stats, opts.PingTimeout, opts.Logger
		h.AddReadinessCheck("ratelimit-stats", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := stats.Ping(ctx); err != nil {
				log.Warn("ratelimit stats ping failed", zap.Error(err))
				return err
			}
			return nil
		})
	}

	return &Checker{h: h}
}

func (c *Checker) Live() http.Handler  { return http.HandlerFunc(c.h.LiveEndpoint) }
func (c *Checker) Ready() http.Handler { return http.HandlerFunc(c.h.ReadyEndpoint) }
