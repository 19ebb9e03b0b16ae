package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"voicesite/config"
	"voicesite/contact"
	"voicesite/contact/application"
	contactdomain "voicesite/contact/domain"
	contactinfra "voicesite/contact/infra"
	"voicesite/health"
	"voicesite/logging"
	"voicesite/metrics"
	"voicesite/middleware/ratelimit"
	"voicesite/middleware/ratelimit/infra"
	"voicesite/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	m := metrics.New()

	store := infra.NewStore(cfg.Rate.Max, cfg.Rate.Window,
		infra.WithCleanupEvery(cfg.Rate.CleanupEvery),
		infra.WithCleanupHook(func(removed, remaining int) {
			m.ObserveCleanup(removed, remaining)
			logger.Debug("ratelimit sweep", zap.Int("removed", removed), zap.Int("remaining", remaining))
		}),
	)

	memStats := infra.NewMemoryStatsStore()
	stats := infra.MultiStats{infra.NewPrometheusStatsStore(m), memStats}

	var redisStats *infra.RedisStatsStore
	if cfg.Rate.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Rate.Stats.RedisAddr,
			Password: cfg.Rate.Stats.RedisPassword,
			DB:       cfg.Rate.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		redisStats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Rate.Stats.Prefix),
			infra.WithStatsTTL(cfg.Rate.Stats.TTL),
			infra.WithStatsBucket(cfg.Rate.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Rate.Stats.TrackKeys),
		)

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := redisStats.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis stats ping: %w", err)
		}
		stats = append(stats, redisStats)
	}

	if cfg.Contact.ToEmail == "" {
		logger.Warn("CONTACT_TO_EMAIL not set; contact submissions will be rejected")
	}
	svc := application.Service{
		Notifications: application.Dispatcher{
			Notifiers:      buildNotifiers(cfg, logger),
			Fallback:       contactinfra.NewLogNotifier(logger.Named("fallback")),
			AttemptTimeout: cfg.Contact.AttemptTimeout,
			Logger:         logger.Named("delivery"),
			Metrics:        m,
		},
		To:      cfg.Contact.ToEmail,
		Logger:  logger.Named("contact"),
		Metrics: m,
	}

	contactHandler := contact.Handler(contact.HandlerOptions{
		Service:      svc,
		Logger:       logger.Named("contact"),
		MaxBodyBytes: cfg.Contact.MaxBodyBytes,
	})
	// ordem: admissão por rate limit antes do corpo ser lido, depois o limite de concorrência
	h := ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.Contact.ConcurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.Contact.ConcurrencyTimeout,
	})(contactHandler)
	if cfg.Rate.Enabled {
		h = ratelimit.Middleware(ratelimit.Options{
			Store:               store,
			Stats:               stats,
			KeyHeader:           cfg.Rate.KeyHeader,
			TrustXForwardedFor:  cfg.Rate.TrustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.Rate.RetryAfter,
			AddRateLimitHeaders: cfg.Rate.AddHeaders,
		})(h)
	}

	hopts := health.Options{
		IndexFile: filepath.Join(cfg.Site.PublicDir, "index.html"),
		Logger:    logger.Named("health"),
	}
	if redisStats != nil {
		hopts.Stats = redisStats
	}
	checker := health.New(hopts)

	router := site.NewRouter(site.Options{
		Public:  os.DirFS(cfg.Site.PublicDir),
		Data:    os.DirFS(cfg.Site.DataDir),
		Contact: h,
		Metrics: m.Handler(),
		Live:    checker.Live(),
		Ready:   checker.Ready(),
		Logger:  logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	logger.Info("voicesite listening",
		zap.String("addr", cfg.Addr()),
		zap.String("public_dir", cfg.Site.PublicDir),
		zap.String("data_dir", cfg.Site.DataDir),
	)
	logger.Info("rate limit",
		zap.Bool("enabled", cfg.Rate.Enabled),
		zap.Int("max", cfg.Rate.Max),
		zap.Duration("window", cfg.Rate.Window),
		zap.Duration("cleanup_every", cfg.Rate.CleanupEvery),
		zap.Bool("trust_xff", cfg.Rate.TrustXFF),
		zap.Bool("stats_redis", cfg.Rate.Stats.Enabled),
	)
	logger.Info("delivery",
		zap.Bool("resend", cfg.Resend.APIKey != ""),
		zap.Bool("smtp", cfg.SMTP.Host != ""),
		zap.Duration("attempt_timeout", cfg.Contact.AttemptTimeout),
		zap.Int("concurrency_max", cfg.Contact.ConcurrencyMax),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	total := memStats.Total()
	logger.Info("ratelimit totals",
		zap.Int64("allowed", total.Allowed),
		zap.Int64("denied", total.Denied),
		zap.Int("tracked_keys", store.Len()),
	)
	if redisStats != nil {
		totalsCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		rt, terr := redisStats.Totals(totalsCtx)
		cancel()
		if terr != nil {
			logger.Warn("ratelimit redis totals unavailable", zap.Error(terr))
		} else {
			logger.Info("ratelimit redis totals",
				zap.Int64("allowed", rt.Allowed),
				zap.Int64("denied", rt.Denied),
			)
		}
	}
	return err
}

// buildNotifiers monta a cadeia na ordem de preferência: Resend, depois SMTP.
// Provedores sem configuração ficam de fora.
func buildNotifiers(cfg *config.Config, logger *zap.Logger) []contactdomain.Notifier {
	var chain []contactdomain.Notifier
	if cfg.Resend.APIKey != "" {
		chain = append(chain, contactinfra.NewThrottled(
			contactinfra.NewResendNotifier(cfg.Resend.APIKey,
				contactinfra.WithResendFrom(cfg.Resend.From),
				contactinfra.WithResendBaseURL(cfg.Resend.BaseURL),
			),
			cfg.Contact.ThrottlePerMinute, cfg.Contact.ThrottleBurst,
		))
	}
	if cfg.SMTP.Host != "" {
		chain = append(chain, contactinfra.NewThrottled(
			contactinfra.NewSMTPNotifier(contactinfra.SMTPConfig{
				Host:      cfg.SMTP.Host,
				Port:      cfg.SMTP.Port,
				Secure:    cfg.SMTP.Secure,
				Username:  cfg.SMTP.User,
				Password:  cfg.SMTP.Pass,
				From:      cfg.SMTP.From,
				LocalName: cfg.SMTP.LocalName,
			}),
			cfg.Contact.ThrottlePerMinute, cfg.Contact.ThrottleBurst,
		))
	}
	if len(chain) == 0 {
		logger.Warn("no email provider configured; submissions will only be logged")
	}
	return chain
}
