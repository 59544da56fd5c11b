package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/cache"
	"github.com/tbourn/unsent-letters/internal/config"
	httpapi "github.com/tbourn/unsent-letters/internal/http"
	"github.com/tbourn/unsent-letters/internal/observability"
	"github.com/tbourn/unsent-letters/internal/repo"
	"github.com/tbourn/unsent-letters/internal/services"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
	unlockInterval  = time.Minute
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	var engagementCache services.EngagementCache
	if cfg.Cache.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.Addr).Msg("engagement cache disabled")
		} else {
			defer rc.Close()
			engagementCache = rc
		}
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, engagementCache, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go runJanitor(ctx, db, purgeInterval, unlockInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db", cfg.DB.Driver).
			Bool("cache", engagementCache != nil).
			Str("version", Version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	return nil
}

// runJanitor purges expired idempotency records every purgeEvery and unlocks
// due memory capsules every unlockEvery, until ctx is cancelled.
func runJanitor(ctx context.Context, db *gorm.DB, purgeEvery, unlockEvery time.Duration) {
	purge := time.NewTicker(purgeEvery)
	defer purge.Stop()
	unlock := time.NewTicker(unlockEvery)
	defer unlock.Stop()

	capsules := &services.CapsuleService{DB: db}
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-purge.C:
			purgeExpired(ctx, db, now)
		case <-unlock.C:
			if _, err := capsules.UnlockDue(log.Logger.WithContext(ctx)); err != nil {
				log.Warn().Err(err).Msg("unlock due capsules")
			}
		}
	}
}

func purgeExpired(ctx context.Context, db *gorm.DB, now time.Time) int64 {
	n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
	if err != nil {
		log.Warn().Err(err).Msg("purge idempotency records")
		return 0
	}
	if n > 0 {
		log.Info().Int64("removed", n).Msg("purged expired idempotency records")
	}
	return n
}
