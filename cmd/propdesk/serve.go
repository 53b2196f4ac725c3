package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/propdesk/propdesk/internal/config"
	"github.com/propdesk/propdesk/internal/db"
	"github.com/propdesk/propdesk/internal/filestore/local"
	"github.com/propdesk/propdesk/internal/logging"
	"github.com/propdesk/propdesk/internal/metrics"
	"github.com/propdesk/propdesk/internal/service"
	"github.com/propdesk/propdesk/internal/store"
	"github.com/propdesk/propdesk/internal/web"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()

	logger, cleanup := logging.New(cfg.LogLevel, cfg.LogFile, logging.Rotation{
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer cleanup()

	sqlDB, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	db.EnsureAdmin(sqlDB, cfg.AdminUsername, cfg.AdminPassword, logger)

	files, err := local.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}

	users := store.NewUserStore(sqlDB)
	sessions := store.NewSessionStore(sqlDB)
	properties := store.NewPropertyStore(sqlDB)
	documents := store.NewDocumentStore(sqlDB)
	mapsLinks := store.NewMapsLinkStore(sqlDB)

	auth := service.NewAuthService(users, sessions, cfg.SessionTTL, logger)
	props := service.NewPropertyService(properties, documents, mapsLinks, files, cfg.AllowedExtensions, logger)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	go sweepSessions(context.Background(), sessions, logger)

	srv := web.NewServer(auth, props, files, cfg, logger)
	return srv.ListenAndServe(cfg.ListenAddr)
}

// sweepSessions periodically removes expired sessions so the table does not
// grow without bound.
func sweepSessions(ctx context.Context, sessions *store.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Warn("failed to sweep expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("removed expired sessions", "count", n)
			}
		}
	}
}
