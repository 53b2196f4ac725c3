package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/propdesk/propdesk/internal/config"
	"github.com/propdesk/propdesk/internal/db"
	"github.com/propdesk/propdesk/internal/logging"
	"github.com/propdesk/propdesk/internal/store"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			logger.Info("database is up to date", "path", cfg.DBPath)
			return nil
		},
	}
}

func newAdminCommand() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrative maintenance commands",
	}
	admin.AddCommand(newResetPasswordCommand())
	return admin
}

func newResetPasswordCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}

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

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			users := store.NewUserStore(sqlDB)
			if err := users.UpdatePassword(cmd.Context(), username, string(hash)); err != nil {
				return fmt.Errorf("failed to update password for %q: %w", username, err)
			}

			logger.Info("password updated", "username", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "account to update")
	cmd.Flags().StringVar(&password, "password", "", "new password")

	return cmd
}
