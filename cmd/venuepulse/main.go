package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/venuepulse/backend/internal/cache"
	"github.com/venuepulse/backend/internal/config"
	"github.com/venuepulse/backend/internal/db"
	"github.com/venuepulse/backend/internal/metrics"
	"github.com/venuepulse/backend/internal/service"
)

var (
	rootCmd = &cobra.Command{
		Use:           "venuepulse",
		Short:         "Venue dashboard metrics backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the venuepulse version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		RunE:  runMigrate,
	}

	version = "dev"
)

func main() {
	rootCmd.AddCommand(versionCmd, migrateCmd, serveCmd, statsCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("venuepulse failed")
		os.Exit(1)
	}
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	store  *db.Store
	stats  *service.StatsService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "venuepulse").Logger()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting db: %w", err)
	}

	stats := &service.StatsService{
		Source:          store,
		Cache:           cache.NewMemory[metrics.Snapshot](cfg.CacheTTL),
		Logger:          logger,
		Location:        loc,
		Workers:         cfg.Workers,
		ForecastHorizon: cfg.ForecastHorizon,
	}
	return &app{cfg: cfg, logger: logger, store: store, stats: stats}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	a.logger.Info().Msg("schema up to date")
	return nil
}
