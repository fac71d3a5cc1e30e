package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"traffic-forecast-service/internal/adapters/cache"
	"traffic-forecast-service/internal/adapters/repositories"
	"traffic-forecast-service/internal/config"
	"traffic-forecast-service/internal/platform/db"
	"traffic-forecast-service/internal/platform/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	databaseURL string
	seedPath    string
	routeTTL    string
)

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Manages the forecast service's Postgres caches",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(databaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		return nil
	},
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the cache schema and seed landmark geocodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.NewNamed(config.Get("APP_ENV", "development"), "dbtool")
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := cmd.Context()
		pg, err := db.Open(ctx, databaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		log.Info("initializing database schema")
		if err := repositories.InitSchema(ctx, pg); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		log.Info("schema ready")

		n, err := repositories.SeedPlacesFromJSON(ctx, cache.NewSQLGeocodeCache(pg), seedPath)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info("seeding complete", zap.String("path", seedPath), zap.Int("queries", n))
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired directions from the route cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.NewNamed(config.Get("APP_ENV", "development"), "dbtool")
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ttl, err := parseTTL(routeTTL)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pg, err := db.Open(ctx, databaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		n, err := cache.NewSQLRouteCache(pg, ttl).PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		log.Info("route cache purged", zap.Int64("rows", n), zap.Duration("ttl", ttl))
		return nil
	},
}

func init() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", config.Get("DATABASE_URL", ""), "Postgres connection URL")
	initCmd.Flags().StringVar(&seedPath, "seed", config.Get("SEED_PATH", "data/seeds/places.json"), "landmark seed file")
	purgeCmd.Flags().StringVar(&routeTTL, "ttl", config.Get("ROUTE_CACHE_TTL", "15m"), "age after which cached directions expire")

	rootCmd.AddCommand(initCmd, purgeCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
