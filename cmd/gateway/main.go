package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	catsvc "cribz-gateway/internal/application/catalog"
	"cribz-gateway/internal/config"
	"cribz-gateway/internal/interfaces/router"
	"cribz-gateway/internal/upstream"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "CribzConnect dashboard gateway",
	Long:  "BFF for the CribzConnect dashboard: normalizes listings and hotels, caches per-viewer collections, and proxies mutations to the upstream API.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config load: %w", err)
		}
		if cfg.Env != "production" {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}

		app, db, rdb, err := router.CreateApp(cfg)
		if err != nil {
			return fmt.Errorf("app create: %w", err)
		}

		// Verify connections before announcing the port.
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("settings DB: %w", err)
			}
			if err := sqlDB.Ping(); err != nil {
				return fmt.Errorf("settings DB connection failed: %w", err)
			}
			log.Info().Msg("Settings DB connected")
		}
		if rdb != nil {
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				return fmt.Errorf("redis connection failed: %w", err)
			}
			log.Info().Msg("Redis connected")
		}
		log.Info().Str("upstream", cfg.UpstreamBaseURL).Msgf("Gateway running at http://localhost:%s", cfg.Port)

		return app.Listen(":" + cfg.Port)
	},
}

var syncScope string

// sync fetches and normalizes one collection pair from the command line,
// useful for eyeballing what the upstream currently returns.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, normalize and print the merged collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config load: %w", err)
		}
		scope := upstream.ScopeAll
		switch syncScope {
		case "all":
		case "mine":
			scope = upstream.ScopeMine
		case "pending":
			scope = upstream.ScopePending
		default:
			return fmt.Errorf("unknown scope %q (want all, mine or pending)", syncScope)
		}

		svc := &catsvc.Service{Upstream: &upstream.Client{BaseURL: cfg.UpstreamBaseURL}}
		items, err := svc.Reconcile(cmd.Context(), os.Getenv("CRIBZ_TOKEN"), scope, false)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		log.Info().Int("count", len(items)).Msg("sync complete")
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncScope, "scope", "all", "collection scope: all, mine or pending")
	rootCmd.AddCommand(serveCmd, syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("gateway exited")
	}
}
