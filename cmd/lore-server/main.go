// Package main provides the lore-search server binary.
// The server exposes HTTP endpoints for catalog lookup, narrative
// evaluation, semantic search, and character notes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loresearch/lore-search/internal/config"
	"github.com/loresearch/lore-search/internal/pkg/logger"
	"github.com/loresearch/lore-search/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lore-server",
		Short: "Lore Search - catalog-grounded narrative evaluation and semantic search",
		Long: `Lore Search scores machine-generated character backstories and location
adventure stories against catalog facts, and serves semantic search over
indexed catalog entities.

Examples:
  lore-server                          # Start with defaults
  lore-server --config lore.yaml       # Load a YAML config file
  lore-server --port 9090 --verbose    # Custom port with debug logging`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().IntP("port", "p", 0, "HTTP port (overrides config)")
	rootCmd.Flags().String("host", "", "server host (overrides config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lore-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if host != "" {
		cfg.Host = host
	}

	logLevel := cfg.Log.Level
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cfg.Log.Format)

	log.Info("starting lore-server",
		"version", version,
		"addr", cfg.Address(),
		"index_backend", cfg.Index.Backend,
	)

	ctx := context.Background()
	srv, err := server.New(ctx, cfg, version, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	return srv.Stop(context.Background())
}
