// Package main provides the Bora tutor server binary.
// The server exposes the lexicon answer pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/miappbora/bora-tutor/internal/config"
	"github.com/miappbora/bora-tutor/internal/pkg/logger"
	"github.com/miappbora/bora-tutor/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bora-tutor-server",
		Short: "Bora Tutor Server - retrieval-augmented lexicon tutoring API",
		Long: `Bora Tutor Server answers questions about the Bora/Spanish lexicon.

It retrieves relevant lexicon entries from a vector store, assembles a
grounded context, and generates tutoring answers with LLM provider
fallback.

Examples:
  bora-tutor-server                      # Start with defaults
  bora-tutor-server --config config.yml  # Custom config file
  bora-tutor-server --port 9090          # Custom HTTP port`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().String("host", "", "server host (overrides config)")
	rootCmd.Flags().Int("port", 0, "HTTP server port (overrides config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bora-tutor-server %s\n", version)
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
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}

	logLevel := cfg.Log.Level
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cfg.Log.Format)

	log.Info("Starting Bora Tutor Server",
		"version", version,
		"addr", cfg.Address(),
		"llm_provider", cfg.LLM.Provider,
		"embedding_provider", cfg.Embedding.Provider,
	)

	srv, err := server.New(cfg, version, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")
		return srv.Stop(context.Background())
	})

	return g.Wait()
}
