package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/boxscore/internal/metrics"
	"github.com/amishk599/boxscore/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	serveStrategy string
	serveRuns     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the box score HTTP service",
	Long: "Serve POST /predict_box_score, GET /health and GET /metrics; blocks until SIGINT/SIGTERM.\n" +
		"Requires OPENAI_API_KEY (or ANTHROPIC_API_KEY with llm.provider: anthropic).",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveStrategy, "strategy", "", "scoring strategy: single or averaged (overrides scoring.strategy)")
	serveCmd.Flags().IntVar(&serveRuns, "runs", 0, "completions per request for the averaged strategy (overrides scoring.runs)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if serveStrategy != "" {
		cfg.Scoring.Strategy = serveStrategy
	}
	if serveRuns != 0 {
		cfg.Scoring.Runs = serveRuns
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		logger.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	provider := setupProvider(cfg, logger)
	predictor := setupPredictor(cfg, provider, m, logger)
	srv := server.NewServer(predictor, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("goodbye")
	return nil
}
