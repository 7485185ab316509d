package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/boxscore/internal/ai"
	"github.com/amishk599/boxscore/internal/config"
	"github.com/amishk599/boxscore/internal/ratelimit"
	"github.com/amishk599/boxscore/internal/scoring"
)

const defaultConfigFile = "boxscore.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "boxscore",
	Short: "Predict subscription box scores with a hosted LLM",
	Long: "boxscore serves an HTTP endpoint that asks a hosted language model to score a future box\n" +
		"against historical boxes, and aggregates CSV exports into the summaries it expects.",
	SilenceUsage:      true,
	PersistentPreRunE: loadDotEnv,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: BOXSCORE_CONFIG env var or ./boxscore.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadDotEnv reads ./.env into the environment when the file exists.
// Variables already set win over the file.
func loadDotEnv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > BOXSCORE_CONFIG env var > "./boxscore.yaml" > built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("BOXSCORE_CONFIG"); env != "" {
			path = env
		} else if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg)
}

func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// setupProvider builds the configured LLM client, paced when
// llm.requests_per_second is set.
func setupProvider(cfg *config.Config, logger *slog.Logger) ai.Provider {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}

	var provider ai.Provider
	switch cfg.LLM.Provider {
	case "anthropic":
		provider = ai.NewAnthropicProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens, httpClient)
	default:
		provider = ai.NewOpenAIProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens, httpClient)
	}
	logger.Info("llm provider configured",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"timeout", cfg.LLM.Timeout.String(),
		"requests_per_second", cfg.LLM.RequestsPerSecond,
	)

	return ratelimit.NewLimitedProvider(provider, cfg.LLM.RequestsPerSecond)
}

func setupPredictor(cfg *config.Config, provider ai.Provider, observer scoring.Observer, logger *slog.Logger) scoring.Predictor {
	switch cfg.Scoring.Strategy {
	case scoring.StrategyAveraged:
		logger.Info("using averaging predictor", "runs", cfg.Scoring.Runs)
		return scoring.NewAveragingPredictor(provider, cfg.Scoring.Runs, observer, logger)
	default:
		logger.Info("using single-call predictor")
		return scoring.NewSinglePredictor(provider, observer, logger)
	}
}
