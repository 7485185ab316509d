package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/boxscore/internal/config"
	"github.com/amishk599/boxscore/internal/dataset"
	"github.com/amishk599/boxscore/internal/model"
	"github.com/amishk599/boxscore/internal/output"
	"github.com/amishk599/boxscore/internal/scoreclient"
	"github.com/amishk599/boxscore/internal/tui"
)

var (
	aggSKU         string
	aggInteractive bool
	aggOutput      string
	aggServiceURL  string
	aggDataDir     string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Summarize the CSV exports and score the future box",
	Long: "Join the box, product, brand and category CSV exports, summarize each historical box and\n" +
		"the future box, ask the score service for a prediction and write it to a CSV file.",
	RunE: runAggregateCmd,
}

func init() {
	f := aggregateCmd.Flags()
	f.StringVar(&aggSKU, "sku", "", "future box sku to score (required when the future box file has several)")
	f.BoolVarP(&aggInteractive, "interactive", "i", false, "pick the sku, review the summaries and show a spinner in the terminal")
	f.StringVarP(&aggOutput, "output", "o", "", "output CSV path (overrides aggregate.output)")
	f.StringVar(&aggServiceURL, "service-url", "", "score service base URL (overrides aggregate.service_url)")
	f.StringVar(&aggDataDir, "data-dir", "", "directory holding the CSV exports (overrides aggregate.data_dir)")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregateCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	if aggInteractive {
		// Info logs would tear through the TUI; only errors reach stderr.
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if aggOutput != "" {
		cfg.Aggregate.Output = aggOutput
	}
	if aggServiceURL != "" {
		cfg.Aggregate.ServiceURL = aggServiceURL
	}
	if aggDataDir != "" {
		cfg.Aggregate.DataDir = aggDataDir
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := aggregateOptions{SKU: aggSKU, Interactive: aggInteractive}
	if err := runAggregate(ctx, cfg, opts, logger); err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "aborted, nothing written")
		} else {
			logger.Error("aggregate failed", "error", err)
		}
		os.Exit(1)
	}
	return nil
}

// aggregateOptions are the per-run choices that do not live in the config file.
type aggregateOptions struct {
	SKU         string
	Interactive bool
}

// runAggregate scores one future box and records the result. Any failure
// returns before the output file is touched.
func runAggregate(ctx context.Context, cfg *config.Config, opts aggregateOptions, logger *slog.Logger) error {
	agg := cfg.Aggregate
	ds, err := dataset.Load(ctx, dataset.Sources{
		BoxRatings:       agg.Path(agg.Files.BoxRatings),
		BoxContents:      agg.Path(agg.Files.BoxContents),
		ProductInfo:      agg.Path(agg.Files.ProductInfo),
		ProductInfoAlt:   agg.Path(agg.Files.ProductInfoAlt),
		BrandAverages:    agg.Path(agg.Files.BrandAverages),
		CategoryAverages: agg.Path(agg.Files.CategoryAverages),
		FutureBox:        agg.Path(agg.Files.FutureBox),
	}, dataset.Options{
		BrandFallback:    agg.BrandFallback,
		PremiumThreshold: agg.PremiumThreshold,
	}, logger)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}
	defer ds.Close()

	history, err := ds.HistoricalSummaries(ctx)
	if err != nil {
		return err
	}
	logger.Info("historical boxes summarized", "boxes", len(history))

	sku, err := chooseSKU(ctx, ds, opts.SKU, opts.Interactive)
	if err != nil {
		return err
	}
	future, err := ds.FutureSummary(ctx, sku)
	if err != nil {
		return err
	}
	futureInfo := future.String()
	historicalData := dataset.JoinHistorical(history)
	logger.Debug("prompt inputs", "future_box_info", futureInfo, "historical_data", historicalData)

	if opts.Interactive {
		lines := make([]string, len(history))
		for i, h := range history {
			lines[i] = h.HistoricalString()
		}
		ok, err := tui.Review(futureInfo, lines)
		if err != nil {
			return fmt.Errorf("review screen: %w", err)
		}
		if !ok {
			return tui.ErrCancelled
		}
	}

	client := scoreclient.New(agg.ServiceURL, &http.Client{Timeout: agg.Timeout}, logger)
	predict := func(ctx context.Context) (string, error) {
		return client.Predict(ctx, historicalData, futureInfo)
	}

	var score string
	if opts.Interactive {
		score, err = tui.RunLoader(ctx, "Scoring box "+sku, predict)
	} else {
		logger.Info("requesting prediction", "box_sku", sku, "service_url", agg.ServiceURL)
		score, err = predict(ctx)
	}
	if err != nil {
		return fmt.Errorf("predict box %s: %w", sku, err)
	}

	predictions := []model.Prediction{{SKU: sku, Score: score}}
	recorders := []output.Recorder{output.NewCSVRecorder(agg.Output), output.NewLogRecorder(logger)}
	for _, r := range recorders {
		if err := r.Record(predictions); err != nil {
			return fmt.Errorf("record prediction: %w", err)
		}
	}

	if opts.Interactive {
		fmt.Print(tui.RenderResult(sku, score, agg.Output))
	}
	return nil
}

// chooseSKU resolves which future box to score: the flag, the only sku in the
// file, or an interactive pick.
func chooseSKU(ctx context.Context, ds *dataset.Dataset, flagSKU string, interactive bool) (string, error) {
	if flagSKU != "" {
		return flagSKU, nil
	}

	skus, err := ds.FutureSKUs(ctx)
	if err != nil {
		return "", err
	}
	switch {
	case len(skus) == 0:
		return "", dataset.ErrNoFutureBox
	case len(skus) == 1:
		return skus[0], nil
	case !interactive:
		return "", fmt.Errorf("future box file holds %d skus, pass --sku or --interactive", len(skus))
	}

	sku, ok, err := tui.PickSKU(skus)
	if err != nil {
		return "", fmt.Errorf("sku picker: %w", err)
	}
	if !ok {
		return "", tui.ErrCancelled
	}
	return sku, nil
}
