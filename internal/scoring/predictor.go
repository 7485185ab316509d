package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/boxscore/internal/ai"
)

// DefaultHistoricalData stands in for an absent historical_data field.
const DefaultHistoricalData = "No historical data provided"

// ErrBatchPartialFailure marks an averaging batch aborted by a single failed run.
var ErrBatchPartialFailure = errors.New("batch run failed")

// Strategy names as used in configuration and metrics labels.
const (
	StrategySingle   = "single"
	StrategyAveraged = "averaged"
)

// Predictor produces a two-decimal score for a future box.
type Predictor interface {
	Predict(ctx context.Context, historicalData, futureBoxInfo string) (string, error)
}

// Observer receives prediction and LLM call outcomes. Implemented by the metrics package.
type Observer interface {
	ObservePrediction(strategy string, err error)
	ObserveLLMCall(d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObservePrediction(string, error)     {}
func (nopObserver) ObserveLLMCall(time.Duration, error) {}

// runner holds what both predictors share: the provider, logging and observation.
type runner struct {
	provider ai.Provider
	observer Observer
	logger   *slog.Logger
}

func newRunner(provider ai.Provider, observer Observer, logger *slog.Logger) runner {
	if observer == nil {
		observer = nopObserver{}
	}
	return runner{provider: provider, observer: observer, logger: logger}
}

// scoreOnce issues one completion and validates its output.
func (r runner) scoreOnce(ctx context.Context, prompt string, opts ai.CompletionOptions) (float64, error) {
	start := time.Now()
	raw, err := r.provider.Complete(ctx, prompt, opts)
	r.observer.ObserveLLMCall(time.Since(start), err)
	if err != nil {
		r.logger.Error("llm call failed", "error", err)
		return 0, err
	}

	r.logger.Info("raw model response", "response", raw)

	v, err := ParseScore(raw)
	if err != nil {
		r.logger.Error("invalid score received", "raw", raw, "error", err)
		return 0, err
	}
	return v, nil
}

// SinglePredictor asks the model once per request.
type SinglePredictor struct {
	runner
}

// NewSinglePredictor creates a predictor issuing one completion per request.
// observer may be nil.
func NewSinglePredictor(provider ai.Provider, observer Observer, logger *slog.Logger) *SinglePredictor {
	return &SinglePredictor{runner: newRunner(provider, observer, logger)}
}

// Predict renders the prompt, calls the provider with its default temperature
// and returns the validated score.
func (p *SinglePredictor) Predict(ctx context.Context, historicalData, futureBoxInfo string) (string, error) {
	score, err := p.predict(ctx, historicalData, futureBoxInfo)
	p.observer.ObservePrediction(StrategySingle, err)
	if err != nil {
		p.logger.Error("box score simulation failed", "error", err)
		return "", fmt.Errorf("box score simulation: %w", err)
	}
	return score, nil
}

func (p *SinglePredictor) predict(ctx context.Context, historicalData, futureBoxInfo string) (string, error) {
	prompt, err := ai.RenderBoxScorePrompt(historicalData, futureBoxInfo)
	if err != nil {
		return "", err
	}
	v, err := p.scoreOnce(ctx, prompt, ai.CompletionOptions{})
	if err != nil {
		return "", err
	}
	return FormatScore(v), nil
}

// AveragingPredictor asks the model a fixed number of times at temperature 0
// and averages the results. Runs are sequential; any failed run aborts the batch.
// Temperature 0 narrows but does not remove variance between runs.
type AveragingPredictor struct {
	runner
	runs int
}

// NewAveragingPredictor creates a predictor averaging runs completions.
// observer may be nil.
func NewAveragingPredictor(provider ai.Provider, runs int, observer Observer, logger *slog.Logger) *AveragingPredictor {
	return &AveragingPredictor{
		runner: newRunner(provider, observer, logger),
		runs:   runs,
	}
}

// Predict runs the batch and returns the mean of all validated runs.
func (p *AveragingPredictor) Predict(ctx context.Context, historicalData, futureBoxInfo string) (string, error) {
	score, err := p.predict(ctx, historicalData, futureBoxInfo)
	p.observer.ObservePrediction(StrategyAveraged, err)
	if err != nil {
		p.logger.Error("box score simulation failed", "error", err)
		return "", fmt.Errorf("box score simulation: %w", err)
	}
	return score, nil
}

func (p *AveragingPredictor) predict(ctx context.Context, historicalData, futureBoxInfo string) (string, error) {
	prompt, err := ai.RenderBoxScorePrompt(historicalData, futureBoxInfo)
	if err != nil {
		return "", err
	}

	scores := make([]float64, 0, p.runs)
	for run := 1; run <= p.runs; run++ {
		v, err := p.scoreOnce(ctx, prompt, ai.WithTemperature(0))
		if err != nil {
			return "", fmt.Errorf("run %d of %d: %w: %w", run, p.runs, ErrBatchPartialFailure, err)
		}
		p.logger.Debug("batch run scored", "run", run, "score", v)
		scores = append(scores, v)
	}

	mean := Mean(scores)
	p.logger.Info("batch averaged", "runs", p.runs, "mean", mean)
	return FormatScore(mean), nil
}
