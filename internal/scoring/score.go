// Package scoring turns raw model output into validated box scores.
package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Score bounds, inclusive.
const (
	MinScore = 1.0
	MaxScore = 5.0
)

var (
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrInvalidFormat = errors.New("invalid score format")
	ErrOutOfRange    = errors.New("score out of range")
)

// ScoreError carries the offending model output alongside the validation failure.
type ScoreError struct {
	Raw string
	Err error
}

func (e *ScoreError) Error() string {
	if errors.Is(e.Err, ErrEmptyResponse) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: '%s'", e.Err, e.Raw)
}

func (e *ScoreError) Unwrap() error {
	return e.Err
}

// ParseScore validates raw model output: it must be non-empty after trimming,
// parse as a float and fall within [MinScore, MaxScore].
func ParseScore(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, &ScoreError{Raw: raw, Err: ErrEmptyResponse}
	}

	// ParseFloat also takes hex floats like 0x1p2; plain decimals only.
	if strings.ContainsAny(trimmed, "xX") {
		return 0, &ScoreError{Raw: trimmed, Err: ErrInvalidFormat}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &ScoreError{Raw: trimmed, Err: ErrInvalidFormat}
	}

	// Negated so NaN is rejected too.
	if !(v >= MinScore && v <= MaxScore) {
		return 0, &ScoreError{Raw: trimmed, Err: ErrOutOfRange}
	}
	return v, nil
}

// FormatScore renders a score with exactly two decimals.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// NormalizeScore parses raw and re-renders it with two decimals.
func NormalizeScore(raw string) (string, error) {
	v, err := ParseScore(raw)
	if err != nil {
		return "", err
	}
	return FormatScore(v), nil
}

// Mean returns the arithmetic mean of scores, NaN for an empty slice.
func Mean(scores []float64) float64 {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
