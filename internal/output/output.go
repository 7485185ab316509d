// Package output persists and reports predicted box scores.
package output

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amishk599/boxscore/internal/model"
)

// Recorder hands finished predictions to a destination.
type Recorder interface {
	Record(predictions []model.Prediction) error
}

var (
	_ Recorder = (*CSVRecorder)(nil)
	_ Recorder = (*LogRecorder)(nil)
)

// CSVHeader is the header row of the prediction file.
var CSVHeader = []string{"box_sku", "predicted_box_score"}

// CSVRecorder writes predictions to a CSV file, replacing any prior content.
type CSVRecorder struct {
	path string
}

// NewCSVRecorder returns a recorder writing to path.
func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

// Record writes the header and one row per prediction. The file is written to
// a sibling temp file first, so a failed write leaves the previous file intact.
func (r *CSVRecorder) Record(predictions []model.Prediction) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp output: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(CSVHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range predictions {
		if err := w.Write([]string{p.SKU, p.Score}); err != nil {
			tmp.Close()
			return fmt.Errorf("write csv row for %s: %w", p.SKU, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

// LogRecorder reports predictions as structured log lines.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder returns a recorder that logs each prediction via slog.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record never fails.
func (r *LogRecorder) Record(predictions []model.Prediction) error {
	for _, p := range predictions {
		r.logger.Info("predicted box score", "box_sku", p.SKU, "predicted_box_score", p.Score)
	}
	return nil
}
