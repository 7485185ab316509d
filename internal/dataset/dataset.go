// Package dataset loads the box CSV exports into an in-memory SQLite database
// and renders per-box summaries from SQL joins.
package dataset

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/boxscore/internal/model"

	_ "modernc.org/sqlite"
)

var (
	//go:embed sql/*.sql
	queries embed.FS

	// ErrUnknownSKU is returned when the future box file has no rows for a SKU.
	ErrUnknownSKU = errors.New("unknown box sku")
	// ErrNoFutureBox is returned when the future box file has no SKUs at all.
	ErrNoFutureBox = errors.New("future box file has no rows")
)

// SummarySeparator joins box summaries into the historical data string.
const SummarySeparator = "; "

// Sources holds the resolved path of every CSV export.
type Sources struct {
	BoxRatings       string
	BoxContents      string
	ProductInfo      string
	ProductInfoAlt   string
	BrandAverages    string
	CategoryAverages string
	FutureBox        string
}

// Options controls missing-value fallbacks and item classification.
type Options struct {
	BrandFallback    float64
	PremiumThreshold float64
}

// Dataset is the joined view over one set of CSV exports.
type Dataset struct {
	db               *sql.DB
	opts             Options
	categoryFallback float64
	logger           *slog.Logger
}

// Load reads every CSV in src into a fresh in-memory database.
func Load(ctx context.Context, src Sources, opts Options, logger *slog.Logger) (*Dataset, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// each connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	d := &Dataset{db: db, opts: opts, logger: logger}
	if err := d.load(ctx, src); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dataset) load(ctx context.Context, src Sources) error {
	schema, err := queries.ReadFile("sql/schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	files := []struct {
		t    table
		path string
	}{
		{boxRatingsTable, src.BoxRatings},
		{boxContentsTable, src.BoxContents},
		{productInfoTable, src.ProductInfo},
		{productInfoAltTable, src.ProductInfoAlt},
		{brandAveragesTable, src.BrandAverages},
		{categoryAveragesTable, src.CategoryAverages},
		{futureBoxTable, src.FutureBox},
	}
	for _, f := range files {
		n, err := loadCSV(ctx, tx, f.t, f.path)
		if err != nil {
			return err
		}
		d.logger.Debug("dataset loaded", "table", f.t.name, "path", f.path, "rows", n)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}

	var known sql.NullFloat64
	if err := d.db.QueryRowContext(ctx, "SELECT AVG(rating) FROM category_rating").Scan(&known); err != nil {
		return fmt.Errorf("computing category fallback: %w", err)
	}
	d.categoryFallback = d.opts.BrandFallback
	if known.Valid {
		d.categoryFallback = known.Float64
	}
	d.logger.Debug("fallback ratings", "brand", d.opts.BrandFallback, "category", d.categoryFallback)
	return nil
}

// HistoricalSummaries returns one summary per row of the box ratings file,
// in file order.
func (d *Dataset) HistoricalSummaries(ctx context.Context) ([]model.BoxSummary, error) {
	query, err := queries.ReadFile("sql/historical_summaries.sql")
	if err != nil {
		return nil, fmt.Errorf("reading historical query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, string(query),
		d.opts.PremiumThreshold, d.opts.BrandFallback, d.categoryFallback)
	if err != nil {
		return nil, fmt.Errorf("querying historical summaries: %w", err)
	}
	defer rows.Close()

	var out []model.BoxSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning historical summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating historical summaries: %w", err)
	}
	return out, nil
}

// FutureSKUs lists the distinct SKUs of the future box file in file order.
func (d *Dataset) FutureSKUs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT box_sku FROM future_box WHERE box_sku IS NOT NULL GROUP BY box_sku ORDER BY MIN(rowid)")
	if err != nil {
		return nil, fmt.Errorf("querying future skus: %w", err)
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("scanning future sku: %w", err)
		}
		skus = append(skus, sku)
	}
	return skus, rows.Err()
}

// FutureSummary summarizes the future box sku. It never carries a score.
func (d *Dataset) FutureSummary(ctx context.Context, sku string) (model.BoxSummary, error) {
	query, err := queries.ReadFile("sql/future_summary.sql")
	if err != nil {
		return model.BoxSummary{}, fmt.Errorf("reading future query: %w", err)
	}

	row := d.db.QueryRowContext(ctx, string(query),
		d.opts.PremiumThreshold, d.opts.BrandFallback, d.categoryFallback, sku)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BoxSummary{}, fmt.Errorf("%w %q", ErrUnknownSKU, sku)
	}
	if err != nil {
		return model.BoxSummary{}, fmt.Errorf("scanning future summary: %w", err)
	}
	return s, nil
}

// Close releases the in-memory database.
func (d *Dataset) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (model.BoxSummary, error) {
	var (
		s          model.BoxSummary
		score      sql.NullFloat64
		brandAvg   sql.NullFloat64
		categoryAv sql.NullFloat64
	)
	err := sc.Scan(
		&s.SKU,
		&score,
		&s.ProductCount,
		&s.RetailValueSum,
		&s.CategoryCount,
		&s.FullSizeCount,
		&s.PremiumCount,
		&s.WeightSum,
		&brandAvg,
		&categoryAv,
	)
	if err != nil {
		return model.BoxSummary{}, err
	}
	if score.Valid {
		v := score.Float64
		s.Score = &v
	}
	s.AvgBrandRating = brandAvg.Float64
	s.AvgCategoryRating = categoryAv.Float64
	return s, nil
}

// JoinHistorical renders each summary with its score and joins them.
func JoinHistorical(summaries []model.BoxSummary) string {
	parts := make([]string, len(summaries))
	for i, s := range summaries {
		parts[i] = s.HistoricalString()
	}
	return strings.Join(parts, SummarySeparator)
}
