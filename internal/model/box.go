package model

import "fmt"

// NoScoreMarker stands in for a historical score that was never recorded.
const NoScoreMarker = "None"

// BoxSummary is the per-box aggregate derived from the joined datasets.
type BoxSummary struct {
	SKU               string
	ProductCount      int
	RetailValueSum    float64
	CategoryCount     int // distinct categories
	FullSizeCount     int
	PremiumCount      int // items priced above the premium threshold
	WeightSum         float64
	AvgBrandRating    float64
	AvgCategoryRating float64
	Score             *float64 // historical score; nil for the future box or when unrated
}

// String renders the summary without a historical score, as used for the future box.
func (b BoxSummary) String() string {
	return b.render(false)
}

// HistoricalString renders the summary including the historical score,
// or NoScoreMarker when the box was never rated.
func (b BoxSummary) HistoricalString() string {
	return b.render(true)
}

func (b BoxSummary) render(withScore bool) string {
	s := fmt.Sprintf(
		"Box SKU: %s, Products: %d, Retail Value Sum: %.2f, Categories: %d, Full Size Items: %d, Premium Items: %d, Weight Sum: %.2f, Avg Brand Rating: %.2f, Avg Category Rating: %.2f",
		b.SKU, b.ProductCount, b.RetailValueSum, b.CategoryCount, b.FullSizeCount,
		b.PremiumCount, b.WeightSum, b.AvgBrandRating, b.AvgCategoryRating,
	)
	if !withScore {
		return s
	}
	if b.Score == nil {
		return s + ", Score: " + NoScoreMarker
	}
	return s + fmt.Sprintf(", Score: %.2f", *b.Score)
}

// Prediction is the final result for a future box.
type Prediction struct {
	SKU   string
	Score string // always two decimals, e.g. "4.23"
}

// PredictionRequest is the payload accepted by POST /predict_box_score.
// HistoricalData is a pointer so an absent field can be told apart from an empty one.
type PredictionRequest struct {
	HistoricalData *string `json:"historical_data,omitempty"`
	FutureBoxInfo  *string `json:"future_box_info,omitempty"`
}

// PredictionResponse is the success payload of POST /predict_box_score.
type PredictionResponse struct {
	PredictedBoxScore string `json:"predicted_box_score"`
}

// ErrorResponse is the error payload returned on any non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}
