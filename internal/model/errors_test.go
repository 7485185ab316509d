package model

import (
	"errors"
	"testing"
)

func TestHTTPError_MessagePreferred(t *testing.T) {
	err := &HTTPError{StatusCode: 500, Message: "score out of range: '6.00'", Err: errors.New("ignored")}
	if got, want := err.Error(), "HTTP 500: score out of range: '6.00'"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHTTPError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &HTTPError{StatusCode: 502, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
	if got, want := err.Error(), "HTTP 502: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBoxSummary_HistoricalStringWithoutScore(t *testing.T) {
	b := BoxSummary{SKU: "GB-2024-01", ProductCount: 2, RetailValueSum: 30, CategoryCount: 1}
	got := b.HistoricalString()
	want := "Box SKU: GB-2024-01, Products: 2, Retail Value Sum: 30.00, Categories: 1, Full Size Items: 0, Premium Items: 0, Weight Sum: 0.00, Avg Brand Rating: 0.00, Avg Category Rating: 0.00, Score: None"
	if got != want {
		t.Errorf("HistoricalString() =\n%q\nwant\n%q", got, want)
	}
}

func TestBoxSummary_StringOmitsScore(t *testing.T) {
	score := 4.2
	b := BoxSummary{SKU: "GB-2024-02", Score: &score}
	if got := b.String(); got == b.HistoricalString() {
		t.Errorf("String() should omit the score, got %q", got)
	}
	if got := b.HistoricalString(); got[len(got)-len("Score: 4.20"):] != "Score: 4.20" {
		t.Errorf("HistoricalString() = %q, want suffix Score: 4.20", got)
	}
}
