package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/boxscore/internal/ai"
	"github.com/amishk599/boxscore/internal/metrics"
	"github.com/amishk599/boxscore/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubPredictor records its inputs and returns a fixed result.
type stubPredictor struct {
	score      string
	err        error
	calls      int
	historical string
	future     string
}

func (p *stubPredictor) Predict(_ context.Context, historicalData, futureBoxInfo string) (string, error) {
	p.calls++
	p.historical = historicalData
	p.future = futureBoxInfo
	return p.score, p.err
}

// scriptedProvider replays raw model outputs in order.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Complete(context.Context, string, ai.CompletionOptions) (string, error) {
	r := p.responses[p.calls]
	p.calls++
	return r, nil
}

func newTestServer(p scoring.Predictor) *Server {
	return NewServer(p, metrics.New(), discardLogger())
}

func post(t *testing.T, s *Server, body string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict_box_score", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubPredictor{})

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestPredict_Success(t *testing.T) {
	p := &stubPredictor{score: "4.23"}
	s := newTestServer(p)

	status, out := post(t, s, `{"historical_data":"Box SKU: A, Score: 4.00","future_box_info":"Box SKU: B"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{"predicted_box_score": "4.23"}, out)
	assert.Equal(t, "Box SKU: A, Score: 4.00", p.historical)
	assert.Equal(t, "Box SKU: B", p.future)
}

func TestPredict_DefaultsHistoricalData(t *testing.T) {
	for _, body := range []string{
		`{"future_box_info":"Box SKU: B"}`,
		`{"historical_data":null,"future_box_info":"Box SKU: B"}`,
	} {
		p := &stubPredictor{score: "3.00"}
		status, _ := post(t, newTestServer(p), body)
		assert.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, scoring.DefaultHistoricalData, p.historical, body)
	}
}

func TestPredict_MissingFutureBoxInfo(t *testing.T) {
	bodies := []string{
		`{"historical_data":"x"}`,
		`{"historical_data":"x","future_box_info":""}`,
		`{"future_box_info":null}`,
		`{}`,
		``,
		`not json`,
		`{"future_box_info":42}`,
	}

	for _, body := range bodies {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			p := &stubPredictor{score: "4.00"}
			status, out := post(t, newTestServer(p), body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, map[string]string{"error": "Missing future box info"}, out)
			assert.Zero(t, p.calls, "predictor must not be called")
		})
	}
}

func TestPredict_PredictorFailure(t *testing.T) {
	p := &stubPredictor{err: errors.New("box score simulation: external service unavailable")}
	status, out := post(t, newTestServer(p), `{"future_box_info":"Box SKU: B"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "box score simulation: external service unavailable", out["error"])
	assert.NotContains(t, out, "predicted_box_score")
}

func TestPredict_AveragingEndToEnd(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"4.00", "4.20", "4.10", "3.90", "4.30"}}
	s := newTestServer(scoring.NewAveragingPredictor(provider, 5, nil, discardLogger()))

	status, out := post(t, s, `{"future_box_info":"Box SKU: B"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "4.10", out["predicted_box_score"])
	assert.Equal(t, 5, provider.calls)
}

func TestPredict_AveragingOutOfRangeRun(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"4.00", "4.20", "6.00", "3.90", "4.30"}}
	s := newTestServer(scoring.NewAveragingPredictor(provider, 5, nil, discardLogger()))

	status, out := post(t, s, `{"future_box_info":"Box SKU: B"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, out["error"], "6.00")
	assert.NotContains(t, out, "predicted_box_score")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(&stubPredictor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Request-Id"), 36, "generated id is a uuid")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&stubPredictor{score: "4.00"})
	post(t, s, `{"future_box_info":"Box SKU: B"}`)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `boxscore_http_requests_total{method="POST",path="/predict_box_score",status="200"} 1`)
}

func TestPredict_NonStringHistoricalData(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"future_box_info":"Box SKU: B","historical_data":["a", "b"]}`, want: `["a","b"]`},
		{body: `{"future_box_info":"Box SKU: B","historical_data":{"box": "A"}}`, want: `{"box":"A"}`},
		{body: `{"future_box_info":"Box SKU: B","historical_data":4.5}`, want: `4.5`},
		{body: `{"future_box_info":"Box SKU: B","historical_data":""}`, want: ``},
	}

	for _, tt := range tests {
		p := &stubPredictor{score: "4.00"}
		status, out := post(t, newTestServer(p), tt.body)
		assert.Equal(t, http.StatusOK, status, tt.body)
		assert.Equal(t, "4.00", out["predicted_box_score"], tt.body)
		assert.Equal(t, 1, p.calls, tt.body)
		assert.Equal(t, tt.want, p.historical, tt.body)
	}
}
