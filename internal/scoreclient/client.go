// Package scoreclient calls a running score service over HTTP.
package scoreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/boxscore/internal/model"
	"github.com/amishk599/boxscore/internal/scoring"
)

// ErrMalformedResponse is returned when a 200 response carries no valid score.
var ErrMalformedResponse = errors.New("malformed score response")

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client posts prediction requests to the score service. It never retries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/predict_box_score",
		httpClient: httpClient,
		logger:     logger,
	}
}

// Predict sends both strings and returns the two-decimal score.
// An empty historicalData is omitted so the service applies its default.
func (c *Client) Predict(ctx context.Context, historicalData, futureBoxInfo string) (string, error) {
	payload := model.PredictionRequest{FutureBoxInfo: &futureBoxInfo}
	if historicalData != "" {
		payload.HistoricalData = &historicalData
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("posting prediction request", "url", c.endpoint, "bytes", len(body))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to score service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read score service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		httpErr := &model.HTTPError{StatusCode: resp.StatusCode}
		var errBody model.ErrorResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			httpErr.Message = errBody.Error
		} else {
			httpErr.Err = fmt.Errorf("unexpected body %q", truncate(string(data), 200))
		}
		return "", fmt.Errorf("score service: %w", httpErr)
	}

	var out model.PredictionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if out.PredictedBoxScore == "" {
		return "", fmt.Errorf("%w: no predicted_box_score in %q", ErrMalformedResponse, truncate(string(data), 200))
	}
	score, err := scoring.NormalizeScore(out.PredictedBoxScore)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return score, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
