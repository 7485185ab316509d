// Package server exposes the box score predictor over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"github.com/amishk599/boxscore/internal/metrics"
	"github.com/amishk599/boxscore/internal/model"
	"github.com/amishk599/boxscore/internal/scoring"
)

const (
	requestIDHeader = "X-Request-Id"
	missingInputMsg = "Missing future box info"
)

// Server is the score service: prediction, health and metrics routes.
type Server struct {
	app       *fiber.App
	predictor scoring.Predictor
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewServer wires routes and middleware around predictor.
func NewServer(predictor scoring.Predictor, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "boxscore",
			DisableStartupMessage: true,
		}),
		predictor: predictor,
		metrics:   m,
		logger:    logger,
	}

	s.app.Use(s.requestMiddleware)

	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	s.app.Post("/predict_box_score", s.handlePredict)

	return s
}

// requestMiddleware assigns a request id, then logs and counts each request.
func (s *Server) requestMiddleware(c *fiber.Ctx) error {
	start := time.Now()

	reqID := c.Get(requestIDHeader)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	c.Locals("request_id", reqID)
	c.Set(requestIDHeader, reqID)

	err := c.Next()

	latency := time.Since(start)
	status := c.Response().StatusCode()
	// Route path keeps label cardinality bounded for unknown URLs.
	path := c.Route().Path

	s.metrics.RecordRequest(c.Method(), path, status, latency)
	s.logger.Info("request",
		"request_id", reqID,
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	reqID, _ := c.Locals("request_id").(string)
	logger := s.logger.With("request_id", reqID)

	var req predictRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		logger.Warn("unparsable request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{Error: missingInputMsg})
	}
	if req.FutureBoxInfo == nil || *req.FutureBoxInfo == "" {
		logger.Warn("request without future box info")
		return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{Error: missingInputMsg})
	}

	historical := historicalText(req.HistoricalData)

	score, err := s.predictor.Predict(c.UserContext(), historical, *req.FutureBoxInfo)
	if err != nil {
		logger.Error("prediction failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{Error: err.Error()})
	}

	logger.Info("prediction served", "predicted_box_score", score)
	return c.JSON(model.PredictionResponse{PredictedBoxScore: score})
}

// predictRequest mirrors model.PredictionRequest but keeps historical_data raw,
// so any JSON value is accepted there.
type predictRequest struct {
	HistoricalData json.RawMessage `json:"historical_data"`
	FutureBoxInfo  *string         `json:"future_box_info"`
}

// historicalText returns a JSON string's value, the default for absent or null,
// and the compact JSON text for any other value.
func historicalText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return scoring.DefaultHistoricalData
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("score service listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
