package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/churn"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	kindBadRequest = "BadRequest"
)

// PredictRequest carries a partial customer record.
type PredictRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

type PredictResponse struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
	RunID       string  `json:"run_id,omitempty"`
	Status      string  `json:"status"`
}

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Kind   string `json:"kind"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	RunID             string `json:"run_id,omitempty"`
	SchemaFingerprint string `json:"schema_fingerprint,omitempty"`
	LoadedAt          string `json:"loaded_at,omitempty"`
}

// badRequest marks malformed request bodies, which never reach the engine.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func (s *Server) predict(c echo.Context) error {
	var req PredictRequest
	dec := json.NewDecoder(io.LimitReader(c.Request().Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return badRequest{errors.Wrap(err, "decode request body")}
	}
	if err := s.validate.StructCtx(c.Request().Context(), req); err != nil {
		return badRequest{errors.Wrap(err, "invalid request")}
	}

	p, err := s.engine.Predict(c.Request().Context(), churn.Record(req.Data))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PredictResponse{
		Prediction:  p.Label,
		Probability: p.Probability,
		RunID:       p.RunID,
		Status:      statusSuccess,
	})
}

func (s *Server) health(c echo.Context) error {
	snap := s.engine.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:            "ok",
		RunID:             snap.RunID,
		SchemaFingerprint: snap.SchemaFingerprint,
		LoadedAt:          snap.LoadedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) profile(c echo.Context) error {
	snap := s.engine.Snapshot()
	if snap == nil {
		return errors.Wrap(errs.ErrModelUnavailable, "no artifacts loaded")
	}
	return c.JSON(http.StatusOK, snap.Profile.Map())
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br), errs.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrModelUnavailable),
		errors.Is(err, errs.ErrDataUnavailable),
		errors.Is(err, errs.ErrArtifactVersionMismatch):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		_ = c.JSON(he.Code, ErrorResponse{Status: statusError, Error: msg, Kind: http.StatusText(he.Code)})
		return
	}

	code := statusFor(err)
	kind := errs.Kind(err)
	var br badRequest
	if errors.As(err, &br) {
		kind = kindBadRequest
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request().URL.Path, "kind", kind, "error", err)
	}
	_ = c.JSON(code, ErrorResponse{Status: statusError, Error: err.Error(), Kind: kind})
}
