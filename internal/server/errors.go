package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/franckalain/lymegrove/internal/database"
	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/intake"
	"github.com/franckalain/lymegrove/internal/scan"
	"go.uber.org/zap"
)

// APIError is an error with the status and client-facing message it maps to.
type APIError struct {
	Status int
	Msg    string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *APIError) Unwrap() error { return e.Err }

func ClientInputError(msg string, err error) *APIError {
	return &APIError{Status: http.StatusBadRequest, Msg: msg, Err: err}
}

func AuthError(err error) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Msg: "Unauthorized", Err: err}
}

func NotFoundError(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Msg: msg}
}

func ServerError(msg string, err error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, resp any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(resp)
}

func readJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// classify maps domain errors onto API errors. fallback is the 500 message
// used when err is not a known client error.
func classify(err error, fallback string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var intakeErr *intake.ValidationError
	if errors.As(err, &intakeErr) {
		return ClientInputError(intakeErr.Msg, err)
	}
	var feedbackErr *feedback.ValidationError
	if errors.As(err, &feedbackErr) {
		return ClientInputError(feedbackErr.Msg, err)
	}

	switch {
	case errors.Is(err, scan.ErrNoImage):
		return ClientInputError("No image provided", err)
	case errors.Is(err, database.ErrNotFound):
		return NotFoundError("Scan not found")
	}
	return ServerError(fallback, err)
}

func (s *Server) handleErr(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	apiErr := classify(err, fallback)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("status", apiErr.Status),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	if err := writeJSON(w, apiErr.Status, errorResponse{Error: apiErr.Msg}); err != nil {
		s.logger.Warn("failed to write error response", zap.Error(err))
	}
}
