package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/intake"
	"github.com/franckalain/lymegrove/internal/ml"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/franckalain/lymegrove/internal/scan"
	"github.com/franckalain/lymegrove/internal/schedule"
	"go.uber.org/zap"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	img, err := readImage(r)
	if err != nil {
		s.handleErr(w, r, err, "Analysis failed")
		return
	}

	env, err := s.scans.Analyze(r.Context(), img, UserIDFromContext(r.Context()))
	if err != nil {
		s.handleErr(w, r, err, "Analysis failed")
		return
	}

	if err := writeJSON(w, http.StatusOK, env); err != nil {
		s.logger.Warn("failed to write analysis", zap.Error(err))
	}
}

func readImage(r *http.Request) (ml.Image, error) {
	f, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ml.Image{}, &APIError{Status: http.StatusRequestEntityTooLarge, Msg: "Image too large", Err: err}
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return ml.Image{}, scan.ErrNoImage
		}
		return ml.Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ml.Image{}, err
	}

	return ml.Image{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req intake.ContactRequest
	if err := readJSON(r, &req); err != nil {
		s.handleErr(w, r, ClientInputError("Invalid request body", err), "")
		return
	}

	ack, err := s.intake.Contact(r.Context(), req, clientIP(r))
	if err != nil {
		s.handleErr(w, r, err, "Internal server error")
		return
	}
	_ = writeJSON(w, http.StatusOK, ack)
}

func (s *Server) handleGDPR(w http.ResponseWriter, r *http.Request) {
	var req intake.GDPRRequest
	if err := readJSON(r, &req); err != nil {
		s.handleErr(w, r, ClientInputError("Invalid request body", err), "")
		return
	}

	ack, err := s.intake.GDPR(r.Context(), req, clientIP(r))
	if err != nil {
		s.handleErr(w, r, err, "Internal server error")
		return
	}
	_ = writeJSON(w, http.StatusOK, ack)
}

type feedbackResponse struct {
	Success bool                     `json:"success"`
	Data    []*models.FeedbackRecord `json:"data"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var sub feedback.Submission
	if err := readJSON(r, &sub); err != nil {
		s.handleErr(w, r, ClientInputError("Invalid request body", err), "")
		return
	}

	rec, err := s.feedback.Record(r.Context(), sub)
	if err != nil {
		s.handleErr(w, r, err, "Failed to submit feedback")
		return
	}
	_ = writeJSON(w, http.StatusOK, feedbackResponse{Success: true, Data: []*models.FeedbackRecord{rec}})
}

type scanListResponse struct {
	Scans []*models.Scan `json:"scans"`
	Total int            `json:"total"`
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.handleErr(w, r, ClientInputError("Invalid limit", err), "")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	uid := UserIDFromContext(r.Context())
	scans, err := s.store.ListScans(r.Context(), uid, limit)
	if err != nil {
		s.handleErr(w, r, err, "Failed to fetch scans")
		return
	}
	total, err := s.store.CountScans(r.Context(), uid)
	if err != nil {
		s.handleErr(w, r, err, "Failed to fetch scans")
		return
	}
	_ = writeJSON(w, http.StatusOK, scanListResponse{Scans: scans, Total: total})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	sc, err := s.store.GetScan(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleErr(w, r, err, "Failed to fetch scan")
		return
	}
	_ = writeJSON(w, http.StatusOK, sc)
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteScan(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleErr(w, r, ServerError("Failed to delete scan", err), "")
		return
	}
	_ = writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req schedule.Request
	if err := readJSON(r, &req); err != nil {
		s.handleErr(w, r, ClientInputError("Invalid request body", err), "")
		return
	}

	var species models.SpeciesRecord
	switch {
	case req.Species != nil:
		species = *req.Species
	case req.ScientificName != "":
		found, ok := s.catalog.FindSpecies(req.ScientificName)
		if !ok {
			s.handleErr(w, r, NotFoundError("Species not found"), "")
			return
		}
		species = found
	default:
		s.handleErr(w, r, ClientInputError("Species is required", nil), "")
		return
	}

	params := req.Params()
	if err := params.Validate(); err != nil {
		s.handleErr(w, r, ClientInputError(err.Error(), err), "")
		return
	}

	start := s.clock.Now()
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if req.StartDate != "" {
		parsed, err := time.Parse(schedule.DateLayout, req.StartDate)
		if err != nil {
			s.handleErr(w, r, ClientInputError("Invalid start date", err), "")
			return
		}
		start = parsed
	}

	_ = writeJSON(w, http.StatusOK, schedule.Build(species, req.HealthStatus, params, start))
}
