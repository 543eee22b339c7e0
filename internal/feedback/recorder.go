// Package feedback records users' accuracy judgements of scan results.
package feedback

import (
	"context"
	"fmt"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/models"
	"go.uber.org/zap"
)

// Policy decides how much a submission is checked before it is stored.
type Policy string

const (
	// PolicyPermissive forwards any submission verbatim.
	PolicyPermissive Policy = "permissive"
	// PolicyStrict requires a known feedback type and an existing scan.
	PolicyStrict Policy = "strict"
)

// ParsePolicy validates a policy name. The empty string means permissive.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown feedback policy %q", s)
}

// Store persists feedback records.
type Store interface {
	SaveFeedback(ctx context.Context, rec *models.FeedbackRecord) error
}

// ScanLookup reports whether a scan exists.
type ScanLookup interface {
	ScanExists(ctx context.Context, id string) (bool, error)
}

// Submission is the payload accepted from the client.
type Submission struct {
	ScanID           string `json:"scanId"`
	IsAccurate       bool   `json:"isAccurate"`
	FeedbackType     string `json:"feedbackType"`
	UserComments     string `json:"userComments,omitempty"`
	CorrectDiagnosis string `json:"correctDiagnosis,omitempty"`
}

// ValidationError is returned when a strict policy rejects a submission.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Recorder validates submissions according to its policy and stores them.
type Recorder struct {
	store  Store
	scans  ScanLookup
	policy Policy
	clock  clock.Clock
	ids    clock.IDGenerator
	logger *zap.Logger
}

// NewRecorder creates a recorder. scans may be nil for the permissive policy.
func NewRecorder(store Store, scans ScanLookup, policy Policy, logger *zap.Logger) *Recorder {
	if policy == PolicyStrict && scans == nil {
		panic("strict feedback policy requires a scan lookup")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:  store,
		scans:  scans,
		policy: policy,
		clock:  clock.Real{},
		ids:    clock.UUIDGenerator{},
		logger: logger,
	}
}

// Policy returns the active validation policy.
func (r *Recorder) Policy() Policy {
	return r.policy
}

// Record stores a submission and returns the stored record.
func (r *Recorder) Record(ctx context.Context, s Submission) (*models.FeedbackRecord, error) {
	if r.policy == PolicyStrict {
		if err := r.validate(ctx, s); err != nil {
			return nil, err
		}
	}

	rec := &models.FeedbackRecord{
		ID:               r.ids.New(),
		ScanID:           s.ScanID,
		IsAccurate:       s.IsAccurate,
		FeedbackType:     models.FeedbackType(s.FeedbackType),
		UserComments:     s.UserComments,
		CorrectDiagnosis: s.CorrectDiagnosis,
		CreatedAt:        r.clock.Now(),
	}

	if err := r.store.SaveFeedback(ctx, rec); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}

	r.logger.Info("feedback recorded",
		zap.String("feedback_id", rec.ID),
		zap.String("scan_id", rec.ScanID),
		zap.String("type", string(rec.FeedbackType)),
		zap.Bool("accurate", rec.IsAccurate),
	)
	return rec, nil
}

func (r *Recorder) validate(ctx context.Context, s Submission) error {
	if !models.FeedbackType(s.FeedbackType).Valid() {
		return &ValidationError{Msg: "Invalid feedback type"}
	}
	if s.ScanID == "" {
		return &ValidationError{Msg: "Scan ID is required"}
	}

	ok, err := r.scans.ScanExists(ctx, s.ScanID)
	if err != nil {
		return fmt.Errorf("look up scan: %w", err)
	}
	if !ok {
		return &ValidationError{Msg: "Scan not found"}
	}
	return nil
}
