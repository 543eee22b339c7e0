package models

import (
	"math"
	"time"
)

// ScanEnvelope is what the analyze endpoint returns to the caller.
type ScanEnvelope struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Filename  string          `json:"filename"`
	Result    *AnalysisResult `json:"result"`
	ScanID    string          `json:"scanId"`
}

// Scan is the persisted form of an analysis, owned by a user.
type Scan struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Filename        string          `json:"filename"`
	ContentType     string          `json:"content_type"`
	Result          *AnalysisResult `json:"analysis_result"`
	ConfidenceScore int             `json:"confidence_score"` // percent
	DiseaseDetected string          `json:"disease_detected,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewScan builds the persisted record for a result.
func NewScan(userID, filename, contentType string, result *AnalysisResult, createdAt time.Time) *Scan {
	s := &Scan{
		UserID:          userID,
		Filename:        filename,
		ContentType:     contentType,
		Result:          result,
		ConfidenceScore: int(math.Round(result.Confidence * 100)),
		CreatedAt:       createdAt,
	}
	if result.Status == StatusDiseased {
		s.DiseaseDetected = result.Disease
	}
	return s
}

// FeedbackType is the user's judgement of a diagnosis.
type FeedbackType string

const (
	FeedbackAccurate         FeedbackType = "accurate"
	FeedbackInaccurate       FeedbackType = "inaccurate"
	FeedbackPartiallyCorrect FeedbackType = "partially_correct"
)

// Valid reports whether t is one of the known feedback types.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackAccurate, FeedbackInaccurate, FeedbackPartiallyCorrect:
		return true
	}
	return false
}

// FeedbackRecord is a user's accuracy judgement of a scan.
type FeedbackRecord struct {
	ID               string       `json:"id"`
	ScanID           string       `json:"scan_id"`
	IsAccurate       bool         `json:"is_accurate"`
	FeedbackType     FeedbackType `json:"feedback_type"`
	UserComments     string       `json:"user_comments,omitempty"`
	CorrectDiagnosis string       `json:"correct_diagnosis,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
