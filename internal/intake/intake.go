// Package intake validates and acknowledges contact and GDPR requests. Email
// dispatch and ticketing are simulated: requests are logged, not delivered.
package intake

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/franckalain/lymegrove/internal/clock"
	"go.uber.org/zap"
)

// DefaultSupportEmail is the address quoted back in acknowledgements.
const DefaultSupportEmail = "info@lymegrove.com"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail applies the loose local@domain.tld shape check.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidationError names the missing or invalid field class.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// GDPR request types.
const (
	GDPRExport = "export"
	GDPRDelete = "delete"
)

// GDPRRequest is a data export or deletion request.
type GDPRRequest struct {
	Type   string `json:"type"`
	Email  string `json:"email"`
	Reason string `json:"reason,omitempty"`
}

// Ack acknowledges an accepted request.
type Ack struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// ValidateContact checks every field is present and the email is well formed.
func ValidateContact(r ContactRequest) error {
	if blank(r.Name) || blank(r.Email) || blank(r.Subject) || blank(r.Message) {
		return &ValidationError{Msg: "All fields are required"}
	}
	if !ValidEmail(r.Email) {
		return &ValidationError{Msg: "Invalid email format"}
	}
	return nil
}

// ValidateGDPR checks type and email, and a reason for deletions.
func ValidateGDPR(r GDPRRequest) error {
	if blank(r.Type) || blank(r.Email) {
		return &ValidationError{Msg: "Type and email are required"}
	}
	if r.Type != GDPRExport && r.Type != GDPRDelete {
		return &ValidationError{Msg: "Invalid request type"}
	}
	if r.Type == GDPRDelete && blank(r.Reason) {
		return &ValidationError{Msg: "Reason is required for deletion requests"}
	}
	if !ValidEmail(r.Email) {
		return &ValidationError{Msg: "Invalid email format"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Config controls acknowledgements.
type Config struct {
	SupportEmail string
	// Delay simulates dispatching the request.
	Delay time.Duration
}

// Service handles intake requests.
type Service struct {
	cfg    Config
	clock  clock.Clock
	ids    clock.IDGenerator
	logger *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock sets the clock used for request ids.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator sets the generator for the random part of request ids.
func WithIDGenerator(g clock.IDGenerator) Option {
	return func(s *Service) {
		s.ids = g
	}
}

// NewService creates an intake service.
func NewService(cfg Config, logger *zap.Logger, opts ...Option) *Service {
	if cfg.SupportEmail == "" {
		cfg.SupportEmail = DefaultSupportEmail
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		clock:  clock.Real{},
		ids:    clock.ShortIDGenerator{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Contact validates and acknowledges a contact form submission.
func (s *Service) Contact(ctx context.Context, r ContactRequest, ip string) (*Ack, error) {
	if err := ValidateContact(r); err != nil {
		return nil, err
	}

	s.logger.Info("contact form submission",
		zap.String("name", r.Name),
		zap.String("email", r.Email),
		zap.String("subject", r.Subject),
		zap.String("message", r.Message),
		zap.Time("timestamp", s.clock.Now()),
		zap.String("to", s.cfg.SupportEmail),
		zap.String("ip", ip),
	)

	if err := wait(ctx, s.cfg.Delay); err != nil {
		return nil, err
	}

	return &Ack{
		Success: true,
		Message: fmt.Sprintf("Message sent successfully. We will contact you at %s within 24 hours.", s.cfg.SupportEmail),
	}, nil
}

// GDPR validates and acknowledges a data rights request.
func (s *Service) GDPR(ctx context.Context, r GDPRRequest, ip string) (*Ack, error) {
	if err := ValidateGDPR(r); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	reason := r.Reason
	if reason == "" {
		reason = "N/A"
	}
	requestID := fmt.Sprintf("GDPR-%d-%s", now.UnixMilli(), s.ids.New())

	s.logger.Info("gdpr request",
		zap.String("request_id", requestID),
		zap.String("type", r.Type),
		zap.String("email", r.Email),
		zap.String("reason", reason),
		zap.Time("timestamp", now),
		zap.String("ip", ip),
	)

	if err := wait(ctx, s.cfg.Delay); err != nil {
		return nil, err
	}

	msg := "Your data export request has been received. We will send you a secure download link within 30 days."
	if r.Type == GDPRDelete {
		msg = "Your data deletion request has been received. We will contact you for verification and complete the process within 30 days."
	}

	return &Ack{
		Success:   true,
		Message:   fmt.Sprintf("%s Questions can be sent to %s.", msg, s.cfg.SupportEmail),
		RequestID: requestID,
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
