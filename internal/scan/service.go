// Package scan turns an uploaded image into an analysis envelope, optionally
// persisting the scan for the requesting user.
package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/ml"
	"github.com/franckalain/lymegrove/internal/models"
	"go.uber.org/zap"
)

// ErrNoImage is returned when the request carries no image payload.
var ErrNoImage = errors.New("no image provided")

// Saver persists a scan and returns its store identifier.
type Saver interface {
	SaveScan(ctx context.Context, scan *models.Scan) (string, error)
}

// Config controls the service.
type Config struct {
	// Persist enables writing scans of signed-in users to the Saver.
	// Anonymous scans are never stored.
	Persist bool
}

// Service runs the model and assembles the response envelope.
type Service struct {
	model  ml.Model
	saver  Saver
	clock  clock.Clock
	ids    clock.IDGenerator
	cfg    Config
	logger *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithSaver sets the store used when persistence is enabled.
func WithSaver(s Saver) Option {
	return func(svc *Service) {
		svc.saver = s
	}
}

// WithClock sets the clock used for envelope timestamps.
func WithClock(c clock.Clock) Option {
	return func(svc *Service) {
		svc.clock = c
	}
}

// WithIDGenerator sets the generator for request and scan ids.
func WithIDGenerator(g clock.IDGenerator) Option {
	return func(svc *Service) {
		svc.ids = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) {
		svc.logger = l
	}
}

// NewService creates a scan service around a loaded model.
func NewService(model ml.Model, cfg Config, opts ...Option) *Service {
	svc := &Service{
		model:  model,
		cfg:    cfg,
		clock:  clock.Real{},
		ids:    clock.ShortIDGenerator{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.cfg.Persist && svc.saver == nil {
		panic("scan persistence enabled without a saver")
	}
	return svc
}

// Analyze runs the model on img. userID may be empty for anonymous scans.
func (s *Service) Analyze(ctx context.Context, img ml.Image, userID string) (*models.ScanEnvelope, error) {
	if len(img.Data) == 0 {
		return nil, ErrNoImage
	}

	result, err := s.model.Analyze(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("analyze image: %w", err)
	}

	now := s.clock.Now()
	env := &models.ScanEnvelope{
		ID:        s.ids.New(),
		Timestamp: now,
		Filename:  img.Filename,
		Result:    result,
		ScanID:    s.ids.New(),
	}

	persist := s.cfg.Persist && userID != ""
	if persist {
		id, err := s.saver.SaveScan(ctx, models.NewScan(userID, img.Filename, img.ContentType, result, now))
		if err != nil {
			return nil, fmt.Errorf("save scan: %w", err)
		}
		env.ScanID = id
	}

	s.logger.Info("scan analyzed",
		zap.String("scan_id", env.ScanID),
		zap.String("filename", img.Filename),
		zap.String("status", string(result.Status)),
		zap.String("disease", result.Disease),
		zap.String("species", result.Species.ScientificName),
		zap.Bool("persisted", persist),
	)
	return env, nil
}
