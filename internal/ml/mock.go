package ml

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/franckalain/lymegrove/internal/catalog"
	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/models"
)

const (
	healthyDescription = "Your plant appears to be in excellent health with vibrant foliage and strong structure."
	checkupInterval    = 7 * 24 * time.Hour
)

var careRecommendations = []string{
	"Monitor plant daily for changes",
	"Maintain consistent watering schedule",
	"Ensure adequate light exposure",
	"Check soil moisture regularly",
}

// Source is a uniform random draw in [0,1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewRandSource returns a Source backed by the process-wide generator.
func NewRandSource() Source {
	return globalSource{}
}

// MockOption customizes a MockModel.
type MockOption func(*MockModel)

// WithSource sets the random source used for every draw.
func WithSource(src Source) MockOption {
	return func(m *MockModel) {
		m.source = src
	}
}

// WithClock sets the clock used for the next checkup date.
func WithClock(c clock.Clock) MockOption {
	return func(m *MockModel) {
		m.clock = c
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *catalog.Catalog) MockOption {
	return func(m *MockModel) {
		m.catalog = c
	}
}

// MockModel implements the Model interface by picking a canned diagnosis
// from the catalog.
type MockModel struct {
	config  MockConfig
	catalog *catalog.Catalog
	source  Source
	clock   clock.Clock
}

// MockModelFactory implements ModelFactory for mock models
type MockModelFactory struct {
	config MockConfig
	opts   []MockOption
}

// NewMockModelFactory creates a new mock model factory
func NewMockModelFactory(config MockConfig, opts ...MockOption) *MockModelFactory {
	return &MockModelFactory{config: config, opts: opts}
}

// CreateModel creates a new mock model instance
func (f *MockModelFactory) CreateModel() (Model, error) {
	m := &MockModel{
		config: f.config,
		source: NewRandSource(),
		clock:  clock.Real{},
	}
	for _, opt := range f.opts {
		opt(m)
	}
	return m, nil
}

// Load validates the catalog, falling back to the built-in one.
func (m *MockModel) Load(ctx context.Context) error {
	if m.catalog == nil {
		m.catalog = catalog.Default()
	}
	if err := m.catalog.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

// Analyze picks a species and an outcome, then waits out the configured delay.
func (m *MockModel) Analyze(ctx context.Context, img Image) (*models.AnalysisResult, error) {
	if m.catalog == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	species := m.catalog.Species[pick(m.source.Float64(), len(m.catalog.Species))]

	healthy := m.source.Float64() > 1-m.config.HealthyProbability
	record := m.catalog.Healthy
	if !healthy {
		record = m.catalog.Diseases[pick(m.source.Float64(), len(m.catalog.Diseases))]
	}

	result := &models.AnalysisResult{
		Status:              models.StatusHealthy,
		Disease:             record.Name,
		Confidence:          record.Confidence,
		Severity:            record.Severity,
		Symptoms:            record.Symptoms,
		Treatment:           record.Treatment,
		Prevention:          record.Prevention,
		Description:         healthyDescription,
		CareRecommendations: append([]string(nil), careRecommendations...),
		NextCheckup:         m.clock.Now().Add(checkupInterval),
		Species:             species,
	}
	if !healthy {
		result.Status = models.StatusDiseased
		result.Description = fmt.Sprintf("Detected %s with %s severity. Immediate attention recommended.", record.Name, record.Severity)
	}

	if err := wait(ctx, m.config.Delay); err != nil {
		return nil, err
	}
	return result, nil
}

// pick maps a draw in [0,1) onto an index in [0,n).
func pick(draw float64, n int) int {
	i := int(draw * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
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
