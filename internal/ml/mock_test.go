package ml

import (
	"context"
	"testing"
	"time"

	"github.com/franckalain/lymegrove/internal/catalog"
	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqSource replays a fixed sequence of draws.
type seqSource struct {
	draws []float64
	i     int
}

func (s *seqSource) Float64() float64 {
	d := s.draws[s.i%len(s.draws)]
	s.i++
	return d
}

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T, cfg MockConfig, draws ...float64) Model {
	t.Helper()

	m, err := NewModel("mock", cfg,
		WithSource(&seqSource{draws: draws}),
		WithClock(clock.Fixed(testNow)),
	)
	require.NoError(t, err)
	require.NoError(t, m.Load(context.Background()))
	return m
}

func noDelay() MockConfig {
	cfg := DefaultMockConfig()
	cfg.Delay = 0
	return cfg
}

func TestAnalyzeHealthy(t *testing.T) {
	// species draw, health draw
	m := newTestModel(t, noDelay(), 0.0, 0.41)

	res, err := m.Analyze(context.Background(), Image{Data: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusHealthy, res.Status)
	assert.Equal(t, models.SeverityHealthy, res.Severity)
	assert.Equal(t, "Healthy Plant", res.Disease)
	assert.Equal(t, 0.92, res.Confidence)
	assert.Equal(t, healthyDescription, res.Description)
	assert.Equal(t, "Monstera deliciosa", res.Species.ScientificName)
	assert.Equal(t, testNow.Add(7*24*time.Hour), res.NextCheckup)
	assert.Len(t, res.CareRecommendations, 4)
}

func TestAnalyzeBoundaryDrawIsDiseased(t *testing.T) {
	// a draw of exactly 0.4 is not > 0.4
	m := newTestModel(t, noDelay(), 0.5, 0.4, 0.99)

	res, err := m.Analyze(context.Background(), Image{Data: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDiseased, res.Status)
	assert.Equal(t, "Nutrient Deficiency (Nitrogen)", res.Disease)
	assert.Equal(t, models.SeverityMild, res.Severity)
	assert.Equal(t, "Ficus lyrata", res.Species.ScientificName)
	assert.Equal(t, "Detected Nutrient Deficiency (Nitrogen) with mild severity. Immediate attention recommended.", res.Description)
}

func TestAnalyzeDiseasedFirstRecord(t *testing.T) {
	m := newTestModel(t, noDelay(), 0.99, 0.1, 0.0)

	res, err := m.Analyze(context.Background(), Image{Data: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, "Leaf Spot Disease", res.Disease)
	assert.Equal(t, models.SeverityModerate, res.Severity)
	assert.Equal(t, "Sansevieria trifasciata", res.Species.ScientificName)
}

func TestAnalyzeProbabilityIsConfigurable(t *testing.T) {
	cfg := noDelay()
	cfg.HealthyProbability = 0
	m := newTestModel(t, cfg, 0.999)

	for range 10 {
		res, err := m.Analyze(context.Background(), Image{Data: []byte("x")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDiseased, res.Status)
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	m, err := NewModel("mock", noDelay())
	require.NoError(t, err)
	require.NoError(t, m.Load(context.Background()))

	for range 200 {
		res, err := m.Analyze(context.Background(), Image{Data: []byte("x")})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
		assert.True(t, res.Severity.Valid())
		assert.Equal(t, res.Status == models.StatusHealthy, res.Severity == models.SeverityHealthy)
	}
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	cfg := DefaultMockConfig()
	cfg.Delay = time.Minute
	m := newTestModel(t, cfg, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Analyze(ctx, Image{Data: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeWaitsForDelay(t *testing.T) {
	cfg := DefaultMockConfig()
	cfg.Delay = 20 * time.Millisecond
	m := newTestModel(t, cfg, 0.5)

	start := time.Now()
	_, err := m.Analyze(context.Background(), Image{Data: []byte("x")})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestAnalyzeRequiresLoad(t *testing.T) {
	m, err := NewModel("mock", noDelay())
	require.NoError(t, err)

	_, err = m.Analyze(context.Background(), Image{Data: []byte("x")})
	assert.Error(t, err)
}

func TestNewModel(t *testing.T) {
	_, err := NewModel("google", DefaultMockConfig())
	assert.Error(t, err)

	bad := DefaultMockConfig()
	bad.HealthyProbability = 1.2
	_, err = NewModel("mock", bad)
	assert.Error(t, err)

	_, err = NewModel("", DefaultMockConfig())
	assert.NoError(t, err)
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	m, err := NewModel("mock", noDelay(), WithCatalog(&catalog.Catalog{}))
	require.NoError(t, err)
	assert.ErrorContains(t, m.Load(context.Background()), "no disease records")
}

func TestPick(t *testing.T) {
	assert.Equal(t, 0, pick(0, 3))
	assert.Equal(t, 1, pick(0.34, 3))
	assert.Equal(t, 2, pick(0.9999, 3))
	assert.Equal(t, 2, pick(1, 3))
}
