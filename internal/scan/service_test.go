package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/ml"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockModel struct {
	AnalyzeFunc func(ctx context.Context, img ml.Image) (*models.AnalysisResult, error)
}

func (m *mockModel) Load(ctx context.Context) error { return nil }

func (m *mockModel) Analyze(ctx context.Context, img ml.Image) (*models.AnalysisResult, error) {
	return m.AnalyzeFunc(ctx, img)
}

type mockSaver struct {
	SaveScanFunc func(ctx context.Context, scan *models.Scan) (string, error)
}

func (m *mockSaver) SaveScan(ctx context.Context, scan *models.Scan) (string, error) {
	return m.SaveScanFunc(ctx, scan)
}

type seqIDs struct {
	ids []string
	i   int
}

func (s *seqIDs) New() string {
	id := s.ids[s.i]
	s.i++
	return id
}

var (
	testNow  = time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	diseased = &models.AnalysisResult{
		Status:     models.StatusDiseased,
		Disease:    "Leaf Spot Disease",
		Confidence: 0.85,
		Severity:   models.SeverityModerate,
	}
)

func returning(res *models.AnalysisResult) *mockModel {
	return &mockModel{
		AnalyzeFunc: func(ctx context.Context, img ml.Image) (*models.AnalysisResult, error) {
			return res, nil
		},
	}
}

func TestAnalyze(t *testing.T) {
	svc := NewService(returning(diseased), Config{},
		WithClock(clock.Fixed(testNow)),
		WithIDGenerator(&seqIDs{ids: []string{"req123abc", "scan45678"}}),
	)

	env, err := svc.Analyze(context.Background(), ml.Image{Data: []byte("img"), Filename: "leaf.jpg"}, "")
	require.NoError(t, err)

	assert.Equal(t, "req123abc", env.ID)
	assert.Equal(t, "scan45678", env.ScanID)
	assert.Equal(t, "leaf.jpg", env.Filename)
	assert.Equal(t, testNow, env.Timestamp)
	assert.Same(t, diseased, env.Result)
}

func TestAnalyzeNoImage(t *testing.T) {
	svc := NewService(&mockModel{}, Config{})

	_, err := svc.Analyze(context.Background(), ml.Image{Filename: "empty.jpg"}, "")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestAnalyzeModelFailure(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&mockModel{
		AnalyzeFunc: func(ctx context.Context, img ml.Image) (*models.AnalysisResult, error) {
			return nil, boom
		},
	}, Config{})

	_, err := svc.Analyze(context.Background(), ml.Image{Data: []byte("img")}, "")
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeDoesNotPersistByDefault(t *testing.T) {
	saver := &mockSaver{
		SaveScanFunc: func(ctx context.Context, scan *models.Scan) (string, error) {
			t.Fatal("scan should not be saved")
			return "", nil
		},
	}
	svc := NewService(returning(diseased), Config{}, WithSaver(saver))

	_, err := svc.Analyze(context.Background(), ml.Image{Data: []byte("img")}, "user-1")
	require.NoError(t, err)
}

func TestAnalyzePersists(t *testing.T) {
	var saved *models.Scan
	saver := &mockSaver{
		SaveScanFunc: func(ctx context.Context, scan *models.Scan) (string, error) {
			saved = scan
			return "stored-id", nil
		},
	}
	svc := NewService(returning(diseased), Config{Persist: true},
		WithSaver(saver),
		WithClock(clock.Fixed(testNow)),
	)

	env, err := svc.Analyze(context.Background(), ml.Image{Data: []byte("img"), Filename: "a.png", ContentType: "image/png"}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "stored-id", env.ScanID)
	require.NotNil(t, saved)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, "image/png", saved.ContentType)
	assert.Equal(t, 85, saved.ConfidenceScore)
	assert.Equal(t, "Leaf Spot Disease", saved.DiseaseDetected)
	assert.Equal(t, testNow, saved.CreatedAt)
}

func TestAnalyzeSaveFailure(t *testing.T) {
	saver := &mockSaver{
		SaveScanFunc: func(ctx context.Context, scan *models.Scan) (string, error) {
			return "", errors.New("disk full")
		},
	}
	svc := NewService(returning(diseased), Config{Persist: true}, WithSaver(saver))

	_, err := svc.Analyze(context.Background(), ml.Image{Data: []byte("img")}, "user-1")
	assert.Error(t, err)
}

func TestAnalyzeAnonymousIsNotPersisted(t *testing.T) {
	saver := &mockSaver{
		SaveScanFunc: func(ctx context.Context, scan *models.Scan) (string, error) {
			t.Fatal("anonymous scan should not be saved")
			return "", nil
		},
	}
	svc := NewService(returning(diseased), Config{Persist: true},
		WithSaver(saver),
		WithIDGenerator(&seqIDs{ids: []string{"req123abc", "scan45678"}}),
	)

	env, err := svc.Analyze(context.Background(), ml.Image{Data: []byte("img")}, "")
	require.NoError(t, err)
	assert.Equal(t, "scan45678", env.ScanID)
}

func TestNewServicePersistRequiresSaver(t *testing.T) {
	assert.Panics(t, func() {
		NewService(returning(diseased), Config{Persist: true})
	})
}
