package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/franckalain/lymegrove/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Len(t, c.Diseases, 2)
	assert.Len(t, c.Species, 3)
	assert.Equal(t, "Healthy Plant", c.Healthy.Name)

	for _, s := range c.Species {
		for _, season := range models.Seasons {
			assert.NotEmpty(t, s.SeasonalCare[season], "%s has no %s care", s.ScientificName, season)
		}
	}
}

func TestDefaultReturnsFreshCopies(t *testing.T) {
	a := Default()
	a.Diseases[0].Name = "changed"

	b := Default()
	assert.Equal(t, "Leaf Spot Disease", b.Diseases[0].Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	err := os.WriteFile(path, []byte(`
diseases:
  - name: Powdery Mildew
    confidence: 0.66
    severity: severe
    symptoms: [White powder on leaves]
    treatment: [Apply sulfur spray]
    prevention: [Keep foliage dry]
species:
  - scientific_name: Pilea peperomioides
    common_names: [Chinese Money Plant]
    difficulty: Beginner
    seasonal_care:
      spring: Water weekly
      winter: Water sparingly
`), 0644)
	require.NoError(t, err)

	c, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, c.Diseases, 1)
	assert.Equal(t, models.SeveritySevere, c.Diseases[0].Severity)
	require.Len(t, c.Species, 1)
	assert.Equal(t, "Water weekly", c.Species[0].SeasonalCare[models.Spring])
	assert.Equal(t, "Healthy Plant", c.Healthy.Name)
}

func TestLoadFileRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "confidence out of range",
			body: "diseases:\n  - name: X\n    confidence: 1.5\n    severity: mild\n",
		},
		{
			name: "unknown severity",
			body: "diseases:\n  - name: X\n    confidence: 0.5\n    severity: catastrophic\n",
		},
		{
			name: "disease marked healthy",
			body: "diseases:\n  - name: X\n    confidence: 0.5\n    severity: healthy\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestFindSpecies(t *testing.T) {
	c := Default()

	s, ok := c.FindSpecies("Ficus lyrata")
	require.True(t, ok)
	assert.Equal(t, "Fiddle Leaf Fig", s.PrimaryName())

	_, ok = c.FindSpecies("Nope")
	assert.False(t, ok)
}
