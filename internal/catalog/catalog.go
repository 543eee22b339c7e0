// Package catalog holds the hand-authored lookup tables that stand in for a
// real diagnosis model: the disease records, the healthy record and the
// species records.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/franckalain/lymegrove/internal/models"
	"gopkg.in/yaml.v3"
)

// Catalog is read-only after construction and safe to share between requests.
type Catalog struct {
	Diseases []models.DiseaseRecord `yaml:"diseases"`
	Healthy  models.DiseaseRecord   `yaml:"healthy"`
	Species  []models.SpeciesRecord `yaml:"species"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Diseases: defaultDiseases(),
		Healthy:  defaultHealthy(),
		Species:  defaultSpecies(),
	}
}

// LoadFile reads a catalog from a YAML file. Sections missing from the file
// fall back to the built-in tables.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	def := Default()
	if len(c.Diseases) == 0 {
		c.Diseases = def.Diseases
	}
	if c.Healthy.Name == "" {
		c.Healthy = def.Healthy
	}
	if len(c.Species) == 0 {
		c.Species = def.Species
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks the invariants every record must hold.
func (c *Catalog) Validate() error {
	if len(c.Diseases) == 0 {
		return errors.New("catalog has no disease records")
	}
	if len(c.Species) == 0 {
		return errors.New("catalog has no species records")
	}
	if c.Healthy.Severity != models.SeverityHealthy {
		return fmt.Errorf("healthy record has severity %q", c.Healthy.Severity)
	}
	if err := validateRecord(c.Healthy); err != nil {
		return err
	}
	for _, d := range c.Diseases {
		if err := validateRecord(d); err != nil {
			return err
		}
		if d.Severity == models.SeverityHealthy {
			return fmt.Errorf("disease %q cannot have severity healthy", d.Name)
		}
	}
	for _, s := range c.Species {
		if s.ScientificName == "" {
			return errors.New("species record without scientific name")
		}
	}
	return nil
}

func validateRecord(d models.DiseaseRecord) error {
	if d.Name == "" {
		return errors.New("disease record without name")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("record %q: confidence %v outside [0,1]", d.Name, d.Confidence)
	}
	if !d.Severity.Valid() {
		return fmt.Errorf("record %q: unknown severity %q", d.Name, d.Severity)
	}
	return nil
}

// FindSpecies looks a species up by its scientific name.
func (c *Catalog) FindSpecies(scientificName string) (models.SpeciesRecord, bool) {
	for _, s := range c.Species {
		if s.ScientificName == scientificName {
			return s, true
		}
	}
	return models.SpeciesRecord{}, false
}
