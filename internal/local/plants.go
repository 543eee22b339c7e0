package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/models"
)

// PlantsKey is the storage key of the saved plant list.
const PlantsKey = "myPlants"

var (
	ErrPlantNotFound = errors.New("plant not found")
	ErrDuplicateID   = errors.New("duplicate plant id")
)

// PlantRepository manages the saved plant collection.
type PlantRepository struct {
	storage Storage
	clock   clock.Clock
	ids     clock.IDGenerator
}

// NewPlantRepository creates a repository over storage.
func NewPlantRepository(storage Storage) *PlantRepository {
	return &PlantRepository{
		storage: storage,
		clock:   clock.Real{},
		ids:     clock.UUIDGenerator{},
	}
}

// LoadAll returns every saved plant, in insertion order.
func (r *PlantRepository) LoadAll() ([]models.SavedPlant, error) {
	data, ok, err := r.storage.Load(PlantsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.SavedPlant{}, nil
	}

	var plants []models.SavedPlant
	if err := json.Unmarshal(data, &plants); err != nil {
		return nil, fmt.Errorf("decoding saved plants: %w", err)
	}
	return plants, nil
}

// SaveAll replaces the whole collection. Ids must be unique.
func (r *PlantRepository) SaveAll(plants []models.SavedPlant) error {
	seen := make(map[string]struct{}, len(plants))
	for _, p := range plants {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if plants == nil {
		plants = []models.SavedPlant{}
	}
	data, err := json.Marshal(plants)
	if err != nil {
		return fmt.Errorf("encoding saved plants: %w", err)
	}
	return r.storage.Save(PlantsKey, data)
}

// Add appends a plant, assigning an id and dates when they are unset.
func (r *PlantRepository) Add(p models.SavedPlant) (models.SavedPlant, error) {
	plants, err := r.LoadAll()
	if err != nil {
		return models.SavedPlant{}, err
	}

	if p.ID == "" {
		p.ID = r.ids.New()
	}
	now := r.clock.Now()
	if p.DateAdded.IsZero() {
		p.DateAdded = now
	}
	if p.LastAnalysis.IsZero() {
		p.LastAnalysis = now
	}

	if err := r.SaveAll(append(plants, p)); err != nil {
		return models.SavedPlant{}, err
	}
	return p, nil
}

// Get returns the plant with id.
func (r *PlantRepository) Get(id string) (models.SavedPlant, error) {
	plants, err := r.LoadAll()
	if err != nil {
		return models.SavedPlant{}, err
	}
	for _, p := range plants {
		if p.ID == id {
			return p, nil
		}
	}
	return models.SavedPlant{}, ErrPlantNotFound
}

// Update replaces the plant with the same id.
func (r *PlantRepository) Update(p models.SavedPlant) error {
	plants, err := r.LoadAll()
	if err != nil {
		return err
	}

	for i := range plants {
		if plants[i].ID == p.ID {
			plants[i] = p
			return r.SaveAll(plants)
		}
	}
	return ErrPlantNotFound
}

// Delete removes the plant with id.
func (r *PlantRepository) Delete(id string) error {
	plants, err := r.LoadAll()
	if err != nil {
		return err
	}

	kept := plants[:0]
	for _, p := range plants {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plants) {
		return ErrPlantNotFound
	}
	return r.SaveAll(kept)
}

// Search matches term case-insensitively against nickname, common names and
// scientific name. An empty term matches everything.
func (r *PlantRepository) Search(term string) ([]models.SavedPlant, error) {
	plants, err := r.LoadAll()
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(term)
	var out []models.SavedPlant
	for _, p := range plants {
		if matches(p, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matches(p models.SavedPlant, term string) bool {
	if strings.Contains(strings.ToLower(p.Nickname), term) {
		return true
	}
	for _, n := range p.Species.CommonNames {
		if strings.Contains(strings.ToLower(n), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Species.ScientificName), term)
}
