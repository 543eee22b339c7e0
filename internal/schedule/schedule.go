// Package schedule builds the four week feeding plan shown next to a scan
// result. Build is a pure function of its inputs.
package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/franckalain/lymegrove/internal/models"
)

const (
	Weeks       = 4
	DaysPerWeek = 7

	// DateLayout is how plan dates are written and accepted.
	DateLayout = time.DateOnly
)

// PotSize is the container size the dosages scale with.
type PotSize string

const (
	PotSmall      PotSize = "small"
	PotMedium     PotSize = "medium"
	PotLarge      PotSize = "large"
	PotExtraLarge PotSize = "extra-large"
)

// GrowthStage is the plant's current stage. It is shown with the schedule
// but does not change the rules.
type GrowthStage string

const (
	StageSeedling GrowthStage = "seedling"
	StageYoung    GrowthStage = "young"
	StageMature   GrowthStage = "mature"
	StageDormant  GrowthStage = "dormant"
)

// ActionType is what to do on a given day.
type ActionType string

const (
	ActionWater      ActionType = "water"
	ActionFertilizer ActionType = "fertilizer"
	ActionFlush      ActionType = "flush"
)

// Params are the user's choices.
type Params struct {
	PotSize     PotSize       `json:"potSize"`
	Season      models.Season `json:"season"`
	GrowthStage GrowthStage   `json:"growthStage"`
}

// Validate rejects values outside the known sets.
func (p Params) Validate() error {
	switch p.PotSize {
	case PotSmall, PotMedium, PotLarge, PotExtraLarge:
	default:
		return fmt.Errorf("unknown pot size %q", p.PotSize)
	}
	if _, err := models.ParseSeason(string(p.Season)); err != nil {
		return err
	}
	switch p.GrowthStage {
	case StageSeedling, StageYoung, StageMature, StageDormant:
	default:
		return fmt.Errorf("unknown growth stage %q", p.GrowthStage)
	}
	return nil
}

// Request asks for a plan over HTTP. Species may be given inline or by its
// scientific name in the catalog. StartDate is YYYY-MM-DD and defaults to today.
type Request struct {
	Species        *models.SpeciesRecord `json:"species,omitempty"`
	ScientificName string                `json:"scientificName,omitempty"`
	HealthStatus   string                `json:"healthStatus"`
	PotSize        PotSize               `json:"potSize"`
	Season         models.Season         `json:"season"`
	GrowthStage    GrowthStage           `json:"growthStage"`
	StartDate      string                `json:"startDate,omitempty"`
}

// Params returns the schedule choices of the request.
func (r Request) Params() Params {
	return Params{PotSize: r.PotSize, Season: r.Season, GrowthStage: r.GrowthStage}
}

// Entry is one day of the plan.
type Entry struct {
	Date        time.Time  `json:"date"`
	Type        ActionType `json:"type"`
	Description string     `json:"description"`
	Dosage      string     `json:"dosage"`
}

// Schedule is the generated plan plus the inputs that produced it.
type Schedule struct {
	Species      string  `json:"species"`
	HealthStatus string  `json:"healthStatus"`
	Params       Params  `json:"params"`
	Entries      []Entry `json:"entries"`
}

// Build generates the 28 day plan starting at start. Flush days win over
// fertilizer days, which win over plain watering.
func Build(species models.SpeciesRecord, healthStatus string, p Params, start time.Time) *Schedule {
	entries := make([]Entry, 0, Weeks*DaysPerWeek)

	for week := 0; week < Weeks; week++ {
		for day := 0; day < DaysPerWeek; day++ {
			var entry *Entry
			date := start.AddDate(0, 0, week*DaysPerWeek+day)

			if day%2 == 0 || day == 1 || day == 3 || day == 5 {
				entry = &Entry{
					Date:        date,
					Type:        ActionWater,
					Description: "Regular watering - check soil moisture first",
					Dosage:      waterDosage(p.PotSize),
				}
			}

			if day == 0 && p.Season != models.Winter {
				entry = &Entry{
					Date:        date,
					Type:        ActionFertilizer,
					Description: fertilizerFor(species.ScientificName),
					Dosage:      fertilizerDosage(p.PotSize),
				}
			}

			if week%2 == 0 && day == DaysPerWeek-1 {
				entry = &Entry{
					Date:        date,
					Type:        ActionFlush,
					Description: "Flush with plain water to prevent salt buildup",
					Dosage:      "Until water runs clear from drainage holes",
				}
			}

			if entry != nil {
				entries = append(entries, *entry)
			}
		}
	}

	return &Schedule{
		Species:      species.PrimaryName(),
		HealthStatus: healthStatus,
		Params:       p,
		Entries:      entries,
	}
}

func waterDosage(size PotSize) string {
	switch size {
	case PotSmall:
		return "1/4 cup"
	case PotMedium:
		return "1/2 cup"
	case PotLarge:
		return "3/4 cup"
	}
	return "1 cup"
}

func fertilizerDosage(size PotSize) string {
	switch size {
	case PotSmall:
		return "1/4 teaspoon per gallon of water"
	case PotMedium:
		return "1/2 teaspoon per gallon of water"
	case PotLarge:
		return "3/4 teaspoon per gallon of water"
	case PotExtraLarge:
		return "1 teaspoon per gallon of water"
	}
	return "Follow package instructions"
}

func fertilizerFor(scientificName string) string {
	switch {
	case strings.Contains(scientificName, "Monstera"):
		return "Balanced liquid fertilizer (20-20-20) diluted to half strength"
	case strings.Contains(scientificName, "Ficus"):
		return "High-nitrogen fertilizer (3-1-2 ratio) for foliage growth"
	case strings.Contains(scientificName, "Sansevieria"):
		return "Low-nitrogen succulent fertilizer (2-10-10)"
	}
	return "Balanced houseplant fertilizer (10-10-10)"
}

// Count returns how many entries have the given type.
func (s *Schedule) Count(t ActionType) int {
	n := 0
	for _, e := range s.Entries {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Week returns the entries of the zero-based week. Every day carries an entry,
// so weeks are consecutive runs of seven.
func (s *Schedule) Week(week int) []Entry {
	lo, hi := week*DaysPerWeek, (week+1)*DaysPerWeek
	if week < 0 || hi > len(s.Entries) {
		return nil
	}
	return s.Entries[lo:hi]
}

// WriteText writes the plain text export, one line per day.
func (s *Schedule) WriteText(w io.Writer) error {
	for _, e := range s.Entries {
		_, err := fmt.Fprintf(w, "%s: %s - %s (%s)\n",
			e.Date.Format(DateLayout), strings.ToUpper(string(e.Type)), e.Description, e.Dosage)
		if err != nil {
			return err
		}
	}
	return nil
}
