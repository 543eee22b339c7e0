package models

import (
	"fmt"
	"time"
)

// Severity is the ordinal health impact of a diagnosis.
type Severity string

const (
	SeverityHealthy  Severity = "healthy"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

var severityRank = map[Severity]int{
	SeverityHealthy:  0,
	SeverityMild:     1,
	SeverityModerate: 2,
	SeveritySevere:   3,
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank orders severities from healthy (0) to severe (3). Unknown values rank -1.
func (s Severity) Rank() int {
	r, ok := severityRank[s]
	if !ok {
		return -1
	}
	return r
}

// HealthStatus is the coarse outcome of a scan.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDiseased HealthStatus = "diseased"
)

// Difficulty is how demanding a species is to keep.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Season keys the seasonal care instructions and the feeding schedule.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// Seasons lists every season in calendar order.
var Seasons = []Season{Spring, Summer, Fall, Winter}

// ParseSeason validates a season name.
func ParseSeason(s string) (Season, error) {
	for _, season := range Seasons {
		if string(season) == s {
			return season, nil
		}
	}
	return "", fmt.Errorf("unknown season %q", s)
}

// DiseaseRecord is one entry of the mock diagnosis catalog.
type DiseaseRecord struct {
	Name       string   `json:"name" yaml:"name"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Symptoms   []string `json:"symptoms" yaml:"symptoms"`
	Treatment  []string `json:"treatment" yaml:"treatment"`
	Prevention []string `json:"prevention" yaml:"prevention"`
}

// SpeciesRecord describes a plant species and how to care for it.
type SpeciesRecord struct {
	ScientificName    string            `json:"scientificName" yaml:"scientific_name"`
	CommonNames       []string          `json:"commonNames" yaml:"common_names"`
	Family            string            `json:"family" yaml:"family"`
	Origin            string            `json:"origin" yaml:"origin"`
	Difficulty        Difficulty        `json:"difficulty" yaml:"difficulty"`
	LightRequirements string            `json:"lightRequirements" yaml:"light_requirements"`
	Humidity          string            `json:"humidity" yaml:"humidity"`
	Temperature       string            `json:"temperature" yaml:"temperature"`
	MatureSize        string            `json:"matureSize" yaml:"mature_size"`
	GrowthRate        string            `json:"growthRate" yaml:"growth_rate"`
	Toxicity          string            `json:"toxicity" yaml:"toxicity"`
	CommonIssues      []string          `json:"commonIssues" yaml:"common_issues"`
	SeasonalCare      map[Season]string `json:"seasonalCare" yaml:"seasonal_care"`
}

// PrimaryName returns the first common name, or the scientific name when none is known.
func (s SpeciesRecord) PrimaryName() string {
	if len(s.CommonNames) > 0 {
		return s.CommonNames[0]
	}
	return s.ScientificName
}

// AnalysisResult is the outcome of a single scan.
type AnalysisResult struct {
	Status              HealthStatus  `json:"status"`
	Disease             string        `json:"disease"`
	Confidence          float64       `json:"confidence"`
	Severity            Severity      `json:"severity"`
	Symptoms            []string      `json:"symptoms"`
	Treatment           []string      `json:"treatment"`
	Prevention          []string      `json:"prevention"`
	Description         string        `json:"description"`
	CareRecommendations []string      `json:"careRecommendations"`
	NextCheckup         time.Time     `json:"nextCheckup"`
	Species             SpeciesRecord `json:"species"`
}
