package models

import "time"

// SavedPlant is an entry of the user's device-local plant collection.
type SavedPlant struct {
	ID           string        `json:"id"`
	Nickname     string        `json:"nickname"`
	Species      SpeciesRecord `json:"species"`
	HealthStatus string        `json:"healthStatus"`
	DateAdded    time.Time     `json:"dateAdded"`
	LastAnalysis time.Time     `json:"lastAnalysis"`
	Notes        string        `json:"notes,omitempty"`
	Image        string        `json:"image,omitempty"`
}

// ConsentPreferences is the cookie and tracking consent choice.
type ConsentPreferences struct {
	Necessary bool `json:"necessary"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}
