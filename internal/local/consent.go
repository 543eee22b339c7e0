package local

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/franckalain/lymegrove/internal/models"
)

const (
	ConsentKey     = "cookie-consent"
	ConsentDateKey = "cookie-consent-date"
)

// ConsentRepository stores the cookie consent choice and when it was made.
type ConsentRepository struct {
	storage Storage
	clock   clock.Clock
}

func NewConsentRepository(storage Storage) *ConsentRepository {
	return &ConsentRepository{storage: storage, clock: clock.Real{}}
}

// Load returns the saved preferences. found is false when the user has never
// answered, in which case the defaults (necessary only) are returned.
func (r *ConsentRepository) Load() (prefs models.ConsentPreferences, decidedAt time.Time, found bool, err error) {
	prefs = models.ConsentPreferences{Necessary: true}

	data, ok, err := r.storage.Load(ConsentKey)
	if err != nil || !ok {
		return prefs, time.Time{}, false, err
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return prefs, time.Time{}, false, fmt.Errorf("decoding consent: %w", err)
	}

	date, ok, err := r.storage.Load(ConsentDateKey)
	if err != nil {
		return prefs, time.Time{}, true, err
	}
	if ok {
		if err := json.Unmarshal(date, &decidedAt); err != nil {
			return prefs, time.Time{}, true, fmt.Errorf("decoding consent date: %w", err)
		}
	}
	return prefs, decidedAt, true, nil
}

// Save stores prefs. Necessary cookies cannot be refused.
func (r *ConsentRepository) Save(prefs models.ConsentPreferences) error {
	prefs.Necessary = true

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding consent: %w", err)
	}
	if err := r.storage.Save(ConsentKey, data); err != nil {
		return err
	}

	date, err := json.Marshal(r.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("encoding consent date: %w", err)
	}
	return r.storage.Save(ConsentDateKey, date)
}

func (r *ConsentRepository) AcceptAll() error {
	return r.Save(models.ConsentPreferences{Necessary: true, Analytics: true, Marketing: true})
}

func (r *ConsentRepository) RejectAll() error {
	return r.Save(models.ConsentPreferences{Necessary: true})
}
