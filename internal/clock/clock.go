// Package clock abstracts time and identifier generation so business logic is
// deterministic in tests.
package clock

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval.
type Clock interface {
	Now() time.Time
}

// Real returns the actual current time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// IDGenerator abstracts identifier generation.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

const (
	shortIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	shortIDLength   = 9
)

// ShortIDGenerator produces 9 character base36 identifiers. They are not
// globally unique; collisions are possible and not detected.
type ShortIDGenerator struct{}

func (ShortIDGenerator) New() string { return ShortID() }

// ShortID returns a fresh 9 character base36 identifier.
func ShortID() string {
	var sb strings.Builder
	sb.Grow(shortIDLength)
	for range shortIDLength {
		sb.WriteByte(shortIDAlphabet[rand.IntN(len(shortIDAlphabet))])
	}
	return sb.String()
}
