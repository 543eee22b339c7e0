package clock

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{9}$`)
	for range 100 {
		assert.Regexp(t, re, ShortIDGenerator{}.New())
	}
}

func TestUUIDGenerator(t *testing.T) {
	_, err := uuid.Parse(UUIDGenerator{}.New())
	require.NoError(t, err)
}

func TestFixed(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Fixed(at)
	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now())
}
