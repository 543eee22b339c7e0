package auth

import (
	"testing"
	"time"

	"github.com/franckalain/lymegrove/internal/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour).WithClock(clock.Fixed(now))

	signed, err := tokens.Issue("user-123")
	require.NoError(t, err)

	uid, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", uid)

	uid, err = tokens.Verify("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", uid)
}

func TestVerifyExpired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour).WithClock(clock.Fixed(now))
	signed, err := tokens.Issue("user-123")
	require.NoError(t, err)

	later := tokens.WithClock(clock.Fixed(now.Add(2 * time.Hour)))
	_, err = later.Verify(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejects(t *testing.T) {
	tokens := NewTokens("test-secret", 0)

	other, err := NewTokens("other-secret", 0).Issue("user-123")
	require.NoError(t, err)

	noSubject, err := jwt.New(jwt.SigningMethodHS256).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrMissingToken},
		{"bearer only", "Bearer ", ErrMissingToken},
		{"garbage", "not-a-jwt", nil},
		{"wrong secret", other, jwt.ErrTokenSignatureInvalid},
		{"no subject", noSubject, ErrNoSubject},
		{"wrong algorithm", hs512, jwt.ErrTokenSignatureInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.raw)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestNoSecret(t *testing.T) {
	tokens := NewTokens("", time.Hour)

	_, err := tokens.Issue("user-123")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = tokens.Verify("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
}
