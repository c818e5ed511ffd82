package token

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator(15 * time.Minute)

	tok, expires, err := g.Generate()
	require.NoError(t, err)

	assert.Len(t, tok, 64)
	_, err = hex.DecodeString(tok)
	assert.NoError(t, err)
	assert.True(t, expires.After(time.Now()), "expiry must be in the future at issue time")
}

func TestGenerateUnique(t *testing.T) {
	g := NewGenerator(time.Minute)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, _, err := g.Generate()
		require.NoError(t, err)
		require.False(t, seen[tok], "token collision")
		seen[tok] = true
	}
}

func TestGenerateExpiryUsesTTL(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(15 * time.Minute)
	g.now = func() time.Time { return fixed }

	_, expires, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(15*time.Minute), expires)
}

func TestTTLMinutes(t *testing.T) {
	assert.Equal(t, 15, NewGenerator(15*time.Minute).TTLMinutes())
	assert.Equal(t, 90, NewGenerator(90*time.Minute).TTLMinutes())
}
