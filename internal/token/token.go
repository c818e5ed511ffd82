package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const tokenBytes = 32

// Generator produces single-use verification tokens with an expiry.
type Generator struct {
	ttl time.Duration
	now func() time.Time
}

func NewGenerator(ttl time.Duration) *Generator {
	return &Generator{ttl: ttl, now: time.Now}
}

// Generate returns a random hex token and the moment it stops being valid.
func (g *Generator) Generate() (string, time.Time, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, fmt.Errorf("token entropy: %w", err)
	}
	return hex.EncodeToString(b), g.now().UTC().Add(g.ttl), nil
}

// TTLMinutes is the configured lifetime in whole minutes, as shown in the
// verification email.
func (g *Generator) TTLMinutes() int {
	return int(g.ttl.Minutes())
}
