// internal/daily/daily.go
//
// Daily challenge helpers. Every player gets the same round for a given game
// on a given UTC day: the round generator is seeded from
// HMAC-SHA256(salt, "YYYY-MM-DD|game").

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives the two PCG seed words for game on the day of t.
func Seed(t time.Time, salt, game string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t) + "|" + game))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Rand returns the deterministic generator for game on the day of t.
func Rand(t time.Time, salt, game string) *rand.Rand {
	s1, s2 := Seed(t, salt, game)
	return rand.New(rand.NewPCG(s1, s2))
}
