package gacha

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the randomness behind rolls so tests can replay
// deterministic sequences.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}

	// top 53 bits give a uniform float in [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11

	return float64(u) / (1 << 53)
}

// DefaultSource returns the crypto-backed source used in production.
func DefaultSource() RandomSource { return cryptoSource{} }

type seededSource struct{ r *rand.Rand }

// NewSeededSource returns a reproducible source for tests.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Float64() float64 { return s.r.Float64() }

// pickIndex maps one draw onto an index in [0, n).
func pickIndex(rng RandomSource, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}

	return i
}
