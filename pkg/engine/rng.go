package engine

import "math/rand"

// Rand is the source of randomness for every probabilistic rule in the
// engine: quest survival rolls, reward draws, attrition and spell damage,
// flavor text selection, map generation. Injecting it keeps outcomes
// reproducible under test.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded math/rand source satisfying Rand.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// ScriptedRand replays a fixed sequence of values and cycles when
// exhausted. Tests pin probabilistic outcomes with it.
type ScriptedRand struct {
	Values []float64
	pos    int
}

// Fixed returns a ScriptedRand that always yields v.
func Fixed(v float64) *ScriptedRand {
	return &ScriptedRand{Values: []float64{v}}
}

func (s *ScriptedRand) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

func (s *ScriptedRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// RandomElement picks a uniformly random element of items.
// Panics on an empty slice: callers draw from static catalogs that are
// never empty, so an empty slice is a catalog inconsistency.
func RandomElement[T any](rng Rand, items []T) T {
	if len(items) == 0 {
		panic("engine: RandomElement on empty slice")
	}
	return items[rng.Intn(len(items))]
}

// RandomInt returns an integer in [min, max] inclusive.
func RandomInt(rng Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// randomRange returns a float64 in [min, max).
func randomRange(rng Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
