package bell

import "math/rand"

// RandomSource yields uniform floats in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewSource returns a seeded source. Sources are not safe for concurrent use;
// give each goroutine its own.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Sequence replays fixed values in order, wrapping around at the end.
type Sequence struct {
	values []float64
	next   int
	draws  int
}

func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	s.draws++
	return v
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int { return s.draws }

func draw(src RandomSource, op string) float64 {
	v := src.Float64()
	if v < 0 || v >= 1 {
		panic(invariant(op, "draw %v outside [0, 1)", v))
	}
	return v
}
