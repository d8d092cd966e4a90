package metrics

import (
	"math"

	"github.com/san-kum/bellsim/internal/bell"
)

// DifferenceRate is the percentage of observed trials with unequal spins.
type DifferenceRate struct {
	name      string
	different int
	samples   int
}

func NewDifferenceRate() *DifferenceRate {
	return &DifferenceRate{name: "difference_rate"}
}

func (d *DifferenceRate) Name() string { return d.name }

func (d *DifferenceRate) Observe(o bell.Outcome) {
	if o.Differ() {
		d.different++
	}
	d.samples++
}

func (d *DifferenceRate) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return 100 * float64(d.different) / float64(d.samples)
}

func (d *DifferenceRate) Reset() {
	d.different = 0
	d.samples = 0
}

// StandardError is the binomial standard error of the difference rate, in
// percentage points.
type StandardError struct {
	rate *DifferenceRate
}

func NewStandardError() *StandardError {
	return &StandardError{rate: NewDifferenceRate()}
}

func (s *StandardError) Name() string { return "std_error" }

func (s *StandardError) Observe(o bell.Outcome) { s.rate.Observe(o) }

func (s *StandardError) Value() float64 {
	n := s.rate.samples
	if n == 0 {
		return 0
	}
	p := float64(s.rate.different) / float64(n)
	return 100 * math.Sqrt(p*(1-p)/float64(n))
}

func (s *StandardError) Reset() { s.rate.Reset() }

// SpinBalance is the percentage of trials whose left particle reads Up.
type SpinBalance struct {
	up      int
	samples int
}

func NewSpinBalance() *SpinBalance {
	return &SpinBalance{}
}

func (s *SpinBalance) Name() string { return "lhs_up" }

func (s *SpinBalance) Observe(o bell.Outcome) {
	if o.LHS == bell.Up {
		s.up++
	}
	s.samples++
}

func (s *SpinBalance) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return 100 * float64(s.up) / float64(s.samples)
}

func (s *SpinBalance) Reset() {
	s.up = 0
	s.samples = 0
}
