package experiment

import (
	"fmt"

	"github.com/san-kum/bellsim/internal/bell"
)

type Spooky struct{}

func NewSpooky() *Spooky { return &Spooky{} }

func (s *Spooky) Name() string { return "spooky" }

func (s *Spooky) Trial(src bell.RandomSource) bell.Outcome {
	return bell.NewPair().Spooky(src)
}

func (s *Spooky) Expected() float64 { return bell.SpookyDifference }

// Hidden picks OddBall with probability Mix and Trivial otherwise, once per
// trial, then runs the hidden-information protocol with that plan.
type Hidden struct {
	Mix float64
}

func NewHidden(mix float64) (*Hidden, error) {
	if mix < 0 || mix > 1 {
		return nil, fmt.Errorf("%w: mix %v outside [0, 1]", ErrInvalidConfig, mix)
	}
	return &Hidden{Mix: mix}, nil
}

func (h *Hidden) Name() string { return "hidden" }

func (h *Hidden) Trial(src bell.RandomSource) bell.Outcome {
	plan := bell.SelectPlan(src, h.Mix)
	return bell.NewPair().HiddenInformation(src, plan)
}

func (h *Hidden) Expected() float64 { return bell.HiddenDifference(h.Mix) }

// Params reports protocol parameters for results and reports.
func Params(p Protocol) map[string]float64 {
	if h, ok := p.(*Hidden); ok {
		return map[string]float64{"mix": h.Mix}
	}
	return map[string]float64{}
}
