// Package sweep runs the hidden-variable protocol across a grid of mixing
// probabilities.
package sweep

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/bellsim/internal/experiment"
)

// Point is the outcome at one mixing probability. Observed and Expected are
// percentages.
type Point struct {
	Mix      float64
	Observed float64
	Expected float64
	Result   *experiment.Result
}

type Sweep struct {
	mixes []float64
}

func New(mixes []float64) *Sweep {
	return &Sweep{mixes: mixes}
}

// Grid returns n+1 evenly spaced mixes from 0 to 1.
func Grid(n int) []float64 {
	if n < 1 {
		n = 1
	}
	mixes := make([]float64, n+1)
	for i := range mixes {
		mixes[i] = float64(i) / float64(n)
	}
	return mixes
}

// Search runs one experiment per mix and returns every point plus the one
// with the lowest observed difference rate.
func (s *Sweep) Search(
	ctx context.Context,
	build func(mix float64) (*experiment.Experiment, error),
) ([]Point, Point, error) {

	points := make([]Point, 0, len(s.mixes))
	best := Point{Observed: math.Inf(1)}

	for _, mix := range s.mixes {
		exp, err := build(mix)
		if err != nil {
			return points, best, fmt.Errorf("mix %v: %w", mix, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return points, best, fmt.Errorf("mix %v: %w", mix, err)
		}

		pct, ok := result.Percent()
		if !ok {
			continue
		}

		p := Point{Mix: mix, Observed: pct, Expected: result.Expected, Result: result}
		points = append(points, p)
		if p.Observed < best.Observed {
			best = p
		}
	}

	return points, best, nil
}

// Observed returns the observed rates in sweep order, for plotting.
func Observed(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Observed
	}
	return out
}
