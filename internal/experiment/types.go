package experiment

import (
	"time"

	"github.com/san-kum/bellsim/internal/bell"
)

// Protocol runs one trial on a fresh pair.
type Protocol interface {
	Name() string
	Trial(src bell.RandomSource) bell.Outcome
	// Expected is the long-run fraction of trials with unequal spins.
	Expected() float64
}

type Metric interface {
	Name() string
	Observe(o bell.Outcome)
	Value() float64
	Reset()
}

type Config struct {
	Trials  int
	Seed    int64
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Trials:  1000000,
		Seed:    1,
		Workers: 1,
	}
}

type Result struct {
	ID        string
	Protocol  string
	Params    map[string]float64
	Trials    int
	Different int
	// Expected and Bound are percentages.
	Expected float64
	Bound    float64
	Seed     int64
	Workers  int
	Elapsed  time.Duration
	Metrics  map[string]float64
}

// NoData reports whether the run had no trials to aggregate.
func (r *Result) NoData() bool { return r.Trials <= 0 }

// Percent returns the observed percentage of trials with unequal spins. The
// second value is false when there is no data.
func (r *Result) Percent() (float64, bool) {
	if r.NoData() {
		return 0, false
	}
	return 100 * float64(r.Different) / float64(r.Trials), true
}
