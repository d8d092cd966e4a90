package metrics

import "github.com/san-kum/bellsim/internal/bell"

// Convergence samples the running difference rate every `every` trials so the
// approach to the expected value can be plotted.
type Convergence struct {
	rate    *DifferenceRate
	every   int
	history []float64
}

func NewConvergence(every int) *Convergence {
	if every < 1 {
		every = 1
	}
	return &Convergence{rate: NewDifferenceRate(), every: every}
}

func (c *Convergence) Name() string { return "convergence" }

func (c *Convergence) Observe(o bell.Outcome) {
	c.rate.Observe(o)
	if c.rate.samples%c.every == 0 {
		c.history = append(c.history, c.rate.Value())
	}
}

// Value is the latest running rate.
func (c *Convergence) Value() float64 { return c.rate.Value() }

// History returns the sampled running rates, oldest first.
func (c *Convergence) History() []float64 {
	out := make([]float64, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Convergence) Reset() {
	c.rate.Reset()
	c.history = c.history[:0]
}
