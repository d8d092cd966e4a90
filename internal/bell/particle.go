package bell

// DownProbability is the chance that a measurement at three or nine o'clock
// yields Down. It fixes the correlation strength of the model and is not
// derived from a detector angle.
const DownProbability = 0.25

const (
	third     = 1.0 / 3.0
	twoThirds = 2.0 / 3.0
)

// SelectOrientation picks a detector direction uniformly at random.
func SelectOrientation(src RandomSource) Orientation {
	v := draw(src, "select orientation")
	switch {
	case v < third:
		return Twelve
	case v < twoThirds:
		return Three
	default:
		return Nine
	}
}

// Particle carries a single spin for the lifetime of one trial.
type Particle struct {
	Spin Spin
}

// Measure collapses the spin along o and returns the result. Twelve o'clock
// is the reference direction and always reads Up without consuming a draw.
func (p *Particle) Measure(src RandomSource, o Orientation) Spin {
	switch o {
	case Twelve:
		p.Spin = Up
	case Three, Nine:
		if draw(src, "measure") < DownProbability {
			p.Spin = Down
		} else {
			p.Spin = Up
		}
	default:
		panic(invariant("measure", "unknown orientation %d", int(o)))
	}
	return p.Spin
}

// Pair is two particles created together. Neither side is shared across trials.
type Pair struct {
	LHS Particle
	RHS Particle
}

// NewPair returns a pair with both spins undetermined.
func NewPair() *Pair {
	return &Pair{
		LHS: Particle{Spin: Undetermined},
		RHS: Particle{Spin: Undetermined},
	}
}

func (pr *Pair) outcome() Outcome {
	return Outcome{LHS: pr.LHS.Spin, RHS: pr.RHS.Spin}
}
