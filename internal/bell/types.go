package bell

import "fmt"

// Spin is the measured (or not yet measured) state of a particle.
type Spin int

const (
	Undetermined Spin = iota
	Up
	Down
)

func (s Spin) String() string {
	switch s {
	case Undetermined:
		return "undetermined"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Spin(%d)", int(s))
	}
}

// Opposite returns the anti-correlated spin. Undetermined has no opposite.
func (s Spin) Opposite() Spin {
	switch s {
	case Up:
		return Down
	case Down:
		return Up
	default:
		panic(invariant("opposite", "spin %s has no opposite", s))
	}
}

// Orientation is one of the three fixed detector directions.
type Orientation int

const (
	Twelve Orientation = iota // 12 o'clock, the reference direction
	Three                     // 3 o'clock
	Nine                      // 9 o'clock
)

// Orientations lists every detector direction in selection order.
var Orientations = [...]Orientation{Twelve, Three, Nine}

func (o Orientation) String() string {
	switch o {
	case Twelve:
		return "12 o'clock"
	case Three:
		return "3 o'clock"
	case Nine:
		return "9 o'clock"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Plan is a strategy both particles agree on before separating.
type Plan int

const (
	Trivial Plan = iota // up-up-up / down-down-down
	OddBall             // up-down-up / down-up-down
)

func (p Plan) String() string {
	switch p {
	case Trivial:
		return "trivial"
	case OddBall:
		return "oddball"
	default:
		return fmt.Sprintf("Plan(%d)", int(p))
	}
}

// Outcome holds both spins after a protocol has run.
type Outcome struct {
	LHS Spin
	RHS Spin
}

// Differ reports whether the two spins are unequal.
func (o Outcome) Differ() bool {
	if o.LHS == Undetermined || o.RHS == Undetermined {
		panic(invariant("compare", "outcome (%s, %s) compared before measurement", o.LHS, o.RHS))
	}
	return o.LHS != o.RHS
}
