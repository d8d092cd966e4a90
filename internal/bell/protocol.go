package bell

// Spooky measures the left particle at twelve o'clock and the right one along
// a random direction. When both directions coincide the right spin is set
// opposite to the left one; otherwise the right side is measured on its own.
func (pr *Pair) Spooky(src RandomSource) Outcome {
	left := Twelve
	right := SelectOrientation(src)

	pr.LHS.Measure(src, left)

	if left == right {
		pr.RHS.Spin = pr.LHS.Spin.Opposite()
	} else {
		pr.RHS.Measure(src, right)
	}

	return pr.outcome()
}

// SelectPlan picks OddBall when the draw falls below mix and Trivial otherwise.
func SelectPlan(src RandomSource, mix float64) Plan {
	if draw(src, "select plan") < mix {
		return OddBall
	}
	return Trivial
}

// HiddenInformation lets each particle pick its own detector direction and
// read its spin from plan. Nothing passes between the two sides.
func (pr *Pair) HiddenInformation(src RandomSource, plan Plan) Outcome {
	pr.RHS.Spin = planSpin(plan, SelectOrientation(src), Up, Down)
	pr.LHS.Spin = planSpin(plan, SelectOrientation(src), Down, Up)
	return pr.outcome()
}

// planSpin applies plan on one side. base is the spin the side reports for
// every direction under Trivial; OddBall flips it at three o'clock.
func planSpin(plan Plan, o Orientation, base, flipped Spin) Spin {
	switch plan {
	case Trivial:
		return base
	case OddBall:
		if o == Three {
			return flipped
		}
		return base
	default:
		panic(invariant("hidden information", "unknown plan %d", int(plan)))
	}
}
