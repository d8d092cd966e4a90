// Package bell provides the entities and measurement rules of a simplified
// EPR/Bell experiment.
//
// A [Pair] of [Particle] values starts with both spins undetermined. One of
// two protocols then fixes both spins:
//
//   - [Pair.Spooky]: the left side is measured at twelve o'clock, and when
//     the right detector happens to match, the right spin is forced opposite
//   - [Pair.HiddenInformation]: each side applies a [Plan] agreed in advance,
//     with no communication at measurement time
//
// All randomness comes from a [RandomSource], so callers can pass a seeded
// *rand.Rand for reproducible runs or a [Sequence] to drive exact branches.
//
// # Example
//
//	src := bell.NewSource(42)
//	pair := bell.NewPair()
//	out := pair.Spooky(src)
//	if out.Differ() {
//	    different++
//	}
//
// # Invariants
//
// Draws outside [0, 1) and comparisons of undetermined spins are programming
// errors; they panic with an [*InvariantError].
package bell
