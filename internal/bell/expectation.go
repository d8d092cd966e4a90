package bell

// SpookyDifference is the long-run fraction of spooky trials with unequal
// spins: 1/3 forced opposite plus 2/3 * DownProbability.
const SpookyDifference = third + twoThirds*DownProbability

// BellBound is the smallest difference fraction any mix of Trivial and
// OddBall plans can reach. OddBall alone sits exactly on it.
const BellBound = 5.0 / 9.0

// HiddenDifference is the expected fraction of unequal spins when OddBall is
// chosen with probability mix and Trivial otherwise. Trivial always differs;
// OddBall matches in 4 of 9 direction pairs.
func HiddenDifference(mix float64) float64 {
	return mix*BellBound + (1-mix)*1.0
}
