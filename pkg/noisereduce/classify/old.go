package classify

import "math"

// OldSensitivityFactor converts the legacy base-10 sensitivity parameter of
// MethodOld into the multiplier applied against the per-band noise mean,
// mirroring the original's mOldSensitivityFactor = 10^(oldSensitivity/10).
func OldSensitivityFactor(oldSensitivity float64) float64 {
	return math.Pow(10, oldSensitivity/10)
}

// OldClassifier applies the min-of-window rule: a band is judged noise when
// the minimum power seen over its current window is at most factor times
// the band's noise mean. It also records, per band, the largest such
// minimum seen so far (a running maximum of the per-window minimums); that
// recorded value does not enter the verdict. One OldClassifier belongs to
// exactly one reduce invocation.
type OldClassifier struct {
	runningMax []float64
}

// NewOldClassifier allocates a classifier with bins bands, all ceilings
// starting at zero.
func NewOldClassifier(bins int) *OldClassifier {
	return &OldClassifier{runningMax: make([]float64, bins)}
}

// IsNoise reports whether band b is noise given the minimum power observed
// over the classifier's window and the band's noise mean, then folds
// minPower into the running per-band ceiling.
func (c *OldClassifier) IsNoise(b int, minPower, mean, factor float64) bool {
	threshold := factor * mean
	isNoise := minPower <= threshold
	if minPower > c.runningMax[b] {
		c.runningMax[b] = minPower
	}
	return isNoise
}
