package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNoise_SecondGreatest(t *testing.T) {
	mean := 1.0
	sigmaNat := NaturalSensitivity(6.0)
	threshold := sigmaNat * mean

	belowThreshold := threshold * 0.5
	aboveThreshold := threshold * 2

	isNoise, err := IsNoise(SecondGreatest, []float64{belowThreshold, belowThreshold, aboveThreshold}, mean, sigmaNat)
	require.NoError(t, err)
	require.True(t, isNoise, "second-largest value is still below the threshold")

	isNoise, err = IsNoise(SecondGreatest, []float64{aboveThreshold, aboveThreshold, belowThreshold}, mean, sigmaNat)
	require.NoError(t, err)
	require.False(t, isNoise, "second-largest value is above the threshold")
}

func TestIsNoise_MedianOfThreeMatchesSecondGreatest(t *testing.T) {
	mean := 1.0
	sigmaNat := NaturalSensitivity(6.0)
	powers := []float64{0.1, 5.0, 0.2}

	a, err := IsNoise(SecondGreatest, powers, mean, sigmaNat)
	require.NoError(t, err)
	b, err := IsNoise(Median, powers, mean, sigmaNat)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestIsNoise_MedianOfFiveUsesThirdLargest(t *testing.T) {
	mean := 1.0
	sigmaNat := NaturalSensitivity(6.0)
	threshold := sigmaNat * mean

	// Third-largest (sorted descending: 10*threshold, 8*threshold,
	// threshold/2, ...) sits below the threshold, so this must be classified
	// as noise even though two values spike well above it.
	powers := []float64{threshold * 10, threshold * 8, threshold * 0.5, threshold * 0.1, threshold * 0.2}
	isNoise, err := IsNoise(Median, powers, mean, sigmaNat)
	require.NoError(t, err)
	require.True(t, isNoise)
}

func TestIsNoise_MedianRejectsOtherLengths(t *testing.T) {
	_, err := IsNoise(Median, []float64{1, 2, 3, 4}, 1.0, NaturalSensitivity(6.0))
	require.Error(t, err)
}

func TestClassifierMonotonicity(t *testing.T) {
	mean := 1.0
	powers := []float64{0.4, 1.2, 0.9, 0.6, 1.1}

	prevNoise := false
	for _, sigma := range []float64{0.1, 0.5, 1, 2, 4, 8} {
		isNoise, err := IsNoise(SecondGreatest, powers, mean, NaturalSensitivity(sigma))
		require.NoError(t, err)
		if prevNoise {
			require.True(t, isNoise, "increasing sigma must not un-classify a band as noise, sigma=%v", sigma)
		}
		prevNoise = isNoise
	}
}
