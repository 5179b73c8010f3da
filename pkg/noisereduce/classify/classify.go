// Package classify implements the per-band noise/signal decision rule the
// gain envelope acts on.
package classify

import (
	"fmt"
	"math"
	"sort"
)

// Method selects the order-statistic rule used to turn a band's recent
// power history into a noise/signal verdict.
type Method int

const (
	SecondGreatest Method = iota
	Median

	// MethodOld compares the minimum power over the window against the
	// band's noise mean scaled by OldSensitivityFactor. It is an extension
	// point: callers going through
	// pkg/noisereduce.Settings can only select it when built with the
	// noisereduce_oldmethod build tag; see OldClassifier.
	MethodOld
)

func (m Method) String() string {
	switch m {
	case SecondGreatest:
		return "second-greatest"
	case Median:
		return "median"
	case MethodOld:
		return "old-method"
	default:
		return fmt.Sprintf("classify.Method(%d)", int(m))
	}
}

func (m *Method) Set(s string) error {
	switch s {
	case SecondGreatest.String():
		*m = SecondGreatest
	case Median.String():
		*m = Median
	case MethodOld.String():
		*m = MethodOld
	default:
		return fmt.Errorf("unknown classification method %q", s)
	}
	return nil
}

func (m Method) Type() string {
	return "classifyMethod"
}

// NaturalSensitivity converts the base-10 sensitivity parameter sigma into
// the natural-log multiplier the classifier applies to the per-band noise
// mean.
func NaturalSensitivity(sigma float64) float64 {
	return sigma * math.Ln10
}

// IsNoise returns true when the power history powers (oldest to newest,
// aligned so the center sample sits in the middle) indicates the band is
// pure noise under method, given the per-band noise mean and the
// natural-log sensitivity multiplier sigmaNat.
//
// Method Median requires len(powers) to be 3 or 5; a length of 3 behaves
// identically to SecondGreatest.
func IsNoise(method Method, powers []float64, mean, sigmaNat float64) (bool, error) {
	n := len(powers)
	if n < 2 {
		return false, fmt.Errorf("classify: need at least 2 power samples, got %d", n)
	}

	sorted := append([]float64(nil), powers...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	threshold := sigmaNat * mean

	switch method {
	case SecondGreatest:
		return sorted[1] <= threshold, nil
	case Median:
		switch n {
		case 3:
			return sorted[1] <= threshold, nil
		case 5:
			return sorted[2] <= threshold, nil
		default:
			return false, fmt.Errorf("classify: median method requires 3 or 5 power samples, got %d", n)
		}
	case MethodOld:
		return false, fmt.Errorf("classify: MethodOld is stateful, use OldClassifier.IsNoise instead of IsNoise")
	default:
		return false, fmt.Errorf("classify: unknown method %v", method)
	}
}
