package noisereduce

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/classify"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/stft"
	"github.com/xaionaro-go/noisereduce/pkg/noisereduce/window"
)

// ReductionChoice selects which signal Reduce writes to its sink.
type ReductionChoice int

const (
	ReductionReduce ReductionChoice = iota
	ReductionIsolate
	ReductionResidue
)

func (c ReductionChoice) String() string {
	switch c {
	case ReductionReduce:
		return "reduce"
	case ReductionIsolate:
		return "isolate"
	case ReductionResidue:
		return "residue"
	default:
		return fmt.Sprintf("noisereduce.ReductionChoice(%d)", int(c))
	}
}

func (c *ReductionChoice) Set(s string) error {
	switch s {
	case ReductionReduce.String():
		*c = ReductionReduce
	case ReductionIsolate.String():
		*c = ReductionIsolate
	case ReductionResidue.String():
		*c = ReductionResidue
	default:
		return fmt.Errorf("unknown reduction choice %q", s)
	}
	return nil
}

func (c ReductionChoice) Type() string {
	return "reductionChoice"
}

func (c ReductionChoice) toDriver() stft.ReductionChoice {
	switch c {
	case ReductionIsolate:
		return stft.ChoiceIsolate
	case ReductionResidue:
		return stft.ChoiceResidue
	default:
		return stft.ChoiceReduce
	}
}

// Settings holds the persisted, CLI-overridable parameters for one
// profile/reduce pair. The enum-valued fields implement pflag.Value so
// cmd/noisereduce can bind them directly with pflag.Var.
type Settings struct {
	Sensitivity     float64
	Gain            float64
	AttackTime      float64
	ReleaseTime     float64
	FreqSmoothing   float64
	ReductionChoice ReductionChoice
	WindowTypes     window.Type
	// WindowSize and StepsPerWindow are stored in the original's
	// log-encoded form: WindowSize encodes W = 1<<(WindowSize+3),
	// StepsPerWindow encodes S = 1<<(StepsPerWindow+1).
	WindowSize     int
	StepsPerWindow int
	Method         classify.Method

	// OldSensitivity only applies when Method is classify.MethodOld and
	// the build was compiled with -tags noisereduce_oldmethod.
	OldSensitivity float64
}

// NewDefaultSettings returns the documented defaults.
func NewDefaultSettings() *Settings {
	return &Settings{
		Sensitivity:     6.0,
		Gain:            12.0,
		AttackTime:      0.02,
		ReleaseTime:     0.10,
		FreqSmoothing:   3.0,
		ReductionChoice: ReductionReduce,
		WindowTypes:     window.HannHann,
		WindowSize:      8,
		StepsPerWindow:  1,
		Method:          classify.SecondGreatest,
		OldSensitivity:  6.0,
	}
}

// WindowSizeSamples decodes WindowSize into W.
func (s *Settings) WindowSizeSamples() int {
	return 1 << (s.WindowSize + 3)
}

// StepsPerWindowCount decodes StepsPerWindow into S.
func (s *Settings) StepsPerWindowCount() int {
	return 1 << (s.StepsPerWindow + 1)
}

// FreqSmoothingBins rounds the persisted double-valued half-width down to
// the non-negative integer bin count the envelope operates on.
func (s *Settings) FreqSmoothingBins() int {
	if s.FreqSmoothing < 0 {
		return 0
	}
	return int(s.FreqSmoothing)
}

// Validate checks the settings for internal consistency, independent of
// any particular Statistics. It folds every violation into a single
// *multierror.Error and returns that error's message in an error wrapping
// ErrConfigInvalid, mirroring the way
// NewRecorderAuto folds its factory-fallback failures.
func (s *Settings) Validate() error {
	var mErr *multierror.Error

	if s.Sensitivity <= 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("Sensitivity must be > 0, got %v", s.Sensitivity))
	}
	if s.Gain <= 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("Gain must be > 0 dB, got %v", s.Gain))
	}
	if s.AttackTime <= 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("AttackTime must be > 0s, got %v", s.AttackTime))
	}
	if s.ReleaseTime <= 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("ReleaseTime must be > 0s, got %v", s.ReleaseTime))
	}
	if s.FreqSmoothing < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("FreqSmoothing must be >= 0, got %v", s.FreqSmoothing))
	}
	if s.WindowSize < 0 || s.WindowSize > 12 {
		mErr = multierror.Append(mErr, fmt.Errorf("WindowSize encoding %d decodes outside the supported W range [8,32768]", s.WindowSize))
	}
	if s.StepsPerWindow < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("StepsPerWindow encoding %d must be >= 0", s.StepsPerWindow))
	}
	if s.Method == classify.MethodOld && !oldMethodAvailable {
		mErr = multierror.Append(mErr, fmt.Errorf("Method old-method is only available in a build compiled with -tags noisereduce_oldmethod"))
	}

	if mErr.ErrorOrNil() == nil {
		w, steps := s.WindowSizeSamples(), s.StepsPerWindowCount()
		if _, err := window.New(s.WindowTypes, w, steps, s.Method == classify.Median); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}

	if err := mErr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}
