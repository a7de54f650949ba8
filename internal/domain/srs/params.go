package srs

import "time"

// Params defines all configurable parameters for the scheduling algorithm.
// The defaults reproduce the intervals the deck format was designed around;
// they can be overridden for experimentation via NewParams.
type Params struct {
	// HardMinimumGap is the smallest gap after a Hard outcome.
	HardMinimumGap time.Duration
	// HardMultiplier shrinks the previous interval after a Hard outcome.
	HardMultiplier float64

	// EasyGrownThreshold is the previous interval above which an Easy
	// outcome grows multiplicatively instead of graduating to the next day.
	EasyGrownThreshold time.Duration
	// EasyMultiplier grows the previous interval after an Easy outcome.
	EasyMultiplier float64
	// EasyGraduationDays is the midnight offset used for short intervals
	// after an Easy outcome.
	EasyGraduationDays int
	// EasyCapDays caps the gap after an Easy outcome.
	EasyCapDays int

	// VeryEasyGrownThreshold, VeryEasyMultiplier, VeryEasyGraduationDays and
	// VeryEasyCapDays are the corresponding settings for a VeryEasy outcome.
	VeryEasyGrownThreshold time.Duration
	VeryEasyMultiplier     float64
	VeryEasyGraduationDays int
	VeryEasyCapDays        int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero-valued fields keep their defaults.
type ParamsConfig struct {
	HardMinimumGap time.Duration
	HardMultiplier float64

	EasyGrownThreshold time.Duration
	EasyMultiplier     float64
	EasyGraduationDays int
	EasyCapDays        int

	VeryEasyGrownThreshold time.Duration
	VeryEasyMultiplier     float64
	VeryEasyGraduationDays int
	VeryEasyCapDays        int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		HardMinimumGap: 3 * time.Minute,
		HardMultiplier: 0.8,

		EasyGrownThreshold: 4 * 24 * time.Hour,
		EasyMultiplier:     1.25,
		EasyGraduationDays: 1,
		EasyCapDays:        182,

		VeryEasyGrownThreshold: 24 * time.Hour,
		VeryEasyMultiplier:     2.0,
		VeryEasyGraduationDays: 2,
		VeryEasyCapDays:        365,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.HardMinimumGap > 0 {
		params.HardMinimumGap = config.HardMinimumGap
	}
	if config.HardMultiplier > 0 {
		params.HardMultiplier = config.HardMultiplier
	}

	if config.EasyGrownThreshold > 0 {
		params.EasyGrownThreshold = config.EasyGrownThreshold
	}
	if config.EasyMultiplier > 0 {
		params.EasyMultiplier = config.EasyMultiplier
	}
	if config.EasyGraduationDays > 0 {
		params.EasyGraduationDays = config.EasyGraduationDays
	}
	if config.EasyCapDays > 0 {
		params.EasyCapDays = config.EasyCapDays
	}

	if config.VeryEasyGrownThreshold > 0 {
		params.VeryEasyGrownThreshold = config.VeryEasyGrownThreshold
	}
	if config.VeryEasyMultiplier > 0 {
		params.VeryEasyMultiplier = config.VeryEasyMultiplier
	}
	if config.VeryEasyGraduationDays > 0 {
		params.VeryEasyGraduationDays = config.VeryEasyGraduationDays
	}
	if config.VeryEasyCapDays > 0 {
		params.VeryEasyCapDays = config.VeryEasyCapDays
	}

	return params
}
