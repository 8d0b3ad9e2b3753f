package regression

import (
	"fmt"

	"github.com/enms-tools/enbfit/internal/options"
)

// Sign selects the sign convention of MBEPercentage.
type Sign int

const (
	// SignResidual reports MBEPercentage with the same sign as MBE (actual minus predicted).
	SignResidual Sign = iota
	// SignInverted reports MBEPercentage with the opposite sign to MBE, matching
	// reference data that expresses bias as predicted minus actual.
	SignInverted
)

func (s Sign) String() string {
	switch s {
	case SignResidual:
		return "residual"
	case SignInverted:
		return "inverted"
	default:
		return "unknown"
	}
}

// Default fit settings.
const (
	DefaultConditionLimit = 1e12
	DefaultPrecision      = 4
)

// FitConfig holds the settings shared by FitQuadratic and FitLinear.
type FitConfig struct {
	// ConditionLimit is the largest condition number of the normal-equation
	// matrix (built on standardized drivers) accepted before a fit is
	// reported as degenerate.
	ConditionLimit float64
	// Precision is the number of decimals in Formula and Equation.
	Precision int
	// MBEPercentageSign is the sign convention of ErrorStats.MBEPercentage.
	MBEPercentageSign Sign
}

func defaultFitConfig() FitConfig {
	return FitConfig{
		ConditionLimit:    DefaultConditionLimit,
		Precision:         DefaultPrecision,
		MBEPercentageSign: SignResidual,
	}
}

// FitOption is a functional option for FitConfig.
type FitOption = options.Option[*FitConfig]

// WithConditionLimit sets the condition-number limit. It must be greater than 1.
func WithConditionLimit(limit float64) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if !(limit > 1) {
			return fmt.Errorf("condition limit must be > 1, got %v", limit)
		}
		cfg.ConditionLimit = limit

		return nil
	})
}

// WithEquationPrecision sets the number of decimals used in formulas (0..12).
func WithEquationPrecision(decimals int) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if decimals < 0 || decimals > 12 {
			return fmt.Errorf("equation precision must be within 0..12, got %d", decimals)
		}
		cfg.Precision = decimals

		return nil
	})
}

// WithMBEPercentageSign sets the sign convention of MBEPercentage.
func WithMBEPercentageSign(s Sign) FitOption {
	return options.New(func(cfg *FitConfig) error {
		if s != SignResidual && s != SignInverted {
			return fmt.Errorf("unknown MBE percentage sign %d", int(s))
		}
		cfg.MBEPercentageSign = s

		return nil
	})
}

// NewFitConfig applies opts to the default settings.
func NewFitConfig(opts ...FitOption) (FitConfig, error) {
	return options.Build(defaultFitConfig(), opts...)
}

// String renders every setting, e.g. for cache keys.
func (c FitConfig) String() string {
	return fmt.Sprintf("cond=%g;precision=%d;sign=%s", c.ConditionLimit, c.Precision, c.MBEPercentageSign)
}
