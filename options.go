package enbfit

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/enms-tools/enbfit/cache"
	"github.com/enms-tools/enbfit/chart"
	"github.com/enms-tools/enbfit/internal/options"
	"github.com/enms-tools/enbfit/regression"
)

// FitLineModel chooses the model drawn over the scatter chart.
type FitLineModel uint8

const (
	// FitLineQuadratic draws the quadratic fit of the chart driver.
	FitLineQuadratic FitLineModel = iota
	// FitLineLinear draws the linear model along the chart driver with the
	// other drivers held at their means. It falls back to the quadratic fit
	// when the chart driver is not a term of the linear model.
	FitLineLinear
)

var fitLineNames = map[FitLineModel]string{
	FitLineQuadratic: "quadratic",
	FitLineLinear:    "linear",
}

// String returns the name of the model.
func (m FitLineModel) String() string {
	if name, ok := fitLineNames[m]; ok {
		return name
	}

	return fmt.Sprintf("FitLineModel(%d)", uint8(m))
}

// ParseFitLineModel parses "quadratic" or "linear".
func ParseFitLineModel(name string) (FitLineModel, error) {
	for m, n := range fitLineNames {
		if n == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("unknown fit line model %q", name)
}

type config struct {
	fitOpts     []regression.FitOption
	seriesOpts  []chart.SeriesOption
	fitLine     FitLineModel
	cache       *cache.FitCache[*Report]
	variant     string
	concurrency int
	log         *zap.Logger
}

// Option configures an Analyzer.
type Option = options.Option[*config]

// WithFitOptions passes options to the regression fits.
func WithFitOptions(opts ...regression.FitOption) Option {
	return options.NoError(func(c *config) {
		c.fitOpts = append(c.fitOpts, opts...)
	})
}

// WithSeriesOptions passes options to the chart series builder.
func WithSeriesOptions(opts ...chart.SeriesOption) Option {
	return options.NoError(func(c *config) {
		c.seriesOpts = append(c.seriesOpts, opts...)
	})
}

// WithFitLine sets the model drawn over the scatter chart.
func WithFitLine(m FitLineModel) Option {
	return options.New(func(c *config) error {
		if _, ok := fitLineNames[m]; !ok {
			return fmt.Errorf("unknown fit line model %d", m)
		}
		c.fitLine = m

		return nil
	})
}

// WithCache memoizes reports in fc.
//
// Cache keys already cover the fit, series and fit-line settings of the
// Analyzer. variant is added to every key to separate callers sharing a
// store, e.g. by schema version; it may be empty.
func WithCache(fc *cache.FitCache[*Report], variant string) Option {
	return options.New(func(c *config) error {
		if fc == nil {
			return errors.New("fit cache is nil")
		}
		c.cache = fc
		c.variant = variant

		return nil
	})
}

// WithConcurrency bounds the number of baselines AnalyzeAll fits at once.
// The default is GOMAXPROCS.
func WithConcurrency(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		c.concurrency = n

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if log != nil {
			c.log = log
		}
	})
}

func defaultConfig() config {
	return config{
		fitLine:     FitLineQuadratic,
		concurrency: runtime.GOMAXPROCS(0),
		log:         zap.NewNop(),
	}
}
