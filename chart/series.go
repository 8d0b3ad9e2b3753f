package chart

import (
	"fmt"
	"slices"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/options"
	"github.com/enms-tools/enbfit/regression"
)

// XY is one chart coordinate.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is the scatter chart of one driver against the monitored value with
// the model drawn over it.
//
// Scatter and FitLine are both non-decreasing in X. FitLine never leaves the
// observed driver range.
type Series struct {
	Slot    baseline.Slot `json:"slot"`
	Caption string        `json:"caption"`
	Unit    string        `json:"unit"`
	Scatter []XY          `json:"scatter"`
	FitLine []XY          `json:"fitLine"`
}

// SeriesConfig holds the settings of BuildSeries.
type SeriesConfig struct {
	// Samples is the number of fit-line points, 0 for each distinct
	// observed value.
	Samples int
}

// SeriesOption configures BuildSeries.
type SeriesOption = options.Option[*SeriesConfig]

// NewSeriesConfig applies opts to the default settings.
func NewSeriesConfig(opts ...SeriesOption) (SeriesConfig, error) {
	return options.Build(SeriesConfig{}, opts...)
}

// WithSamples evaluates the fit line at n evenly spaced driver values from the
// observed minimum to the observed maximum instead of at each distinct
// observed value. n must be at least 2.
func WithSamples(n int) SeriesOption {
	return options.New(func(c *SeriesConfig) error {
		if n < 2 {
			return fmt.Errorf("fit line needs at least 2 samples, got %d", n)
		}
		c.Samples = n

		return nil
	})
}

// BuildSeries builds the scatter and fit-line series of slot.
//
// Points without a value at slot are left out. curve may be nil, in which case
// only the scatter is produced.
//
// Parameters:
//   - b: Baseline providing the observations and the driver caption
//   - slot: Driver on the X axis, must be marked used
//   - curve: Model evaluated along slot
//   - opts: Series options
//
// Returns:
//   - *Series: Chart data
//   - error: errs.ErrInvalidDriverSelection for an unused or out-of-range slot
func BuildSeries(b *baseline.Baseline, slot baseline.Slot, curve regression.Curve, opts ...SeriesOption) (*Series, error) {
	cfg, err := NewSeriesConfig(opts...)
	if err != nil {
		return nil, err
	}

	if b == nil {
		return nil, fmt.Errorf("%w: nil baseline", errs.ErrInvalidDriverSelection)
	}

	if err := b.CheckSlot(slot); err != nil {
		return nil, err
	}

	spec := b.Spec(slot)
	s := &Series{
		Slot:    slot,
		Caption: spec.Caption(slot),
		Unit:    spec.Unit,
	}

	x, y := b.Column(slot)
	s.Scatter = make([]XY, len(x))
	for i := range x {
		s.Scatter[i] = XY{X: x[i], Y: y[i]}
	}
	slices.SortStableFunc(s.Scatter, func(a, c XY) int {
		switch {
		case a.X < c.X:
			return -1
		case a.X > c.X:
			return 1
		default:
			return 0
		}
	})

	if curve == nil || len(s.Scatter) == 0 {
		return s, nil
	}

	var xs []float64
	if cfg.Samples > 0 {
		xs = sampleRange(s.Scatter[0].X, s.Scatter[len(s.Scatter)-1].X, cfg.Samples)
	} else {
		xs = distinctX(s.Scatter)
	}

	s.FitLine = make([]XY, len(xs))
	for i, v := range xs {
		s.FitLine[i] = XY{X: v, Y: curve.Estimate(v)}
	}

	return s, nil
}

// distinctX returns the distinct X values of sorted points.
func distinctX(sorted []XY) []float64 {
	out := make([]float64, 0, len(sorted))
	for i, p := range sorted {
		if i > 0 && p.X == sorted[i-1].X {
			continue
		}
		out = append(out, p.X)
	}

	return out
}

// sampleRange returns n evenly spaced values from lo to hi inclusive. The last
// value is exactly hi; a degenerate range yields the single value lo.
func sampleRange(lo, hi float64, n int) []float64 {
	if hi == lo {
		return []float64{lo}
	}

	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi

	return out
}
