package chart

import (
	"time"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/regression"
)

// ComparisonPoint pairs the actual monitored value of a period with the model
// value for the same period.
type ComparisonPoint struct {
	Period time.Time `json:"period"`
	Actual float64   `json:"actual"`
	// Theoretical is None when the period lacks a driver the model needs.
	Theoretical baseline.Optional `json:"theoretical"`
}

// Deviation returns Actual - Theoretical, or None when there is no theoretical value.
func (c ComparisonPoint) Deviation() baseline.Optional {
	t, ok := c.Theoretical.Get()
	if !ok {
		return baseline.None()
	}

	return baseline.Some(c.Actual - t)
}

// BuildComparison evaluates model on every point of b, in the order of
// b.Points. The order is never changed; callers wanting a chronological chart
// pass b.SortedByPeriod().
//
// A nil model yields None for every theoretical value.
func BuildComparison(b *baseline.Baseline, model regression.Predictor) []ComparisonPoint {
	if b == nil {
		return nil
	}

	out := make([]ComparisonPoint, len(b.Points))
	for i, p := range b.Points {
		out[i] = ComparisonPoint{Period: p.Period, Actual: p.Monitored}
		if model == nil {
			continue
		}
		if v, ok := model.Predict(p); ok {
			out[i].Theoretical = baseline.Some(v)
		}
	}

	return out
}

// CumulativeDeviation returns the running sum of Deviation over points
// (a CUSUM chart). Periods without a theoretical value carry the previous sum
// forward and are reported as None.
func CumulativeDeviation(points []ComparisonPoint) []baseline.Optional {
	out := make([]baseline.Optional, len(points))

	var sum float64
	for i, c := range points {
		d, ok := c.Deviation().Get()
		if !ok {
			out[i] = baseline.None()
			continue
		}
		sum += d
		out[i] = baseline.Some(sum)
	}

	return out
}
