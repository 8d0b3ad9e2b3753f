package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/enms-tools/enbfit/errs"
)

// flatResidualTolerance scales the residual sum accepted as zero when every
// observed value is identical and SS_tot vanishes.
const flatResidualTolerance = 1e-18

// rSquared returns 1 - SS_res/SS_tot. When all observations are identical it
// reports 1 for a residual-free fit and 0 otherwise.
func rSquared(y, fitted []float64) float64 {
	mean := stat.Mean(y, nil)

	var ssTot, ssRes float64
	for i, v := range y {
		d := v - mean
		ssTot += d * d
		r := v - fitted[i]
		ssRes += r * r
	}

	if isConstant(y) {
		if ssRes <= flatResidualTolerance*(1+floats.Dot(y, y)) {
			return 1
		}

		return 0
	}

	return 1 - ssRes/ssTot
}

// rmse returns sqrt(mean((y-fitted)²)).
func rmse(y, fitted []float64) float64 {
	return floats.Distance(y, fitted, 2) / math.Sqrt(float64(len(y)))
}

// errorStats computes the accuracy statistics of fitted against y. Residuals
// are y - fitted.
//
// Returns errs.ErrDegenerateFit when mean(y) is zero or every y is zero, since
// the percentage metrics are undefined.
func errorStats(y, fitted []float64, sign Sign) (ErrorStats, error) {
	n := float64(len(y))

	var sumE, sumAbs, sumSq, maxPct float64
	nonZero := 0
	for i, actual := range y {
		e := actual - fitted[i]
		sumE += e
		sumAbs += math.Abs(e)
		sumSq += e * e

		if actual == 0 {
			continue
		}
		nonZero++
		if pct := math.Abs(e) / math.Abs(actual) * 100; pct > maxPct {
			maxPct = pct
		}
	}

	if nonZero == 0 {
		return ErrorStats{}, fmt.Errorf("%w: every monitored value is zero", errs.ErrDegenerateFit)
	}

	mean := stat.Mean(y, nil)
	if mean == 0 {
		return ErrorStats{}, fmt.Errorf("%w: mean monitored value is zero", errs.ErrDegenerateFit)
	}

	st := ErrorStats{
		MBE:                sumE / n,
		MAE:                sumAbs / n,
		RMSE:               math.Sqrt(sumSq / n),
		MaxErrorPercentage: maxPct,
	}
	st.MBEPercentage = st.MBE / mean * 100
	if sign == SignInverted {
		st.MBEPercentage = -st.MBEPercentage
	}
	st.MAEPercentage = st.MAE / mean * 100
	st.CvRMSE = st.RMSE / mean * 100

	return st, nil
}
