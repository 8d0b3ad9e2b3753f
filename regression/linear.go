package regression

import (
	"fmt"
	"slices"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/pool"
)

// MaxLinearDrivers is the largest number of drivers a linear model accepts.
const MaxLinearDrivers = 3

// FitLinear fits Y = Σ cᵢ*Xᵢ + constant over 1..3 drivers by ordinary least
// squares on the normal equations (AᵀA)β = Aᵀy.
//
// Only points carrying a value for every selected slot are used. Driver
// columns are standardized before solving because driver magnitudes can differ
// by orders of magnitude (mileage vs 0/1 flags); β is mapped back to the
// original scale.
//
// Parameters:
//   - b: Baseline to fit
//   - slots: 1..3 distinct used slots, in any order
//   - opts: Fit options
//
// Returns:
//   - *LinearFit: Coefficients in slot order, equation, R² and error statistics
//   - error: errs.ErrInvalidDriverSelection, errs.ErrInsufficientData (fewer
//     than len(slots)+1 usable points) or errs.ErrDegenerateFit (constant or
//     collinear drivers, zero mean monitored value)
func FitLinear(b *baseline.Baseline, slots []baseline.Slot, opts ...FitOption) (*LinearFit, error) {
	cfg, err := NewFitConfig(opts...)
	if err != nil {
		return nil, err
	}

	if b == nil {
		return nil, fmt.Errorf("%w: nil baseline", errs.ErrInsufficientData)
	}

	active, err := linearSlots(b, slots)
	if err != nil {
		return nil, err
	}

	points := b.Complete(active)
	if len(points) < len(active)+1 {
		return nil, fmt.Errorf("%w: linear fit on %v needs at least %d points, got %d",
			errs.ErrInsufficientData, active, len(active)+1, len(points))
	}

	y := make([]float64, len(points))
	for i, p := range points {
		y[i] = p.Monitored
	}

	columns := make([][]float64, len(active))
	scales := make([]scale, len(active))
	for j, s := range active {
		col := make([]float64, len(points))
		for i, p := range points {
			col[i], _ = p.Driver(s)
		}

		z, sc, ok := standardize(col)
		if !ok {
			return nil, fmt.Errorf("%w: driver %s is constant across %d points", errs.ErrDegenerateFit, s, len(points))
		}
		columns[j] = z
		scales[j] = sc
	}

	beta, err := solveNormal(columns, y, cfg.ConditionLimit)
	if err != nil {
		return nil, fmt.Errorf("linear fit on %v: %w", active, err)
	}

	fit := &LinearFit{
		Terms:    make([]Term, len(active)),
		Constant: beta[0],
		N:        len(points),
	}
	for j, s := range active {
		coef := beta[j+1] / scales[j].std
		fit.Constant -= coef * scales[j].mean
		fit.Terms[j] = Term{Slot: s, Coefficient: coef, Mean: scales[j].mean}
	}

	fitted, release := pool.GetFloat64Slice(len(points))
	defer release()
	for i := range fitted {
		v := beta[0]
		for j, z := range columns {
			v += beta[j+1] * z[i]
		}
		fitted[i] = v
	}

	fit.Stats, err = errorStats(y, fitted, cfg.MBEPercentageSign)
	if err != nil {
		return nil, fmt.Errorf("linear fit on %v: %w", active, err)
	}
	fit.RSquare = rSquared(y, fitted)
	fit.Equation = linearEquation(fit.Terms, fit.Constant, cfg.Precision)

	return fit, nil
}

// linearSlots validates the selection and returns it sorted by slot.
func linearSlots(b *baseline.Baseline, slots []baseline.Slot) ([]baseline.Slot, error) {
	if len(slots) == 0 || len(slots) > MaxLinearDrivers {
		return nil, fmt.Errorf("%w: linear fit takes 1..%d drivers, got %d",
			errs.ErrInvalidDriverSelection, MaxLinearDrivers, len(slots))
	}

	active := slices.Clone(slots)
	slices.Sort(active)
	for i, s := range active {
		if i > 0 && s == active[i-1] {
			return nil, fmt.Errorf("%w: slot %s selected twice", errs.ErrInvalidDriverSelection, s)
		}
		if err := b.CheckSlot(s); err != nil {
			return nil, err
		}
	}

	return active, nil
}
