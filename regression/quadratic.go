package regression

import (
	"fmt"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/pool"
)

// minQuadraticPoints is the number of free parameters of a quadratic.
const minQuadraticPoints = 3

// FitQuadratic fits Y = A*X² + B*X + C against a single driver by ordinary
// least squares.
//
// Points without a value at slot are excluded. The driver is standardized
// before the 3×3 normal equations are built, so power sums of large driver
// values (e.g. mileage in the hundreds of thousands) stay well conditioned;
// coefficients are mapped back to the original scale.
//
// Parameters:
//   - b: Baseline to fit
//   - slot: Driver slot, must be marked used
//   - opts: Fit options
//
// Returns:
//   - *QuadraticFit: Fitted coefficients and goodness of fit
//   - error: errs.ErrInvalidDriverSelection, errs.ErrInsufficientData (fewer
//     than 3 usable points) or errs.ErrDegenerateFit (fewer than 3 distinct
//     driver values, singular system)
//
// Example:
//
//	fit, err := regression.FitQuadratic(b, baseline.X1)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(fit.Formula, fit.RSquare)
func FitQuadratic(b *baseline.Baseline, slot baseline.Slot, opts ...FitOption) (*QuadraticFit, error) {
	cfg, err := NewFitConfig(opts...)
	if err != nil {
		return nil, err
	}

	if b == nil {
		return nil, fmt.Errorf("%w: nil baseline", errs.ErrInsufficientData)
	}

	if err := b.CheckSlot(slot); err != nil {
		return nil, err
	}

	x, y := b.Column(slot)
	if len(x) < minQuadraticPoints {
		return nil, fmt.Errorf("%w: quadratic fit on %s needs at least %d points, got %d",
			errs.ErrInsufficientData, slot, minQuadraticPoints, len(x))
	}

	if d := distinctCount(x); d < minQuadraticPoints {
		return nil, fmt.Errorf("%w: quadratic fit on %s needs at least %d distinct driver values, got %d",
			errs.ErrDegenerateFit, slot, minQuadraticPoints, d)
	}

	t, s, ok := standardize(x)
	if !ok {
		return nil, fmt.Errorf("%w: driver %s has no variance", errs.ErrDegenerateFit, slot)
	}

	t2 := make([]float64, len(t))
	for i, v := range t {
		t2[i] = v * v
	}

	beta, err := solveNormal([][]float64{t, t2}, y, cfg.ConditionLimit)
	if err != nil {
		return nil, fmt.Errorf("quadratic fit on %s: %w", slot, err)
	}

	// beta holds Y = a't² + b't + c' with t = (x-μ)/σ.
	c0, b1, a2 := beta[0], beta[1], beta[2]
	mu, v := s.mean, s.std*s.std

	fit := &QuadraticFit{
		Slot: slot,
		A:    a2 / v,
		B:    b1/s.std - 2*a2*mu/v,
		C:    c0 - b1*mu/s.std + a2*mu*mu/v,
		N:    len(x),
	}

	fitted, release := pool.GetFloat64Slice(len(t))
	defer release()
	for i, tv := range t {
		fitted[i] = (a2*tv+b1)*tv + c0
	}

	fit.RSquare = rSquared(y, fitted)
	fit.RMSE = rmse(y, fitted)
	fit.Formula = quadraticFormula(fit, cfg.Precision)

	return fit, nil
}

func distinctCount(x []float64) int {
	seen := make(map[float64]struct{}, len(x))
	for _, v := range x {
		seen[v] = struct{}{}
	}

	return len(seen)
}
