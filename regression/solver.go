package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/pool"
)

// scale is the location and spread used to standardize one driver column.
type scale struct {
	mean float64
	std  float64
}

// standardize returns (x-mean)/std using the population standard deviation.
// ok is false for a constant column, which carries no information for a fit.
func standardize(x []float64) (z []float64, s scale, ok bool) {
	if isConstant(x) {
		return nil, scale{}, false
	}

	mean, std := stat.PopMeanStdDev(x, nil)
	if !(std > 0) || math.IsInf(std, 0) {
		return nil, scale{}, false
	}

	z = make([]float64, len(x))
	for i, v := range x {
		z[i] = (v - mean) / std
	}

	return z, scale{mean: mean, std: std}, true
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}

	return true
}

// solveNormal solves (AᵀA)β = Aᵀy where A is an intercept column of ones
// followed by columns. LU with partial pivoting is used; a system whose
// condition number exceeds limit is reported as degenerate.
//
// Parameters:
//   - columns: Regressor columns, each of len(y)
//   - y: Observed values
//   - limit: Largest accepted condition number of AᵀA
//
// Returns:
//   - []float64: β, intercept first, then one coefficient per column
//   - error: errs.ErrDegenerateFit for singular or ill-conditioned systems
func solveNormal(columns [][]float64, y []float64, limit float64) ([]float64, error) {
	n := len(y)
	k := len(columns) + 1

	data, release := pool.GetFloat64Slice(n * k)
	defer release()

	for i := range n {
		row := data[i*k : (i+1)*k]
		row[0] = 1
		for j, col := range columns {
			row[j+1] = col[i]
		}
	}
	design := mat.NewDense(n, k, data)

	var ata mat.Dense
	ata.Mul(design.T(), design)

	var aty mat.VecDense
	aty.MulVec(design.T(), mat.NewVecDense(n, y))

	var lu mat.LU
	lu.Factorize(&ata)

	cond := lu.Cond()
	if math.IsNaN(cond) || math.IsInf(cond, 0) || cond > limit {
		return nil, fmt.Errorf("%w: normal equations are singular or ill-conditioned (condition number %.3g)",
			errs.ErrDegenerateFit, cond)
	}

	var beta mat.VecDense
	if err := lu.SolveVecTo(&beta, false, &aty); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDegenerateFit, err)
	}

	out := make([]float64, k)
	for i := range out {
		out[i] = beta.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient", errs.ErrDegenerateFit)
		}
	}

	return out, nil
}
