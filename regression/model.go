package regression

import (
	"fmt"

	"github.com/enms-tools/enbfit/baseline"
)

// QuadraticFit is the single-driver model: Y = A*X² + B*X + C.
//
// Fields:
//   - Slot: The driver the model was fitted against
//   - A, B, C: Coefficients of X², X and the constant term
//   - RSquare: Coefficient of determination (1 is a perfect fit)
//   - RMSE: Root mean square error, same unit as the monitored value
//   - N: Number of points used (points lacking the driver are excluded)
//   - Formula: Human-readable formula
type QuadraticFit struct {
	Slot    baseline.Slot `json:"slot"`
	A       float64       `json:"a"`
	B       float64       `json:"b"`
	C       float64       `json:"c"`
	RSquare float64       `json:"rSquare"`
	RMSE    float64       `json:"rmse"`
	N       int           `json:"n"`
	Formula string        `json:"formula"`
}

// String returns a short summary of the fit.
func (f *QuadraticFit) String() string {
	return fmt.Sprintf("QuadraticFit{%s, R²: %.4f, RMSE: %.4f, N: %d}", f.Formula, f.RSquare, f.RMSE, f.N)
}

// Term is one driver of a linear model.
type Term struct {
	Slot        baseline.Slot `json:"slot"`
	Coefficient float64       `json:"coefficient"`
	// Mean is the sample mean of the driver over the fitted points.
	Mean float64 `json:"mean"`
}

// ErrorStats holds the accuracy statistics of a linear fit. Residuals are
// actual minus predicted; percentages are relative to the mean actual value,
// except MaxErrorPercentage which is relative to each point's own actual value.
type ErrorStats struct {
	MBE                float64 `json:"mbe"`
	MBEPercentage      float64 `json:"mbePercentage"`
	MAE                float64 `json:"mae"`
	MAEPercentage      float64 `json:"maePercentage"`
	RMSE               float64 `json:"rmse"`
	CvRMSE             float64 `json:"cvRmse"`
	MaxErrorPercentage float64 `json:"maxErrorPercentage"`
}

// LinearFit is the multiple linear model: Y = Σ coefficient_i * X_i + Constant.
//
// Terms are ordered by slot. Equation lists the terms in the same order with
// coefficients rounded to the configured precision.
type LinearFit struct {
	Terms    []Term     `json:"terms"`
	Constant float64    `json:"constant"`
	Equation string     `json:"equation"`
	RSquare  float64    `json:"rSquare"`
	Stats    ErrorStats `json:"stats"`
	N        int        `json:"n"`
}

// Slots returns the slots of the model terms.
func (f *LinearFit) Slots() []baseline.Slot {
	out := make([]baseline.Slot, len(f.Terms))
	for i, t := range f.Terms {
		out[i] = t.Slot
	}

	return out
}

// Coefficient returns the coefficient of slot s and whether s is a term.
func (f *LinearFit) Coefficient(s baseline.Slot) (float64, bool) {
	for _, t := range f.Terms {
		if t.Slot == s {
			return t.Coefficient, true
		}
	}

	return 0, false
}

// String returns a short summary of the fit.
func (f *LinearFit) String() string {
	return fmt.Sprintf("LinearFit{%s, R²: %.4f, CvRMSE: %.2f%%, N: %d}", f.Equation, f.RSquare, f.Stats.CvRMSE, f.N)
}

// Result bundles the models fitted for one baseline. At least one of
// Quadratic and Linear is set; Skipped holds the reasons for a missing one.
type Result struct {
	Quadratic *QuadraticFit `json:"quadratic"`
	Linear    *LinearFit    `json:"linear"`
	Skipped   []string      `json:"skipped,omitempty"`
}

// Model returns the model used for theoretical values: the linear fit when
// present, otherwise the quadratic fit. It returns nil when neither is set.
func (r *Result) Model() Predictor {
	switch {
	case r.Linear != nil:
		return r.Linear
	case r.Quadratic != nil:
		return r.Quadratic
	default:
		return nil
	}
}

// String returns a short summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("Result{Linear: %v, Quadratic: %v}", r.Linear, r.Quadratic)
}
