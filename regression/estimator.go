package regression

import (
	"fmt"
	"strings"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

// ModelType represents the type of regression model.
type ModelType int

const (
	// ModelTypeQuadratic represents Y = a*X² + b*X + c against one driver.
	ModelTypeQuadratic ModelType = iota
	// ModelTypeLinear represents Y = Σ cᵢ*Xᵢ + k against up to three drivers.
	ModelTypeLinear
)

var modelTypeNames = map[ModelType]string{
	ModelTypeQuadratic: "quadratic",
	ModelTypeLinear:    "linear",
}

// String returns the string representation of the model type.
func (mt ModelType) String() string {
	if name, exists := modelTypeNames[mt]; exists {
		return name
	}

	return "unknown"
}

// ModelTypeFromString returns the ModelType for a given name.
// Returns ModelType(-1) for unknown names.
func ModelTypeFromString(name string) ModelType {
	for mt, n := range modelTypeNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return mt
		}
	}

	return ModelType(-1)
}

// Predictor evaluates a fitted model on an observation.
type Predictor interface {
	// Predict returns the model value for p. ok is false when p lacks a driver
	// value the model needs.
	Predict(p baseline.DataPoint) (value float64, ok bool)
	// Type returns the model type.
	Type() ModelType
}

// Curve evaluates a model along a single driver axis.
type Curve interface {
	Estimate(x float64) float64
}

// CurveFunc adapts a function to Curve.
type CurveFunc func(x float64) float64

// Estimate calls f(x).
func (f CurveFunc) Estimate(x float64) float64 {
	return f(x)
}

var (
	_ Predictor = (*QuadraticFit)(nil)
	_ Predictor = (*LinearFit)(nil)
	_ Curve     = (*QuadraticFit)(nil)
)

// Estimate evaluates a*x² + b*x + c.
func (f *QuadraticFit) Estimate(x float64) float64 {
	return (f.A*x+f.B)*x + f.C
}

// Predict evaluates the model at the point's value of the fitted slot.
func (f *QuadraticFit) Predict(p baseline.DataPoint) (float64, bool) {
	x, ok := p.Driver(f.Slot)
	if !ok {
		return 0, false
	}

	return f.Estimate(x), true
}

// Type returns ModelTypeQuadratic.
func (f *QuadraticFit) Type() ModelType {
	return ModelTypeQuadratic
}

// Predict evaluates Σ cᵢ*xᵢ + k. Every term slot must be present on p.
func (f *LinearFit) Predict(p baseline.DataPoint) (float64, bool) {
	y := f.Constant
	for _, t := range f.Terms {
		x, ok := p.Driver(t.Slot)
		if !ok {
			return 0, false
		}
		y += t.Coefficient * x
	}

	return y, true
}

// Type returns ModelTypeLinear.
func (f *LinearFit) Type() ModelType {
	return ModelTypeLinear
}

// Curve returns the model as a function of slot s alone, with every other
// term held at its sample mean.
func (f *LinearFit) Curve(s baseline.Slot) (Curve, error) {
	coef, ok := f.Coefficient(s)
	if !ok {
		return nil, fmt.Errorf("%w: slot %s is not a term of the linear model", errs.ErrInvalidDriverSelection, s)
	}

	offset := f.Constant
	for _, t := range f.Terms {
		if t.Slot != s {
			offset += t.Coefficient * t.Mean
		}
	}

	return CurveFunc(func(x float64) float64 {
		return coef*x + offset
	}), nil
}
