package regression

import (
	"errors"
	"fmt"
	"slices"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

// Selection chooses the drivers of one analysis.
//
// Chart is the driver of the quadratic fit and of the scatter chart. Linear
// lists the drivers of the linear model. Zero values are filled by Resolve.
type Selection struct {
	Chart  baseline.Slot   `json:"chart,omitempty" yaml:"chart,omitempty"`
	Linear []baseline.Slot `json:"linear,omitempty" yaml:"linear,omitempty"`
}

// Resolve fills defaults from b and validates the selection.
//
// An unset Chart becomes the first used slot. An empty Linear becomes every used
// slot, which fails with errs.ErrInvalidDriverSelection when more than
// MaxLinearDrivers slots are used.
func (s Selection) Resolve(b *baseline.Baseline) (Selection, error) {
	used := b.UsedSlots()
	if len(used) == 0 {
		return Selection{}, fmt.Errorf("%w: baseline %q has no used drivers", errs.ErrInvalidDriverSelection, b.ID)
	}

	out := Selection{Chart: s.Chart, Linear: slices.Clone(s.Linear)}
	if out.Chart == 0 {
		out.Chart = used[0]
	}
	if err := b.CheckSlot(out.Chart); err != nil {
		return Selection{}, err
	}

	if len(out.Linear) == 0 {
		if len(used) > MaxLinearDrivers {
			return Selection{}, fmt.Errorf("%w: baseline %q uses %d drivers, select at most %d for the linear model",
				errs.ErrInvalidDriverSelection, b.ID, len(used), MaxLinearDrivers)
		}
		out.Linear = used
	}

	active, err := linearSlots(b, out.Linear)
	if err != nil {
		return Selection{}, err
	}
	out.Linear = active

	return out, nil
}

// Fit runs the quadratic fit on sel.Chart and the linear fit on sel.Linear.
//
// Each fit is all-or-nothing, the pair is not: a fit that fails leaves its
// field of Result nil. An error is returned only when the selection is
// invalid or both fits fail, in which case both failures are joined.
//
// Example:
//
//	res, err := regression.Fit(b, regression.Selection{Chart: baseline.X1})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Model().Predict(b.Points[0]))
func Fit(b *baseline.Baseline, sel Selection, opts ...FitOption) (*Result, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil baseline", errs.ErrInsufficientData)
	}

	sel, err := sel.Resolve(b)
	if err != nil {
		return nil, err
	}

	quad, quadErr := FitQuadratic(b, sel.Chart, opts...)
	lin, linErr := FitLinear(b, sel.Linear, opts...)
	if quadErr != nil && linErr != nil {
		return nil, fmt.Errorf("baseline %q: %w", b.ID, errors.Join(quadErr, linErr))
	}

	res := &Result{Linear: lin, Quadratic: quad}
	if quadErr != nil {
		res.Quadratic = nil
		res.Skipped = append(res.Skipped, quadErr.Error())
	}
	if linErr != nil {
		res.Linear = nil
		res.Skipped = append(res.Skipped, linErr.Error())
	}

	return res, nil
}

// Candidate is one fitted model and its goodness of fit.
type Candidate struct {
	Name    string    `json:"name"`
	Model   Predictor `json:"-"`
	RSquare float64   `json:"rSquare"`
}

// Rank returns candidates ordered by R², best first. Ties keep input order.
func Rank(candidates []Candidate) []Candidate {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.RSquare > b.RSquare:
			return -1
		case a.RSquare < b.RSquare:
			return 1
		default:
			return 0
		}
	})

	return out
}

// Candidates returns the models of r as ranking candidates.
func (r *Result) Candidates() []Candidate {
	var out []Candidate
	if r.Linear != nil {
		out = append(out, Candidate{Name: r.Linear.Equation, Model: r.Linear, RSquare: r.Linear.RSquare})
	}
	if r.Quadratic != nil {
		out = append(out, Candidate{Name: r.Quadratic.Formula, Model: r.Quadratic, RSquare: r.Quadratic.RSquare})
	}

	return out
}

// FitEachDriver fits a quadratic model against every used driver separately
// and ranks them by R². It helps choosing the chart driver of a baseline.
//
// Drivers that cannot be fitted are skipped. When none can be fitted the
// joined errors are returned.
func FitEachDriver(b *baseline.Baseline, opts ...FitOption) ([]Candidate, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil baseline", errs.ErrInsufficientData)
	}

	used := b.UsedSlots()
	if len(used) == 0 {
		return nil, fmt.Errorf("%w: baseline %q has no used drivers", errs.ErrInvalidDriverSelection, b.ID)
	}

	candidates := make([]Candidate, 0, len(used))
	var fitErrs []error
	for _, s := range used {
		fit, err := FitQuadratic(b, s, opts...)
		if err != nil {
			fitErrs = append(fitErrs, err)
			continue
		}
		candidates = append(candidates, Candidate{Name: s.String(), Model: fit, RSquare: fit.RSquare})
	}

	if len(candidates) == 0 {
		return nil, errors.Join(fitErrs...)
	}

	return Rank(candidates), nil
}
