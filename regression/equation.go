package regression

import (
	"strings"

	"github.com/shopspring/decimal"
)

// linearEquation renders "Y = c1*X1 + c2*X2 + constant" with the given number
// of decimals. Terms keep their slot order; negative values are written as
// "- |c|" so no "+ -" pairs appear.
func linearEquation(terms []Term, constant float64, precision int) string {
	var sb strings.Builder
	sb.WriteString("Y =")
	for i, t := range terms {
		writeTerm(&sb, i == 0, t.Coefficient, "*"+t.Slot.String(), precision)
	}
	writeTerm(&sb, len(terms) == 0, constant, "", precision)

	return sb.String()
}

// quadraticFormula renders "Y = a*X1^2 + b*X1 + c".
func quadraticFormula(f *QuadraticFit, precision int) string {
	name := f.Slot.String()

	var sb strings.Builder
	sb.WriteString("Y =")
	writeTerm(&sb, true, f.A, "*"+name+"^2", precision)
	writeTerm(&sb, false, f.B, "*"+name, precision)
	writeTerm(&sb, false, f.C, "", precision)

	return sb.String()
}

func writeTerm(sb *strings.Builder, first bool, v float64, suffix string, precision int) {
	places := int32(precision) //nolint:gosec // precision is bounded by WithEquationPrecision
	d := decimal.NewFromFloat(v).Round(places)

	switch {
	case first && d.IsNegative():
		sb.WriteString(" -")
	case first:
		sb.WriteString(" ")
	case d.IsNegative():
		sb.WriteString(" - ")
	default:
		sb.WriteString(" + ")
	}

	sb.WriteString(d.Abs().StringFixed(places))
	sb.WriteString(suffix)
}
