package regression

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

// row is one test observation; NaN drivers become None.
type row struct {
	y float64
	x []float64
}

func newTestBaseline(t *testing.T, used []baseline.Slot, rows ...row) *baseline.Baseline {
	t.Helper()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	points := make([]baseline.DataPoint, len(rows))
	for i, r := range rows {
		drivers := make([]baseline.Optional, len(r.x))
		for j, v := range r.x {
			if math.IsNaN(v) {
				drivers[j] = baseline.None()
			} else {
				drivers[j] = baseline.Some(v)
			}
		}
		points[i] = baseline.NewDataPoint(start.AddDate(0, i, 0), r.y, drivers...)
	}

	b, err := baseline.New("EnB-test", baseline.UsedDrivers(used...), points)
	require.NoError(t, err)

	return b
}

// threeDriverRows follows y = 2*x1 - 3*x2 + 0.5*x3 + 10 exactly.
func threeDriverRows() []row {
	xs := [][]float64{
		{1, 3, 100},
		{2, 1, 250},
		{3, 4, 180},
		{4, 1, 300},
		{5, 5, 220},
		{6, 9, 150},
	}
	rows := make([]row, len(xs))
	for i, x := range xs {
		rows[i] = row{y: 2*x[0] - 3*x[1] + 0.5*x[2] + 10, x: x}
	}

	return rows
}

func TestFitLinear_ExactRecovery(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1, baseline.X2, baseline.X3}, threeDriverRows()...)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X3, baseline.X1, baseline.X2})
	require.NoError(t, err)

	require.Equal(t, []baseline.Slot{baseline.X1, baseline.X2, baseline.X3}, fit.Slots())
	assert.InDelta(t, 2.0, fit.Terms[0].Coefficient, 1e-6)
	assert.InDelta(t, -3.0, fit.Terms[1].Coefficient, 1e-6)
	assert.InDelta(t, 0.5, fit.Terms[2].Coefficient, 1e-6)
	assert.InDelta(t, 10.0, fit.Constant, 1e-6)
	assert.InDelta(t, 1.0, fit.RSquare, 1e-9)
	assert.Equal(t, 6, fit.N)

	assert.InDelta(t, 0, fit.Stats.MBE, 1e-6)
	assert.InDelta(t, 0, fit.Stats.MAE, 1e-6)
	assert.InDelta(t, 0, fit.Stats.RMSE, 1e-6)
	assert.InDelta(t, 0, fit.Stats.CvRMSE, 1e-6)
	assert.InDelta(t, 0, fit.Stats.MaxErrorPercentage, 1e-6)

	assert.Equal(t, "Y = 2.0000*X1 - 3.0000*X2 + 0.5000*X3 + 10.0000", fit.Equation)
}

func TestFitLinear_PerfectLine(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1},
		row{y: 200, x: []float64{100}},
		row{y: 400, x: []float64{200}},
		row{y: 600, x: []float64{300}},
	)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X1})
	require.NoError(t, err)

	coef, ok := fit.Coefficient(baseline.X1)
	require.True(t, ok)
	assert.InDelta(t, 2.0, coef, 1e-9)
	assert.InDelta(t, 0.0, fit.Constant, 1e-6)
	assert.InDelta(t, 1.0, fit.RSquare, 1e-12)
	assert.InDelta(t, 0.0, fit.Stats.RMSE, 1e-9)
	assert.InDelta(t, 0.0, fit.Stats.MAE, 1e-9)
	assert.Equal(t, "Y = 2.0000*X1 + 0.0000", fit.Equation)
}

func TestFitLinear_MinimumPoints(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1, baseline.X2},
		row{y: 13, x: []float64{1, 2}},
		row{y: 20, x: []float64{3, 1}},
		row{y: 31, x: []float64{5, 4}},
	)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X1, baseline.X2})
	require.NoError(t, err)
	assert.Equal(t, 3, fit.N)
	assert.InDelta(t, 1.0, fit.RSquare, 1e-9)
}

func TestFitLinear_Errors(t *testing.T) {
	used := []baseline.Slot{baseline.X1, baseline.X2, baseline.X3, baseline.X4}
	full := []row{
		{y: 10, x: []float64{1, 5, 2, 7}},
		{y: 12, x: []float64{2, 5, 3, 1}},
		{y: 15, x: []float64{3, 5, 1, 4}},
		{y: 19, x: []float64{4, 5, 8, 2}},
		{y: 22, x: []float64{5, 5, 6, 9}},
	}

	tests := []struct {
		name    string
		rows    []row
		slots   []baseline.Slot
		wantErr error
	}{
		{"no drivers", full, nil, errs.ErrInvalidDriverSelection},
		{"four drivers", full, used, errs.ErrInvalidDriverSelection},
		{"duplicate slot", full, []baseline.Slot{baseline.X1, baseline.X1}, errs.ErrInvalidDriverSelection},
		{"unused slot", full, []baseline.Slot{baseline.X5}, errs.ErrInvalidDriverSelection},
		{"out of range slot", full, []baseline.Slot{baseline.Slot(7)}, errs.ErrInvalidDriverSelection},
		{"constant driver", full, []baseline.Slot{baseline.X1, baseline.X2}, errs.ErrDegenerateFit},
		{
			"too few points",
			[]row{{y: 1, x: []float64{1, 2, 3, 4}}, {y: 2, x: []float64{2, 1, 4, 3}}},
			[]baseline.Slot{baseline.X1, baseline.X3},
			errs.ErrInsufficientData,
		},
		{
			"missing values reduce usable points",
			[]row{
				{y: 1, x: []float64{1, 2, 3, 4}},
				{y: 2, x: []float64{2, math.NaN(), 4, 3}},
				{y: 3, x: []float64{3, 1, math.NaN(), 3}},
			},
			[]baseline.Slot{baseline.X1, baseline.X2},
			errs.ErrInsufficientData,
		},
		{
			"all actual values zero",
			[]row{{y: 0, x: []float64{1, 0, 0, 0}}, {y: 0, x: []float64{2, 0, 0, 0}}, {y: 0, x: []float64{3, 0, 0, 0}}},
			[]baseline.Slot{baseline.X1},
			errs.ErrDegenerateFit,
		},
		{
			"zero mean actual value",
			[]row{{y: -5, x: []float64{1, 0, 0, 0}}, {y: 0, x: []float64{2, 0, 0, 0}}, {y: 5, x: []float64{3, 0, 0, 0}}},
			[]baseline.Slot{baseline.X1},
			errs.ErrDegenerateFit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBaseline(t, used, tt.rows...)
			fit, err := FitLinear(b, tt.slots)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, fit)
		})
	}
}

func TestFitLinear_Collinear(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1, baseline.X2},
		row{y: 10, x: []float64{1, 2}},
		row{y: 14, x: []float64{2, 4}},
		row{y: 17, x: []float64{3, 6}},
		row{y: 23, x: []float64{4, 8}},
	)

	_, err := FitLinear(b, []baseline.Slot{baseline.X1, baseline.X2})
	require.ErrorIs(t, err, errs.ErrDegenerateFit)
}

func TestFitLinear_ZeroActualExcludedFromMaxError(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1},
		row{y: 0, x: []float64{0}},
		row{y: 12, x: []float64{1}},
		row{y: 18, x: []float64{2}},
		row{y: 31, x: []float64{3}},
	)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X1})
	require.NoError(t, err)

	want := 0.0
	for _, p := range b.Points {
		if p.Monitored == 0 {
			continue
		}
		pred, ok := fit.Predict(p)
		require.True(t, ok)
		want = math.Max(want, math.Abs(p.Monitored-pred)/p.Monitored*100)
	}

	require.False(t, math.IsNaN(fit.Stats.MaxErrorPercentage))
	require.False(t, math.IsInf(fit.Stats.MaxErrorPercentage, 0))
	assert.InDelta(t, want, fit.Stats.MaxErrorPercentage, 1e-9)
}

func TestFitLinear_FlatMonitoredValues(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1},
		row{y: 5, x: []float64{1}},
		row{y: 5, x: []float64{2}},
		row{y: 5, x: []float64{4}},
	)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, fit.RSquare)
	assert.InDelta(t, 0, fit.Terms[0].Coefficient, 1e-12)
	assert.InDelta(t, 5, fit.Constant, 1e-12)
}

func TestFitLinear_Idempotent(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1, baseline.X2},
		row{y: 10.2, x: []float64{1, 2}},
		row{y: 14.9, x: []float64{2, 1}},
		row{y: 17.1, x: []float64{3, 5}},
		row{y: 23.4, x: []float64{4, 3}},
		row{y: 24.8, x: []float64{5, 6}},
	)

	first, err := FitLinear(b, []baseline.Slot{baseline.X1, baseline.X2})
	require.NoError(t, err)
	second, err := FitLinear(b, []baseline.Slot{baseline.X2, baseline.X1})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFitLinear_Options(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1},
		row{y: 200, x: []float64{100}},
		row{y: 400, x: []float64{200}},
		row{y: 600, x: []float64{300}},
	)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X1}, WithEquationPrecision(2))
	require.NoError(t, err)
	assert.Equal(t, "Y = 2.00*X1 + 0.00", fit.Equation)

	_, err = FitLinear(b, []baseline.Slot{baseline.X1}, WithEquationPrecision(13))
	require.Error(t, err)

	_, err = FitLinear(b, []baseline.Slot{baseline.X1}, WithConditionLimit(0.5))
	require.Error(t, err)

	_, err = FitLinear(b, []baseline.Slot{baseline.X1}, WithMBEPercentageSign(Sign(9)))
	require.Error(t, err)
}

func TestErrorStats(t *testing.T) {
	y := []float64{10, 20}
	fitted := []float64{9, 18}

	st, err := errorStats(y, fitted, SignResidual)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, st.MBE, 1e-12)
	assert.InDelta(t, 10.0, st.MBEPercentage, 1e-12)
	assert.InDelta(t, 1.5, st.MAE, 1e-12)
	assert.InDelta(t, 10.0, st.MAEPercentage, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), st.RMSE, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5)/15*100, st.CvRMSE, 1e-12)
	assert.InDelta(t, 10.0, st.MaxErrorPercentage, 1e-12)

	inverted, err := errorStats(y, fitted, SignInverted)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, inverted.MBE, 1e-12)
	assert.InDelta(t, -10.0, inverted.MBEPercentage, 1e-12)

	_, err = errorStats([]float64{0, 0}, []float64{1, -1}, SignResidual)
	require.ErrorIs(t, err, errs.ErrDegenerateFit)
}

func TestRSquared(t *testing.T) {
	assert.Equal(t, 1.0, rSquared([]float64{3, 3, 3}, []float64{3, 3, 3}))
	assert.Equal(t, 0.0, rSquared([]float64{3, 3, 3}, []float64{2, 3, 4}))
	assert.InDelta(t, 1.0, rSquared([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-15)
	assert.InDelta(t, 0.0, rSquared([]float64{1, 2, 3}, []float64{2, 2, 2}), 1e-15)
}

func TestFitQuadratic_ExactRecovery(t *testing.T) {
	rows := make([]row, 0, 6)
	for x := 1000.0; x <= 1500; x += 100 {
		rows = append(rows, row{y: 0.002*x*x - 1.5*x + 400, x: []float64{x}})
	}
	b := newTestBaseline(t, []baseline.Slot{baseline.X1}, rows...)

	fit, err := FitQuadratic(b, baseline.X1)
	require.NoError(t, err)
	assert.InDelta(t, 0.002, fit.A, 1e-9)
	assert.InDelta(t, -1.5, fit.B, 1e-6)
	assert.InDelta(t, 400, fit.C, 1e-3)
	assert.InDelta(t, 1.0, fit.RSquare, 1e-9)
	assert.InDelta(t, 0, fit.RMSE, 1e-6)
	assert.Equal(t, 6, fit.N)
	assert.Equal(t, "Y = 0.0020*X1^2 - 1.5000*X1 + 400.0000", fit.Formula)

	assert.InDelta(t, 0.002*1234*1234-1.5*1234+400, fit.Estimate(1234), 1e-6)
}

func TestFitQuadratic_SkipsMissingDriver(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1, baseline.X2},
		row{y: 2, x: []float64{1, 1}},
		row{y: 5, x: []float64{2, math.NaN()}},
		row{y: 10, x: []float64{3, 2}},
		row{y: 99, x: []float64{math.NaN(), 3}},
		row{y: 17, x: []float64{4, 4}},
	)

	fit, err := FitQuadratic(b, baseline.X1)
	require.NoError(t, err)
	assert.Equal(t, 4, fit.N)
	assert.InDelta(t, 1, fit.A, 1e-9)
	assert.InDelta(t, 0, fit.B, 1e-9)
	assert.InDelta(t, 1, fit.C, 1e-9)

	_, ok := fit.Predict(b.Points[3])
	require.False(t, ok)
}

func TestFitQuadratic_Errors(t *testing.T) {
	used := []baseline.Slot{baseline.X1, baseline.X2}

	tests := []struct {
		name    string
		rows    []row
		slot    baseline.Slot
		wantErr error
	}{
		{
			"two points",
			[]row{{y: 1, x: []float64{1, 1}}, {y: 2, x: []float64{2, 2}}},
			baseline.X1,
			errs.ErrInsufficientData,
		},
		{
			"three rows but one missing the driver",
			[]row{{y: 1, x: []float64{1, 1}}, {y: 2, x: []float64{math.NaN(), 2}}, {y: 3, x: []float64{3, 3}}},
			baseline.X1,
			errs.ErrInsufficientData,
		},
		{
			"identical driver values",
			[]row{{y: 1, x: []float64{4, 1}}, {y: 2, x: []float64{4, 2}}, {y: 3, x: []float64{4, 3}}},
			baseline.X1,
			errs.ErrDegenerateFit,
		},
		{
			"two distinct driver values",
			[]row{{y: 1, x: []float64{1, 1}}, {y: 2, x: []float64{2, 2}}, {y: 3, x: []float64{1, 3}}, {y: 4, x: []float64{2, 4}}},
			baseline.X1,
			errs.ErrDegenerateFit,
		},
		{
			"unused slot",
			[]row{{y: 1, x: []float64{1, 1}}, {y: 2, x: []float64{2, 2}}, {y: 3, x: []float64{3, 3}}},
			baseline.X3,
			errs.ErrInvalidDriverSelection,
		},
		{
			"slot zero",
			[]row{{y: 1, x: []float64{1, 1}}, {y: 2, x: []float64{2, 2}}, {y: 3, x: []float64{3, 3}}},
			baseline.Slot(0),
			errs.ErrInvalidDriverSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBaseline(t, used, tt.rows...)
			fit, err := FitQuadratic(b, tt.slot)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, fit)
		})
	}

	_, err := FitQuadratic(nil, baseline.X1)
	require.ErrorIs(t, err, errs.ErrInsufficientData)
}

func TestLinearCurve(t *testing.T) {
	b := newTestBaseline(t, []baseline.Slot{baseline.X1, baseline.X2, baseline.X3}, threeDriverRows()...)

	fit, err := FitLinear(b, []baseline.Slot{baseline.X1, baseline.X2})
	require.NoError(t, err)

	curve, err := fit.Curve(baseline.X1)
	require.NoError(t, err)

	c1, _ := fit.Coefficient(baseline.X1)
	c2, _ := fit.Coefficient(baseline.X2)
	meanX2 := fit.Terms[1].Mean
	assert.InDelta(t, (3+1+4+1+5+9)/6.0, meanX2, 1e-12)
	assert.InDelta(t, c1*3+c2*meanX2+fit.Constant, curve.Estimate(3), 1e-9)

	_, err = fit.Curve(baseline.X3)
	require.ErrorIs(t, err, errs.ErrInvalidDriverSelection)
}

func TestLinearEquation(t *testing.T) {
	tests := []struct {
		name     string
		terms    []Term
		constant float64
		want     string
	}{
		{"positive", []Term{{Slot: baseline.X1, Coefficient: 1.23456}}, 7, "Y = 1.2346*X1 + 7.0000"},
		{"negative first", []Term{{Slot: baseline.X2, Coefficient: -2.5}}, -1, "Y = -2.5000*X2 - 1.0000"},
		{
			"mixed",
			[]Term{{Slot: baseline.X1, Coefficient: 0.1}, {Slot: baseline.X4, Coefficient: -0.00004}},
			123.45678,
			"Y = 0.1000*X1 + 0.0000*X4 + 123.4568",
		},
		{"constant only", nil, -3, "Y = -3.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, linearEquation(tt.terms, tt.constant, DefaultPrecision))
		})
	}
}

func TestModelType(t *testing.T) {
	assert.Equal(t, "quadratic", ModelTypeQuadratic.String())
	assert.Equal(t, "linear", ModelTypeLinear.String())
	assert.Equal(t, "unknown", ModelType(42).String())
	assert.Equal(t, ModelTypeLinear, ModelTypeFromString(" Linear "))
	assert.Equal(t, ModelType(-1), ModelTypeFromString("cubic"))
}
