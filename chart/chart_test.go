package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/regression"
)

func month(m int) time.Time {
	return time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func testBaseline(t *testing.T) *baseline.Baseline {
	t.Helper()

	drivers := baseline.Drivers{
		baseline.ParseDriverSpec("Mileage", "km"),
		baseline.ParseDriverSpec("Shift", ""),
	}
	b, err := baseline.New("EnB-fleet", drivers, []baseline.DataPoint{
		baseline.NewDataPoint(month(1), 30, baseline.Some(3), baseline.Some(1)),
		baseline.NewDataPoint(month(2), 10, baseline.Some(1), baseline.Some(0)),
		baseline.NewDataPoint(month(3), 22, baseline.Some(2), baseline.None()),
		baseline.NewDataPoint(month(4), 15, baseline.None(), baseline.Some(1)),
		baseline.NewDataPoint(month(5), 31, baseline.Some(3), baseline.Some(0)),
	})
	require.NoError(t, err)

	return b
}

func double(x float64) float64 { return 2 * x }

func TestBuildSeries(t *testing.T) {
	b := testBaseline(t)

	s, err := BuildSeries(b, baseline.X1, regression.CurveFunc(double))
	require.NoError(t, err)

	assert.Equal(t, baseline.X1, s.Slot)
	assert.Equal(t, "Mileage", s.Caption)
	assert.Equal(t, "km", s.Unit)

	require.Equal(t, []XY{{1, 10}, {2, 22}, {3, 30}, {3, 31}}, s.Scatter)
	require.Equal(t, []XY{{1, 2}, {2, 4}, {3, 6}}, s.FitLine)
}

func TestBuildSeries_Ordering(t *testing.T) {
	b := testBaseline(t)

	for _, opts := range [][]SeriesOption{nil, {WithSamples(7)}} {
		s, err := BuildSeries(b, baseline.X1, regression.CurveFunc(double), opts...)
		require.NoError(t, err)

		for i := 1; i < len(s.Scatter); i++ {
			require.LessOrEqual(t, s.Scatter[i-1].X, s.Scatter[i].X)
		}
		for i := 1; i < len(s.FitLine); i++ {
			require.LessOrEqual(t, s.FitLine[i-1].X, s.FitLine[i].X)
		}

		require.NotEmpty(t, s.FitLine)
		require.Equal(t, s.Scatter[0].X, s.FitLine[0].X, "fit line starts at the observed minimum")
		require.Equal(t, s.Scatter[len(s.Scatter)-1].X, s.FitLine[len(s.FitLine)-1].X, "fit line ends at the observed maximum")
	}
}

func TestBuildSeries_Samples(t *testing.T) {
	b := testBaseline(t)

	s, err := BuildSeries(b, baseline.X1, regression.CurveFunc(double), WithSamples(5))
	require.NoError(t, err)
	require.Equal(t, []XY{{1, 2}, {1.5, 3}, {2, 4}, {2.5, 5}, {3, 6}}, s.FitLine)

	_, err = BuildSeries(b, baseline.X1, nil, WithSamples(1))
	require.Error(t, err)
}

func TestBuildSeries_Edges(t *testing.T) {
	b := testBaseline(t)

	s, err := BuildSeries(b, baseline.X2, nil)
	require.NoError(t, err)
	require.Len(t, s.Scatter, 4)
	require.Nil(t, s.FitLine)

	_, err = BuildSeries(b, baseline.X3, nil)
	require.ErrorIs(t, err, errs.ErrInvalidDriverSelection)

	_, err = BuildSeries(b, baseline.Slot(0), nil)
	require.ErrorIs(t, err, errs.ErrInvalidDriverSelection)

	empty, err := baseline.New("EnB-empty", baseline.UsedDrivers(baseline.X1), nil)
	require.NoError(t, err)
	s, err = BuildSeries(empty, baseline.X1, regression.CurveFunc(double))
	require.NoError(t, err)
	require.Empty(t, s.Scatter)
	require.Empty(t, s.FitLine)

	require.Equal(t, []float64{4}, sampleRange(4, 4, 10))
}

// slotModel predicts 10*X1 + 5*X2 and needs both drivers.
type slotModel struct{}

func (slotModel) Predict(p baseline.DataPoint) (float64, bool) {
	x1, ok1 := p.Driver(baseline.X1)
	x2, ok2 := p.Driver(baseline.X2)
	if !ok1 || !ok2 {
		return 0, false
	}

	return 10*x1 + 5*x2, true
}

func (slotModel) Type() regression.ModelType { return regression.ModelTypeLinear }

func TestBuildComparison(t *testing.T) {
	b := testBaseline(t)

	cmp := BuildComparison(b, slotModel{})
	require.Len(t, cmp, len(b.Points))

	for i, c := range cmp {
		require.Equal(t, b.Points[i].Period, c.Period, "input order is preserved")
		require.Equal(t, b.Points[i].Monitored, c.Actual)
	}

	assert.Equal(t, baseline.Some(35), cmp[0].Theoretical)
	assert.Equal(t, baseline.Some(10), cmp[1].Theoretical)
	assert.Equal(t, baseline.None(), cmp[2].Theoretical)
	assert.Equal(t, baseline.None(), cmp[3].Theoretical)
	assert.Equal(t, baseline.Some(30), cmp[4].Theoretical)

	assert.Equal(t, baseline.Some(-5), cmp[0].Deviation())
	assert.Equal(t, baseline.None(), cmp[2].Deviation())

	cusum := CumulativeDeviation(cmp)
	assert.Equal(t, []baseline.Optional{
		baseline.Some(-5), baseline.Some(-5), baseline.None(), baseline.None(), baseline.Some(-4),
	}, cusum)

	none := BuildComparison(b, nil)
	for _, c := range none {
		require.False(t, c.Theoretical.Valid)
	}
	require.Nil(t, BuildComparison(nil, slotModel{}))
}

func TestBuildComparison_KeepsUnsortedOrder(t *testing.T) {
	periods := []int{4, 1, 5, 2, 3}
	points := make([]baseline.DataPoint, len(periods))
	for i, m := range periods {
		points[i] = baseline.NewDataPoint(month(m), float64(10*m), baseline.Some(float64(m)), baseline.Some(0))
	}
	b, err := baseline.New("EnB-unsorted", baseline.UsedDrivers(baseline.X1, baseline.X2), points)
	require.NoError(t, err)

	cmp := BuildComparison(b, slotModel{})
	require.Len(t, cmp, len(periods))
	for i, m := range periods {
		require.Equal(t, month(m), cmp[i].Period)
		require.Equal(t, float64(10*m), cmp[i].Actual)
		require.Equal(t, baseline.Some(float64(10*m)), cmp[i].Theoretical)
	}

	sorted := BuildComparison(b.SortedByPeriod(), slotModel{})
	for i := range sorted {
		require.Equal(t, month(i+1), sorted[i].Period)
	}
}

func TestBuildComparison_WithFit(t *testing.T) {
	b := testBaseline(t)

	quad, err := regression.FitQuadratic(b, baseline.X1)
	require.NoError(t, err)

	cmp := BuildComparison(b.SortedByPeriod(), quad)
	for i := 1; i < len(cmp); i++ {
		require.True(t, cmp[i-1].Period.Before(cmp[i].Period))
	}
	require.True(t, cmp[0].Theoretical.Valid)
	require.False(t, cmp[3].Theoretical.Valid, "point without X1 has no theoretical value")
}
