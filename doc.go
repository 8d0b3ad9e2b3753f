// Package enbfit fits energy baseline (EnB) regression models and prepares
// their chart data.
//
// A baseline is a monitored energy series with up to five driver variables
// X1..X5 (production volume, degree days, operating hours, ...). For one
// baseline enbfit computes:
//
//   - a quadratic fit Y = aX² + bX + c against the chart driver
//   - a multiple linear fit against up to three drivers, with MBE, MAE, RMSE,
//     CvRMSE and maximum error statistics
//   - the scatter series of the chart driver with the fit line over it
//   - the actual-vs-theoretical comparison over time
//
// # Basic Usage
//
//	b, err := ingest.LoadFile("boiler-2024.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := enbfit.Analyze(b, regression.Selection{Chart: baseline.X1})
//	if err != nil {
//	    log.Fatal(err) // errs.ErrInsufficientData, errs.ErrDegenerateFit, ...
//	}
//	fmt.Println(report.Result.Linear.Equation)
//
// # Package Structure
//
//   - baseline: data model, validation and the Source port
//   - regression: the quadratic and linear fits and their statistics
//   - chart: scatter, fit-line and comparison series
//   - ingest: YAML and CSV baseline files
//   - cache: report cache over a local or Redis store
//   - compress: codecs for cached payloads
//   - errs: sentinel errors
//
// The regression and chart packages are pure functions over their inputs and
// safe for concurrent use. Analyzer adds caching and parallel analysis of many
// baselines on top of them.
package enbfit
