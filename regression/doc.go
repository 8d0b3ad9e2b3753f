// Package regression fits the models of an energy baseline (EnB).
//
// Two models are fitted on the same baseline:
//
//   - **Quadratic**: Y = A*X² + B*X + C against one driver (the chart driver)
//   - **Linear**: Y = Σ cᵢ*Xᵢ + constant against one to three drivers
//
// Both are ordinary least squares fits solved through the normal equations
// with LU decomposition and partial pivoting. Driver columns are standardized
// first, so drivers of very different magnitude (mileage next to 0/1 flags)
// do not make the system ill-conditioned.
//
// # Usage
//
//	res, err := regression.Fit(b, regression.Selection{Chart: baseline.X1})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(res.Linear.Equation)        // Y = 2.0000*X1 + 0.5000*X2 + 10.0000
//	fmt.Println(res.Linear.Stats.CvRMSE)    // percent
//	fmt.Println(res.Quadratic.Formula)
//
// Individual fits are available through FitQuadratic and FitLinear.
//
// # Accuracy statistics
//
// Residuals are e = actual - predicted. For the linear model:
//
//   - MBE = mean(e), MBEPercentage = MBE / mean(actual) * 100
//   - MAE = mean(|e|), MAEPercentage = MAE / mean(actual) * 100
//   - RMSE = sqrt(mean(e²)), CvRMSE = RMSE / mean(actual) * 100
//   - MaxErrorPercentage = max(|e| / |actual|) * 100 over points with actual != 0
//
// The sign of MBEPercentage follows MBE by default; WithMBEPercentageSign
// selects the inverted convention used by some reference tools.
//
// # Errors
//
// Failures wrap errs.ErrInsufficientData, errs.ErrDegenerateFit or
// errs.ErrInvalidDriverSelection. None of them is transient.
//
// All functions are pure and safe for concurrent use.
package regression
