// Package baseline defines the data model of an energy baseline (EnB).
//
// A baseline is a set of periodic observations of a monitored quantity, usually
// energy consumption, together with up to five driver variables X1..X5 that are
// expected to explain it (production volume, degree days, operating hours, ...).
//
// Driver values are Optional: a point may simply not carry a value for a slot,
// and slots whose DriverSpec is not Used never carry values. Legacy exports mark
// unused slots with the caption "未使用"; ParseDriverSpec maps that caption to
// an unused spec so no code downstream compares strings.
//
// # Building a baseline
//
//	drivers := baseline.UsedDrivers(baseline.X1, baseline.X2)
//	b, err := baseline.New("EnB-2024-boiler", drivers, []baseline.DataPoint{
//	    baseline.NewDataPoint(jan, 1520, baseline.Some(310), baseline.Some(22)),
//	    baseline.NewDataPoint(feb, 1410, baseline.Some(290), baseline.Some(20)),
//	})
//
// New rejects duplicate periods and non-finite values. It keeps the point order
// as given; comparison series built from the baseline follow that order.
package baseline
