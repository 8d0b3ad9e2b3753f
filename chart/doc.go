// Package chart turns fitted baseline models into chart-ready series.
//
// BuildSeries produces the driver scatter with the model line over it, and
// BuildComparison pairs every period's actual value with the model value.
// Both are pure views over a baseline and a fit; nothing is cached here.
package chart
