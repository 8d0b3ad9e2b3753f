// Package cache memoizes baseline analyses.
//
// Fitting is cheap but interactive callers re-request the same analysis on
// every chart redraw. FitCache keys results by baseline id, data fingerprint
// and driver selection (see Key), so an edited baseline is never served a
// stale fit.
//
// Two stores are provided: LocalStore for a single process and RedisStore
// for several replicas sharing one cache.
//
//	store, err := cache.NewLocalStore()
//	...
//	fits, err := cache.New[*enbfit.Report](store, cache.WithCompression(compress.S2))
//	report, err := fits.GetOrCompute(ctx, key, compute)
package cache
