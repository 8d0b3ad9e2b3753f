// Package errs defines the sentinel errors returned by enbfit packages.
//
// Callers match them with errors.Is; every error returned by the library wraps
// exactly one of these values with additional context.
package errs

import "errors"

// Regression errors.
var (
	// ErrInsufficientData is returned when too few usable points remain for the requested model.
	ErrInsufficientData = errors.New("insufficient data for regression")
	// ErrDegenerateFit is returned for singular systems, zero-variance inputs or all-zero denominators.
	ErrDegenerateFit = errors.New("degenerate fit")
	// ErrInvalidDriverSelection is returned when a driver slot is out of range or not marked used.
	ErrInvalidDriverSelection = errors.New("invalid driver selection")
)

// Baseline validation errors.
var (
	ErrEmptyBaselineID  = errors.New("empty baseline id")
	ErrDuplicatePeriod  = errors.New("duplicate period")
	ErrInvalidValue     = errors.New("invalid value")
	ErrBaselineNotFound = errors.New("baseline not found")
	ErrInvalidFormat    = errors.New("invalid baseline file format")
)

// Cache errors.
var (
	ErrCacheMiss          = errors.New("cache miss")
	ErrUnknownCompression = errors.New("unknown compression type")
)
