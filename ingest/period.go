package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

// periodLayouts are tried in order. Month-only periods are the common case for
// energy baselines.
var periodLayouts = []string{
	"2006-01",
	"2006/01",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParsePeriod parses a period cell. Periods without a zone are UTC.
func ParsePeriod(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized period %q", errs.ErrInvalidFormat, text)
}

// parseDriverCell parses one driver value. Empty cells, "-" and the legacy
// unused caption are None.
func parseDriverCell(text string) (baseline.Optional, error) {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" || s == baseline.UnusedLabel {
		return baseline.None(), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return baseline.None(), fmt.Errorf("%w: driver value %q", errs.ErrInvalidFormat, text)
	}

	return baseline.Some(v), nil
}

func parseMonitored(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: monitored value %q", errs.ErrInvalidFormat, text)
	}

	return v, nil
}
