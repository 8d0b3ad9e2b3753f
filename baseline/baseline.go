package baseline

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/hash"
	"github.com/enms-tools/enbfit/internal/options"
)

// Baseline is an energy baseline: driver metadata plus the observations the
// regression models are fitted on. Points keep the order they were given in.
type Baseline struct {
	ID      string      `json:"id"`
	Drivers Drivers     `json:"drivers"`
	Points  []DataPoint `json:"points"`
}

type config struct {
	lenientUnused bool
}

// Option configures New.
type Option = options.Option[*config]

// WithLenientUnused drops values found in unused slots instead of rejecting them.
// Legacy exports often carry stale numbers under a slot captioned as unused.
func WithLenientUnused() Option {
	return options.NoError(func(c *config) {
		c.lenientUnused = true
	})
}

// New validates and builds a baseline. Points are copied.
//
// Validation:
//   - id must not be blank
//   - periods must be non-zero and unique
//   - monitored and driver values must be finite
//   - unused slots must not carry values (unless WithLenientUnused)
func New(id string, drivers Drivers, points []DataPoint, opts ...Option) (*Baseline, error) {
	cfg, err := options.Build(config{}, opts...)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(id) == "" {
		return nil, errs.ErrEmptyBaselineID
	}

	seen := make(map[int64]int, len(points))
	out := make([]DataPoint, len(points))
	for i, p := range points {
		if p.Period.IsZero() {
			return nil, fmt.Errorf("%w: point %d has no period", errs.ErrInvalidValue, i)
		}
		key := p.Period.UnixNano()
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s at points %d and %d",
				errs.ErrDuplicatePeriod, p.Period.Format(time.RFC3339), prev, i)
		}
		seen[key] = i

		if !finite(p.Monitored) {
			return nil, fmt.Errorf("%w: point %d monitored value %v", errs.ErrInvalidValue, i, p.Monitored)
		}

		for _, s := range AllSlots() {
			v, ok := p.Drivers[s.index()].Get()
			if !ok {
				continue
			}
			if !drivers.Get(s).Used {
				if cfg.lenientUnused {
					p.Drivers[s.index()] = None()
					continue
				}

				return nil, fmt.Errorf("%w: point %d has a value for unused slot %s", errs.ErrInvalidValue, i, s)
			}
			if !finite(v) {
				return nil, fmt.Errorf("%w: point %d slot %s value %v", errs.ErrInvalidValue, i, s, v)
			}
		}
		out[i] = p
	}

	return &Baseline{ID: id, Drivers: drivers, Points: out}, nil
}

// Len returns the number of points.
func (b *Baseline) Len() int {
	return len(b.Points)
}

// UsedSlots returns the slots marked used, in index order.
func (b *Baseline) UsedSlots() []Slot {
	return b.Drivers.Used()
}

// Spec returns the metadata of slot s.
func (b *Baseline) Spec(s Slot) DriverSpec {
	return b.Drivers.Get(s)
}

// CheckSlot fails with errs.ErrInvalidDriverSelection when s is out of range or not used.
func (b *Baseline) CheckSlot(s Slot) error {
	if !s.Valid() {
		return fmt.Errorf("%w: slot %d outside 1..%d", errs.ErrInvalidDriverSelection, int(s), MaxDrivers)
	}
	if !b.Drivers.Get(s).Used {
		return fmt.Errorf("%w: slot %s is not used by baseline %q", errs.ErrInvalidDriverSelection, s, b.ID)
	}

	return nil
}

// Column returns the monitored values and the values of slot s for the points
// that carry a value at s, in point order.
func (b *Baseline) Column(s Slot) (x, y []float64) {
	x = make([]float64, 0, len(b.Points))
	y = make([]float64, 0, len(b.Points))
	for _, p := range b.Points {
		if v, ok := p.Driver(s); ok {
			x = append(x, v)
			y = append(y, p.Monitored)
		}
	}

	return x, y
}

// Complete returns the points carrying a value for every slot in slots, in point order.
func (b *Baseline) Complete(slots []Slot) []DataPoint {
	out := make([]DataPoint, 0, len(b.Points))
	for _, p := range b.Points {
		if p.HasAll(slots) {
			out = append(out, p)
		}
	}

	return out
}

// SortedByPeriod returns a copy of b with points in ascending period order.
func (b *Baseline) SortedByPeriod() *Baseline {
	pts := slices.Clone(b.Points)
	slices.SortStableFunc(pts, func(a, c DataPoint) int {
		return a.Period.Compare(c.Period)
	})

	return &Baseline{ID: b.ID, Drivers: b.Drivers, Points: pts}
}

// Fingerprint hashes the id, driver metadata and every value. Any edit to the
// data set yields a different fingerprint, which is what cached fits key on.
func (b *Baseline) Fingerprint() uint64 {
	d := hash.NewDigest().String(b.ID)
	for _, spec := range b.Drivers {
		d.String(spec.Label).String(spec.Unit).Bool(spec.Used)
	}
	d.Int(len(b.Points))
	for _, p := range b.Points {
		d.Uint64(uint64(p.Period.UnixNano())).Float(p.Monitored)
		for _, v := range p.Drivers {
			d.Bool(v.Valid)
			if v.Valid {
				d.Float(v.Value)
			}
		}
	}

	return d.Sum64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
