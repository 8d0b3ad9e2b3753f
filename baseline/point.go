package baseline

import "time"

// DataPoint is one observation of a baseline.
type DataPoint struct {
	// Period orders observations and is unique within a baseline.
	Period time.Time `json:"period"`
	// Monitored is the dependent variable, e.g. energy consumption.
	Monitored float64 `json:"monitored"`
	// Drivers holds X1..X5; absent values are None.
	Drivers [MaxDrivers]Optional `json:"drivers"`
}

// NewDataPoint builds a point with drivers assigned to X1, X2, ... in order.
// Extra values beyond MaxDrivers are ignored.
func NewDataPoint(period time.Time, monitored float64, drivers ...Optional) DataPoint {
	p := DataPoint{Period: period, Monitored: monitored}
	for i := 0; i < len(drivers) && i < MaxDrivers; i++ {
		p.Drivers[i] = drivers[i]
	}

	return p
}

// Driver returns the value at slot s and whether it is present.
func (p DataPoint) Driver(s Slot) (float64, bool) {
	if !s.Valid() {
		return 0, false
	}

	return p.Drivers[s.index()].Get()
}

// HasAll reports whether p carries a value for every slot in slots.
func (p DataPoint) HasAll(slots []Slot) bool {
	for _, s := range slots {
		if _, ok := p.Driver(s); !ok {
			return false
		}
	}

	return true
}
