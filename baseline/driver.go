package baseline

import "strings"

// UnusedLabel is the caption legacy ESG exports put in a driver slot that is not in use.
const UnusedLabel = "未使用"

// DriverSpec describes one driver slot of a baseline.
type DriverSpec struct {
	Label string `json:"label"`
	Unit  string `json:"unit"`
	Used  bool   `json:"used"`
}

// ParseDriverSpec builds a DriverSpec from an exported caption. The legacy
// sentinel label and a blank label both mean the slot is unused.
func ParseDriverSpec(label, unit string) DriverSpec {
	l := strings.TrimSpace(label)
	if l == "" || l == UnusedLabel {
		return DriverSpec{}
	}

	return DriverSpec{Label: l, Unit: strings.TrimSpace(unit), Used: true}
}

// Caption returns the label, falling back to the slot name.
func (d DriverSpec) Caption(s Slot) string {
	if d.Label != "" {
		return d.Label
	}

	return s.String()
}

// Drivers holds the specs of X1..X5 by position.
type Drivers [MaxDrivers]DriverSpec

// UsedDrivers returns a Drivers with the given slots marked used and labelled by
// their slot names. Invalid slots are ignored.
func UsedDrivers(slots ...Slot) Drivers {
	var d Drivers
	for _, s := range slots {
		if s.Valid() {
			d[s.index()] = DriverSpec{Label: s.String(), Used: true}
		}
	}

	return d
}

// Get returns the spec of slot s. Invalid slots yield an unused spec.
func (d Drivers) Get(s Slot) DriverSpec {
	if !s.Valid() {
		return DriverSpec{}
	}

	return d[s.index()]
}

// Used returns the slots marked used, in index order.
func (d Drivers) Used() []Slot {
	var out []Slot
	for _, s := range AllSlots() {
		if d[s.index()].Used {
			out = append(out, s)
		}
	}

	return out
}
