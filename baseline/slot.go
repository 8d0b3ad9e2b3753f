package baseline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/enms-tools/enbfit/errs"
)

// MaxDrivers is the number of driver slots (X1..X5) a baseline carries.
const MaxDrivers = 5

// Slot identifies a driver position, 1-based: Slot(1) is X1.
type Slot int

// Driver slots.
const (
	X1 Slot = iota + 1
	X2
	X3
	X4
	X5
)

// Valid reports whether s is within X1..X5.
func (s Slot) Valid() bool {
	return s >= X1 && s <= X5
}

// String returns the positional caption ("X1".."X5").
func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("X?(%d)", int(s))
	}

	return "X" + strconv.Itoa(int(s))
}

// index converts the slot to a zero-based array index. The slot must be valid.
func (s Slot) index() int {
	return int(s) - 1
}

// ParseSlot parses "X3", "x3" or "3".
func ParseSlot(text string) (Slot, error) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "X"), "x")

	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse slot %q", errs.ErrInvalidDriverSelection, text)
	}

	s := Slot(n)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: slot %d outside 1..%d", errs.ErrInvalidDriverSelection, n, MaxDrivers)
	}

	return s, nil
}

// AllSlots returns X1..X5 in order.
func AllSlots() []Slot {
	return []Slot{X1, X2, X3, X4, X5}
}
