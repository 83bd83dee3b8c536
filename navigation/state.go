package navigation

import (
	"time"

	"github.com/golang/geo/r3"
)

// Flag marks a part of a State as valid.
type Flag uint8

// State validity flags.
const (
	FlagPosition Flag = 1 << iota
	FlagHeading
	FlagSpeed
)

// State is a snapshot of the vehicle. It is a value; updating a pose produces a new State.
type State struct {
	// Position in world meters, z ignored.
	Position r3.Vector
	// Heading in radians, counterclockwise from the world x axis.
	Heading float64
	// Speed over ground in m/s.
	Speed float64
	Flags Flag
	Time  time.Time
}

// SetFlag returns a copy of s with f set or cleared.
func (s State) SetFlag(f Flag, valid bool) State {
	if valid {
		s.Flags |= f
	} else {
		s.Flags &^= f
	}
	return s
}

// Valid reports whether all the given flags are set.
func (s State) Valid(flags ...Flag) bool {
	for _, f := range flags {
		if s.Flags&f == 0 {
			return false
		}
	}
	return true
}

// StateListener is called with the state before and after every pose update.
type StateListener func(before, after State)

// ActionKind is the reason an offboard listener is notified.
type ActionKind uint8

// Offboard actions.
const (
	ActionAbort ActionKind = iota
	ActionTargetReached
)

func (k ActionKind) String() string {
	switch k {
	case ActionAbort:
		return "abort"
	case ActionTargetReached:
		return "target_reached"
	}
	return "unknown"
}

// OffboardListener is told when offboard control ends, either because the goal was reached or
// because navigation was aborted.
type OffboardListener interface {
	Action(current State, kind ActionKind)
}

// OffboardListenerFunc adapts a function to an OffboardListener.
type OffboardListenerFunc func(current State, kind ActionKind)

// Action calls f.
func (f OffboardListenerFunc) Action(current State, kind ActionKind) {
	f(current, kind)
}
