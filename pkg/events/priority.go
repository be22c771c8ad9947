package events

import (
	"fmt"
	"strings"
)

// Priority determines listener execution order within a firing.
// Lower ordinals run first; PriorityMonitor has the highest precedence.
type Priority int

const (
	PriorityMonitor Priority = iota
	PriorityHighest
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityLowest
)

var priorityNames = [...]string{
	PriorityMonitor: "MONITOR",
	PriorityHighest: "HIGHEST",
	PriorityHigh:    "HIGH",
	PriorityNormal:  "NORMAL",
	PriorityLow:     "LOW",
	PriorityLowest:  "LOWEST",
}

// Highest returns the priority that is dispatched first.
func Highest() Priority { return PriorityMonitor }

// Lowest returns the priority that is dispatched last.
func Lowest() Priority { return PriorityLowest }

// Priorities returns every level in dispatch order.
func Priorities() []Priority {
	out := make([]Priority, 0, len(priorityNames))
	for p := Highest(); p <= Lowest(); p++ {
		out = append(out, p)
	}
	return out
}

// ParsePriority looks up a level by name, ignoring case.
func ParsePriority(name string) (Priority, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range priorityNames {
		if n == want {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, name)
}

// Valid reports whether p is one of the defined levels.
func (p Priority) Valid() bool {
	return p >= Highest() && p <= Lowest()
}

// String returns the level name, or a placeholder for unknown values.
func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

func checkPriority(p Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, int(p))
	}
	return nil
}
