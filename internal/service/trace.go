package service

import (
	"fmt"
	"strings"
)

// Trace is the ordered, human-readable diagnostic trail of one operation.
// It is returned to the caller next to the result value, never mixed into it.
type Trace struct {
	lines []string
}

// Addf appends a formatted line to the trail.
func (t *Trace) Addf(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the trail in append order.
func (t *Trace) Lines() []string {
	return append([]string(nil), t.lines...)
}

func (t *Trace) String() string {
	return strings.Join(t.lines, "\n")
}
