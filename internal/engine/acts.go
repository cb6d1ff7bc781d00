package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Acts returns a copy of the act boundaries in insertion order. Boundaries
// are not sorted and may repeat.
func (c *Campaign) Acts() []float64 {
	out := make([]float64, len(c.acts))
	copy(out, c.acts)
	return out
}

// ActCount reports how many boundaries exist.
func (c *Campaign) ActCount() int { return len(c.acts) }

// AddAct drops a boundary at the progress of the most recently added point,
// or at 0 on an empty curve, and returns its index.
func (c *Campaign) AddAct() int {
	var at float64
	if p, ok := c.Last(); ok {
		at = p.Progress
	}
	c.acts = append(c.acts, at)
	return len(c.acts) - 1
}

// RemoveAct deletes the boundary at index i.
func (c *Campaign) RemoveAct(i int) error {
	if i < 0 || i >= len(c.acts) {
		return outOfRange("act", i, len(c.acts))
	}
	c.acts = append(c.acts[:i], c.acts[i+1:]...)
	return nil
}

// EditAct parses input as a progress value and stores it at index i.
func (c *Campaign) EditAct(i int, input string) error {
	if i < 0 || i >= len(c.acts) {
		return outOfRange("act", i, len(c.acts))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid("act %d: %q is not a number", i, input)
	}
	c.acts[i] = v
	return nil
}

// ActLabel is the display name of the boundary at index i.
func ActLabel(i int) string { return fmt.Sprintf("Act %d", i+1) }
