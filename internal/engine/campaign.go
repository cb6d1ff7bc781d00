package engine

import (
	"fmt"
	"strings"
)

// Point is one sample on the tension curve. Progress is an unbounded story
// axis; tension is plotted on 0..100 but not clamped here.
type Point struct {
	Progress float64 `json:"progress"`
	Tension  float64 `json:"tension"`
}

// PointEvent is a curve point together with its story annotation. The slice
// index inside a Campaign is its identity.
type PointEvent struct {
	Point
	Name        string `json:"name"`
	Description string `json:"description"`
	Act         string `json:"act"`
}

// Campaign is the whole editable state of one story: the ordered curve and
// the act boundaries. It is the unit of save, load and export.
type Campaign struct {
	points []PointEvent
	acts   []float64
}

// NewCampaign returns an empty campaign.
func NewCampaign() *Campaign { return &Campaign{} }

// FromParts builds a campaign from already validated records.
func FromParts(points []PointEvent, acts []float64) *Campaign {
	c := &Campaign{}
	c.points = append(c.points, points...)
	c.acts = append(c.acts, acts...)
	return c
}

// DraftName is the default event name for a freshly clicked point.
func DraftName(progress, tension float64) string {
	return fmt.Sprintf("Event at (%.2f, %.2f)", progress, tension)
}

// Len reports the number of points (and therefore events).
func (c *Campaign) Len() int { return len(c.points) }

// AddPoint appends a point with a draft event and returns its index.
func (c *Campaign) AddPoint(progress, tension float64) int {
	c.points = append(c.points, PointEvent{
		Point: Point{Progress: progress, Tension: tension},
		Name:  DraftName(progress, tension),
	})
	return len(c.points) - 1
}

// UpdateEvent overwrites the annotation at index i. The point coordinates
// are never touched.
func (c *Campaign) UpdateEvent(i int, name, description, act string) error {
	if i < 0 || i >= len(c.points) {
		return outOfRange("event", i, len(c.points))
	}
	if strings.TrimSpace(name) == "" {
		return invalid("event %d: name is required", i)
	}
	pe := &c.points[i]
	pe.Name = name
	pe.Description = description
	pe.Act = act
	return nil
}

// MovePoint repositions the point at index i; its event follows.
func (c *Campaign) MovePoint(i int, progress, tension float64) error {
	if i < 0 || i >= len(c.points) {
		return outOfRange("point", i, len(c.points))
	}
	c.points[i].Progress = progress
	c.points[i].Tension = tension
	return nil
}

// RemovePoint deletes the point and its event; later entries shift left.
func (c *Campaign) RemovePoint(i int) error {
	if i < 0 || i >= len(c.points) {
		return outOfRange("point", i, len(c.points))
	}
	c.points = append(c.points[:i], c.points[i+1:]...)
	return nil
}

// Clear drops every point, event and act.
func (c *Campaign) Clear() {
	c.points = nil
	c.acts = nil
}

// Event returns a copy of the record at index i.
func (c *Campaign) Event(i int) (PointEvent, error) {
	if i < 0 || i >= len(c.points) {
		return PointEvent{}, outOfRange("event", i, len(c.points))
	}
	return c.points[i], nil
}

// Last returns the most recently added point.
func (c *Campaign) Last() (Point, bool) {
	if len(c.points) == 0 {
		return Point{}, false
	}
	return c.points[len(c.points)-1].Point, true
}

// Events returns a copy of all records in insertion order.
func (c *Campaign) Events() []PointEvent {
	out := make([]PointEvent, len(c.points))
	copy(out, c.points)
	return out
}

// Curve returns the bare points in insertion order.
func (c *Campaign) Curve() []Point {
	out := make([]Point, len(c.points))
	for i, pe := range c.points {
		out[i] = pe.Point
	}
	return out
}

// Tensions returns the tension column of the curve.
func (c *Campaign) Tensions() []float64 {
	out := make([]float64, len(c.points))
	for i, pe := range c.points {
		out[i] = pe.Tension
	}
	return out
}

// Clone returns a deep copy, safe to hand to background commands.
func (c *Campaign) Clone() *Campaign {
	return FromParts(c.points, c.acts)
}
