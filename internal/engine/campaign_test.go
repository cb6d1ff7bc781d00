package engine

import (
	"errors"
	"testing"
)

func seeded(tensions ...float64) *Campaign {
	c := NewCampaign()
	for i, t := range tensions {
		c.AddPoint(float64(i*10), t)
	}
	return c
}

func TestAddPointDraftEvent(t *testing.T) {
	c := NewCampaign()
	idx := c.AddPoint(12.345, 67.891)
	if idx != 0 {
		t.Fatalf("first index = %d, want 0", idx)
	}
	ev, err := c.Event(idx)
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if ev.Name != "Event at (12.35, 67.89)" {
		t.Fatalf("draft name = %q", ev.Name)
	}
	if ev.Description != "" || ev.Act != "" {
		t.Fatalf("draft should have empty description and act, got %+v", ev)
	}
	if c.AddPoint(1, 2) != 1 {
		t.Fatalf("second index should be 1")
	}
}

func TestPointsKeepInsertionOrder(t *testing.T) {
	c := NewCampaign()
	c.AddPoint(50, 10)
	c.AddPoint(5, 20)
	curve := c.Curve()
	if curve[0].Progress != 50 || curve[1].Progress != 5 {
		t.Fatalf("curve was reordered: %+v", curve)
	}
}

func TestUpdateEventKeepsCoordinates(t *testing.T) {
	c := seeded(20, 50, 70)
	if err := c.UpdateEvent(1, "Ambush", "Goblins on the road", "2"); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	for i, ev := range c.Events() {
		if ev.Point != c.Curve()[i] {
			t.Fatalf("event %d coordinates drifted: %+v vs %+v", i, ev.Point, c.Curve()[i])
		}
	}
	ev, _ := c.Event(1)
	if ev.Name != "Ambush" || ev.Description != "Goblins on the road" || ev.Act != "2" {
		t.Fatalf("event not updated: %+v", ev)
	}
}

func TestUpdateEventRejections(t *testing.T) {
	c := seeded(20)
	if err := c.UpdateEvent(1, "x", "", ""); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := c.UpdateEvent(-1, "x", "", ""); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for negative index, got %v", err)
	}
	before, _ := c.Event(0)
	if err := c.UpdateEvent(0, "   ", "desc", "1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	after, _ := c.Event(0)
	if before != after {
		t.Fatalf("rejected update mutated state: %+v -> %+v", before, after)
	}
}

func TestRemovePointShiftsLeft(t *testing.T) {
	c := seeded(10, 20, 30, 40)
	_ = c.UpdateEvent(2, "Third", "", "")
	if err := c.RemovePoint(1); err != nil {
		t.Fatalf("RemovePoint: %v", err)
	}
	if c.Len() != 3 || len(c.Events()) != 3 || len(c.Curve()) != 3 {
		t.Fatalf("lengths after remove: %d/%d/%d", c.Len(), len(c.Events()), len(c.Curve()))
	}
	ev, _ := c.Event(1)
	if ev.Name != "Third" || ev.Tension != 30 {
		t.Fatalf("element after removed index did not shift: %+v", ev)
	}
	if err := c.RemovePoint(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("failed remove changed length to %d", c.Len())
	}
}

func TestMovePointCarriesEvent(t *testing.T) {
	c := seeded(10)
	_ = c.UpdateEvent(0, "Hook", "", "")
	if err := c.MovePoint(0, 3, 44); err != nil {
		t.Fatalf("MovePoint: %v", err)
	}
	ev, _ := c.Event(0)
	if ev.Progress != 3 || ev.Tension != 44 || ev.Name != "Hook" {
		t.Fatalf("move lost data: %+v", ev)
	}
	if err := c.MovePoint(5, 0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := seeded(10, 20)
	c.AddAct()
	cp := c.Clone()
	_ = c.UpdateEvent(0, "changed", "", "")
	_ = c.EditAct(0, "99")
	ev, _ := cp.Event(0)
	if ev.Name == "changed" || cp.Acts()[0] == 99 {
		t.Fatalf("clone shares storage with original")
	}
}

func TestClear(t *testing.T) {
	c := seeded(1, 2, 3)
	c.AddAct()
	c.Clear()
	if c.Len() != 0 || c.ActCount() != 0 {
		t.Fatalf("clear left %d points and %d acts", c.Len(), c.ActCount())
	}
}
