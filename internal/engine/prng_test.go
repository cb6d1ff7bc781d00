package engine

import (
	"errors"
	"testing"
)

func TestSessionSeedDeterminism(t *testing.T) {
	s1, _ := NewSessionSeed("alpha-seed")
	s2, _ := NewSessionSeed("alpha-seed")
	a := s1.Stream("advice").Float64()
	b := s2.Stream("advice").Float64()
	if a != b {
		t.Fatalf("streams differ: %v vs %v", a, b)
	}
	c1 := s1.Stream("advice").Child("arc").Float64()
	c2 := s2.Stream("advice").Child("arc").Float64()
	if c1 != c2 {
		t.Fatalf("child streams differ: %v vs %v", c1, c2)
	}
	if s1.Stream("advice").Float64() == s1.Stream("other").Float64() {
		t.Fatalf("different labels produced the same first value")
	}
}

func TestStreamFloat64Range(t *testing.T) {
	seed, _ := NewSessionSeed("range")
	st := seed.Stream("r")
	for i := 0; i < 1000; i++ {
		v := st.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("value %v out of [0,1)", v)
		}
	}
}

func TestNewSessionSeedRejectsEmpty(t *testing.T) {
	if _, err := NewSessionSeed(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
