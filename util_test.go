package main

import (
	"math"
	"testing"
)

func TestRingDistance(t *testing.T) {
	cases := []struct {
		a, b, n, want int
	}{
		{0, 0, 4, 0},
		{0, 1, 4, 1},
		{0, 3, 4, 1}, // wraps around
		{0, 2, 4, 2},
		{3, 1, 4, 2},
		{0, 1, 2, 1},
	}
	for _, tc := range cases {
		if got := RingDistance(tc.a, tc.b, tc.n); got != tc.want {
			t.Errorf("RingDistance(%d, %d, %d) = %d, want %d", tc.a, tc.b, tc.n, got, tc.want)
		}
		// Symmetry
		if got := RingDistance(tc.b, tc.a, tc.n); got != tc.want {
			t.Errorf("RingDistance(%d, %d, %d) = %d, want %d", tc.b, tc.a, tc.n, got, tc.want)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tc := range cases {
		if got := WrapAngle(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("WrapAngle(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
	if got := WrapAngle(-0.001); got < 0 || got >= 2*math.Pi {
		t.Errorf("WrapAngle(-0.001) = %f outside [0, 2pi)", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5,0,3) = %f, want 3", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1,0,3) = %f, want 0", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp(2,0,3) = %f, want 2", got)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID(8)
		if len(id) != 16 {
			t.Fatalf("id %q: want 16 hex chars", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
