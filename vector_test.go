package main

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxVec(a, b Vec2) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y)
}

func TestFacing(t *testing.T) {
	if f := Facing(0); !approxVec(f, V(1, 0)) {
		t.Errorf("rotation 0 should face +X, got %v", f)
	}
	if f := Facing(math.Pi / 2); !approxVec(f, V(0, 1)) {
		t.Errorf("rotation PI/2 should face +Y, got %v", f)
	}
}

func TestRotate(t *testing.T) {
	got := V(2, 0).Rotate(math.Pi / 2)
	if !approxVec(got, V(0, 2)) {
		t.Errorf("expected (0,2), got %v", got)
	}
}

func TestSignedAngle(t *testing.T) {
	tests := []struct {
		from, to Vec2
		want     float64
	}{
		{V(1, 0), V(0, 1), math.Pi / 2},
		{V(1, 0), V(0, -1), -math.Pi / 2},
		{V(0, 1), V(1, 0), -math.Pi / 2},
		{V(1, 0), V(5, 0), 0},
	}
	for _, tc := range tests {
		if got := SignedAngle(tc.from, tc.to); !approx(got, tc.want) {
			t.Errorf("SignedAngle(%v, %v) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(V(0, 0), V(3, 4)); !approx(d, 5) {
		t.Errorf("expected 5, got %v", d)
	}
	if d := DistanceSq(V(1, 1), V(4, 5)); !approx(d, 25) {
		t.Errorf("expected 25, got %v", d)
	}
}

func TestWrapRotation(t *testing.T) {
	if r := WrapRotation(1.5); r != 1.5 {
		t.Errorf("in-range rotation changed: %v", r)
	}
	if r := WrapRotation(2 * math.Pi); r != 2*math.Pi {
		t.Errorf("boundary rotation changed: %v", r)
	}
	if r := WrapRotation(7); !approx(r, 7-2*math.Pi) {
		t.Errorf("expected %v, got %v", 7-2*math.Pi, r)
	}
	// negative rotations keep their sign
	if r := WrapRotation(-7); !approx(r, -(7 - 2*math.Pi)) {
		t.Errorf("expected %v, got %v", -(7 - 2*math.Pi), r)
	}
}
