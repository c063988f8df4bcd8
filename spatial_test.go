package main

import (
	"sort"
	"testing"
)

func TestSpatialGridQueryRect(t *testing.T) {
	g := NewSpatialGrid(100)
	g.Insert(V(10, 10), 1)
	g.Insert(V(150, 10), 2)
	g.Insert(V(-10, -10), 3)
	g.Insert(V(1000, 1000), 4)

	got := g.QueryRect(V(0, 0), V(199, 99), nil)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}

	got = g.QueryRect(V(-50, -50), V(50, 50), nil)
	if len(got) != 2 {
		t.Errorf("negative cells: expected 2 candidates, got %v", got)
	}

	g.Clear()
	if got := g.QueryRect(V(-2000, -2000), V(2000, 2000), nil); len(got) != 0 {
		t.Errorf("expected empty grid after Clear, got %v", got)
	}
}

func TestNewSpatialGridDefaultCell(t *testing.T) {
	if g := NewSpatialGrid(0); g.cellSize != SpatialCellSize {
		t.Errorf("expected default cell size, got %v", g.cellSize)
	}
}
