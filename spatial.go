package main

import "math"

// SpatialCellSize is the edge of one grid cell in world units
const SpatialCellSize = 250.0

type cellKey struct {
	X, Y int32
}

// SpatialGrid is a hashed grid for window queries over an unbounded sector
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]ObjectID
}

// NewSpatialGrid creates an empty grid. cellSize <= 0 uses SpatialCellSize.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = SpatialCellSize
	}
	return &SpatialGrid{cellSize: cellSize, cells: make(map[cellKey][]ObjectID)}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for k, c := range g.cells {
		g.cells[k] = c[:0]
	}
}

func (g *SpatialGrid) cellOf(p Vec2) cellKey {
	return cellKey{
		X: int32(math.Floor(p.X / g.cellSize)),
		Y: int32(math.Floor(p.Y / g.cellSize)),
	}
}

// Insert adds an object at the given position
func (g *SpatialGrid) Insert(p Vec2, id ObjectID) {
	k := g.cellOf(p)
	g.cells[k] = append(g.cells[k], id)
}

// QueryRect appends to buf every object in cells overlapping [min, max] and
// returns the extended slice. Callers filter exact bounds themselves.
func (g *SpatialGrid) QueryRect(min, max Vec2, buf []ObjectID) []ObjectID {
	lo := g.cellOf(min)
	hi := g.cellOf(max)
	for cy := lo.Y; cy <= hi.Y; cy++ {
		for cx := lo.X; cx <= hi.X; cx++ {
			buf = append(buf, g.cells[cellKey{cx, cy}]...)
		}
	}
	return buf
}
