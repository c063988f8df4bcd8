package main

import "math"

// Vec2 is a 2D point or direction in sector space
type Vec2 struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
}

// V builds a Vec2 from raw coordinates
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Rotate returns v rotated counter-clockwise by angle radians
func (v Vec2) Rotate(angle float64) Vec2 {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Facing returns the unit vector for a rotation; rotation 0 faces +X
func Facing(rotation float64) Vec2 {
	return Vec2{math.Cos(rotation), math.Sin(rotation)}
}

// Distance returns the distance between two points
func Distance(a, b Vec2) float64 {
	return b.Sub(a).Length()
}

// DistanceSq returns the squared distance between two points
func DistanceSq(a, b Vec2) float64 {
	return b.Sub(a).LengthSq()
}

// SignedAngle returns the angle in (-PI, PI] that rotates from onto to.
// Positive is counter-clockwise.
func SignedAngle(from, to Vec2) float64 {
	return math.Atan2(from.Cross(to), from.Dot(to))
}

// Transform is a position plus rotation in radians
type Transform struct {
	Position Vec2    `msgpack:"p"`
	Rotation float64 `msgpack:"r"`
}

// Facing returns the unit vector the transform points along
func (t Transform) Facing() Vec2 {
	return Facing(t.Rotation)
}
