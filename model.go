package main

import "time"

// ObjectID identifies a stellar object
type ObjectID uint64

// SectorID identifies a sector
type SectorID uint32

// ObjectKind is the coarse classification of a stellar object
type ObjectKind uint8

const (
	KindShip ObjectKind = iota
	KindAsteroid
	KindStation
	KindCargoCrate
	KindJumpGate
)

var objectKindNames = [...]string{"ship", "asteroid", "station", "cargo_crate", "jump_gate"}

func (k ObjectKind) String() string {
	if int(k) < len(objectKindNames) {
		return objectKindNames[k]
	}
	return "unknown"
}

// Targetable reports whether weapons may lock onto objects of this kind
func (k ObjectKind) Targetable() bool {
	return k == KindShip || k == KindStation
}

// Sector is a named region containing stellar objects
type Sector struct {
	ID   SectorID
	Name string
}

// StellarObject is any physically positioned entity in a sector
type StellarObject struct {
	ID     ObjectID
	Kind   ObjectKind
	Sector SectorID
	Width  float64
	Height float64
}

// Velocity drives the movement integrator. AutoDampen is multiplied into the
// linear velocity every tick when set.
type Velocity struct {
	Linear     Vec2
	Angular    float64
	AutoDampen *float64
}

// Dampen returns a pointer suitable for Velocity.AutoDampen
func Dampen(f float64) *float64 {
	return &f
}

// TransformRow is one row of a derived transform view
type TransformRow struct {
	ID        ObjectID  `msgpack:"id"`
	Transform Transform `msgpack:"t"`
}

// PlayerWindow is a player's interest window. TL holds the minimum corner and
// BR the maximum corner.
type PlayerWindow struct {
	PlayerID string
	TL       Vec2
	BR       Vec2
	Window   float64
	Margin   float64
}

// Contains reports whether p lies strictly inside the hysteresis band
func (w PlayerWindow) Contains(p Vec2) bool {
	return p.X > w.TL.X+w.Margin && p.X < w.BR.X-w.Margin &&
		p.Y > w.TL.Y+w.Margin && p.Y < w.BR.Y-w.Margin
}

// Bounds reports whether p lies inside the full rectangle
func (w PlayerWindow) Bounds(p Vec2) bool {
	return p.X >= w.TL.X && p.X <= w.BR.X && p.Y >= w.TL.Y && p.Y <= w.BR.Y
}

// Recenter returns the window rebuilt around p
func (w PlayerWindow) Recenter(p Vec2) PlayerWindow {
	w.TL = Vec2{p.X - w.Window, p.Y - w.Window}
	w.BR = Vec2{p.X + w.Window, p.Y + w.Window}
	return w
}

// Player maps a connected account to the ship it controls
type Player struct {
	ID     string
	Name   string
	ShipID ObjectID
	Sector SectorID
}

// Equipment slots
const (
	SlotWeapon = iota
	SlotMissile
	SlotCount
)

// Ship is the gameplay record of a ship-kind stellar object
type Ship struct {
	ID          ObjectID
	PlayerID    string // empty for NPC ships
	Energy      float64
	MaxEnergy   float64
	EnergyRegen float64 // per combat tick
	Equipment   [SlotCount]string
}

// Durability tracks shields and hull of anything that can be shot
type Durability struct {
	Shields    float64
	MaxShields float64
	Hull       float64
	MaxHull    float64
}

// EffectKind distinguishes visual effect records
type EffectKind uint8

const (
	EffectLaser EffectKind = iota
	EffectMissile
)

// VisualEffect is a transient combat effect shown to clients
type VisualEffect struct {
	ID        uint64     `msgpack:"id"`
	Kind      EffectKind `msgpack:"k"`
	Sector    SectorID   `msgpack:"-"`
	Source    Vec2       `msgpack:"s"`
	Target    Vec2       `msgpack:"t"`
	CreatedAt time.Time  `msgpack:"-"`
}

// VisualEffectCleanup is the scheduled removal paired with a VisualEffect
type VisualEffectCleanup struct {
	ID       uint64
	EffectID uint64
	At       time.Time
}
