package main

import "math"

// ItemKind distinguishes equipment categories
const (
	ItemWeapon  = "weapon"
	ItemMissile = "missile"
)

// WeaponMetadata is the combat profile of a weapon or missile launcher
type WeaponMetadata struct {
	BaseDamage  float64 `json:"base_damage"`
	ShieldMult  float64 `json:"shield_mult"`
	KineticMult float64 `json:"kinetic_mult"`
	DamageBoost float64 `json:"damage_boost"`
	EnergyCost  float64 `json:"energy_cost"`
	MaxRange    float64 `json:"max_range"`
	LockOnAngle float64 `json:"lock_on_angle"` // half-angle, radians
	Hitscan     bool    `json:"hitscan"`
}

// ItemDef is one equippable item
type ItemDef struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Kind   string         `json:"kind"`
	Weapon WeaponMetadata `json:"weapon"`
}

// DefaultItems seeds the catalog when the database holds none
var DefaultItems = []ItemDef{
	{ID: "laser_mk1", Name: "Pulse Laser", Kind: ItemWeapon, Weapon: WeaponMetadata{
		BaseDamage: 10, ShieldMult: 1.5, KineticMult: 1.0, EnergyCost: 10,
		MaxRange: 150, LockOnAngle: math.Pi / 6, Hitscan: true,
	}},
	{ID: "laser_mk2", Name: "Burst Laser", Kind: ItemWeapon, Weapon: WeaponMetadata{
		BaseDamage: 14, ShieldMult: 1.5, KineticMult: 1.2, DamageBoost: 2, EnergyCost: 16,
		MaxRange: 220, LockOnAngle: math.Pi / 8, Hitscan: true,
	}},
	{ID: "mass_driver", Name: "Mass Driver", Kind: ItemWeapon, Weapon: WeaponMetadata{
		BaseDamage: 12, ShieldMult: 0.5, KineticMult: 2.0, EnergyCost: 8,
		MaxRange: 180, LockOnAngle: math.Pi / 4,
	}},
	{ID: "missile_rack", Name: "Seeker Rack", Kind: ItemMissile, Weapon: WeaponMetadata{
		BaseDamage: 40, ShieldMult: 1.0, KineticMult: 1.5, EnergyCost: 25,
		MaxRange: 600, LockOnAngle: math.Pi / 3,
	}},
}

// ItemCatalog provides lookup by item ID
type ItemCatalog struct {
	items map[string]ItemDef
}

// NewItemCatalog builds a catalog from a list of definitions
func NewItemCatalog(defs []ItemDef) *ItemCatalog {
	c := &ItemCatalog{items: make(map[string]ItemDef, len(defs))}
	for _, d := range defs {
		c.items[d.ID] = d
	}
	return c
}

// Get returns the item with the given ID
func (c *ItemCatalog) Get(id string) (ItemDef, bool) {
	d, ok := c.items[id]
	return d, ok
}

// Equipped returns the item in a ship slot if it is of the wanted kind
func (c *ItemCatalog) Equipped(ship Ship, slot int, kind string) (ItemDef, bool) {
	if slot < 0 || slot >= SlotCount || ship.Equipment[slot] == "" {
		return ItemDef{}, false
	}
	d, ok := c.items[ship.Equipment[slot]]
	if !ok || d.Kind != kind {
		return ItemDef{}, false
	}
	return d, true
}

// Loadout is what a player's ship spawns with
type Loadout struct {
	Class   ShipClass
	Weapon  string
	Missile string
}

// DefaultLoadout is used for guests and players without a stored loadout
var DefaultLoadout = Loadout{Class: ClassFighter, Weapon: "laser_mk1", Missile: "missile_rack"}

// Slots lays the loadout out as ship equipment
func (l Loadout) Slots() [SlotCount]string {
	var s [SlotCount]string
	s[SlotWeapon] = l.Weapon
	s[SlotMissile] = l.Missile
	return s
}
