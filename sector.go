package main

import (
	"math"
	"math/rand/v2"
)

// HomeSector is the sector new pilots spawn into
const HomeSector SectorID = 1

const (
	AsteroidMinSize  = 30.0
	AsteroidMaxSize  = 90.0
	AsteroidMaxDrift = 1.0  // units/tick
	AsteroidMaxSpin  = 0.02 // radians/tick
	AsteroidDampen   = 0.9995
	StationSize      = 160.0
	SectorFieldSize  = 3000.0 // asteroids are scattered over +-field/2
	SentryBehaviour  = "sentry"
)

// SentryLoadout is what seeded NPC ships carry
var SentryLoadout = Loadout{Class: ClassTank, Weapon: "mass_driver"}

// SeedSector creates the home sector with a station at its origin, drifting
// asteroids and NPC sentries around it
func SeedSector(tx *Tx, cfg SimulationConfig, rng *rand.Rand) error {
	EnsureSector(tx, HomeSector, cfg.SectorName)

	station := Durability{Shields: 2000, MaxShields: 2000, Hull: 5000, MaxHull: 5000}
	if _, err := SpawnObject(tx, Spawn{
		Kind:       KindStation,
		Sector:     HomeSector,
		Width:      StationSize,
		Height:     StationSize,
		Durability: &station,
	}); err != nil {
		return err
	}

	for i := 0; i < cfg.AsteroidCount; i++ {
		size := AsteroidMinSize + rng.Float64()*(AsteroidMaxSize-AsteroidMinSize)
		pos := Vec2{(rng.Float64() - 0.5) * SectorFieldSize, (rng.Float64() - 0.5) * SectorFieldSize}
		// keep the spawn area clear
		if pos.Length() < cfg.SpawnRadius+StationSize {
			pos = pos.Add(Facing(rng.Float64() * 2 * math.Pi).Scale(cfg.SpawnRadius + StationSize))
		}
		drift := Facing(rng.Float64() * 2 * math.Pi).Scale(rng.Float64() * AsteroidMaxDrift)
		if _, err := SpawnObject(tx, Spawn{
			Kind:      KindAsteroid,
			Sector:    HomeSector,
			Width:     size,
			Height:    size * (0.7 + rng.Float64()*0.3),
			Transform: Transform{Position: pos, Rotation: rng.Float64() * 2 * math.Pi},
			Velocity: &Velocity{
				Linear:     drift,
				Angular:    (rng.Float64()*2 - 1) * AsteroidMaxSpin,
				AutoDampen: Dampen(AsteroidDampen),
			},
		}); err != nil {
			return err
		}
	}

	class := GetClassDef(SentryLoadout.Class)
	for i := 0; i < cfg.SentryCount; i++ {
		angle := float64(i) / float64(max(cfg.SentryCount, 1)) * 2 * math.Pi
		ctrl := NewNPCControl(SentryBehaviour)
		if _, err := SpawnObject(tx, Spawn{
			Kind:      KindShip,
			Sector:    HomeSector,
			Width:     class.Width,
			Height:    class.Height,
			Transform: Transform{Position: Facing(angle).Scale(StationSize * 1.5), Rotation: angle},
			Velocity:  &Velocity{AutoDampen: Dampen(class.Dampen)},
			Durability: &Durability{
				Shields: class.MaxShields, MaxShields: class.MaxShields,
				Hull: class.MaxHull, MaxHull: class.MaxHull,
			},
			Ship: &Ship{
				Energy:      class.MaxEnergy,
				MaxEnergy:   class.MaxEnergy,
				EnergyRegen: class.EnergyRegen,
				Equipment:   SentryLoadout.Slots(),
			},
			Controller: &ctrl,
		}); err != nil {
			return err
		}
	}
	return nil
}

// SpawnPoint picks a spawn position on a ring around the sector origin
func SpawnPoint(rng *rand.Rand, radius float64) (Vec2, float64) {
	angle := rng.Float64() * 2 * math.Pi
	dist := radius * (0.5 + 0.5*rng.Float64())
	// face back toward the station
	return Facing(angle).Scale(dist), WrapRotation(angle + math.Pi)
}
