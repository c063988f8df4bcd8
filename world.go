package main

import "fmt"

// Spawn describes a stellar object to create
type Spawn struct {
	Kind       ObjectKind
	Sector     SectorID
	Width      float64
	Height     float64
	Transform  Transform
	Velocity   *Velocity
	Durability *Durability
	Ship       *Ship
	Controller *ShipController
}

// SpawnObject creates every row for a new stellar object and returns its id
func SpawnObject(tx *Tx, sp Spawn) (ObjectID, error) {
	if _, ok := tx.Sectors.Get(sp.Sector); !ok {
		return 0, fmt.Errorf("sector %d does not exist", sp.Sector)
	}
	if sp.Kind == KindShip && sp.Ship == nil {
		return 0, fmt.Errorf("ship spawn without ship record")
	}

	id := tx.NextObjectID()
	tx.Objects.Put(tx, id, StellarObject{
		ID:     id,
		Kind:   sp.Kind,
		Sector: sp.Sector,
		Width:  sp.Width,
		Height: sp.Height,
	})
	tx.Transforms.Put(tx, id, sp.Transform)
	if sp.Velocity != nil {
		tx.Velocities.Put(tx, id, *sp.Velocity)
	}
	if sp.Durability != nil {
		tx.Durability.Put(tx, id, *sp.Durability)
	}
	if sp.Ship != nil {
		ship := *sp.Ship
		ship.ID = id
		tx.Ships.Put(tx, id, ship)
	}
	if sp.Controller != nil {
		tx.Controllers.Put(tx, id, *sp.Controller)
	}
	return id, nil
}

// DespawnObject removes a stellar object and every row keyed by it.
// Derived transform rows disappear on the next resync pass.
func DespawnObject(tx *Tx, id ObjectID) bool {
	if !tx.Objects.Delete(tx, id) {
		return false
	}
	tx.Transforms.Delete(tx, id)
	tx.Velocities.Delete(tx, id)
	tx.Durability.Delete(tx, id)
	tx.Ships.Delete(tx, id)
	tx.Controllers.Delete(tx, id)
	return true
}

// EnsureSector creates the sector row if it is missing
func EnsureSector(tx *Tx, id SectorID, name string) {
	if _, ok := tx.Sectors.Get(id); ok {
		return
	}
	tx.Sectors.Put(tx, id, Sector{ID: id, Name: name})
}

// PlayerSpawn holds what AddPlayer needs beyond the player identity
type PlayerSpawn struct {
	Sector    SectorID
	Position  Vec2
	Rotation  float64
	Window    float64
	Margin    float64
	Loadout   Loadout
	ShipClass ShipClassDef
}

// AddPlayer spawns a ship for the player and opens an interest window
// centered on it
func AddPlayer(tx *Tx, id, name string, ps PlayerSpawn) (Player, error) {
	if _, ok := tx.Players.Get(id); ok {
		return Player{}, fmt.Errorf("player %s already in world", id)
	}
	class := ps.ShipClass
	ctrl := NewPlayerControl(id)
	shipID, err := SpawnObject(tx, Spawn{
		Kind:      KindShip,
		Sector:    ps.Sector,
		Width:     class.Width,
		Height:    class.Height,
		Transform: Transform{Position: ps.Position, Rotation: ps.Rotation},
		Velocity:  &Velocity{AutoDampen: Dampen(class.Dampen)},
		Durability: &Durability{
			Shields: class.MaxShields, MaxShields: class.MaxShields,
			Hull: class.MaxHull, MaxHull: class.MaxHull,
		},
		Ship: &Ship{
			PlayerID:    id,
			Energy:      class.MaxEnergy,
			MaxEnergy:   class.MaxEnergy,
			EnergyRegen: class.EnergyRegen,
			Equipment:   ps.Loadout.Slots(),
		},
		Controller: &ctrl,
	})
	if err != nil {
		return Player{}, err
	}

	p := Player{ID: id, Name: name, ShipID: shipID, Sector: ps.Sector}
	tx.Players.Put(tx, id, p)
	w := PlayerWindow{PlayerID: id, Window: ps.Window, Margin: ps.Margin}
	tx.Windows.Put(tx, id, w.Recenter(ps.Position))
	return p, nil
}

// RemovePlayer despawns the player's ship and drops its window
func RemovePlayer(tx *Tx, id string) bool {
	p, ok := tx.Players.Get(id)
	if !ok {
		return false
	}
	DespawnObject(tx, p.ShipID)
	tx.Windows.Delete(tx, id)
	tx.Players.Delete(tx, id)
	return true
}
