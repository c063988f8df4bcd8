package main

// ShipClass identifies the hull a player flies
type ShipClass int

const (
	ClassFighter ShipClass = 0
	ClassTank    ShipClass = 1
	ClassScout   ShipClass = 2
)

// ShipClassDef holds the stats for a ship class
type ShipClassDef struct {
	Name        string
	Width       float64
	Height      float64
	MaxShields  float64
	MaxHull     float64
	MaxEnergy   float64
	EnergyRegen float64 // per combat tick
	Dampen      float64 // linear velocity multiplier per movement tick
}

var ShipClasses = [3]ShipClassDef{
	// Fighter: balanced
	{
		Name: "fighter", Width: 32, Height: 32,
		MaxShields: 100, MaxHull: 100, MaxEnergy: 100, EnergyRegen: 2, Dampen: 0.98,
	},
	// Tank: big shields, slow to recharge
	{
		Name: "tank", Width: 48, Height: 40,
		MaxShields: 200, MaxHull: 180, MaxEnergy: 80, EnergyRegen: 1.5, Dampen: 0.96,
	},
	// Scout: fragile, deep capacitor
	{
		Name: "scout", Width: 24, Height: 20,
		MaxShields: 60, MaxHull: 60, MaxEnergy: 140, EnergyRegen: 3, Dampen: 0.99,
	},
}

// GetClassDef returns the definition for a ship class
func GetClassDef(class ShipClass) ShipClassDef {
	if class < 0 || int(class) >= len(ShipClasses) {
		return ShipClasses[ClassFighter]
	}
	return ShipClasses[class]
}
