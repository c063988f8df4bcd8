package main

// DamageCalculation is the per-shot damage profile derived from a weapon
type DamageCalculation struct {
	Base         float64
	ShieldDamage float64
	HullDamage   float64
	EnergyCost   float64
}

// NewDamageCalculation folds weapon metadata into one firing event
func NewDamageCalculation(w WeaponMetadata) DamageCalculation {
	base := w.BaseDamage + w.DamageBoost
	return DamageCalculation{
		Base:         base,
		ShieldDamage: base * w.ShieldMult,
		HullDamage:   base * w.KineticMult,
		EnergyCost:   w.EnergyCost,
	}
}

// ApplyToTarget runs the shot against a target's shields and hull. Shields
// absorb first; whatever shield damage is left over is converted to hull
// damage at the HullDamage/ShieldDamage ratio. Both applied amounts are capped
// by what the target has left. destroyed is reported only on the shot that
// takes the hull from positive to zero.
func (d DamageCalculation) ApplyToTarget(shields, hull float64) (shieldApplied, hullApplied float64, destroyed bool) {
	if shields < 0 {
		shields = 0
	}
	if d.ShieldDamage > 0 {
		shieldApplied = min(d.ShieldDamage, shields)
		excess := d.ShieldDamage - shieldApplied
		if excess > 0 {
			hullApplied = excess * (d.HullDamage / d.ShieldDamage)
		}
	} else if shields == 0 {
		// no shield component: only an unshielded hull takes the kinetic part
		hullApplied = d.HullDamage
	}
	hullApplied = max(0, min(hullApplied, hull))
	return shieldApplied, hullApplied, hull > 0 && hull-hullApplied <= 0
}

// Apply returns the durability after the shot and whether it was destroyed
func (d DamageCalculation) Apply(dur Durability) (Durability, float64, float64, bool) {
	s, h, destroyed := d.ApplyToTarget(dur.Shields, dur.Hull)
	dur.Shields -= s
	dur.Hull -= h
	return dur, s, h, destroyed
}
