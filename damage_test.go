package main

import "testing"

func TestNewDamageCalculation(t *testing.T) {
	d := NewDamageCalculation(WeaponMetadata{BaseDamage: 10, DamageBoost: 2, ShieldMult: 1.5, KineticMult: 0.5, EnergyCost: 7})
	if d.Base != 12 || d.ShieldDamage != 18 || d.HullDamage != 6 || d.EnergyCost != 7 {
		t.Errorf("unexpected calculation %+v", d)
	}
}

func TestApplyShieldsBeforeHull(t *testing.T) {
	d := DamageCalculation{ShieldDamage: 15, HullDamage: 30}
	tests := []struct {
		name                 string
		shields, hull        float64
		wantShield, wantHull float64
		destroyed            bool
	}{
		{"overflow converts at ratio", 10, 50, 10, 10, false},
		{"shields absorb all", 100, 50, 15, 0, false},
		{"no shields", 0, 50, 0, 30, false},
		{"hull capped", 0, 20, 0, 20, true},
		{"exact kill", 0, 30, 0, 30, true},
		{"already destroyed", 0, 0, 0, 0, false},
	}
	for _, tc := range tests {
		s, h, destroyed := d.ApplyToTarget(tc.shields, tc.hull)
		if s != tc.wantShield || h != tc.wantHull || destroyed != tc.destroyed {
			t.Errorf("%s: got %v/%v/%v, want %v/%v/%v", tc.name, s, h, destroyed, tc.wantShield, tc.wantHull, tc.destroyed)
		}
	}
}

func TestApplyUpdatesDurability(t *testing.T) {
	d := DamageCalculation{ShieldDamage: 15, HullDamage: 30}
	dur, s, h, destroyed := d.Apply(Durability{Shields: 10, MaxShields: 100, Hull: 50, MaxHull: 100})
	if dur.Shields != 0 || dur.Hull != 40 {
		t.Errorf("expected 0 shields / 40 hull, got %v / %v", dur.Shields, dur.Hull)
	}
	if s != 10 || h != 10 || destroyed {
		t.Errorf("unexpected applied amounts %v/%v destroyed=%v", s, h, destroyed)
	}
	if dur.MaxShields != 100 || dur.MaxHull != 100 {
		t.Error("maximums must not change")
	}
}

func TestApplyWithoutShieldComponent(t *testing.T) {
	d := DamageCalculation{ShieldDamage: 0, HullDamage: 12}
	if s, h, _ := d.ApplyToTarget(5, 50); s != 0 || h != 0 {
		t.Errorf("shielded target took %v/%v from a shield-less weapon", s, h)
	}
	if s, h, _ := d.ApplyToTarget(0, 50); s != 0 || h != 12 {
		t.Errorf("unshielded target took %v/%v, want 0/12", s, h)
	}
}
