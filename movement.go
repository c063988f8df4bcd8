package main

import (
	"log/slog"
	"math"
)

const (
	ThrustSpeed         = 5.0  // units/tick while the thrust flag is held
	TurnRate            = 0.08 // radians/tick while a turn flag is held
	AngularDecay        = 0.9  // angular velocity multiplier per tick when dampened
	VelocitySnapEpsilon = 0.01 // speeds below this snap to zero
)

// Integrate advances one object by one tick. ctrl may be nil.
func Integrate(t Transform, v Velocity, ctrl Intent) (Transform, Velocity) {
	if ctrl != nil {
		if ctrl.Thrusting() {
			v.Linear = Facing(t.Rotation).Scale(ThrustSpeed)
		}
		if dir := ctrl.TurnDir(); dir != 0 {
			v.Angular = float64(dir) * TurnRate
		}
	}

	t.Position = t.Position.Add(v.Linear)
	t.Rotation = WrapRotation(t.Rotation + v.Angular)

	if v.AutoDampen != nil {
		v.Linear = v.Linear.Scale(*v.AutoDampen)
		if v.Linear.Length() < VelocitySnapEpsilon {
			v.Linear = Vec2{}
		}
		v.Angular *= AngularDecay
		if math.Abs(v.Angular) < VelocitySnapEpsilon*VelocitySnapEpsilon {
			v.Angular = 0
		}
	}
	return t, v
}

// MovementTask integrates every object that has a Velocity row
func MovementTask(logger *slog.Logger) TaskFunc {
	return func(tx *Tx, timer *Timer) error {
		if tx.Connected() == 0 {
			return nil
		}
		skipped := 0
		for _, id := range sortedObjectIDs(tx.Velocities) {
			v, _ := tx.Velocities.Get(id)
			t, ok := tx.Transforms.Get(id)
			if !ok {
				skipped++
				continue
			}
			var intent Intent
			if c, ok := tx.Controllers.Get(id); ok {
				intent = c.Intent()
			}
			nt, nv := Integrate(t, v, intent)
			if nv != v {
				tx.Velocities.Put(tx, id, nv)
			}
			if nt != t {
				tx.Transforms.Put(tx, id, nt)
			}
		}
		if skipped > 0 {
			logger.Debug("Objects without transform skipped", "count", skipped, "run", timer.Runs)
		}
		return nil
	}
}
