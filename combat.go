package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Combat errors. Each aborts only the action that produced it.
var (
	ErrInvalidTarget      = errors.New("invalid target")
	ErrWeaponNotEquipped  = errors.New("weapon not equipped")
	ErrOutOfRange         = errors.New("target out of range")
	ErrOutsideLockOn      = errors.New("target outside lock-on angle")
	ErrShotMissed         = errors.New("shot misses")
	ErrInsufficientEnergy = errors.New("insufficient energy")
)

// DestructionHook is called when a shot brings a target's hull to zero.
// Loot, removal and respawn belong to it.
type DestructionHook func(tx *Tx, target, attacker ObjectID) error

// FireResult describes an applied shot
type FireResult struct {
	Damage        DamageCalculation
	ShieldApplied float64
	HullApplied   float64
	Destroyed     bool
	Effect        VisualEffect
	Cleanup       VisualEffectCleanup
}

// CombatRecorder receives every committed shot; the combat log implements it
type CombatRecorder interface {
	RecordShot(source, target ObjectID, item string, res FireResult)
}

// CombatResolver validates and applies weapon fire
type CombatResolver struct {
	Items          *ItemCatalog
	EffectLifetime time.Duration
	OnDestroyed    DestructionHook
	Recorder       CombatRecorder
	OnDenied       func(source ObjectID, what string, err error)
	logger         *slog.Logger
}

// NewCombatResolver creates a resolver that looks weapons up in items
func NewCombatResolver(items *ItemCatalog, logger *slog.Logger) *CombatResolver {
	r := &CombatResolver{
		Items:          items,
		EffectLifetime: DefaultEffectLifetime,
		logger:         logger.With("component", "combat"),
	}
	r.OnDestroyed = r.logDestroyed
	return r
}

func (r *CombatResolver) logDestroyed(tx *Tx, target, attacker ObjectID) error {
	// TODO: drop cargo and despawn the wreck once loot tables exist
	r.logger.Info("Target destroyed", "target", target, "attacker", attacker)
	return nil
}

type engagement struct {
	source  StellarObject
	sourceT Transform
	ship    Ship
	target  StellarObject
	targetT Transform
	item    ItemDef
}

// load reads every row the action needs and runs the kind and slot checks
func (r *CombatResolver) load(tx *Tx, sourceID, targetID ObjectID, slot int, kind string) (engagement, error) {
	var e engagement
	var ok bool
	if e.target, ok = tx.Objects.Get(targetID); !ok {
		return e, fmt.Errorf("%w: object %d does not exist", ErrInvalidTarget, targetID)
	}
	if !e.target.Kind.Targetable() || targetID == sourceID {
		return e, fmt.Errorf("%w: %s %d", ErrInvalidTarget, e.target.Kind, targetID)
	}
	if e.source, ok = tx.Objects.Get(sourceID); !ok {
		return e, fmt.Errorf("missing stellar object %d", sourceID)
	}
	if e.source.Sector != e.target.Sector {
		return e, fmt.Errorf("%w: target %d is in another sector", ErrInvalidTarget, targetID)
	}
	if e.ship, ok = tx.Ships.Get(sourceID); !ok {
		return e, fmt.Errorf("missing ship record for object %d", sourceID)
	}
	if e.item, ok = r.Items.Equipped(e.ship, slot, kind); !ok {
		if kind == ItemWeapon {
			return e, ErrWeaponNotEquipped
		}
		return e, errNoMissile
	}
	if e.sourceT, ok = tx.Transforms.Get(sourceID); !ok {
		return e, fmt.Errorf("missing transform for object %d", sourceID)
	}
	if e.targetT, ok = tx.Transforms.Get(targetID); !ok {
		return e, fmt.Errorf("missing transform for object %d", targetID)
	}
	return e, nil
}

var errNoMissile = errors.New("no missile equipped")

// checkGeometry runs the range, lock-on and (for hitscan) ray checks
func (e engagement) checkGeometry() error {
	w := e.item.Weapon
	if DistanceSq(e.sourceT.Position, e.targetT.Position) > w.MaxRange*w.MaxRange {
		return fmt.Errorf("%w: %.0f > %.0f", ErrOutOfRange, Distance(e.sourceT.Position, e.targetT.Position), w.MaxRange)
	}
	corners := OBBCorners(e.targetT.Position, e.target.Width, e.target.Height, e.targetT.Rotation)
	facing := e.sourceT.Facing()
	if !CornersInCone(e.sourceT.Position, facing, corners, w.LockOnAngle) {
		return ErrOutsideLockOn
	}
	if w.Hitscan && !RayHitsAABB(e.sourceT.Position, facing, BoundsOf(corners[:])) {
		return ErrShotMissed
	}
	return nil
}

// FireWeapon fires the source ship's equipped weapon at target. Validation
// happens before any write, so a failed call leaves no trace.
func (r *CombatResolver) FireWeapon(tx *Tx, sourceID, targetID ObjectID) (FireResult, error) {
	var res FireResult
	e, err := r.load(tx, sourceID, targetID, SlotWeapon, ItemWeapon)
	if err != nil {
		return res, err
	}
	if err := e.checkGeometry(); err != nil {
		return res, err
	}
	calc := NewDamageCalculation(e.item.Weapon)
	if e.ship.Energy < calc.EnergyCost {
		return res, ErrInsufficientEnergy
	}
	dur, ok := tx.Durability.Get(targetID)
	if !ok {
		return res, fmt.Errorf("missing durability for object %d", targetID)
	}

	e.ship.Energy -= calc.EnergyCost
	tx.Ships.Put(tx, sourceID, e.ship)

	res.Damage = calc
	dur, res.ShieldApplied, res.HullApplied, res.Destroyed = calc.Apply(dur)
	tx.Durability.Put(tx, targetID, dur)

	res.Effect, res.Cleanup = SpawnVisualEffect(tx, EffectLaser, e.source.Sector,
		e.sourceT.Position, e.targetT.Position, r.EffectLifetime)

	if res.Destroyed && r.OnDestroyed != nil {
		if err := r.OnDestroyed(tx, targetID, sourceID); err != nil {
			return res, fmt.Errorf("destruction hook: %w", err)
		}
	}
	if r.Recorder != nil {
		rec, item := r.Recorder, e.item.ID
		tx.OnCommit(func() { rec.RecordShot(sourceID, targetID, item, res) })
	}
	return res, nil
}

// FireMissile launches the source ship's missile at target. Flight and
// detonation are not simulated; a successful launch ends at the visual
// effect. A ship without missiles is not an error.
func (r *CombatResolver) FireMissile(tx *Tx, sourceID, targetID ObjectID) (FireResult, error) {
	var res FireResult
	e, err := r.load(tx, sourceID, targetID, SlotMissile, ItemMissile)
	if errors.Is(err, errNoMissile) {
		r.logger.Debug("Missile fire ignored, nothing equipped", "source", sourceID)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	w := e.item.Weapon
	w.Hitscan = false
	e.item.Weapon = w
	if err := e.checkGeometry(); err != nil {
		return res, err
	}
	calc := NewDamageCalculation(w)
	if e.ship.Energy < calc.EnergyCost {
		return res, ErrInsufficientEnergy
	}

	e.ship.Energy -= calc.EnergyCost
	tx.Ships.Put(tx, sourceID, e.ship)

	res.Damage = calc
	res.Effect, res.Cleanup = SpawnVisualEffect(tx, EffectMissile, e.source.Sector,
		e.sourceT.Position, e.targetT.Position, r.EffectLifetime)
	return res, nil
}

// CombatTask resolves queued fire intents and recharges ship energy. Each
// ship's action runs under its own savepoint so one failure never undoes
// another ship's shot.
func (r *CombatResolver) CombatTask() TaskFunc {
	return func(tx *Tx, timer *Timer) error {
		for _, id := range sortedObjectIDs(tx.Controllers) {
			c, _ := tx.Controllers.Get(id)
			intent := c.Intent()
			if !intent.ShouldFireWeapons() && !intent.ShouldFireMissiles() {
				continue
			}
			target, hasTarget := intent.Target()
			if intent.ShouldFireWeapons() {
				intent.ResetFireWeapons()
				if hasTarget {
					r.attempt(tx, "weapon", id, target, r.FireWeapon)
				}
			}
			if intent.ShouldFireMissiles() {
				intent.ResetFireMissiles()
				if hasTarget {
					r.attempt(tx, "missile", id, target, r.FireMissile)
				}
			}
			// the ship may have been removed by a destruction hook
			if _, ok := tx.Controllers.Get(id); ok {
				tx.Controllers.Put(tx, id, c)
			}
		}
		rechargeEnergy(tx)
		return nil
	}
}

func (r *CombatResolver) attempt(tx *Tx, what string, source, target ObjectID,
	fire func(*Tx, ObjectID, ObjectID) (FireResult, error)) {
	sp := tx.Savepoint()
	if _, err := fire(tx, source, target); err != nil {
		tx.RollbackTo(sp)
		r.logger.Debug("Fire denied", "kind", what, "source", source, "target", target, "error", err)
		if r.OnDenied != nil {
			notify := r.OnDenied
			tx.OnCommit(func() { notify(source, what, err) })
		}
	}
}

func rechargeEnergy(tx *Tx) {
	for _, id := range sortedObjectIDs(tx.Ships) {
		s, _ := tx.Ships.Get(id)
		if s.EnergyRegen <= 0 || s.Energy >= s.MaxEnergy {
			continue
		}
		s.Energy = min(s.MaxEnergy, s.Energy+s.EnergyRegen)
		tx.Ships.Put(tx, id, s)
	}
}
