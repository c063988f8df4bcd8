package main

import (
	"fmt"
	"time"
)

// DefaultEffectLifetime is how long a visual effect stays before cleanup
const DefaultEffectLifetime = 500 * time.Millisecond

const taskEffectCleanup = "visual_effect_cleanup"

// SpawnVisualEffect inserts an effect and its paired cleanup row, and asks
// the scheduler to run the cleanup after lifetime
func SpawnVisualEffect(tx *Tx, kind EffectKind, sector SectorID, source, target Vec2, lifetime time.Duration) (VisualEffect, VisualEffectCleanup) {
	fx := VisualEffect{
		ID:        tx.NextEffectID(),
		Kind:      kind,
		Sector:    sector,
		Source:    source,
		Target:    target,
		CreatedAt: tx.Now(),
	}
	tx.Effects.Put(tx, fx.ID, fx)

	cl := VisualEffectCleanup{ID: tx.NextEffectID(), EffectID: fx.ID, At: tx.Now().Add(lifetime)}
	tx.Cleanups.Put(tx, cl.ID, cl)
	cleanupID := cl.ID
	tx.ScheduleAt(cl.At, fmt.Sprintf("%s:%d", taskEffectCleanup, cleanupID), func(tx *Tx) error {
		CleanupVisualEffect(tx, cleanupID)
		return nil
	})
	return fx, cl
}

// CleanupVisualEffect removes the effect behind a cleanup row and the row
// itself. Running it for a row that is already gone is a no-op. Reports
// whether anything was deleted.
func CleanupVisualEffect(tx *Tx, cleanupID uint64) bool {
	cl, ok := tx.Cleanups.Get(cleanupID)
	if !ok {
		return false
	}
	tx.Cleanups.Delete(tx, cleanupID)
	tx.Effects.Delete(tx, cl.EffectID)
	return true
}
