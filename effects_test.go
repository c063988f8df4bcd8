package main

import (
	"strings"
	"testing"
	"time"
)

func TestSpawnVisualEffect(t *testing.T) {
	s := newTestState(t)
	tx := s.Begin(testT0, 1)
	fx, cl := SpawnVisualEffect(tx, EffectLaser, HomeSector, V(1, 2), V(3, 4), time.Second)
	scheduled := tx.Commit()

	if fx.ID == cl.ID {
		t.Errorf("effect and cleanup share id %d", fx.ID)
	}
	if cl.EffectID != fx.ID || !cl.At.Equal(testT0.Add(time.Second)) {
		t.Errorf("unexpected cleanup %+v", cl)
	}
	if !fx.CreatedAt.Equal(testT0) {
		t.Errorf("expected CreatedAt %v, got %v", testT0, fx.CreatedAt)
	}
	if len(scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(scheduled))
	}
	if !strings.HasPrefix(scheduled[0].Name, "visual_effect_cleanup:") || !scheduled[0].At.Equal(cl.At) {
		t.Errorf("unexpected scheduled task %q at %v", scheduled[0].Name, scheduled[0].At)
	}
}

func TestCleanupVisualEffectIdempotent(t *testing.T) {
	s := newTestState(t)
	tx := s.Begin(testT0, 1)
	_, cl := SpawnVisualEffect(tx, EffectMissile, HomeSector, V(0, 0), V(10, 0), time.Second)
	other, _ := SpawnVisualEffect(tx, EffectLaser, HomeSector, V(0, 0), V(20, 0), time.Second)
	tx.Commit()

	tx = s.Begin(testT0, 1)
	if !CleanupVisualEffect(tx, cl.ID) {
		t.Error("first cleanup should delete")
	}
	if CleanupVisualEffect(tx, cl.ID) {
		t.Error("second cleanup should be a no-op")
	}
	tx.Commit()

	if s.Effects.Len() != 1 || s.Cleanups.Len() != 1 {
		t.Errorf("expected only the other effect to remain, got %d effects %d cleanups",
			s.Effects.Len(), s.Cleanups.Len())
	}
	if !has(s.Effects, other.ID) {
		t.Error("unrelated effect was removed")
	}
}

func TestSpawnVisualEffectRollback(t *testing.T) {
	s := newTestState(t)
	tx := s.Begin(testT0, 1)
	SpawnVisualEffect(tx, EffectLaser, HomeSector, V(0, 0), V(1, 0), time.Second)
	tx.Rollback()

	if s.Effects.Len() != 0 || s.Cleanups.Len() != 0 {
		t.Error("rolled back effect rows remain")
	}
	tx = s.Begin(testT0, 1)
	fx, _ := SpawnVisualEffect(tx, EffectLaser, HomeSector, V(0, 0), V(1, 0), time.Second)
	tx.Commit()
	if fx.ID != 1 {
		t.Errorf("ids should restart after rollback, got %d", fx.ID)
	}
}
