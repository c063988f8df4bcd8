package main

import (
	"testing"
	"time"
)

func TestBuildFrames(t *testing.T) {
	s := newTestState(t)
	tx := s.Begin(testT0, 1)
	EnsureSector(tx, 2, "Other")
	p, err := AddPlayer(tx, "p1", "Ace", PlayerSpawn{
		Sector:    HomeSector,
		Window:    1000,
		Margin:    250,
		Loadout:   DefaultLoadout,
		ShipClass: GetClassDef(ClassFighter),
	})
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	rock := func(sector SectorID, pos Vec2) ObjectID {
		id, err := SpawnObject(tx, Spawn{Kind: KindAsteroid, Sector: sector, Width: 40, Height: 40,
			Transform: Transform{Position: pos}})
		if err != nil {
			t.Fatalf("spawn: %v", err)
		}
		return id
	}
	near := rock(HomeSector, V(500.04, 0))
	far := rock(HomeSector, V(5000, 0))
	rock(2, V(10, 10))
	inside, _ := SpawnVisualEffect(tx, EffectLaser, HomeSector, V(0, 0), V(100, 0), time.Second)
	SpawnVisualEffect(tx, EffectLaser, HomeSector, V(4000, 0), V(4100, 0), time.Second)
	SpawnVisualEffect(tx, EffectLaser, 2, V(0, 0), V(10, 0), time.Second)
	if err := ResyncTask(DefaultDecimation)(tx, &Timer{}); err != nil {
		t.Fatalf("resync: %v", err)
	}
	tx.Commit()

	tx = s.Begin(testT0, 1)
	frames := NewFrameBuilder().Build(tx, 7)
	tx.Commit()

	f, ok := frames["p1"]
	if !ok || len(frames) != 1 {
		t.Fatalf("expected one frame for p1, got %d", len(frames))
	}
	if f.Frame != 7 || f.Self != p.ShipID {
		t.Errorf("unexpected header %d/%d", f.Frame, f.Self)
	}
	if len(f.HiRes) != 2 || f.HiRes[0].ID != p.ShipID || f.HiRes[1].ID != near {
		t.Fatalf("unexpected hi-res set %+v", f.HiRes)
	}
	if f.HiRes[1].X != 500 || f.HiRes[1].Kind != KindAsteroid {
		t.Errorf("expected rounded asteroid state, got %+v", f.HiRes[1])
	}
	if len(f.LowRes) != 1 || f.LowRes[0].ID != far {
		t.Errorf("expected only the far asteroid at low res, got %+v", f.LowRes)
	}
	if len(f.Effects) != 1 || f.Effects[0].ID != inside.ID {
		t.Errorf("expected only the in-window effect, got %+v", f.Effects)
	}
	class := GetClassDef(ClassFighter)
	if f.Ship.Hull != class.MaxHull || f.Ship.MaxEnergy != class.MaxEnergy {
		t.Errorf("unexpected ship status %+v", f.Ship)
	}
}

func TestBuildFramesUsesDerivedViews(t *testing.T) {
	s := newTestState(t)
	tx := s.Begin(testT0, 1)
	p, err := AddPlayer(tx, "p1", "Ace", PlayerSpawn{Sector: HomeSector, Window: 1000, Margin: 250, ShipClass: GetClassDef(ClassScout)})
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	tx.Commit()

	// nothing resynced yet: the frame is empty even though the ship exists
	tx = s.Begin(testT0, 1)
	f := NewFrameBuilder().Build(tx, 1)["p1"]
	if len(f.HiRes) != 0 || len(f.LowRes) != 0 {
		t.Errorf("frame read authoritative transforms: %+v", f)
	}
	if f.Self != p.ShipID {
		t.Errorf("expected self %d, got %d", p.ShipID, f.Self)
	}
	tx.Commit()
}

func TestFrameBuilderReuseDropsStaleCells(t *testing.T) {
	s := newTestState(t)
	tx := s.Begin(testT0, 1)
	if _, err := AddPlayer(tx, "p1", "Ace", PlayerSpawn{Sector: HomeSector, Window: 1000, Margin: 250, ShipClass: GetClassDef(ClassFighter)}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	rock, err := SpawnObject(tx, Spawn{Kind: KindAsteroid, Sector: HomeSector, Width: 40, Height: 40,
		Transform: Transform{Position: V(300, 0)}})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	resync := ResyncTask(1)
	resync(tx, &Timer{})
	tx.Commit()

	b := NewFrameBuilder()
	tx = s.Begin(testT0, 1)
	if f := b.Build(tx, 1)["p1"]; len(f.HiRes) != 2 {
		t.Fatalf("expected ship and asteroid at hi res, got %+v", f.HiRes)
	}
	tx.Commit()

	// the asteroid drifts out of the window; the reused grid must not keep it
	tx = s.Begin(testT0, 1)
	s.Transforms.Put(tx, rock, Transform{Position: V(3000, 0)})
	resync(tx, &Timer{})
	f := b.Build(tx, 2)["p1"]
	tx.Commit()
	if len(f.HiRes) != 1 {
		t.Errorf("stale grid entry leaked into hi res: %+v", f.HiRes)
	}
	if len(f.LowRes) != 1 || f.LowRes[0].ID != rock {
		t.Errorf("expected asteroid at low res, got %+v", f.LowRes)
	}
}
