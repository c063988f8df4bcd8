package main

import "sort"

// FrameBuilder assembles one state frame per player from the derived views.
// Objects inside a player's window come from the hi-res view; the rest of
// the sector comes from the low-res view. Effects are sent when either end
// lies inside the window. Grids are kept between builds and cleared, so a
// builder must only be used from the scheduler goroutine.
type FrameBuilder struct {
	grids map[SectorID]*SpatialGrid
	buf   []ObjectID
}

// NewFrameBuilder returns an empty builder
func NewFrameBuilder() *FrameBuilder {
	return &FrameBuilder{grids: make(map[SectorID]*SpatialGrid)}
}

// Build returns the frames for every player with a window
func (b *FrameBuilder) Build(tx *Tx, frame uint64) map[string]StateFrame {
	for _, g := range b.grids {
		g.Clear()
	}
	grids := b.grids
	tx.HiRes.Each(func(id ObjectID, t Transform) bool {
		obj, ok := tx.Objects.Get(id)
		if !ok {
			return true
		}
		g := grids[obj.Sector]
		if g == nil {
			g = NewSpatialGrid(SpatialCellSize)
			grids[obj.Sector] = g
		}
		g.Insert(t.Position, id)
		return true
	})

	frames := make(map[string]StateFrame, tx.Players.Len())
	buf := b.buf
	tx.Players.Each(func(pid string, p Player) bool {
		w, ok := tx.Windows.Get(pid)
		if !ok {
			return true
		}
		f := StateFrame{Frame: frame, Self: p.ShipID, Window: [2]Vec2{w.TL, w.BR}}
		if s, ok := tx.Ships.Get(p.ShipID); ok {
			f.Ship.Energy, f.Ship.MaxEnergy = s.Energy, s.MaxEnergy
		}
		if d, ok := tx.Durability.Get(p.ShipID); ok {
			f.Ship.Shields, f.Ship.MaxShields = d.Shields, d.MaxShields
			f.Ship.Hull, f.Ship.MaxHull = d.Hull, d.MaxHull
		}

		inWindow := make(map[ObjectID]bool)
		if g := grids[p.Sector]; g != nil {
			buf = g.QueryRect(w.TL, w.BR, buf[:0])
			for _, id := range buf {
				t, _ := tx.HiRes.Get(id)
				if !w.Bounds(t.Position) {
					continue
				}
				inWindow[id] = true
				f.HiRes = append(f.HiRes, objectState(tx, id, t))
			}
		}
		tx.LowRes.Each(func(id ObjectID, t Transform) bool {
			if inWindow[id] {
				return true
			}
			if obj, ok := tx.Objects.Get(id); ok && obj.Sector == p.Sector {
				f.LowRes = append(f.LowRes, objectState(tx, id, t))
			}
			return true
		})
		tx.Effects.Each(func(_ uint64, fx VisualEffect) bool {
			if fx.Sector == p.Sector && (w.Bounds(fx.Source) || w.Bounds(fx.Target)) {
				f.Effects = append(f.Effects, fx)
			}
			return true
		})

		sortStates(f.HiRes)
		sortStates(f.LowRes)
		sort.Slice(f.Effects, func(i, j int) bool { return f.Effects[i].ID < f.Effects[j].ID })
		frames[pid] = f
		return true
	})
	b.buf = buf[:0]
	return frames
}

func objectState(tx *Tx, id ObjectID, t Transform) ObjectState {
	obj, _ := tx.Objects.Get(id)
	return ObjectState{ID: id, Kind: obj.Kind, X: round1(t.Position.X), Y: round1(t.Position.Y), R: t.Rotation}
}

func sortStates(s []ObjectState) {
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
}
