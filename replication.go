package main

import "log/slog"

// DefaultDecimation is the number of resync passes between low-res rebuilds
const DefaultDecimation = 5

// DeriveTransformView builds the derived rows for one view from the
// authoritative transforms. It is pure: the same snapshot always yields the
// same rows.
func DeriveTransformView(internal map[ObjectID]Transform) map[ObjectID]Transform {
	view := make(map[ObjectID]Transform, len(internal))
	for id, t := range internal {
		view[id] = t
	}
	return view
}

// ResyncTask regenerates the hi-res view every run and the low-res view every
// decimation runs. The timer counter carries k between runs.
func ResyncTask(decimation int) TaskFunc {
	if decimation < 1 {
		decimation = DefaultDecimation
	}
	return func(tx *Tx, timer *Timer) error {
		k := timer.Counter % uint64(decimation)
		tx.HiRes.ReplaceAll(tx, DeriveTransformView(tx.Transforms.rows))
		if k == 0 {
			tx.LowRes.ReplaceAll(tx, DeriveTransformView(tx.Transforms.rows))
		}
		timer.Counter = (k + 1) % uint64(decimation)
		return nil
	}
}

// WindowTask recenters every interest window whose player's ship has left
// the inner band. Windows that still contain the ship are not written.
func WindowTask(logger *slog.Logger) TaskFunc {
	return func(tx *Tx, timer *Timer) error {
		if tx.Connected() == 0 {
			return nil
		}
		var moved []PlayerWindow
		tx.Windows.Each(func(pid string, w PlayerWindow) bool {
			p, ok := tx.Players.Get(pid)
			if !ok {
				return true
			}
			t, ok := tx.Transforms.Get(p.ShipID)
			if !ok {
				return true
			}
			if !w.Contains(t.Position) {
				moved = append(moved, w.Recenter(t.Position))
			}
			return true
		})
		for _, w := range moved {
			tx.Windows.Put(tx, w.PlayerID, w)
		}
		if len(moved) > 0 {
			logger.Debug("Windows recentered", "count", len(moved), "run", timer.Runs)
		}
		return nil
	}
}
