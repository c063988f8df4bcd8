package main

import (
	"log/slog"
	"sync"
	"time"
)

const (
	combatLogBuffer     = 1024
	combatLogBatchSize  = 50
	combatLogFlushEvery = 5 * time.Second
)

// CombatLog persists committed shots with batched background writes. It
// implements CombatRecorder.
type CombatLog struct {
	db     *DB
	events chan CombatEventRow
	stop   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger

	mu      sync.Mutex
	dropped uint64
	written uint64
}

// NewCombatLog creates and starts the combat log writer
func NewCombatLog(db *DB, logger *slog.Logger) *CombatLog {
	l := &CombatLog{
		db:     db,
		events: make(chan CombatEventRow, combatLogBuffer),
		stop:   make(chan struct{}),
		logger: logger.With("component", "combat_log"),
	}
	l.wg.Add(1)
	go l.writer()
	return l
}

// RecordShot enqueues a shot for persistence. It never blocks the scheduler.
func (l *CombatLog) RecordShot(source, target ObjectID, item string, res FireResult) {
	select {
	case l.events <- CombatEventRow{
		Source:        source,
		Target:        target,
		Item:          item,
		ShieldApplied: res.ShieldApplied,
		HullApplied:   res.HullApplied,
		Destroyed:     res.Destroyed,
		CreatedAt:     time.Now().UTC(),
	}:
	default:
		// full: drop rather than stall the tick
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
	}
}

// Stats returns how many events were written and dropped so far
func (l *CombatLog) Stats() (written, dropped uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.dropped
}

// Stop flushes pending events and shuts the writer down
func (l *CombatLog) Stop() {
	close(l.stop)
	l.wg.Wait()
}

func (l *CombatLog) writer() {
	defer l.wg.Done()

	batch := make([]CombatEventRow, 0, combatLogBatchSize)
	ticker := time.NewTicker(combatLogFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case evt := <-l.events:
			batch = append(batch, evt)
			if len(batch) >= combatLogBatchSize {
				l.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = batch[:0]
			}
		case <-l.stop:
			for {
				select {
				case evt := <-l.events:
					batch = append(batch, evt)
				default:
					l.flush(batch)
					return
				}
			}
		}
	}
}

func (l *CombatLog) flush(events []CombatEventRow) {
	if l.db == nil || len(events) == 0 {
		return
	}
	if err := l.db.InsertCombatEvents(events); err != nil {
		l.logger.Error("Failed to write combat events", "count", len(events), "error", err)
		return
	}
	l.mu.Lock()
	l.written += uint64(len(events))
	l.mu.Unlock()
}
