package main

import (
	"sort"
	"time"
)

// Table is one keyed collection of rows. Reads go straight to the map;
// writes go through a Tx so they can be rolled back.
type Table[K comparable, V any] struct {
	rows map[K]V
}

func newTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{rows: make(map[K]V)}
}

// Get returns the row stored under id
func (t *Table[K, V]) Get(id K) (V, bool) {
	v, ok := t.rows[id]
	return v, ok
}

// Len returns the number of rows
func (t *Table[K, V]) Len() int {
	return len(t.rows)
}

// Each calls fn for every row until fn returns false. Rows must not be
// written from inside fn; collect ids first.
func (t *Table[K, V]) Each(fn func(K, V) bool) {
	for k, v := range t.rows {
		if !fn(k, v) {
			return
		}
	}
}

// Put inserts or updates a row
func (t *Table[K, V]) Put(tx *Tx, id K, v V) {
	prev, had := t.rows[id]
	tx.journal(func() {
		if had {
			t.rows[id] = prev
		} else {
			delete(t.rows, id)
		}
	})
	t.rows[id] = v
}

// Delete removes a row. Deleting a missing row is a no-op and returns false.
func (t *Table[K, V]) Delete(tx *Tx, id K) bool {
	prev, had := t.rows[id]
	if !had {
		return false
	}
	tx.journal(func() { t.rows[id] = prev })
	delete(t.rows, id)
	return true
}

// ReplaceAll swaps the whole table contents for rows in a single write
func (t *Table[K, V]) ReplaceAll(tx *Tx, rows map[K]V) {
	prev := t.rows
	tx.journal(func() { t.rows = prev })
	t.rows = rows
}

// State is the shared table store. It is owned by the scheduler goroutine.
type State struct {
	Sectors     *Table[SectorID, Sector]
	Objects     *Table[ObjectID, StellarObject]
	Transforms  *Table[ObjectID, Transform]
	Velocities  *Table[ObjectID, Velocity]
	HiRes       *Table[ObjectID, Transform]
	LowRes      *Table[ObjectID, Transform]
	Windows     *Table[string, PlayerWindow]
	Players     *Table[string, Player]
	Ships       *Table[ObjectID, Ship]
	Durability  *Table[ObjectID, Durability]
	Controllers *Table[ObjectID, ShipController]
	Effects     *Table[uint64, VisualEffect]
	Cleanups    *Table[uint64, VisualEffectCleanup]

	nextObject uint64
	nextEffect uint64
}

// NewState returns an empty store
func NewState() *State {
	return &State{
		Sectors:     newTable[SectorID, Sector](),
		Objects:     newTable[ObjectID, StellarObject](),
		Transforms:  newTable[ObjectID, Transform](),
		Velocities:  newTable[ObjectID, Velocity](),
		HiRes:       newTable[ObjectID, Transform](),
		LowRes:      newTable[ObjectID, Transform](),
		Windows:     newTable[string, PlayerWindow](),
		Players:     newTable[string, Player](),
		Ships:       newTable[ObjectID, Ship](),
		Durability:  newTable[ObjectID, Durability](),
		Controllers: newTable[ObjectID, ShipController](),
		Effects:     newTable[uint64, VisualEffect](),
		Cleanups:    newTable[uint64, VisualEffectCleanup](),
	}
}

// Begin opens a transaction. connected is the number of connected players at
// the moment the invocation started.
func (s *State) Begin(now time.Time, connected int64) *Tx {
	return &Tx{State: s, now: now, connected: connected}
}

// ScheduledTask is a one-shot invocation requested from inside a transaction
type ScheduledTask struct {
	Name string
	At   time.Time
	Run  Handler
}

// Tx is one atomic invocation against the State. Every write is journaled so
// Rollback restores the state as of Begin.
type Tx struct {
	*State
	now       time.Time
	connected int64
	undo      []func()
	scheduled []ScheduledTask
	onCommit  []func()
	done      bool
}

// Savepoint marks a position that RollbackTo can return to
type Savepoint struct {
	undo      int
	scheduled int
	onCommit  int
}

// Now returns the invocation time
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Connected returns the connected-player count for this invocation
func (tx *Tx) Connected() int64 {
	return tx.connected
}

func (tx *Tx) journal(fn func()) {
	tx.undo = append(tx.undo, fn)
}

// NextObjectID allocates a stellar object id
func (tx *Tx) NextObjectID() ObjectID {
	tx.nextObject++
	tx.journal(func() { tx.nextObject-- })
	return ObjectID(tx.nextObject)
}

// NextEffectID allocates an id for effect and cleanup rows
func (tx *Tx) NextEffectID() uint64 {
	tx.nextEffect++
	tx.journal(func() { tx.nextEffect-- })
	return tx.nextEffect
}

// ScheduleAt asks the scheduler to run fn at the given time once the
// transaction commits
func (tx *Tx) ScheduleAt(at time.Time, name string, fn Handler) {
	tx.scheduled = append(tx.scheduled, ScheduledTask{Name: name, At: at, Run: fn})
}

// OnCommit registers fn to run once the transaction has committed. It is
// dropped on rollback.
func (tx *Tx) OnCommit(fn func()) {
	tx.onCommit = append(tx.onCommit, fn)
}

// Savepoint returns the current journal position
func (tx *Tx) Savepoint() Savepoint {
	return Savepoint{undo: len(tx.undo), scheduled: len(tx.scheduled), onCommit: len(tx.onCommit)}
}

// RollbackTo undoes every write made after sp
func (tx *Tx) RollbackTo(sp Savepoint) {
	for i := len(tx.undo) - 1; i >= sp.undo; i-- {
		tx.undo[i]()
	}
	tx.undo = tx.undo[:sp.undo]
	tx.scheduled = tx.scheduled[:sp.scheduled]
	tx.onCommit = tx.onCommit[:sp.onCommit]
}

// Rollback discards every write of the transaction
func (tx *Tx) Rollback() {
	if tx.done {
		return
	}
	tx.RollbackTo(Savepoint{})
	tx.done = true
}

// Commit finalizes the transaction and returns the one-shot tasks it scheduled
func (tx *Tx) Commit() []ScheduledTask {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.undo = nil
	for _, fn := range tx.onCommit {
		fn()
	}
	return tx.scheduled
}

func sortedObjectIDs[V any](t *Table[ObjectID, V]) []ObjectID {
	ids := make([]ObjectID, 0, t.Len())
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
