package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Handler is an on-demand invocation against the store
type Handler func(tx *Tx) error

// TaskFunc is a periodic invocation. It may mutate the timer record; the
// mutation is kept only when the invocation commits.
type TaskFunc func(tx *Tx, timer *Timer) error

// Timer is the record handed to a periodic task on every run
type Timer struct {
	Name     string
	Interval time.Duration
	Counter  uint64 // owned by the task
	Runs     uint64
	Failures uint64
	LastRun  time.Time
}

// ErrSchedulerStopped is returned by Do once the loop has exited
var ErrSchedulerStopped = errors.New("scheduler stopped")

// ConnectedCounter counts connected players. Movement and window passes skip
// all work while it is zero.
type ConnectedCounter struct {
	n atomic.Int64
}

func (c *ConnectedCounter) Inc()        { c.n.Add(1) }
func (c *ConnectedCounter) Dec()        { c.n.Add(-1) }
func (c *ConnectedCounter) Load() int64 { return c.n.Load() }

type periodicTask struct {
	timer   Timer
	fn      TaskFunc
	pending atomic.Bool
}

type job struct {
	ctx  context.Context
	name string
	run  Handler
	task *periodicTask
	done chan error
}

// Scheduler owns the State and runs every invocation on one goroutine, one at
// a time, each inside its own transaction.
type Scheduler struct {
	state     *State
	connected *ConnectedCounter
	logger    *slog.Logger
	clock     func() time.Time

	tasks  []*periodicTask
	byName map[string]*periodicTask
	inbox  chan job
	quit   chan struct{}
}

// NewScheduler creates a scheduler over state
func NewScheduler(state *State, connected *ConnectedCounter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		state:     state,
		connected: connected,
		logger:    logger.With("component", "scheduler"),
		clock:     time.Now,
		byName:    make(map[string]*periodicTask),
		inbox:     make(chan job, 256),
		quit:      make(chan struct{}),
	}
}

// Every registers a periodic task. Must be called before Run.
func (s *Scheduler) Every(name string, interval time.Duration, fn TaskFunc) {
	t := &periodicTask{timer: Timer{Name: name, Interval: interval}, fn: fn}
	s.tasks = append(s.tasks, t)
	s.byName[name] = t
}

// Run processes invocations until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.quit)
	for _, t := range s.tasks {
		go s.tick(ctx, t, t.timer.Name, t.timer.Interval)
	}
	s.logger.Info("Scheduler started", "tasks", len(s.tasks))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case j := <-s.inbox:
			s.dispatch(j)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, t *periodicTask, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// at most one run of a task may be queued or executing
			if !t.pending.CompareAndSwap(false, true) {
				continue
			}
			select {
			case s.inbox <- job{name: name, task: t}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Scheduler) dispatch(j job) {
	if j.task != nil {
		s.runTask(j.task)
		j.task.pending.Store(false)
		return
	}
	var err error
	if j.ctx != nil && j.ctx.Err() != nil {
		// the caller gave up while the job was queued
		err = j.ctx.Err()
	} else {
		err = s.execute(j.name, j.run)
	}
	if j.done != nil {
		j.done <- err
	} else if err != nil {
		s.logger.Warn("Scheduled invocation failed", "task", j.name, "error", err)
	}
}

func (s *Scheduler) runTask(t *periodicTask) error {
	timer := t.timer
	err := s.execute(timer.Name, func(tx *Tx) error {
		return t.fn(tx, &timer)
	})
	if err != nil {
		t.timer.Failures++
		s.logger.Warn("Periodic task failed", "task", timer.Name, "error", err)
		return err
	}
	timer.Runs++
	timer.LastRun = s.clock()
	t.timer = timer
	return nil
}

// execute runs h in a fresh transaction, committing on success and rolling
// back on error or panic
func (s *Scheduler) execute(name string, h Handler) (err error) {
	tx := s.state.Begin(s.clock(), s.connected.Load())
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		for _, st := range tx.Commit() {
			s.arm(st)
		}
	}()
	return h(tx)
}

func (s *Scheduler) arm(st ScheduledTask) {
	delay := st.At.Sub(s.clock())
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case s.inbox <- job{name: st.Name, run: st.Run}:
		case <-s.quit:
		}
	})
}

// Do runs h on the scheduler goroutine and waits for its result. A job whose
// ctx is done by the time it is dequeued is skipped and reports ctx.Err().
// Once queued, Do always waits for the outcome so the returned error matches
// what was committed.
func (s *Scheduler) Do(ctx context.Context, name string, h Handler) error {
	done := make(chan error, 1)
	select {
	case s.inbox <- job{ctx: ctx, name: name, run: h, done: done}:
	case <-s.quit:
		return ErrSchedulerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-s.quit:
		return ErrSchedulerStopped
	}
}

// Exec runs h in its own transaction on the calling goroutine. Only valid
// while Run is not executing.
func (s *Scheduler) Exec(name string, h Handler) error {
	return s.execute(name, h)
}

// RunTask executes a registered periodic task synchronously. Only valid while
// Run is not executing.
func (s *Scheduler) RunTask(name string) error {
	t, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return s.runTask(t)
}

// Timer returns a copy of a task's timer record. Call it from inside an
// invocation or while Run is not executing.
func (s *Scheduler) Timer(name string) (Timer, bool) {
	t, ok := s.byName[name]
	if !ok {
		return Timer{}, false
	}
	return t.timer, true
}
