package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Periodic task names
const (
	TaskMovement  = "movement"
	TaskResync    = "resync"
	TaskWindow    = "window"
	TaskCombat    = "combat"
	TaskBroadcast = "broadcast"
)

const maxPlayers = 200

// ErrSectorFull is returned by Join when the player cap is reached
var ErrSectorFull = errors.New("sector full")

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game wires the store, the scheduler and the combat resolver together and
// is the entry point for everything a connection does
type Game struct {
	cfg       *Config
	state     *State
	sched     *Scheduler
	connected *ConnectedCounter
	combat    *CombatResolver
	combatLog *CombatLog
	db        *DB
	logger    *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.RWMutex
	clients map[string]Broadcaster // playerID -> client
	frames  atomic.Uint64
	builder *FrameBuilder // scheduler goroutine only
}

// NewGame builds a game over an empty store and registers its periodic tasks.
// db and combatLog may be nil.
func NewGame(cfg *Config, items *ItemCatalog, db *DB, combatLog *CombatLog, logger *slog.Logger) *Game {
	connected := &ConnectedCounter{}
	state := NewState()
	g := &Game{
		cfg:       cfg,
		state:     state,
		sched:     NewScheduler(state, connected, logger),
		connected: connected,
		combat:    NewCombatResolver(items, logger),
		combatLog: combatLog,
		db:        db,
		logger:    logger.With("component", "game"),
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5ec7)),
		clients:   make(map[string]Broadcaster),
		builder:   NewFrameBuilder(),
	}

	g.combat.EffectLifetime = cfg.Simulation.EffectLifetime
	if combatLog != nil {
		g.combat.Recorder = combatLog
	}
	g.combat.OnDenied = g.notifyDenied
	logDestroyed := g.combat.OnDestroyed
	g.combat.OnDestroyed = func(tx *Tx, target, attacker ObjectID) error {
		if err := logDestroyed(tx, target, attacker); err != nil {
			return err
		}
		if s, ok := tx.Ships.Get(target); ok && s.PlayerID != "" {
			pid := s.PlayerID
			tx.OnCommit(func() {
				g.send(pid, Envelope{T: MsgDestroyed, Data: DestroyedMsg{Attacker: attacker}})
			})
		}
		return nil
	}

	sim, rep := cfg.Simulation, cfg.Replication
	g.sched.Every(TaskMovement, sim.MovementInterval, MovementTask(logger.With("component", "movement")))
	g.sched.Every(TaskResync, rep.ResyncInterval, ResyncTask(rep.Decimation))
	g.sched.Every(TaskWindow, rep.WindowInterval, WindowTask(logger.With("component", "window")))
	g.sched.Every(TaskCombat, sim.CombatInterval, g.combat.CombatTask())
	g.sched.Every(TaskBroadcast, sim.BroadcastInterval, g.broadcastTask)
	return g
}

// Seed populates the home sector. Call before Run.
func (g *Game) Seed() error {
	return g.sched.Exec("seed", func(tx *Tx) error {
		g.rngMu.Lock()
		defer g.rngMu.Unlock()
		return SeedSector(tx, g.cfg.Simulation, g.rng)
	})
}

// Run drives the scheduler until ctx is cancelled
func (g *Game) Run(ctx context.Context) {
	g.sched.Run(ctx)
}

// Join spawns a ship for the identity and starts sending it state frames
func (g *Game) Join(ctx context.Context, id Identity, client Broadcaster) (Player, error) {
	loadout := DefaultLoadout
	if g.db != nil {
		l, err := g.db.GetLoadout(id.PlayerID)
		if err != nil {
			g.logger.Warn("Failed to load loadout, using default", "player_id", id.PlayerID, "error", err)
		} else {
			loadout = l
		}
	}

	g.rngMu.Lock()
	pos, rot := SpawnPoint(g.rng, g.cfg.Simulation.SpawnRadius)
	g.rngMu.Unlock()

	var p Player
	err := g.sched.Do(ctx, "join", func(tx *Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tx.Players.Len() >= maxPlayers {
			return ErrSectorFull
		}
		var err error
		p, err = AddPlayer(tx, id.PlayerID, id.Name, PlayerSpawn{
			Sector:    HomeSector,
			Position:  pos,
			Rotation:  rot,
			Window:    g.cfg.Replication.WindowSize,
			Margin:    g.cfg.Replication.WindowMargin,
			Loadout:   loadout,
			ShipClass: GetClassDef(loadout.Class),
		})
		if err != nil {
			return err
		}
		// the client is attached together with the world rows or not at all
		pid := p.ID
		tx.OnCommit(func() {
			g.mu.Lock()
			g.clients[pid] = client
			g.mu.Unlock()
			g.connected.Inc()
		})
		return nil
	})
	if err != nil {
		return Player{}, err
	}
	g.logger.Info("Player joined", "player_id", p.ID, "name", p.Name, "ship_id", p.ShipID)
	return p, nil
}

// Leave despawns the player's ship and stops its frames
func (g *Game) Leave(ctx context.Context, playerID string) error {
	g.mu.Lock()
	_, had := g.clients[playerID]
	delete(g.clients, playerID)
	g.mu.Unlock()
	if had {
		g.connected.Dec()
	}

	err := g.sched.Do(ctx, "leave", func(tx *Tx) error {
		RemovePlayer(tx, playerID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove player %s: %w", playerID, err)
	}
	g.logger.Info("Player left", "player_id", playerID)
	return nil
}

// HandleInput records a pilot's intent on their ship controller. The
// movement and combat passes act on it.
func (g *Game) HandleInput(ctx context.Context, playerID string, in InputMsg) error {
	return g.sched.Do(ctx, "input", func(tx *Tx) error {
		p, ok := tx.Players.Get(playerID)
		if !ok {
			return fmt.Errorf("player %s not in world", playerID)
		}
		c, ok := tx.Controllers.Get(p.ShipID)
		if !ok || c.Kind != ControlledByPlayer {
			return fmt.Errorf("ship %d has no player controller", p.ShipID)
		}
		c.Player.Thrust = in.Thrust
		c.Player.Turn = max(-1, min(1, in.Turn))
		c.Player.TargetID = in.Target
		// fire requests stay queued until the combat pass consumes them
		c.Player.FireWeapons = c.Player.FireWeapons || in.Fire
		c.Player.FireMissiles = c.Player.FireMissiles || in.Missile
		tx.Controllers.Put(tx, p.ShipID, c)
		return nil
	})
}

// SaveLoadout validates and stores the loadout used on the player's next join
func (g *Game) SaveLoadout(playerID string, msg LoadoutMsg) error {
	if g.db == nil {
		return errors.New("loadouts are not persisted")
	}
	l := Loadout{Class: ShipClass(msg.Class), Weapon: msg.Weapon, Missile: msg.Missile}
	if l.Class < 0 || int(l.Class) >= len(ShipClasses) {
		return fmt.Errorf("unknown ship class %d", msg.Class)
	}
	if d, ok := g.combat.Items.Get(l.Weapon); l.Weapon != "" && (!ok || d.Kind != ItemWeapon) {
		return fmt.Errorf("%s is not a weapon", l.Weapon)
	}
	if d, ok := g.combat.Items.Get(l.Missile); l.Missile != "" && (!ok || d.Kind != ItemMissile) {
		return fmt.Errorf("%s is not a missile", l.Missile)
	}
	return g.db.SaveLoadout(playerID, l)
}

// Status reports live counters. It runs on the scheduler goroutine so the
// numbers come from one consistent state.
func (g *Game) Status(ctx context.Context) (StatusMsg, error) {
	st := StatusMsg{Tasks: make(map[string]TaskStatus)}
	err := g.sched.Do(ctx, "status", func(tx *Tx) error {
		st.Connected = tx.Connected()
		st.Players = tx.Players.Len()
		st.Objects = tx.Objects.Len()
		st.Effects = tx.Effects.Len()
		for _, name := range []string{TaskMovement, TaskResync, TaskWindow, TaskCombat, TaskBroadcast} {
			if t, ok := g.sched.Timer(name); ok {
				st.Tasks[name] = TaskStatus{IntervalMS: t.Interval.Milliseconds(), Runs: t.Runs, Failures: t.Failures}
			}
		}
		return nil
	})
	st.Frames = g.frames.Load()
	if g.combatLog != nil {
		w, d := g.combatLog.Stats()
		st.CombatLog = &CombatLogStatus{Written: w, Dropped: d}
	}
	return st, err
}

// broadcastTask encodes a state frame per player and hands them to the
// clients once the invocation commits
func (g *Game) broadcastTask(tx *Tx, timer *Timer) error {
	if tx.Connected() == 0 {
		return nil
	}
	frame := g.frames.Load() + 1
	encoded := make(map[string][]byte)
	for pid, f := range g.builder.Build(tx, frame) {
		data, err := msgpack.Marshal(&f)
		if err != nil {
			return fmt.Errorf("encode frame for %s: %w", pid, err)
		}
		encoded[pid] = data
	}
	tx.OnCommit(func() {
		g.frames.Store(frame)
		g.mu.RLock()
		defer g.mu.RUnlock()
		for pid, data := range encoded {
			if c, ok := g.clients[pid]; ok {
				c.SendBinary(data)
			}
		}
	})
	return nil
}

func (g *Game) notifyDenied(source ObjectID, what string, err error) {
	s, ok := g.state.Ships.Get(source)
	if !ok || s.PlayerID == "" {
		return
	}
	g.send(s.PlayerID, Envelope{T: MsgDenied, Data: DeniedMsg{Kind: what, Msg: err.Error()}})
}

func (g *Game) send(playerID string, msg Envelope) {
	g.mu.RLock()
	c, ok := g.clients[playerID]
	g.mu.RUnlock()
	if ok {
		c.SendJSON(msg)
	}
}
