package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// CombatEventRow is one persisted shot
type CombatEventRow struct {
	ID            int64
	Source        ObjectID
	Target        ObjectID
	Item          string
	ShieldApplied float64
	HullApplied   float64
	Destroyed     bool
	CreatedAt     time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL lets the combat log writer run alongside catalog reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		weapon TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS loadouts (
		player_id TEXT PRIMARY KEY,
		class INTEGER NOT NULL DEFAULT 0,
		weapon TEXT NOT NULL DEFAULT '',
		missile TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS combat_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id INTEGER NOT NULL,
		target_id INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		shield_applied REAL NOT NULL DEFAULT 0,
		hull_applied REAL NOT NULL DEFAULT 0,
		destroyed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_combat_events_source ON combat_events(source_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SeedItems inserts defs that are not in the items table yet
func (db *DB) SeedItems(defs []ItemDef) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO items (id, name, kind, weapon) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range defs {
		meta, err := json.Marshal(d.Weapon)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", d.ID, err)
		}
		if _, err := stmt.Exec(d.ID, d.Name, d.Kind, string(meta)); err != nil {
			return fmt.Errorf("insert item %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// LoadItems returns every item definition
func (db *DB) LoadItems() ([]ItemDef, error) {
	rows, err := db.conn.Query("SELECT id, name, kind, weapon FROM items ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemDef
	for rows.Next() {
		var d ItemDef
		var meta string
		if err := rows.Scan(&d.ID, &d.Name, &d.Kind, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meta), &d.Weapon); err != nil {
			return nil, fmt.Errorf("decode item %s: %w", d.ID, err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// GetLoadout returns the stored loadout of a player, or DefaultLoadout when
// none is stored
func (db *DB) GetLoadout(playerID string) (Loadout, error) {
	var l Loadout
	err := db.conn.QueryRow(
		"SELECT class, weapon, missile FROM loadouts WHERE player_id = ?",
		playerID,
	).Scan(&l.Class, &l.Weapon, &l.Missile)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultLoadout, nil
	}
	if err != nil {
		return DefaultLoadout, err
	}
	return l, nil
}

// SaveLoadout stores a player's loadout
func (db *DB) SaveLoadout(playerID string, l Loadout) error {
	_, err := db.conn.Exec(`
		INSERT INTO loadouts (player_id, class, weapon, missile, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player_id) DO UPDATE SET
			class = excluded.class,
			weapon = excluded.weapon,
			missile = excluded.missile,
			updated_at = excluded.updated_at`,
		playerID, l.Class, l.Weapon, l.Missile,
	)
	return err
}

// GetSetting returns a setting value, or "" when unset
func (db *DB) GetSetting(key string) (string, error) {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetSetting stores a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// InsertCombatEvents writes a batch of shots in one transaction
func (db *DB) InsertCombatEvents(events []CombatEventRow) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO combat_events
		(source_id, target_id, item_id, shield_applied, hull_applied, destroyed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.Exec(int64(e.Source), int64(e.Target), e.Item,
			e.ShieldApplied, e.HullApplied, e.Destroyed, e.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentCombatEvents returns the newest events, newest first
func (db *DB) RecentCombatEvents(limit int) ([]CombatEventRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, source_id, target_id, item_id, shield_applied, hull_applied, destroyed, created_at
		FROM combat_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CombatEventRow
	for rows.Next() {
		var e CombatEventRow
		var src, tgt int64
		var created string
		if err := rows.Scan(&e.ID, &src, &tgt, &e.Item, &e.ShieldApplied, &e.HullApplied, &e.Destroyed, &created); err != nil {
			return nil, err
		}
		e.Source, e.Target = ObjectID(src), ObjectID(tgt)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		result = append(result, e)
	}
	return result, rows.Err()
}
