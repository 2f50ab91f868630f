// Package persistence provides SQLite-based colony storage: compressed
// snapshots, the event log and a small key-value table.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/snapshot"
)

// ErrNoSnapshot is returned when a colony has never been saved.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Meta keys.
const (
	MetaColonyID    = "colony_id"
	MetaSeed        = "seed"
	MetaLastTick    = "last_tick"
	metaEventsSaved = "events_saved_through"
)

// DB wraps a SQLite connection for colony persistence.
type DB struct {
	conn *sqlx.DB

	saveMu sync.Mutex // held for the whole of SaveColony
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	ID        int64     `db:"id" json:"id"`
	ColonyID  string    `db:"colony_id" json:"colony_id"`
	Tick      uint64    `db:"tick" json:"tick"`
	Version   int       `db:"version" json:"version"`
	Size      int       `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		colony_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		version INTEGER NOT NULL,
		size INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		data BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS colony_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_snapshots_colony ON snapshots(colony_id, id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot compresses and stores snap, returning its stored size.
func (db *DB) SaveSnapshot(snap snapshot.SnapshotV1) (int, error) {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO snapshots (colony_id, tick, version, size, created_at, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.Header.ColonyID, snap.Header.Tick, snap.Header.Version, len(data), time.Now().UTC(), data,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return len(data), nil
}

// LoadLatest returns the most recent snapshot of a colony.
func (db *DB) LoadLatest(colonyID string) (snapshot.SnapshotV1, error) {
	var data []byte
	err := db.conn.Get(&data,
		"SELECT data FROM snapshots WHERE colony_id = ? ORDER BY id DESC LIMIT 1",
		colonyID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.SnapshotV1{}, fmt.Errorf("colony %s: %w", colonyID, ErrNoSnapshot)
	}
	if err != nil {
		return snapshot.SnapshotV1{}, err
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return snapshot.SnapshotV1{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns the stored snapshots of a colony, newest first.
func (db *DB) ListSnapshots(colonyID string) ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := db.conn.Select(&infos,
		`SELECT id, colony_id, tick, version, size, created_at
		 FROM snapshots WHERE colony_id = ? ORDER BY id DESC`,
		colonyID,
	)
	return infos, err
}

// PruneSnapshots keeps only the newest keep snapshots of a colony.
func (db *DB) PruneSnapshots(colonyID string, keep int) (int64, error) {
	res, err := db.conn.Exec(
		`DELETE FROM snapshots WHERE colony_id = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE colony_id = ? ORDER BY id DESC LIMIT ?
		)`,
		colonyID, colonyID, keep,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		metaJSON := []byte("{}")
		if len(e.Meta) > 0 {
			if metaJSON, err = json.Marshal(e.Meta); err != nil {
				return fmt.Errorf("encode event meta: %w", err)
			}
		}
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category, meta_json) VALUES (?, ?, ?, ?)",
			e.Tick, e.Description, e.Category, string(metaJSON),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []struct {
		Tick        uint64 `db:"tick"`
		Description string `db:"description"`
		Category    string `db:"category"`
		MetaJSON    string `db:"meta_json"`
	}
	err := db.conn.Select(&rows,
		"SELECT tick, description, category, meta_json FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{Tick: r.Tick, Description: r.Description, Category: r.Category}
		if r.MetaJSON != "" && r.MetaJSON != "{}" {
			if err := json.Unmarshal([]byte(r.MetaJSON), &e.Meta); err != nil {
				return nil, fmt.Errorf("decode event meta: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// SaveMeta stores a key-value pair in colony metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO colony_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM colony_meta WHERE key = ?", key)
	return value, err
}

// SaveColony performs a full save: a snapshot of the current state plus
// every event finalised since the previous save.
func (db *DB) SaveColony(colonyID string, seed int64, sim *engine.Simulation) error {
	db.saveMu.Lock()
	defer db.saveMu.Unlock()

	var (
		snap   snapshot.SnapshotV1
		events []engine.Event
	)
	savedThrough := db.eventsSavedThrough()
	sim.View(func(s *engine.State) {
		snap = snapshot.FromState(colonyID, seed, s)
	})
	// Events of the current tick may still grow; they go with the next save.
	for _, e := range sim.RecentEvents(engine.MaxEvents) {
		if e.Tick >= savedThrough && e.Tick < snap.Header.Tick {
			events = append(events, e)
		}
	}

	size, err := db.SaveSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	tick := strconv.FormatUint(snap.Header.Tick, 10)
	if err := db.SaveMeta(metaEventsSaved, tick); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(MetaLastTick, tick); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("colony saved",
		"colony", colonyID,
		"tick", snap.Header.Tick,
		"hobbits", len(snap.Hobbits),
		"orders", len(snap.Pending)+len(snap.Held),
		"events", len(events),
		"size", humanize.Bytes(uint64(size)),
	)
	return nil
}

func (db *DB) eventsSavedThrough() uint64 {
	v, err := db.GetMeta(metaEventsSaved)
	if err != nil {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
