package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists query history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.S().Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS query_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			owner       TEXT NOT NULL,
			request_id  TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			period_code TEXT NOT NULL,
			from_ts     INTEGER,
			to_ts       INTEGER,
			source      TEXT,
			bars        INTEGER,
			last_close  REAL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_query_owner_ts ON query_history(owner, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordQuery(evt *QueryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO query_history
		(timestamp, owner, request_id, symbol, period_code, from_ts, to_ts, source, bars, last_close, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), evt.Owner, evt.RequestID, evt.Symbol, evt.Code,
		unixOrNull(evt.From), unixOrNull(evt.To),
		evt.Source, evt.Bars, evt.LastClose, evt.Error,
	)
	return err
}

// RecentQueries returns the owner's latest queries, newest first.
func (r *SQLiteRecorder) RecentQueries(owner string, limit int) ([]QueryEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, owner, request_id, symbol, period_code,
		from_ts, to_ts, source, bars, last_close, error
		FROM query_history WHERE owner = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []QueryEvent
	for rows.Next() {
		var (
			evt      QueryEvent
			ts       int64
			from, to sql.NullInt64
		)
		if err := rows.Scan(&ts, &evt.Owner, &evt.RequestID, &evt.Symbol, &evt.Code,
			&from, &to, &evt.Source, &evt.Bars, &evt.LastClose, &evt.Error); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		evt.Timestamp = time.Unix(ts, 0)
		evt.From = timeOrNil(from)
		evt.To = timeOrNil(to)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	zap.S().Info("closing sqlite recorder")
	return r.db.Close()
}

func unixOrNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
