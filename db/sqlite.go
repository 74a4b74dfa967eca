package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	_ "github.com/mattn/go-sqlite3"

	"flames/compat"
	"flames/logger"
)

const schema = `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        request_id TEXT NOT NULL DEFAULT '',
        features TEXT NOT NULL,
        label INTEGER NOT NULL,
        message TEXT NOT NULL,
        cached INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS predictions_created_at ON predictions (created_at);
    `

// Prediction is one stored verdict.
type Prediction struct {
	ID        string               `json:"id"`
	RequestID string               `json:"request_id,omitempty"`
	Features  compat.FeatureVector `json:"features"`
	Label     int                  `json:"label"`
	Message   string               `json:"message"`
	Cached    bool                 `json:"cached"`
	CreatedAt time.Time            `json:"created_at"`
}

// HistoryStore keeps shown verdicts in SQLite.
type HistoryStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and schema if needed.
func Open(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Trace(err)
		}
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Trace(err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	database.SetMaxOpenConns(1)
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, errors.Annotate(err, "create schema")
	}
	return &HistoryStore{db: database, now: time.Now}, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Record implements compat.HistoryRecorder.
func (s *HistoryStore) Record(ctx context.Context, verdict compat.Verdict) error {
	features, err := json.Marshal(verdict.Features)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (id, request_id, features, label, message, cached, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), logger.RequestID(ctx), string(features),
		verdict.Label, verdict.Message, verdict.Cached, s.now().UTC())
	return errors.Annotate(err, "insert prediction")
}

// Recent returns up to limit predictions, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]Prediction, error) {
	if limit <= 0 {
		return nil, errors.NotValidf("limit %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, request_id, features, label, message, cached, created_at
        FROM predictions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	var predictions []Prediction
	for rows.Next() {
		var (
			p        Prediction
			features string
		)
		if err := rows.Scan(&p.ID, &p.RequestID, &features, &p.Label, &p.Message, &p.Cached, &p.CreatedAt); err != nil {
			return nil, errors.Trace(err)
		}
		if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
			return nil, errors.Annotatef(err, "prediction %s", p.ID)
		}
		predictions = append(predictions, p)
	}
	return predictions, errors.Trace(rows.Err())
}

// Count returns the number of stored predictions grouped by label.
func (s *HistoryStore) Count(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var label, count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, errors.Trace(err)
		}
		counts[label] = count
	}
	return counts, errors.Trace(rows.Err())
}
