// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package evals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/teradata-labs/arena/internal/sqlitedriver"
)

// ErrResultNotFound is returned when a stored evaluation id does not exist.
var ErrResultNotFound = errors.New("eval result not found")

// Store manages persistent storage of evaluation results.
type Store struct {
	db *sql.DB
}

// NewStore creates a new eval store.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// Each pooled connection opens its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS eval_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trace_id TEXT NOT NULL,
		overall REAL NOT NULL,
		consistency REAL NOT NULL,
		winner TEXT,

		-- Full result as JSON (for detailed analysis)
		result_json TEXT NOT NULL,

		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_eval_trace_id ON eval_results(trace_id);
	CREATE INDEX IF NOT EXISTS idx_eval_created_at ON eval_results(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save persists an evaluation result and returns its row id.
func (s *Store) Save(ctx context.Context, result Result) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO eval_results (
			trace_id, overall, consistency, winner, result_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := tx.ExecContext(ctx, insert,
		result.TraceID,
		result.Overall,
		result.Consistency,
		result.Winner,
		string(resultJSON),
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert eval result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// Get retrieves an evaluation result by row id.
func (s *Store) Get(ctx context.Context, id int64) (*Result, error) {
	query := `SELECT result_json FROM eval_results WHERE id = ?`

	var resultJSON string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrResultNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query eval result: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// ListByTrace lists stored evaluations of one trace, newest first.
func (s *Store) ListByTrace(ctx context.Context, traceID string, limit int) ([]*Result, error) {
	query := `
		SELECT result_json
		FROM eval_results
		WHERE trace_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, traceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query eval results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var result Result
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		results = append(results, &result)
	}

	return results, rows.Err()
}

// DeleteOlderThan deletes evaluation rows created before the cutoff and
// reports how many were removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM eval_results WHERE created_at < ?`
	result, err := s.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old results: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
