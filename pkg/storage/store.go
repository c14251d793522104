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

// Package storage persists debate sessions, utterances, and completion
// records behind database/sql. SQLite is the default backend; MySQL and
// PostgreSQL are selected by driver name or recognized from the DSN.
// Writes are checkpointed (session creation, per-utterance append,
// completion record) and retried once before they surface as a
// persistence failure.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/trace"

	// SQL drivers
	_ "github.com/go-sql-driver/mysql"                       // mysql
	_ "github.com/lib/pq"                                    // postgres
	_ "github.com/teradata-labs/arena/internal/sqlitedriver" // sqlite3
)

// DebateStore is the persistent sink for sessions, utterances, and
// debate records. Safe for concurrent use; every session's utterances
// keep their insertion order.
type DebateStore struct {
	db     *sql.DB
	driver string
	logger *zap.Logger

	// Compression encoder/decoder (reusable, thread-safe)
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// DetectDriver normalizes an explicit driver name or infers one from
// the DSN. postgres:// and postgresql:// URLs select postgres, the
// user:pass@tcp(host)/db form selects mysql, everything else is
// treated as a SQLite path.
func DetectDriver(driver, dsn string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "mysql":
		return "mysql"
	case "postgres", "postgresql":
		return "postgres"
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "@tcp(") {
		return "mysql"
	}
	return "sqlite3"
}

// Open connects to the database, creates the schema if needed, and
// returns the store. MySQL DSNs should set parseTime=true so timestamps
// scan into time.Time.
func Open(driver, dsn string, logger *zap.Logger) (*DebateStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver = DetectDriver(driver, dsn)

	if driver == "sqlite3" {
		dsn = expandHome(dsn)
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite3" && dsn == ":memory:" {
		// Each pooled connection opens its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	store := &DebateStore{
		db:      db,
		driver:  driver,
		logger:  logger,
		encoder: encoder,
		decoder: decoder,
	}

	if err := store.initSchema(context.Background()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("debate store opened", zap.String("driver", driver))
	return store, nil
}

// Close releases the database and the compression codecs.
func (s *DebateStore) Close() error {
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
	return s.db.Close()
}

// dialect carries the few DDL fragments the three backends disagree on.
type dialect struct {
	autoPK    string
	blob      string
	timestamp string
}

func dialectFor(driver string) dialect {
	switch driver {
	case "postgres":
		return dialect{autoPK: "BIGSERIAL PRIMARY KEY", blob: "BYTEA", timestamp: "TIMESTAMPTZ"}
	case "mysql":
		return dialect{autoPK: "BIGINT PRIMARY KEY AUTO_INCREMENT", blob: "LONGBLOB", timestamp: "DATETIME(6)"}
	default:
		return dialect{autoPK: "INTEGER PRIMARY KEY AUTOINCREMENT", blob: "BLOB", timestamp: "TIMESTAMP"}
	}
}

func (s *DebateStore) initSchema(ctx context.Context) error {
	d := dialectFor(s.driver)
	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS sessions (
			id %s,
			kind VARCHAR(20) NOT NULL,
			topic VARCHAR(500) NOT NULL,
			settings TEXT,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, d.autoPK, d.timestamp, d.timestamp),
		`CREATE INDEX IF NOT EXISTS idx_sessions_kind ON sessions(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,

		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS utterances (
			id %s,
			session_id BIGINT NOT NULL,
			role VARCHAR(50) NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT,
			created_at %s NOT NULL
		)`, d.autoPK, d.timestamp),
		`CREATE INDEX IF NOT EXISTS idx_utterances_session ON utterances(session_id)`,

		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS debate_records (
			id %s,
			session_id BIGINT NOT NULL,
			topic VARCHAR(500) NOT NULL,
			total_rounds INTEGER NOT NULL,
			winner VARCHAR(10),
			margin VARCHAR(20),
			pro_provider VARCHAR(50),
			pro_model VARCHAR(100),
			con_provider VARCHAR(50),
			con_model VARCHAR(100),
			jury_model VARCHAR(100),
			mixed INTEGER NOT NULL DEFAULT 0,
			total_score_pro DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_score_con DOUBLE PRECISION NOT NULL DEFAULT 0,
			-- Full trace and argument graph as zstd-compressed JSON
			trace_blob %s,
			graph_blob %s,
			verdict TEXT,
			evaluations TEXT,
			run_config TEXT,
			created_at %s NOT NULL,
			completed_at %s NOT NULL
		)`, d.autoPK, d.blob, d.blob, d.timestamp, d.timestamp),
		`CREATE INDEX IF NOT EXISTS idx_debate_records_session ON debate_records(session_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $1..$n for postgres. The other
// drivers take the query unchanged.
func (s *DebateStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insertID runs an INSERT and returns the generated id. lib/pq does not
// implement LastInsertId, so postgres goes through RETURNING instead.
func (s *DebateStore) insertID(ctx context.Context, q execer, query string, args ...any) (int64, error) {
	if s.driver == "postgres" {
		var id int64
		if err := q.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// withRetry runs one write unit, retrying it once on failure. A second
// failure comes back wrapped in ErrPersistence; not-found and cancelled
// contexts pass through untouched.
func (s *DebateStore) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSessionNotFound) || ctx.Err() != nil {
		return err
	}
	s.logger.Warn("storage write failed, retrying once", zap.String("op", op), zap.Error(err))
	if err = fn(); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
	}
	return nil
}

// CreateSession inserts the session row that anchors a run. Settings
// may be any JSON-marshalable value or nil.
func (s *DebateStore) CreateSession(ctx context.Context, kind, topic string, settings any) (*Session, error) {
	settingsArg, err := marshalArg(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session settings: %w", err)
	}

	now := time.Now().UTC()
	sess := &Session{Kind: kind, Topic: topic, CreatedAt: now, UpdatedAt: now}
	if settingsArg != nil {
		sess.Settings = json.RawMessage(settingsArg.(string))
	}

	err = s.withRetry(ctx, "create session", func() error {
		id, err := s.insertID(ctx, s.db,
			`INSERT INTO sessions (kind, topic, settings, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			kind, topic, settingsArg, now, now)
		if err != nil {
			return err
		}
		sess.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session created",
		zap.Int64("session_id", sess.ID),
		zap.String("kind", kind))
	return sess, nil
}

// UpdateSessionSettings replaces the session's settings JSON, used when
// setup resolves the final run parameters.
func (s *DebateStore) UpdateSessionSettings(ctx context.Context, sessionID int64, settings any) error {
	settingsArg, err := marshalArg(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal session settings: %w", err)
	}

	return s.withRetry(ctx, "update session settings", func() error {
		res, err := s.db.ExecContext(ctx,
			s.rebind(`UPDATE sessions SET settings = ?, updated_at = ? WHERE id = ?`),
			settingsArg, time.Now().UTC(), sessionID)
		if err != nil {
			return err
		}
		return requireSession(res, sessionID)
	})
}

// GetSession returns one session row.
func (s *DebateStore) GetSession(ctx context.Context, sessionID int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, kind, topic, settings, created_at, updated_at FROM sessions WHERE id = ?`),
		sessionID)

	var sess Session
	var settings sql.NullString
	if err := row.Scan(&sess.ID, &sess.Kind, &sess.Topic, &settings, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if settings.Valid {
		sess.Settings = json.RawMessage(settings.String)
	}
	return &sess, nil
}

// ListSessions returns session summaries newest-first with their
// utterance counts. kind filters to one session kind; "" or "all"
// lists everything. limit <= 0 means no limit.
func (s *DebateStore) ListSessions(ctx context.Context, kind string, limit int) ([]SessionSummary, error) {
	query := `SELECT s.id, s.kind, s.topic, s.created_at, COUNT(u.id)
		FROM sessions s LEFT JOIN utterances u ON u.session_id = s.id`
	args := []any{}
	if kind != "" && kind != "all" {
		query += ` WHERE s.kind = ?`
		args = append(args, kind)
	}
	query += ` GROUP BY s.id, s.kind, s.topic, s.created_at ORDER BY s.created_at DESC, s.id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Kind, &sum.Topic, &sum.CreatedAt, &sum.UtteranceCount); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeleteSession removes the session and everything hanging off it.
func (s *DebateStore) DeleteSession(ctx context.Context, sessionID int64) error {
	return s.withRetry(ctx, "delete session", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM utterances WHERE session_id = ?`), sessionID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM debate_records WHERE session_id = ?`), sessionID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE id = ?`), sessionID)
		if err != nil {
			return err
		}
		if err := requireSession(res, sessionID); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// AppendUtterance persists one turn and touches the session. The
// insert and the session update share a transaction so the utterance
// order matches the emission order.
func (s *DebateStore) AppendUtterance(ctx context.Context, sessionID int64, role, content string, metadata any) (*Utterance, error) {
	metadataArg, err := marshalArg(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal utterance metadata: %w", err)
	}

	now := time.Now().UTC()
	utt := &Utterance{SessionID: sessionID, Role: role, Content: content, CreatedAt: now}
	if metadataArg != nil {
		utt.Metadata = json.RawMessage(metadataArg.(string))
	}

	err = s.withRetry(ctx, "append utterance", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		// The touch doubles as the existence check.
		res, err := tx.ExecContext(ctx, s.rebind(`UPDATE sessions SET updated_at = ? WHERE id = ?`), now, sessionID)
		if err != nil {
			return err
		}
		if err := requireSession(res, sessionID); err != nil {
			return err
		}

		id, err := s.insertID(ctx, tx,
			`INSERT INTO utterances (session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
			sessionID, role, content, metadataArg, now)
		if err != nil {
			return err
		}
		utt.ID = id
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return utt, nil
}

// ListUtterances returns a session's utterances in insertion order.
func (s *DebateStore) ListUtterances(ctx context.Context, sessionID int64) ([]*Utterance, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, session_id, role, content, metadata, created_at FROM utterances WHERE session_id = ? ORDER BY id`),
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list utterances: %w", err)
	}
	defer rows.Close()

	var utterances []*Utterance
	for rows.Next() {
		var utt Utterance
		var metadata sql.NullString
		if err := rows.Scan(&utt.ID, &utt.SessionID, &utt.Role, &utt.Content, &metadata, &utt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan utterance: %w", err)
		}
		if metadata.Valid {
			utt.Metadata = json.RawMessage(metadata.String)
		}
		utterances = append(utterances, &utt)
	}
	return utterances, rows.Err()
}

// SaveDebateRecord writes the completion checkpoint. Trace and graph
// are zstd-compressed; verdict, evaluations, and run config stay as
// plain JSON for querying. Returns the record id.
func (s *DebateStore) SaveDebateRecord(ctx context.Context, rec *DebateRecord) (int64, error) {
	traceBlob, err := s.compressJSON(rec.Trace)
	if err != nil {
		return 0, fmt.Errorf("failed to encode trace: %w", err)
	}
	var graphBlob []byte
	if len(rec.Graph) > 0 {
		graphBlob = s.encoder.EncodeAll(rec.Graph, nil)
	}
	verdictArg, err := marshalArg(rec.Verdict)
	if err != nil {
		return 0, fmt.Errorf("failed to encode verdict: %w", err)
	}
	evaluationsArg, err := marshalArg(rec.Evaluations)
	if err != nil {
		return 0, fmt.Errorf("failed to encode evaluations: %w", err)
	}
	runConfigArg, err := marshalArg(rec.RunConfig)
	if err != nil {
		return 0, fmt.Errorf("failed to encode run config: %w", err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = now
	}

	err = s.withRetry(ctx, "save debate record", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx, s.rebind(`UPDATE sessions SET updated_at = ? WHERE id = ?`), now, rec.SessionID)
		if err != nil {
			return err
		}
		if err := requireSession(res, rec.SessionID); err != nil {
			return err
		}

		id, err := s.insertID(ctx, tx,
			`INSERT INTO debate_records (
				session_id, topic, total_rounds, winner, margin,
				pro_provider, pro_model, con_provider, con_model, jury_model, mixed,
				total_score_pro, total_score_con,
				trace_blob, graph_blob, verdict, evaluations, run_config,
				created_at, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.SessionID, rec.Topic, rec.TotalRounds, rec.Winner, rec.Margin,
			rec.ProProvider, rec.ProModel, rec.ConProvider, rec.ConModel, rec.JuryModel, boolToInt(rec.Mixed),
			rec.ProTotalScore, rec.ConTotalScore,
			traceBlob, graphBlob, verdictArg, evaluationsArg, runConfigArg,
			rec.CreatedAt, rec.CompletedAt)
		if err != nil {
			return err
		}
		rec.ID = id
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("debate record saved",
		zap.Int64("record_id", rec.ID),
		zap.Int64("session_id", rec.SessionID),
		zap.String("winner", rec.Winner))
	return rec.ID, nil
}

// GetDebateRecord returns the latest completion record for a session,
// with trace and graph decompressed.
func (s *DebateStore) GetDebateRecord(ctx context.Context, sessionID int64) (*DebateRecord, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, session_id, topic, total_rounds, winner, margin,
			pro_provider, pro_model, con_provider, con_model, jury_model, mixed,
			total_score_pro, total_score_con,
			trace_blob, graph_blob, verdict, evaluations, run_config,
			created_at, completed_at
		FROM debate_records WHERE session_id = ? ORDER BY id DESC LIMIT 1`),
		sessionID)

	var rec DebateRecord
	var winner, margin, proProvider, proModel, conProvider, conModel, juryModel sql.NullString
	var verdictJSON, evaluationsJSON, runConfigJSON sql.NullString
	var traceBlob, graphBlob []byte
	var mixed int

	err := row.Scan(&rec.ID, &rec.SessionID, &rec.Topic, &rec.TotalRounds, &winner, &margin,
		&proProvider, &proModel, &conProvider, &conModel, &juryModel, &mixed,
		&rec.ProTotalScore, &rec.ConTotalScore,
		&traceBlob, &graphBlob, &verdictJSON, &evaluationsJSON, &runConfigJSON,
		&rec.CreatedAt, &rec.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %d", ErrRecordNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get debate record: %w", err)
	}

	rec.Winner = winner.String
	rec.Margin = margin.String
	rec.ProProvider = proProvider.String
	rec.ProModel = proModel.String
	rec.ConProvider = conProvider.String
	rec.ConModel = conModel.String
	rec.JuryModel = juryModel.String
	rec.Mixed = mixed != 0

	if len(traceBlob) > 0 {
		raw, err := s.decoder.DecodeAll(traceBlob, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress trace: %w", err)
		}
		var t trace.DebateTrace
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("failed to decode trace: %w", err)
		}
		rec.Trace = &t
	}
	if len(graphBlob) > 0 {
		raw, err := s.decoder.DecodeAll(graphBlob, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress graph: %w", err)
		}
		rec.Graph = json.RawMessage(raw)
	}
	if verdictJSON.Valid {
		var v debate.FinalVerdict
		if err := json.Unmarshal([]byte(verdictJSON.String), &v); err != nil {
			return nil, fmt.Errorf("failed to decode verdict: %w", err)
		}
		rec.Verdict = &v
	}
	if evaluationsJSON.Valid {
		if err := json.Unmarshal([]byte(evaluationsJSON.String), &rec.Evaluations); err != nil {
			return nil, fmt.Errorf("failed to decode evaluations: %w", err)
		}
	}
	if runConfigJSON.Valid {
		var rc trace.RunConfig
		if err := json.Unmarshal([]byte(runConfigJSON.String), &rc); err != nil {
			return nil, fmt.Errorf("failed to decode run config: %w", err)
		}
		rec.RunConfig = &rc
	}

	return &rec, nil
}

// compressJSON marshals v and zstd-compresses the result. Nil values
// come back as a nil blob.
func (s *DebateStore) compressJSON(v any) ([]byte, error) {
	arg, err := marshalArg(v)
	if err != nil {
		return nil, err
	}
	if arg == nil {
		return nil, nil
	}
	return s.encoder.EncodeAll([]byte(arg.(string)), nil), nil
}

// marshalArg renders v as a JSON string argument, mapping nil values
// (including typed nils and empty slices) to a SQL NULL.
func marshalArg(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

// requireSession maps a zero-row UPDATE or DELETE to ErrSessionNotFound.
func requireSession(res sql.Result, sessionID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// expandHome resolves a leading ~/ in SQLite paths so DSNs copied from
// the example config work as written.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
