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

package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/trace"
)

// Sentinel errors callers branch on.
var (
	// ErrSessionNotFound is returned when a session id matches no row.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRecordNotFound is returned when a session has no debate record.
	ErrRecordNotFound = errors.New("debate record not found")
	// ErrPersistence wraps write failures that survived the retry. The
	// orchestration layer maps it to a persistence-error event.
	ErrPersistence = errors.New("persistence failure")
)

// Session kinds.
const (
	KindDebate    = "debate"
	KindDialectic = "dialectic"
)

// Session is one run's durable identity: created before the first
// event, touched on every utterance, and joined to its completion
// record when the run finishes.
type Session struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Topic     string          `json:"topic"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SessionSummary is the listing row: session identity plus how many
// utterances it accumulated.
type SessionSummary struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	Topic          string    `json:"topic"`
	CreatedAt      time.Time `json:"created_at"`
	UtteranceCount int       `json:"utterance_count"`
}

// Utterance is one persisted turn. Role carries the speaker label the
// run used (agent name or side); Metadata keeps round and side for
// later reconstruction.
type Utterance struct {
	ID        int64           `json:"id"`
	SessionID int64           `json:"session_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DebateRecord is the completion checkpoint: verdict-level scalars for
// querying plus the full trace and argument graph for replay. Trace and
// graph are stored zstd-compressed.
type DebateRecord struct {
	ID        int64  `json:"id"`
	SessionID int64  `json:"session_id"`
	Topic     string `json:"topic"`

	TotalRounds int    `json:"total_rounds"`
	Winner      string `json:"winner,omitempty"`
	Margin      string `json:"margin,omitempty"`

	ProProvider string `json:"pro_provider,omitempty"`
	ProModel    string `json:"pro_model,omitempty"`
	ConProvider string `json:"con_provider,omitempty"`
	ConModel    string `json:"con_model,omitempty"`
	JuryModel   string `json:"jury_model,omitempty"`
	Mixed       bool   `json:"mixed"`

	ProTotalScore float64 `json:"pro_total_score"`
	ConTotalScore float64 `json:"con_total_score"`

	Trace       *trace.DebateTrace       `json:"trace,omitempty"`
	Graph       json.RawMessage          `json:"graph,omitempty"`
	Verdict     *debate.FinalVerdict     `json:"verdict,omitempty"`
	Evaluations []debate.RoundEvaluation `json:"evaluations,omitempty"`
	RunConfig   *trace.RunConfig         `json:"run_config,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}
