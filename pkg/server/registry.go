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

package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teradata-labs/arena/pkg/config"
)

// SessionStatus tracks a background session through its lifetime.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// LiveSession is one background run held in memory while it executes
// and, once finished, until the sweeper purges it.
type LiveSession struct {
	ID     string         `json:"session_id"`
	Kind   string         `json:"kind"`
	Topic  string         `json:"topic"`
	Spec   config.RunSpec `json:"spec"`
	Status SessionStatus  `json:"status"`

	// StoreID links to the persistent session row, zero when the
	// server runs without a store.
	StoreID int64 `json:"store_id,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// Error carries the terminal failure message for failed sessions.
	Error string `json:"error,omitempty"`
}

// sessionRegistry is the in-memory index of background sessions. It is
// the only piece of the server mutated from multiple goroutines.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*LiveSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*LiveSession)}
}

// add registers a new running session and returns it.
func (r *sessionRegistry) add(kind string, spec config.RunSpec) *LiveSession {
	ls := &LiveSession{
		ID:        uuid.New().String()[:8],
		Kind:      kind,
		Topic:     spec.Topic,
		Spec:      spec,
		Status:    SessionRunning,
		StartedAt: time.Now(),
	}
	r.mu.Lock()
	r.sessions[ls.ID] = ls
	r.mu.Unlock()
	return ls
}

// get returns a snapshot of the session, or false when unknown.
func (r *sessionRegistry) get(id string) (LiveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.sessions[id]
	if !ok {
		return LiveSession{}, false
	}
	return *ls, true
}

// setStoreID records the persistent session row backing a live one.
func (r *sessionRegistry) setStoreID(id string, storeID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ls, ok := r.sessions[id]; ok {
		ls.StoreID = storeID
	}
}

// finish marks a session terminal. An empty errMsg means completed.
func (r *sessionRegistry) finish(id, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ls, ok := r.sessions[id]
	if !ok {
		return
	}
	ls.FinishedAt = time.Now()
	if errMsg == "" {
		ls.Status = SessionCompleted
	} else {
		ls.Status = SessionFailed
		ls.Error = errMsg
	}
}

// sweep removes finished sessions older than ttl and returns their ids
// so the caller can drop the matching event streams.
func (r *sessionRegistry) sweep(ttl time.Duration) []string {
	cutoff := time.Now().Add(-ttl)
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged []string
	for id, ls := range r.sessions {
		if ls.Status == SessionRunning {
			continue
		}
		if ls.FinishedAt.Before(cutoff) {
			delete(r.sessions, id)
			purged = append(purged, id)
		}
	}
	return purged
}
