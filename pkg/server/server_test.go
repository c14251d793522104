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
	"context"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/evals"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/storage"
	"github.com/teradata-labs/arena/pkg/trace"
)

const testTopic = "AI 将取代多数人类工作"

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	providers := factory.NewProviderFactory(factory.FactoryConfig{
		DefaultProvider: "mock",
		DefaultModel:    "mock-v1",
	})
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(Config{Addr: "127.0.0.1:0", CORS: DefaultCORSConfig()}, providers, opts...)
}

// sseEvents parses data: framed events from a response body.
func sseEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

// streamURL builds a stream request target with an escaped query.
func streamURL(path string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

func countTypes(events []map[string]any) map[string]int {
	counts := make(map[string]int)
	for _, ev := range events {
		if kind, ok := ev["type"].(string); ok {
			counts[kind]++
		}
	}
	return counts
}

func TestDebateStream_MockProvider(t *testing.T) {
	s := newTestServer(t)

	target := streamURL("/api/v1/debate/stream", map[string]string{
		"topic": testTopic, "rounds": "1", "provider": "mock", "seed": "123", "temperature": "0.6",
	})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	events := sseEvents(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "session", events[0]["type"], "session id is announced first")
	assert.NotEmpty(t, events[0]["session_id"])

	counts := countTypes(events)
	assert.Equal(t, 1, counts["round_start"])
	assert.Equal(t, 2, counts["thinking"])
	assert.Equal(t, 2, counts["argument_complete"])
	assert.GreaterOrEqual(t, counts["argument"], 2, "streamed chunks")
	assert.Equal(t, 1, counts["evaluation"])
	assert.Equal(t, 1, counts["standings"])
	assert.Equal(t, 1, counts["verdict"])
	assert.Equal(t, 1, counts["complete"])
	assert.Zero(t, counts["error"])
}

func TestDebateStream_Deterministic(t *testing.T) {
	run := func() []map[string]any {
		s := newTestServer(t)
		target := streamURL("/api/v1/debate/stream", map[string]string{
			"topic": testTopic, "rounds": "2", "provider": "mock", "seed": "123", "temperature": "0.6",
		})
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return sseEvents(t, rec.Body.String())
	}

	left, right := run(), run()
	require.Equal(t, len(left), len(right))
	for i := range left {
		// Ids and timestamps differ per run; content must not.
		for _, ev := range []map[string]any{left[i], right[i]} {
			delete(ev, "timestamp")
			delete(ev, "session_id")
			delete(ev, "final_state")
			delete(ev, "message_history")
		}
		assert.Equal(t, left[i], right[i], "event %d", i)
	}
}

func TestDebateStream_ValidationBeforeEvents(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		url  string
		want string
	}{
		{"empty topic", "/api/v1/debate/stream?rounds=2", "topic"},
		{"rounds too high", "/api/v1/debate/stream?topic=x&rounds=11", "rounds"},
		{"bad provider", "/api/v1/debate/stream?topic=x&rounds=2&provider=nope", "provider"},
		{"malformed seed", "/api/v1/debate/stream?topic=x&rounds=2&seed=abc", "seed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.NotContains(t, rec.Body.String(), "data: ", "no event is emitted")
		})
	}
}

func TestDebateStream_Persistence(t *testing.T) {
	store, err := storage.Open("sqlite3", ":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	s := newTestServer(t, WithStore(store))

	target := streamURL("/api/v1/debate/stream", map[string]string{
		"topic": testTopic, "rounds": "1", "provider": "mock", "seed": "7",
	})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	events := sseEvents(t, rec.Body.String())
	sessionID, _ := events[0]["session_id"].(string)
	require.NotEmpty(t, sessionID)

	ls, ok := s.registry.get(sessionID)
	require.True(t, ok)
	require.NotZero(t, ls.StoreID)
	assert.Equal(t, SessionCompleted, ls.Status)

	utterances, err := store.ListUtterances(context.Background(), ls.StoreID)
	require.NoError(t, err)
	assert.Len(t, utterances, 2, "one per side per round")

	rec2, err := store.GetDebateRecord(context.Background(), ls.StoreID)
	require.NoError(t, err)
	assert.Equal(t, testTopic, rec2.Topic)
	assert.NotNil(t, rec2.Trace)
	assert.NotEmpty(t, rec2.Graph)
	assert.NotNil(t, rec2.Verdict)
}

func TestCreateDebate_BackgroundSession(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"topic": testTopic, "rounds": 1, "provider": "mock", "seed": 5,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/debates", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)
	assert.True(t, s.events.StreamExists(created.SessionID))

	require.Eventually(t, func() bool {
		ls, ok := s.registry.get(created.SessionID)
		return ok && ls.Status == SessionCompleted
	}, 10*time.Second, 20*time.Millisecond)
}

func TestGetSession_Unknown(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebateEvents_UnknownSession(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/debates/nope/events", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDialecticStream_ClampsRounds(t *testing.T) {
	s := newTestServer(t)

	target := streamURL("/api/v1/dialectic/stream", map[string]string{
		"topic": testTopic, "rounds": "2", "provider": "mock", "seed": "11",
	})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	events := sseEvents(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "session", events[0]["type"])

	counts := countTypes(events)
	assert.Equal(t, 5, counts["round_start"], "rounds clamp up to 5")
	assert.Equal(t, 5, counts["synthesis"])
	assert.Equal(t, 5, counts["tree_update"])
	assert.Equal(t, 1, counts["complete"])
}

func evalTestTrace(seed string) *trace.DebateTrace {
	return &trace.DebateTrace{
		TraceID: "trace-" + seed,
		Topic:   testTopic,
		Turns: []trace.AgentTurn{
			{Round: 1, Side: "pro", Result: "因为证据表明，这是一个有逻辑的论证。" + seed},
			{Round: 1, Side: "con", Result: "然而对方忽略了一个关键反例。"},
		},
	}
}

func TestEvalTrace(t *testing.T) {
	s := newTestServer(t)

	body, err := evalTestTrace("a").JSON()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eval/trace", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result evals.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "trace-a", result.TraceID)
	assert.NotEmpty(t, result.Notes)
}

func TestEvalCompare(t *testing.T) {
	s := newTestServer(t)

	left, err := evalTestTrace("a").JSON()
	require.NoError(t, err)
	right, err := evalTestTrace("b").JSON()
	require.NoError(t, err)
	body, _ := json.Marshal(map[string]json.RawMessage{"left": left, "right": right})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/eval/compare", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result evals.CompareResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Winner)
}

func TestEvalCompare_MissingSide(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eval/compare", strings.NewReader(`{"left":{}}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/debates", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS grant.
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/debates", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func newTestSpec() config.RunSpec {
	spec, err := config.RunRequest{Topic: testTopic, Rounds: 1, Provider: "mock"}.Resolve()
	if err != nil {
		panic(err)
	}
	return spec
}

func TestSessionSweep(t *testing.T) {
	s := newTestServer(t)
	s.cfg.SessionTTL = time.Minute

	ls := s.registry.add(storage.KindDebate, newTestSpec())
	s.registry.finish(ls.ID, "")

	// Freshly finished: survives the sweep.
	require.Empty(t, s.registry.sweep(time.Minute))

	// Force the finish time past the TTL window.
	s.registry.mu.Lock()
	s.registry.sessions[ls.ID].FinishedAt = time.Now().Add(-2 * time.Minute)
	s.registry.mu.Unlock()

	purged := s.registry.sweep(time.Minute)
	assert.Equal(t, []string{ls.ID}, purged)
	_, ok := s.registry.get(ls.ID)
	assert.False(t, ok)
}
