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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/costing"
	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/graph"
	"github.com/teradata-labs/arena/pkg/storage"
	"github.com/teradata-labs/arena/pkg/trace"
)

// parseRunRequest builds a run request from query parameters. Malformed
// numerics are reported with the parameter name; range checks belong to
// Resolve.
func parseRunRequest(r *http.Request) (config.RunRequest, error) {
	q := r.URL.Query()
	req := config.RunRequest{
		Topic:    q.Get("topic"),
		Provider: q.Get("provider"),
		Model:    q.Get("model"),
		Preset:   q.Get("preset"),
	}

	if v := q.Get("rounds"); v != "" {
		rounds, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("rounds: %w", err)
		}
		req.Rounds = rounds
	}
	if v := q.Get("temperature"); v != "" {
		temp, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("temperature: %w", err)
		}
		req.Temperature = &temp
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("seed: %w", err)
		}
		req.Seed = &seed
	}

	if p, m := q.Get("pro_provider"), q.Get("pro_model"); p != "" || m != "" {
		req.Pro = &config.SideOverride{Provider: p, Model: m}
	}
	if p, m := q.Get("con_provider"), q.Get("con_model"); p != "" || m != "" {
		req.Con = &config.SideOverride{Provider: p, Model: m}
	}

	return req, nil
}

// handleDebateStream runs a debate inline, streaming its events on the
// response. The request is validated before the first byte is written.
func (s *Server) handleDebateStream(w http.ResponseWriter, r *http.Request) {
	req, err := parseRunRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec, err := req.Resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ls := s.registry.add(storage.KindDebate, spec)

	ew, err := newEventWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = ew.Send(sessionEvent{Kind: "session", SessionID: ls.ID})

	s.runDebate(r.Context(), ls, func(v any) error { return ew.Send(v) })
}

// handleCreateDebate starts a background debate session and returns its
// id; clients attach to the event stream separately.
func (s *Server) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req config.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	spec, err := req.Resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ls := s.registry.add(storage.KindDebate, spec)
	s.events.CreateStream(ls.ID)
	s.events.Publish(ls.ID, s.sseEvent(sessionEvent{Kind: "session", SessionID: ls.ID}))

	go s.runDebate(context.Background(), ls, func(v any) error {
		s.events.Publish(ls.ID, s.sseEvent(v))
		return nil
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"session_id": ls.ID,
		"spec":       spec,
	})
}

// handleDebateEvents attaches a consumer to a background session's
// event stream. Events published before attachment are replayed.
func (s *Server) handleDebateEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.events.StreamExists(id) {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	// The stream registry selects by the "stream" query parameter.
	q := r.URL.Query()
	q.Set("stream", id)
	r.URL.RawQuery = q.Encode()
	s.events.ServeHTTP(w, r)
}

// handleGetSession reports a background session's status.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.registry.get(r.PathValue("id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ls)
}

// sseEvent frames an arbitrary value for the stream registry.
func (s *Server) sseEvent(v any) *sse.Event {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal stream event", zap.Error(err))
		data = []byte(`{"type":"error","message":"event serialization failed"}`)
	}
	return &sse.Event{Data: data}
}

// runDebate executes one debate session end to end: orchestration,
// event fan-out through send, and persistence checkpoints. A send
// failure means the consumer is gone; the run context is cancelled and
// the session discarded.
func (s *Server) runDebate(ctx context.Context, ls *LiveSession, send func(v any) error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	spec := ls.Spec
	o, err := s.buildDebate(ctx, spec)
	if err != nil {
		s.logger.Error("debate setup failed", zap.String("session", ls.ID), zap.Error(err))
		_ = send(errorEvent{Kind: "error", Message: err.Error()})
		s.registry.finish(ls.ID, err.Error())
		return
	}

	if s.store != nil {
		sess, err := s.store.CreateSession(ctx, ls.Kind, spec.Topic, spec)
		if err != nil {
			_ = send(errorEvent{Kind: "error", Message: fmt.Sprintf("persistence: %v", err)})
			s.registry.finish(ls.ID, err.Error())
			return
		}
		s.registry.setStoreID(ls.ID, sess.ID)
		ls.StoreID = sess.ID
	}

	var terminal string
	events := o.RunStream(ctx)
	for ev := range events {
		if err := send(ev); err != nil {
			s.logger.Info("consumer disconnected", zap.String("session", ls.ID))
			cancel()
			terminal = "consumer disconnected"
			break
		}
		if err := s.persistDebateEvent(ctx, ls, spec, ev); err != nil {
			s.logger.Error("persistence failed", zap.String("session", ls.ID), zap.Error(err))
			_ = send(errorEvent{Kind: "error", Message: fmt.Sprintf("persistence: %v", err)})
			cancel()
			terminal = err.Error()
			break
		}
		if ev.Kind == debate.EventError {
			terminal = ev.Message
		}
	}
	// Drain so the producer goroutine can exit after cancellation.
	for range events {
	}

	if terminal == "" && o.State() != debate.StateCompleted {
		terminal = "session did not complete"
	}
	s.registry.finish(ls.ID, terminal)
}

// buildDebate constructs a ready orchestrator for the resolved spec.
func (s *Server) buildDebate(ctx context.Context, spec config.RunSpec) (*debate.Orchestrator, error) {
	jury, err := s.factory.CreateProvider(spec.Provider, spec.Model)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", spec.Provider, err)
	}
	pro, err := s.factory.CreateProvider(spec.Pro.Provider, spec.Pro.Model)
	if err != nil {
		return nil, fmt.Errorf("pro provider %s: %w", spec.Pro.Provider, err)
	}
	con, err := s.factory.CreateProvider(spec.Con.Provider, spec.Con.Model)
	if err != nil {
		return nil, fmt.Errorf("con provider %s: %w", spec.Con.Provider, err)
	}

	o := debate.NewOrchestratorWithObservability(jury, s.tracer, s.logger.Named("debate"))
	if err := o.Setup(ctx, debate.SetupConfig{
		Topic:       spec.Topic,
		TotalRounds: spec.Rounds,
		Temperature: spec.Temperature,
		Seed:        spec.Seed,
		ProProvider: pro,
		ConProvider: con,
	}); err != nil {
		return nil, err
	}
	return o, nil
}

// persistDebateEvent writes the store checkpoints: one utterance per
// finished argument, and the completion record on the terminal event.
func (s *Server) persistDebateEvent(ctx context.Context, ls *LiveSession, spec config.RunSpec, ev debate.Event) error {
	if s.store == nil || ls.StoreID == 0 {
		return nil
	}

	switch ev.Kind {
	case debate.EventArgumentComplete:
		_, err := s.store.AppendUtterance(ctx, ls.StoreID, ev.Side, ev.Content, map[string]any{
			"round": ev.Round,
			"side":  ev.Side,
			"name":  ev.Name,
		})
		return err

	case debate.EventComplete:
		if ev.FinalState == nil {
			return nil
		}
		tr := trace.FromDebate(*ev.FinalState, ev.MessageHistory, spec.TraceRunConfig())
		tr.Cost = costing.EstimateTrace(tr)

		graphJSON, err := json.Marshal(graph.FromTrace(tr).Export())
		if err != nil {
			return fmt.Errorf("encode graph: %w", err)
		}

		rec := &storage.DebateRecord{
			SessionID:   ls.StoreID,
			Topic:       spec.Topic,
			TotalRounds: spec.Rounds,
			ProProvider: spec.Pro.Provider,
			ProModel:    spec.Pro.Model,
			ConProvider: spec.Con.Provider,
			ConModel:    spec.Con.Model,
			JuryModel:   spec.Model,
			Mixed:       spec.Pro != spec.Con,
			Trace:       tr,
			Graph:       graphJSON,
			Evaluations: ev.FinalState.Evaluations,
			RunConfig:   &tr.RunConfig,
		}
		if v := ev.FinalState.Verdict; v != nil {
			rec.Winner = v.Winner
			rec.Margin = v.Margin
			rec.ProTotalScore = v.ProTotalScore
			rec.ConTotalScore = v.ConTotalScore
			rec.Verdict = v
		}
		_, err = s.store.SaveDebateRecord(ctx, rec)
		return err
	}
	return nil
}
