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
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/dialectic"
	"github.com/teradata-labs/arena/pkg/storage"
)

// handleDialecticStream runs a thesis/antithesis/synthesis loop inline,
// streaming its events. The rounds parameter is clamped by the
// orchestrator, not rejected.
func (s *Server) handleDialecticStream(w http.ResponseWriter, r *http.Request) {
	req, err := parseRunRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The dialectic clamps rounds to its own window; resolve with the
	// default count so the debate range check cannot reject the request.
	rounds := req.Rounds
	req.Rounds = 0
	spec, err := req.Resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec.Rounds = rounds

	provider, err := s.factory.CreateProvider(spec.Provider, spec.Model)
	if err != nil {
		http.Error(w, fmt.Sprintf("provider %s: %v", spec.Provider, err), http.StatusBadRequest)
		return
	}

	o := dialectic.NewOrchestratorWithObservability(provider, s.tracer, s.logger.Named("dialectic"))
	if err := o.Setup(r.Context(), dialectic.SetupConfig{
		Topic:       spec.Topic,
		TotalRounds: spec.Rounds,
		Temperature: spec.Temperature,
		Seed:        spec.Seed,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec.Rounds = o.TotalRounds()

	ls := s.registry.add(storage.KindDialectic, spec)

	ew, err := newEventWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = ew.Send(sessionEvent{Kind: "session", SessionID: ls.ID})

	if s.store != nil {
		sess, err := s.store.CreateSession(r.Context(), ls.Kind, spec.Topic, spec)
		if err != nil {
			_ = ew.Send(errorEvent{Kind: "error", Message: fmt.Sprintf("persistence: %v", err)})
			s.registry.finish(ls.ID, err.Error())
			return
		}
		s.registry.setStoreID(ls.ID, sess.ID)
		ls.StoreID = sess.ID
	}

	var terminal string
	for ev := range o.RunStream(r.Context()) {
		if err := ew.Send(ev); err != nil {
			terminal = "consumer disconnected"
			break
		}
		if err := s.persistDialecticEvent(r.Context(), ls, ev); err != nil {
			s.logger.Error("persistence failed", zap.String("session", ls.ID), zap.Error(err))
			_ = ew.Send(errorEvent{Kind: "error", Message: fmt.Sprintf("persistence: %v", err)})
			terminal = err.Error()
			break
		}
		if ev.Kind == dialectic.EventError {
			terminal = ev.Message
		}
	}
	s.registry.finish(ls.ID, terminal)
}

// persistDialecticEvent appends one utterance per argued position.
func (s *Server) persistDialecticEvent(ctx context.Context, ls *LiveSession, ev dialectic.Event) error {
	if s.store == nil || ls.StoreID == 0 {
		return nil
	}
	switch ev.Kind {
	case dialectic.EventThesis, dialectic.EventAntithesis, dialectic.EventSynthesis:
		_, err := s.store.AppendUtterance(ctx, ls.StoreID, string(ev.Kind), ev.Content, map[string]any{
			"round": ev.Round,
			"side":  string(ev.Kind),
		})
		return err
	}
	return nil
}
