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
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/evals"
	"github.com/teradata-labs/arena/pkg/trace"
)

// maxTraceBytes bounds eval request bodies.
const maxTraceBytes = 16 << 20

// handleEvalTrace scores one trace. With ?save=1 and a result store
// attached, the result is also persisted.
func (s *Server) handleEvalTrace(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTraceBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
		return
	}
	t, err := trace.Parse(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := evals.EvaluateTrace(t)

	if r.URL.Query().Get("save") == "1" && s.results != nil {
		if _, err := s.results.Save(r.Context(), result); err != nil {
			s.logger.Warn("failed to save evaluation result",
				zap.String("trace_id", t.TraceID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// compareRequest carries the two traces of a pairwise comparison.
type compareRequest struct {
	Left  json.RawMessage `json:"left"`
	Right json.RawMessage `json:"right"`
}

// handleEvalCompare scores two traces and reports right-minus-left
// deltas.
func (s *Server) handleEvalCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTraceBytes)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Left) == 0 || len(req.Right) == 0 {
		http.Error(w, "both left and right traces are required", http.StatusBadRequest)
		return
	}

	left, err := trace.Parse(req.Left)
	if err != nil {
		http.Error(w, fmt.Sprintf("left: %v", err), http.StatusBadRequest)
		return
	}
	right, err := trace.Parse(req.Right)
	if err != nil {
		http.Error(w, fmt.Sprintf("right: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(evals.CompareTraces(left, right))
}
