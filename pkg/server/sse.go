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
	"net/http"
)

// eventWriter frames JSON values as server-sent events on an inline
// response. Each value becomes one "data: {…}" line followed by a
// blank line, flushed immediately.
type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newEventWriter sets the SSE headers and flushes them. It fails when
// the underlying writer cannot flush (no streaming possible).
func newEventWriter(w http.ResponseWriter) (*eventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	flusher.Flush()

	return &eventWriter{w: w, flusher: flusher}, nil
}

// Send writes one event and flushes. A write error means the consumer
// disconnected; callers treat it as a terminal signal.
func (e *eventWriter) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// sessionEvent is the first event of every run stream, announcing the
// session id the run is registered under.
type sessionEvent struct {
	Kind      string `json:"type"`
	SessionID string `json:"session_id"`
}

// errorEvent mirrors the orchestrators' error event shape for failures
// raised by the transport layer itself.
type errorEvent struct {
	Kind    string `json:"type"`
	Message string `json:"message"`
}
