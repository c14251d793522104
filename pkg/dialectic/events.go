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
package dialectic

import "time"

// EventKind names one entry in the closed set of stream event types.
type EventKind string

// Event kinds emitted by the orchestrator, in the order they typically
// appear within a run.
const (
	EventOpening    EventKind = "opening"
	EventRoundStart EventKind = "round_start"
	EventThesis     EventKind = "thesis"
	EventAntithesis EventKind = "antithesis"
	EventSynthesis  EventKind = "synthesis"
	EventFallacy    EventKind = "fallacy"
	EventTreeUpdate EventKind = "tree_update"
	EventComplete   EventKind = "complete"
	EventError      EventKind = "error"
)

// Event is one entry in the ordered stream a dialectic run produces.
// Only the fields relevant to the kind are populated.
type Event struct {
	Kind  EventKind `json:"type"`
	Round int       `json:"round,omitempty"`

	// Opening fields.
	Topic       string `json:"topic,omitempty"`
	TotalRounds int    `json:"total_rounds,omitempty"`

	// Thesis is the proposition the round opens from, set on round_start.
	Thesis string `json:"thesis,omitempty"`

	// Speaker fields for thesis, antithesis and synthesis.
	Side     string                 `json:"side,omitempty"`
	Content  string                 `json:"content,omitempty"`
	Thinking map[string]interface{} `json:"thinking,omitempty"`

	// Items carries the fallacy scan result.
	Items []Fallacy `json:"items,omitempty"`

	// Tree payload for tree_update.
	Nodes []TreeNode `json:"nodes,omitempty"`
	Edges []TreeEdge `json:"edges,omitempty"`

	// Terminal payloads carried by complete.
	FinalThesis string `json:"final_thesis,omitempty"`
	Trace       *Trace `json:"trace,omitempty"`
	Tree        *Tree  `json:"tree,omitempty"`

	// Message carries human-readable error text.
	Message string `json:"message,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// errorEvent builds an error event with the given round and text.
func errorEvent(round int, message string) Event {
	return Event{Kind: EventError, Round: round, Message: message}
}
