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
package debate

import (
	"time"

	"github.com/teradata-labs/arena/pkg/communication"
)

// EventKind names one entry in the closed set of stream event types.
type EventKind string

// Event kinds emitted by the orchestrator, in the order they typically
// appear within a session.
const (
	EventOpening          EventKind = "opening"
	EventRoundStart       EventKind = "round_start"
	EventThinking         EventKind = "thinking"
	EventArgument         EventKind = "argument"
	EventArgumentComplete EventKind = "argument_complete"
	EventEvaluation       EventKind = "evaluation"
	EventStandings        EventKind = "standings"
	EventVerdict          EventKind = "verdict"
	EventComplete         EventKind = "complete"
	EventError            EventKind = "error"
)

// Event is one entry in the ordered stream a debate produces. Only the
// fields relevant to the kind are populated; consumers must tolerate
// kinds they do not recognise.
type Event struct {
	Kind  EventKind `json:"type"`
	Round int       `json:"round,omitempty"`

	// Opening fields.
	Topic       string `json:"topic,omitempty"`
	TotalRounds int    `json:"total_rounds,omitempty"`

	// Speaker fields for thinking, argument and argument_complete.
	Side    string `json:"side,omitempty"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`

	// Complete is true only on argument_complete; streamed argument
	// events carry the accumulated text with Complete false.
	Complete bool `json:"is_complete,omitempty"`

	// Thinking fields.
	Analysis   map[string]interface{} `json:"analysis,omitempty"`
	Confidence float64                `json:"confidence,omitempty"`

	// Structured payloads.
	Evaluation *RoundEvaluation `json:"evaluation,omitempty"`
	Standings  *Standings       `json:"standings,omitempty"`
	Verdict    *FinalVerdict    `json:"verdict,omitempty"`

	// Terminal payloads carried by complete.
	FinalState     *FullState                   `json:"final_state,omitempty"`
	MessageHistory []communication.AgentMessage `json:"message_history,omitempty"`

	// Message carries human-readable error text.
	Message string `json:"message,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// errorEvent builds an error event with the given round and text.
func errorEvent(round int, message string) Event {
	return Event{Kind: EventError, Round: round, Message: message}
}
