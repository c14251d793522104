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

// Package communication defines the typed message protocol debate
// participants exchange and the per-session bus that routes it.
package communication

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind classifies a message on the bus.
type MessageKind string

// Debate traffic.
const (
	KindArgument   MessageKind = "argument"
	KindRebuttal   MessageKind = "rebuttal"
	KindQuestion   MessageKind = "question"
	KindAnswer     MessageKind = "answer"
	KindConcession MessageKind = "concession"
)

// Agent coordination.
const (
	KindRequest  MessageKind = "request"
	KindResponse MessageKind = "response"
	KindInform   MessageKind = "inform"
	KindQuery    MessageKind = "query"
	KindConfirm  MessageKind = "confirm"
	KindReject   MessageKind = "reject"
)

// System traffic.
const (
	KindSystem MessageKind = "system"
	KindError  MessageKind = "error"
	KindStatus MessageKind = "status"
)

// Jury traffic.
const (
	KindEvaluation MessageKind = "evaluation"
	KindScore      MessageKind = "score"
	KindVerdict    MessageKind = "verdict"
)

// Priority orders messages by urgency.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// Payload is the normalised content of a message. Every field is
// optional; which ones are set depends on the message kind.
type Payload struct {
	Role    string                 `json:"role"`
	Thought map[string]interface{} `json:"thought,omitempty"`
	Action  string                 `json:"action"`
	Result  interface{}            `json:"result,omitempty"`
	Score   map[string]interface{} `json:"score,omitempty"`
}

// IsZero reports whether the payload carries no content at all.
func (p Payload) IsZero() bool {
	return p.Role == "" && p.Thought == nil && p.Action == "" && p.Result == nil && p.Score == nil
}

// AgentMessage is one unit of traffic on the bus. An empty Receiver
// marks a broadcast.
type AgentMessage struct {
	ID        string                 `json:"id"`
	Sender    string                 `json:"sender"`
	Receiver  string                 `json:"receiver"`
	Kind      MessageKind            `json:"type"`
	Priority  Priority               `json:"priority"`
	Content   Payload                `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ReplyTo   string                 `json:"reply_to,omitempty"`
	ThreadID  string                 `json:"thread_id,omitempty"`
	Round     int                    `json:"round"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewMessage constructs a message with a fresh short id, normal
// priority, and the current timestamp.
func NewMessage(sender, receiver string, kind MessageKind) *AgentMessage {
	return &AgentMessage{
		ID:        uuid.New().String()[:8],
		Sender:    sender,
		Receiver:  receiver,
		Kind:      kind,
		Priority:  PriorityNormal,
		Timestamp: time.Now(),
	}
}

// CreateReply builds a response addressed back to the sender. The reply
// joins the original's thread, or starts one rooted at the original.
func (m *AgentMessage) CreateReply(content Payload, kind MessageKind) *AgentMessage {
	if kind == "" {
		kind = KindResponse
	}
	reply := NewMessage(m.Receiver, m.Sender, kind)
	reply.Content = content
	reply.ReplyTo = m.ID
	reply.ThreadID = m.ThreadID
	if reply.ThreadID == "" {
		reply.ThreadID = m.ID
	}
	reply.Round = m.Round
	return reply
}
