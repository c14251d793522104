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
package communication

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/observability"
)

// Span names for bus operations.
const (
	SpanBusPublish = "bus.publish"
)

// Handler consumes one message. Handlers run synchronously inside
// Publish; a panicking handler is recovered and logged without
// interrupting delivery to the rest.
type Handler func(*AgentMessage)

// MessageFilter narrows a Messages query. Zero-value fields are
// ignored; Round filters only when > 0 (system traffic sits at round 0
// and is never queried by round).
type MessageFilter struct {
	Sender   string
	Receiver string
	Kind     MessageKind
	Round    int
	Limit    int
}

// MessageBus routes typed messages between the agents of one session
// and keeps the full traffic history.
//
// The bus is single-threaded cooperative: it belongs to one session
// loop and is not safe for concurrent publishers.
type MessageBus struct {
	messages []*AgentMessage

	// subscriber handlers, with registration order preserved so
	// broadcast delivery is deterministic
	subscribers map[string][]Handler
	subOrder    []string

	kindHandlers map[MessageKind][]Handler

	tracer observability.Tracer
	logger *zap.Logger
}

// NewMessageBus creates an empty bus. Nil tracer and logger degrade to
// no-op implementations.
func NewMessageBus(tracer observability.Tracer, logger *zap.Logger) *MessageBus {
	if tracer == nil {
		tracer = observability.NewNoOpTracer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageBus{
		subscribers:  make(map[string][]Handler),
		kindHandlers: make(map[MessageKind][]Handler),
		tracer:       tracer,
		logger:       logger,
	}
}

// Subscribe registers a handler for messages addressed to agentID and
// for broadcasts from other agents.
func (b *MessageBus) Subscribe(agentID string, handler Handler) {
	if _, ok := b.subscribers[agentID]; !ok {
		b.subOrder = append(b.subOrder, agentID)
	}
	b.subscribers[agentID] = append(b.subscribers[agentID], handler)
}

// Unsubscribe removes every handler registered for agentID.
func (b *MessageBus) Unsubscribe(agentID string) {
	if _, ok := b.subscribers[agentID]; !ok {
		return
	}
	delete(b.subscribers, agentID)
	for i, id := range b.subOrder {
		if id == agentID {
			b.subOrder = append(b.subOrder[:i], b.subOrder[i+1:]...)
			break
		}
	}
}

// RegisterKindHandler registers a handler invoked for every published
// message of the given kind, regardless of addressing.
func (b *MessageBus) RegisterKindHandler(kind MessageKind, handler Handler) {
	b.kindHandlers[kind] = append(b.kindHandlers[kind], handler)
}

// Publish appends the message to history and dispatches it: kind
// handlers first, then either the addressed subscriber's handlers or,
// for a broadcast, every subscriber's handlers except the sender's.
func (b *MessageBus) Publish(ctx context.Context, msg *AgentMessage) error {
	if msg == nil {
		return fmt.Errorf("publish nil message")
	}

	_, span := b.tracer.StartSpan(ctx, SpanBusPublish,
		observability.WithAttribute("message.kind", string(msg.Kind)),
		observability.WithAttribute("message.sender", msg.Sender))
	defer b.tracer.EndSpan(span)
	if span != nil && msg.Receiver != "" {
		span.SetAttribute("message.receiver", msg.Receiver)
	}

	b.messages = append(b.messages, msg)

	for _, handler := range b.kindHandlers[msg.Kind] {
		b.invoke(handler, msg)
	}

	if msg.Receiver != "" {
		for _, handler := range b.subscribers[msg.Receiver] {
			b.invoke(handler, msg)
		}
		return nil
	}

	for _, agentID := range b.subOrder {
		if agentID == msg.Sender {
			continue
		}
		for _, handler := range b.subscribers[agentID] {
			b.invoke(handler, msg)
		}
	}
	return nil
}

// invoke runs one handler, recovering a panic so the remaining handlers
// still see the message.
func (b *MessageBus) invoke(handler Handler, msg *AgentMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("message handler panicked",
				zap.Any("panic", r),
				zap.String("message_id", msg.ID),
				zap.String("kind", string(msg.Kind)))
		}
	}()
	handler(msg)
}

// Messages returns the history entries matching the filter, in
// publication order. A Receiver filter also matches broadcasts.
func (b *MessageBus) Messages(filter MessageFilter) []*AgentMessage {
	result := make([]*AgentMessage, 0, len(b.messages))
	for _, m := range b.messages {
		if filter.Sender != "" && m.Sender != filter.Sender {
			continue
		}
		if filter.Receiver != "" && m.Receiver != filter.Receiver && m.Receiver != "" {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		if filter.Round > 0 && m.Round != filter.Round {
			continue
		}
		result = append(result, m)
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

// Thread returns the messages belonging to a thread, including the
// thread's root message.
func (b *MessageBus) Thread(threadID string) []*AgentMessage {
	var result []*AgentMessage
	for _, m := range b.messages {
		if m.ThreadID == threadID || m.ID == threadID {
			result = append(result, m)
		}
	}
	return result
}

// ConversationBetween returns the directed traffic between two agents,
// in publication order. Broadcasts are not part of a conversation.
func (b *MessageBus) ConversationBetween(a, c string) []*AgentMessage {
	var result []*AgentMessage
	for _, m := range b.messages {
		if (m.Sender == a && m.Receiver == c) || (m.Sender == c && m.Receiver == a) {
			result = append(result, m)
		}
	}
	return result
}

// Clear drops the message history. Subscriptions survive.
func (b *MessageBus) Clear() {
	b.messages = nil
}

// ExportHistory returns value copies of the full history in
// publication order, ready for serialisation.
func (b *MessageBus) ExportHistory() []AgentMessage {
	out := make([]AgentMessage, len(b.messages))
	for i, m := range b.messages {
		out[i] = *m
	}
	return out
}

// ProtocolValidator checks messages against the structural rules of
// the debate protocol.
type ProtocolValidator struct{}

// verdictFields are the score entries a verdict must carry.
var verdictFields = []string{"winner", "pro_score", "con_score"}

// Validate reports whether the message satisfies the protocol, and the
// exact reason when it does not.
func (ProtocolValidator) Validate(msg *AgentMessage) (bool, string) {
	if msg.Sender == "" {
		return false, "Missing sender"
	}
	if msg.Content.IsZero() {
		return false, "Missing content"
	}

	switch msg.Kind {
	case KindRebuttal:
		if msg.ReplyTo == "" {
			return false, "Rebuttal must have reply_to"
		}
	case KindEvaluation:
		if msg.Content.Score == nil {
			return false, "Evaluation must have score"
		}
	case KindVerdict:
		var missing []string
		for _, field := range verdictFields {
			if _, ok := msg.Content.Score[field]; !ok {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			return false, "Verdict missing fields: " + strings.Join(missing, ", ")
		}
	}
	return true, ""
}
