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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage("pro", "", KindArgument)

	assert.Len(t, msg.ID, 8)
	assert.Equal(t, "pro", msg.Sender)
	assert.Empty(t, msg.Receiver)
	assert.Equal(t, KindArgument, msg.Kind)
	assert.Equal(t, PriorityNormal, msg.Priority)
	assert.False(t, msg.Timestamp.IsZero())

	other := NewMessage("con", "", KindArgument)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestCreateReply(t *testing.T) {
	original := NewMessage("orchestrator", "pro", KindRequest)
	original.Round = 3

	reply := original.CreateReply(Payload{Role: "debater", Result: "done"}, "")
	assert.Equal(t, "pro", reply.Sender)
	assert.Equal(t, "orchestrator", reply.Receiver)
	assert.Equal(t, KindResponse, reply.Kind, "kind defaults to response")
	assert.Equal(t, original.ID, reply.ReplyTo)
	assert.Equal(t, original.ID, reply.ThreadID, "reply roots a thread at the original")
	assert.Equal(t, 3, reply.Round)

	// an existing thread is inherited
	original.ThreadID = "thread-1"
	second := original.CreateReply(Payload{Result: "ack"}, KindConfirm)
	assert.Equal(t, KindConfirm, second.Kind)
	assert.Equal(t, "thread-1", second.ThreadID)
}

func TestPayload_IsZero(t *testing.T) {
	assert.True(t, Payload{}.IsZero())
	assert.False(t, Payload{Role: "debater"}.IsZero())
	assert.False(t, Payload{Result: "text"}.IsZero())
	assert.False(t, Payload{Score: map[string]interface{}{}}.IsZero())
}

func TestMessageWireShape(t *testing.T) {
	msg := ArgumentMessage("pro", "第一个论点", 1)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "argument", wire["type"])
	assert.Equal(t, "pro", wire["sender"])
	assert.Equal(t, float64(1), wire["round"])

	content, ok := wire["content"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "debater", content["role"])
	assert.Equal(t, "第一个论点", content["result"])
}

func TestTemplatesPassValidation(t *testing.T) {
	validator := ProtocolValidator{}

	tests := []struct {
		name string
		msg  *AgentMessage
	}{
		{"argument", ArgumentMessage("pro", "观点", 1)},
		{"rebuttal", RebuttalMessage("con", "反驳", "msg-1", 2)},
		{"evaluation", EvaluationMessage("jury", "", map[string]interface{}{"pro": 30, "con": 28}, "点评", 1)},
		{"verdict", VerdictMessage("jury", "pro", 61, 54, "总结")},
		{"request", RequestMessage("orchestrator", "pro", "prepare", nil)},
		{"status", StatusMessage("orchestrator", "in_progress", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := validator.Validate(tt.msg)
			assert.True(t, valid, reason)
			assert.Empty(t, reason)
		})
	}
}

func TestVerdictMessageShape(t *testing.T) {
	msg := VerdictMessage("jury", "con", 55, 62, "反方更有说服力")

	assert.Equal(t, PriorityHigh, msg.Priority)
	assert.Equal(t, "con", msg.Content.Score["winner"])
	assert.Equal(t, 55, msg.Content.Score["pro_score"])
	assert.Equal(t, 62, msg.Content.Score["con_score"])
	assert.Equal(t, "反方更有说服力", msg.Content.Result)
}
