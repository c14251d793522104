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

// Message constructors for the shapes the orchestrators publish. Each
// returns a message that passes protocol validation.

// ArgumentMessage is a debater's utterance for a round, broadcast.
func ArgumentMessage(sender, content string, round int) *AgentMessage {
	msg := NewMessage(sender, "", KindArgument)
	msg.Content = Payload{Role: "debater", Action: "argument", Result: content}
	msg.Round = round
	return msg
}

// RebuttalMessage is a directed counter to an earlier message.
func RebuttalMessage(sender, content, targetMessageID string, round int) *AgentMessage {
	msg := NewMessage(sender, "", KindRebuttal)
	msg.Content = Payload{Role: "debater", Action: "rebuttal", Result: content}
	msg.ReplyTo = targetMessageID
	msg.Round = round
	return msg
}

// EvaluationMessage carries the jury's per-round scores.
func EvaluationMessage(sender, receiver string, scores map[string]interface{}, commentary string, round int) *AgentMessage {
	msg := NewMessage(sender, receiver, KindEvaluation)
	msg.Content = Payload{Role: "jury", Action: "evaluate", Result: commentary, Score: scores}
	msg.Round = round
	return msg
}

// VerdictMessage carries the jury's final ruling, broadcast at high
// priority.
func VerdictMessage(sender, winner string, proScore, conScore int, summary string) *AgentMessage {
	msg := NewMessage(sender, "", KindVerdict)
	msg.Priority = PriorityHigh
	msg.Content = Payload{
		Role:   "jury",
		Action: "verdict",
		Result: summary,
		Score: map[string]interface{}{
			"winner":    winner,
			"pro_score": proScore,
			"con_score": conScore,
		},
	}
	return msg
}

// RequestMessage asks another agent to perform an action.
func RequestMessage(sender, receiver, action string, params map[string]interface{}) *AgentMessage {
	if params == nil {
		params = map[string]interface{}{}
	}
	msg := NewMessage(sender, receiver, KindRequest)
	msg.Content = Payload{Role: "system", Action: action, Result: params}
	return msg
}

// StatusMessage broadcasts a lifecycle update.
func StatusMessage(sender, status string, details map[string]interface{}) *AgentMessage {
	if details == nil {
		details = map[string]interface{}{}
	}
	msg := NewMessage(sender, "", KindStatus)
	msg.Content = Payload{
		Role:   "system",
		Action: "status",
		Result: map[string]interface{}{"status": status, "details": details},
	}
	return msg
}
