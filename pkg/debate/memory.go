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
	"fmt"
	"strconv"
	"strings"
	"time"
)

// State names a debate lifecycle stage.
type State string

// Lifecycle states. The orchestrator uses all four; the shared memory
// never passes through ready.
const (
	StateNotStarted State = "not_started"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// previewRunes is the truncation width for event-log content previews.
const previewRunes = 100

// Utterance is one recorded argument.
type Utterance struct {
	ID        string                 `json:"id"`
	Round     int                    `json:"round"`
	Side      string                 `json:"side"`
	AgentName string                 `json:"agent"`
	Content   string                 `json:"content"`
	Thinking  map[string]interface{} `json:"thinking,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// LogEntry is one entry in the memory's append-only event log.
type LogEntry struct {
	Type      string    `json:"type"`
	Round     int       `json:"round,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FullState is the serializable snapshot of a SharedMemory. It JSON
// round-trips to structurally equal state.
type FullState struct {
	Topic        string            `json:"topic"`
	TotalRounds  int               `json:"total_rounds"`
	CurrentRound int               `json:"current_round"`
	Status       State             `json:"status"`
	Standings    Standings         `json:"standings"`
	Arguments    []Utterance       `json:"arguments"`
	Evaluations  []RoundEvaluation `json:"evaluations"`
	Events       []LogEntry        `json:"events"`
	Verdict      *FinalVerdict     `json:"verdict,omitempty"`
}

// SharedMemory is the append-only state shared by every agent in one
// debate session: utterances, evaluations, running totals, and an event
// log of everything that happened. It is owned by exactly one
// orchestrator and is not safe for concurrent use.
type SharedMemory struct {
	topic        string
	totalRounds  int
	currentRound int
	status       State

	utterances  []Utterance
	evaluations []RoundEvaluation
	log         []LogEntry

	proTotal float64
	conTotal float64
	verdict  *FinalVerdict
}

// NewSharedMemory creates the shared state for one debate session.
func NewSharedMemory(topic string, totalRounds int) *SharedMemory {
	return &SharedMemory{
		topic:       topic,
		totalRounds: totalRounds,
		status:      StateNotStarted,
	}
}

// NewFromState reconstructs a SharedMemory from a FullState snapshot.
func NewFromState(fs FullState) *SharedMemory {
	m := &SharedMemory{
		topic:        fs.Topic,
		totalRounds:  fs.TotalRounds,
		currentRound: fs.CurrentRound,
		status:       fs.Status,
		utterances:   append([]Utterance(nil), fs.Arguments...),
		evaluations:  append([]RoundEvaluation(nil), fs.Evaluations...),
		log:          append([]LogEntry(nil), fs.Events...),
		proTotal:     fs.Standings.ProTotalScore,
		conTotal:     fs.Standings.ConTotalScore,
	}
	if fs.Verdict != nil {
		v := *fs.Verdict
		m.verdict = &v
	}
	return m
}

// Topic returns the debate topic.
func (m *SharedMemory) Topic() string { return m.topic }

// TotalRounds returns the planned round count.
func (m *SharedMemory) TotalRounds() int { return m.totalRounds }

// CurrentRound returns the round most recently started.
func (m *SharedMemory) CurrentRound() int { return m.currentRound }

// Status returns the lifecycle state.
func (m *SharedMemory) Status() State { return m.status }

// Verdict returns the final verdict once the debate has completed.
func (m *SharedMemory) Verdict() *FinalVerdict { return m.verdict }

// Evaluations returns a copy of the recorded round evaluations.
func (m *SharedMemory) Evaluations() []RoundEvaluation {
	return append([]RoundEvaluation(nil), m.evaluations...)
}

// StartDebate marks the debate in progress and opens round one.
func (m *SharedMemory) StartDebate() {
	m.status = StateInProgress
	m.currentRound = 1
	m.appendLog(LogEntry{
		Type:    "debate_start",
		Content: m.topic,
	})
}

// StartRound advances the current round.
func (m *SharedMemory) StartRound(round int) {
	m.currentRound = round
	m.appendLog(LogEntry{Type: "round_start", Round: round})
}

// AddArgument records an utterance for the current round and returns
// the stored record. The id encodes round and side, so a side speaks at
// most once per round.
func (m *SharedMemory) AddArgument(side, agentName, content string, thinking map[string]interface{}) Utterance {
	u := Utterance{
		ID:        fmt.Sprintf("arg_%d_%s", m.currentRound, side),
		Round:     m.currentRound,
		Side:      side,
		AgentName: agentName,
		Content:   content,
		Thinking:  thinking,
		Timestamp: time.Now(),
	}
	m.utterances = append(m.utterances, u)

	m.appendLog(LogEntry{
		Type:    "argument",
		Round:   m.currentRound,
		Agent:   agentName,
		Content: preview(content),
	})
	return u
}

// AddEvaluation records a round evaluation and folds its totals into
// the running score.
func (m *SharedMemory) AddEvaluation(eval RoundEvaluation) {
	m.evaluations = append(m.evaluations, eval)
	m.proTotal += eval.ProScore.Total()
	m.conTotal += eval.ConScore.Total()

	m.appendLog(LogEntry{
		Type:   "evaluation",
		Round:  eval.Round,
		Winner: eval.RoundWinner,
	})
}

// EndRound records the end of a round.
func (m *SharedMemory) EndRound(round int) {
	m.appendLog(LogEntry{Type: "round_end", Round: round})
}

// CompleteDebate marks the debate finished and stores the verdict.
func (m *SharedMemory) CompleteDebate(verdict *FinalVerdict) {
	m.status = StateCompleted
	if verdict != nil {
		v := *verdict
		m.verdict = &v
	}
	entry := LogEntry{Type: "debate_complete"}
	if verdict != nil {
		entry.Winner = verdict.Winner
	}
	m.appendLog(entry)
}

// RoundArguments returns the utterances recorded for a round.
func (m *SharedMemory) RoundArguments(round int) []Utterance {
	var out []Utterance
	for _, u := range m.utterances {
		if u.Round == round {
			out = append(out, u)
		}
	}
	return out
}

// SideArguments returns every utterance by the given side.
func (m *SharedMemory) SideArguments(side string) []Utterance {
	var out []Utterance
	for _, u := range m.utterances {
		if u.Side == side {
			out = append(out, u)
		}
	}
	return out
}

// LastArgument returns the most recent utterance, restricted to one
// side when side is non-empty.
func (m *SharedMemory) LastArgument(side string) (Utterance, bool) {
	for i := len(m.utterances) - 1; i >= 0; i-- {
		if side == "" || m.utterances[i].Side == side {
			return m.utterances[i], true
		}
	}
	return Utterance{}, false
}

// CurrentStandings returns the running score snapshot.
func (m *SharedMemory) CurrentStandings() Standings {
	var proWins, conWins, ties int
	for _, e := range m.evaluations {
		switch e.RoundWinner {
		case WinnerPro:
			proWins++
		case WinnerCon:
			conWins++
		default:
			ties++
		}
	}
	return Standings{
		CurrentRound:    m.currentRound,
		TotalRounds:     m.totalRounds,
		RoundsCompleted: len(m.evaluations),
		ProTotalScore:   m.proTotal,
		ConTotalScore:   m.conTotal,
		ProRoundWins:    proWins,
		ConRoundWins:    conWins,
		Ties:            ties,
		Leader:          leaderOf(m.proTotal, m.conTotal),
		Status:          m.status,
	}
}

// DebateHistory returns a copy of every recorded utterance in order.
func (m *SharedMemory) DebateHistory() []Utterance {
	return append([]Utterance(nil), m.utterances...)
}

// FullState returns the serializable snapshot of the memory.
func (m *SharedMemory) FullState() FullState {
	fs := FullState{
		Topic:        m.topic,
		TotalRounds:  m.totalRounds,
		CurrentRound: m.currentRound,
		Status:       m.status,
		Standings:    m.CurrentStandings(),
		Arguments:    append([]Utterance(nil), m.utterances...),
		Evaluations:  append([]RoundEvaluation(nil), m.evaluations...),
		Events:       append([]LogEntry(nil), m.log...),
	}
	if m.verdict != nil {
		v := *m.verdict
		fs.Verdict = &v
	}
	return fs
}

// ExportTranscript renders the debate as a Markdown document.
func (m *SharedMemory) ExportTranscript() string {
	var sb strings.Builder
	sb.WriteString("# 辩论记录\n\n")
	sb.WriteString(fmt.Sprintf("**主题**: %s\n", m.topic))
	sb.WriteString(fmt.Sprintf("**轮次**: %d\n", m.totalRounds))
	sb.WriteString(fmt.Sprintf("**状态**: %s\n\n", m.status))
	sb.WriteString("---\n\n")

	for round := 1; round <= m.currentRound; round++ {
		sb.WriteString(fmt.Sprintf("## 第 %d 轮\n\n", round))

		for _, u := range m.RoundArguments(round) {
			label := "正方"
			if u.Side == SideCon {
				label = "反方"
			}
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
			sb.WriteString(u.Content)
			sb.WriteString("\n\n")
		}

		for _, e := range m.evaluations {
			if e.Round == round {
				sb.WriteString(fmt.Sprintf("**评审点评**: %s\n", e.Commentary))
				sb.WriteString(fmt.Sprintf("**本轮胜者**: %s\n\n", e.RoundWinner))
			}
		}

		sb.WriteString("---\n\n")
	}

	standings := m.CurrentStandings()
	sb.WriteString("## 最终比分\n\n")
	sb.WriteString(fmt.Sprintf("- 正方总分: %s\n", formatScore(standings.ProTotalScore)))
	sb.WriteString(fmt.Sprintf("- 反方总分: %s\n", formatScore(standings.ConTotalScore)))
	sb.WriteString(fmt.Sprintf("- 正方获胜轮次: %d\n", standings.ProRoundWins))
	sb.WriteString(fmt.Sprintf("- 反方获胜轮次: %d", standings.ConRoundWins))
	return sb.String()
}

func (m *SharedMemory) appendLog(entry LogEntry) {
	entry.Timestamp = time.Now()
	m.log = append(m.log, entry)
}

// preview truncates content to the event-log width. Truncation counts
// runes so multi-byte text is never split.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + "..."
}

// formatScore renders a total without a trailing .0 for whole numbers.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
