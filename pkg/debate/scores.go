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
	"encoding/json"
	"fmt"
)

// Sides of a debate.
const (
	SidePro = "pro"
	SideCon = "con"
)

// Winner tags shared by round evaluations and the final verdict.
const (
	WinnerPro = "pro"
	WinnerCon = "con"
	WinnerTie = "tie"
)

// Margin tags for the final verdict.
const (
	MarginDecisive = "decisive"
	MarginClose    = "close"
	MarginMarginal = "marginal"
)

// Scorecard holds one side's sub-scores for a single round. Each
// dimension is scored on a 1 to 10 scale.
type Scorecard struct {
	Logic    float64 `json:"logic"`
	Evidence float64 `json:"evidence"`
	Rhetoric float64 `json:"rhetoric"`
	Rebuttal float64 `json:"rebuttal"`
}

// UnmarshalJSON accepts either the usual sub-score object or a bare
// number. A bare number is spread evenly across the dimensions so the
// total still equals the number, which keeps running totals correct
// when a model returns a single scalar instead of the full breakdown.
func (s *Scorecard) UnmarshalJSON(data []byte) error {
	type plain Scorecard
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*s = Scorecard(p)
		return nil
	}
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err != nil {
		return fmt.Errorf("scorecard: %w", err)
	}
	quarter := scalar / 4
	*s = Scorecard{Logic: quarter, Evidence: quarter, Rhetoric: quarter, Rebuttal: quarter}
	return nil
}

// Total returns the sum of the four sub-scores.
func (s Scorecard) Total() float64 {
	return s.Logic + s.Evidence + s.Rhetoric + s.Rebuttal
}

// Average returns the mean of the four sub-scores.
func (s Scorecard) Average() float64 {
	return s.Total() / 4
}

// Clamped returns a copy with every sub-score forced into [1, 10].
func (s Scorecard) Clamped() Scorecard {
	return Scorecard{
		Logic:    clampScore(s.Logic),
		Evidence: clampScore(s.Evidence),
		Rhetoric: clampScore(s.Rhetoric),
		Rebuttal: clampScore(s.Rebuttal),
	}
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// neutralScorecard is the fallback issued when an evaluation cannot be
// parsed: a flat 5 on every dimension.
func neutralScorecard() Scorecard {
	return Scorecard{Logic: 5, Evidence: 5, Rhetoric: 5, Rebuttal: 5}
}

// RoundEvaluation is the jury's structured assessment of one round.
type RoundEvaluation struct {
	Round       int                 `json:"round"`
	ProScore    Scorecard           `json:"pro_score"`
	ConScore    Scorecard           `json:"con_score"`
	RoundWinner string              `json:"round_winner"`
	Commentary  string              `json:"commentary"`
	Highlights  []string            `json:"highlights,omitempty"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// FinalVerdict is the jury's ruling over the whole debate. Totals are
// always derived from the recorded round evaluations, never from model
// output.
type FinalVerdict struct {
	Winner           string   `json:"winner"`
	ProTotalScore    float64  `json:"pro_total_score"`
	ConTotalScore    float64  `json:"con_total_score"`
	Margin           string   `json:"margin"`
	Summary          string   `json:"summary"`
	ProStrengths     []string `json:"pro_strengths,omitempty"`
	ConStrengths     []string `json:"con_strengths,omitempty"`
	KeyTurningPoints []string `json:"key_turning_points,omitempty"`
}

// Standings is the running score snapshot shared by the memory and the
// jury.
type Standings struct {
	CurrentRound    int     `json:"current_round,omitempty"`
	TotalRounds     int     `json:"total_rounds,omitempty"`
	RoundsCompleted int     `json:"rounds_completed"`
	ProTotalScore   float64 `json:"pro_total_score"`
	ConTotalScore   float64 `json:"con_total_score"`
	ProRoundWins    int     `json:"pro_round_wins"`
	ConRoundWins    int     `json:"con_round_wins"`
	Ties            int     `json:"ties"`
	Leader          string  `json:"leader"`
	Status          State   `json:"status,omitempty"`
}

// leaderOf returns the side with the larger total, or a tie.
func leaderOf(proTotal, conTotal float64) string {
	switch {
	case proTotal > conTotal:
		return WinnerPro
	case conTotal > proTotal:
		return WinnerCon
	default:
		return WinnerTie
	}
}

// relativeGap returns the totals gap as a percentage of the larger
// total. A zero baseline yields zero.
func relativeGap(proTotal, conTotal float64) float64 {
	base := proTotal
	if conTotal > base {
		base = conTotal
	}
	if base <= 0 {
		return 0
	}
	gap := proTotal - conTotal
	if gap < 0 {
		gap = -gap
	}
	return gap / base * 100
}

// marginFor maps the relative totals gap onto the margin scale:
// above 15% is decisive, 5% to 15% is close, below 5% is marginal.
func marginFor(proTotal, conTotal float64) string {
	gap := relativeGap(proTotal, conTotal)
	switch {
	case gap > 15:
		return MarginDecisive
	case gap >= 5:
		return MarginClose
	default:
		return MarginMarginal
	}
}

func validWinner(w string) bool {
	return w == WinnerPro || w == WinnerCon || w == WinnerTie
}

func validMargin(m string) bool {
	return m == MarginDecisive || m == MarginClose || m == MarginMarginal
}
