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

// Package evals scores completed traces after the fact and compares
// runs pairwise. Scoring is deterministic: recorded jury evaluations
// are aggregated when present, and a text heuristic covers traces that
// never saw a jury.
package evals

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/trace"
)

// Notes explaining which path produced a result's scores.
const (
	noteJuryAggregate = "评测基于评审分数聚合"
	noteTextHeuristic = "评测基于启发式文本统计"
)

// ScoreBreakdown carries the four scored dimensions and their mean.
// Clarity aggregates the jury's rhetoric dimension.
type ScoreBreakdown struct {
	Logic    float64 `json:"logic"`
	Evidence float64 `json:"evidence"`
	Rebuttal float64 `json:"rebuttal"`
	Clarity  float64 `json:"clarity"`
	Total    float64 `json:"total"`
}

// Result is the post-hoc assessment of one trace. Side averages and the
// winner are only present when the trace carries jury evaluations.
type Result struct {
	TraceID     string         `json:"trace_id,omitempty"`
	Overall     float64        `json:"overall"`
	Dimensions  ScoreBreakdown `json:"dimensions"`
	Consistency float64        `json:"consistency"`
	ProAverage  *float64       `json:"pro_average,omitempty"`
	ConAverage  *float64       `json:"con_average,omitempty"`
	Winner      string         `json:"winner,omitempty"`
	Notes       []string       `json:"notes"`
}

// EvaluateTrace scores a completed trace. All scores live on a 0 to 10
// scale rounded to two decimals.
func EvaluateTrace(t *trace.DebateTrace) Result {
	result := Result{TraceID: t.TraceID}

	if len(t.Evaluations) > 0 {
		logic := avg(dimensionMeans(t.Evaluations, func(s debate.Scorecard) float64 { return s.Logic }))
		evidence := avg(dimensionMeans(t.Evaluations, func(s debate.Scorecard) float64 { return s.Evidence }))
		rebuttal := avg(dimensionMeans(t.Evaluations, func(s debate.Scorecard) float64 { return s.Rebuttal }))
		clarity := avg(dimensionMeans(t.Evaluations, func(s debate.Scorecard) float64 { return s.Rhetoric }))

		total := avg([]float64{logic, evidence, rebuttal, clarity})
		result.Overall = total
		result.Dimensions = ScoreBreakdown{
			Logic:    logic,
			Evidence: evidence,
			Rebuttal: rebuttal,
			Clarity:  clarity,
			Total:    total,
		}
		result.Consistency = consistency(t.Evaluations)
		result.Notes = append(result.Notes, noteJuryAggregate)
	} else {
		result.Dimensions = inferFromText(t.Turns)
		result.Overall = result.Dimensions.Total
		result.Notes = append(result.Notes, noteTextHeuristic)
	}

	if len(t.Evaluations) > 0 {
		proTotals := make([]float64, 0, len(t.Evaluations))
		conTotals := make([]float64, 0, len(t.Evaluations))
		for _, e := range t.Evaluations {
			proTotals = append(proTotals, e.ProScore.Total())
			conTotals = append(conTotals, e.ConScore.Total())
		}

		proAvg := avg(proTotals)
		conAvg := avg(conTotals)
		result.ProAverage = &proAvg
		result.ConAverage = &conAvg

		result.Winner = debate.WinnerTie
		switch proSum, conSum := sum(proTotals), sum(conTotals); {
		case proSum > conSum:
			result.Winner = debate.WinnerPro
		case conSum > proSum:
			result.Winner = debate.WinnerCon
		}
	}

	return result
}

// dimensionMeans returns the per-round mean of one dimension across
// both sides.
func dimensionMeans(evaluations []debate.RoundEvaluation, dim func(debate.Scorecard) float64) []float64 {
	means := make([]float64, 0, len(evaluations))
	for _, e := range evaluations {
		means = append(means, (dim(e.ProScore)+dim(e.ConScore))/2)
	}
	return means
}

// consistency rates how stable the per-round totals were: 10 for a
// perfectly flat debate, dropping by half the population deviation.
// One evaluation already yields two totals, so anything evaluated at
// all gets a computed score.
func consistency(evaluations []debate.RoundEvaluation) float64 {
	totals := make([]float64, 0, 2*len(evaluations))
	for _, e := range evaluations {
		totals = append(totals, e.ProScore.Total())
	}
	for _, e := range evaluations {
		totals = append(totals, e.ConScore.Total())
	}
	if len(totals) < 2 {
		return 0
	}
	return round2(clamp10(10 - pstdev(totals)/2))
}

// Marker words the text heuristic scans for, one point pair per
// distinct marker present.
var (
	logicMarkers    = []string{"因此", "所以", "因为", "从而"}
	evidenceMarkers = []string{"数据", "研究", "案例", "统计"}
	rebuttalMarkers = []string{"反驳", "然而", "但是", "并非"}
)

// inferFromText scores a trace that has no jury evaluations from the
// turn outputs alone: marker presence drives logic, evidence and
// rebuttal, while clarity decays with sheer length.
func inferFromText(turns []trace.AgentTurn) ScoreBreakdown {
	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		parts = append(parts, turn.Result)
	}
	text := strings.Join(parts, " ")

	length := utf8.RuneCountInString(text)
	if length < 1 {
		length = 1
	}

	logic := clamp10(float64(markersPresent(text, logicMarkers)) * 2)
	evidence := clamp10(float64(markersPresent(text, evidenceMarkers)) * 2)
	rebuttal := clamp10(float64(markersPresent(text, rebuttalMarkers)) * 2)
	clarity := clamp10(10 - float64(length)/2000*2)

	return ScoreBreakdown{
		Logic:    round2(logic),
		Evidence: round2(evidence),
		Rebuttal: round2(rebuttal),
		Clarity:  round2(clarity),
		Total:    round2((logic + evidence + rebuttal + clarity) / 4),
	}
}

func markersPresent(text string, markers []string) int {
	n := 0
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			n++
		}
	}
	return n
}

// avg is the two-decimal mean, zero for an empty slice.
func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return round2(sum(values) / float64(len(values)))
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// pstdev is the population standard deviation.
func pstdev(values []float64) float64 {
	mean := sum(values) / float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

func clamp10(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
