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

package evals

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/teradata-labs/arena/pkg/trace"
)

// Winner labels for pairwise comparison.
const (
	CompareLeft  = "left"
	CompareRight = "right"
	CompareTie   = "tie"
)

// Delta holds right minus left for every scored dimension, rounded to
// two decimals.
type Delta struct {
	Overall     float64 `json:"overall"`
	Consistency float64 `json:"consistency"`
	Logic       float64 `json:"logic"`
	Evidence    float64 `json:"evidence"`
	Rebuttal    float64 `json:"rebuttal"`
	Clarity     float64 `json:"clarity"`
}

// CompareResult pairs two trace evaluations with their score deltas
// and a transcript-level similarity reading.
type CompareResult struct {
	Left                 Result  `json:"left"`
	Right                Result  `json:"right"`
	Delta                Delta   `json:"delta"`
	Winner               string  `json:"winner"`
	TranscriptSimilarity float64 `json:"transcript_similarity"`
	TranscriptDiff       string  `json:"transcript_diff,omitempty"`
}

// CompareTraces evaluates both traces and reports right relative to
// left. The winner is decided by overall score alone.
func CompareTraces(left, right *trace.DebateTrace) CompareResult {
	leftResult := EvaluateTrace(left)
	rightResult := EvaluateTrace(right)

	cmp := CompareResult{
		Left:  leftResult,
		Right: rightResult,
		Delta: Delta{
			Overall:     round2(rightResult.Overall - leftResult.Overall),
			Consistency: round2(rightResult.Consistency - leftResult.Consistency),
			Logic:       round2(rightResult.Dimensions.Logic - leftResult.Dimensions.Logic),
			Evidence:    round2(rightResult.Dimensions.Evidence - leftResult.Dimensions.Evidence),
			Rebuttal:    round2(rightResult.Dimensions.Rebuttal - leftResult.Dimensions.Rebuttal),
			Clarity:     round2(rightResult.Dimensions.Clarity - leftResult.Dimensions.Clarity),
		},
		Winner: CompareTie,
	}
	switch {
	case rightResult.Overall > leftResult.Overall:
		cmp.Winner = CompareRight
	case leftResult.Overall > rightResult.Overall:
		cmp.Winner = CompareLeft
	}

	leftTranscript := left.Transcript()
	rightTranscript := right.Transcript()
	cmp.TranscriptSimilarity = Similarity(leftTranscript, rightTranscript)
	if leftTranscript != rightTranscript {
		cmp.TranscriptDiff = transcriptDiff(leftTranscript, rightTranscript)
	}

	return cmp
}

// Similarity scores how close two transcripts are on a 0.0 to 1.0
// scale, ignoring whitespace differences.
func Similarity(a, b string) float64 {
	return calculateSimilarity(normalizeWhitespace(a), normalizeWhitespace(b))
}

// normalizeWhitespace collapses runs of whitespace to single spaces.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// calculateSimilarity measures the shared fraction of two strings
// using diff-based common text length.
func calculateSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	commonLength := 0
	totalLength := 0
	for _, diff := range diffs {
		totalLength += len(diff.Text)
		if diff.Type == diffmatchpatch.DiffEqual {
			commonLength += len(diff.Text)
		}
	}

	if totalLength == 0 {
		return 1.0
	}
	return float64(commonLength) / float64(totalLength)
}

// transcriptDiff renders a human-readable diff of two transcripts,
// folding long stretches of unchanged context.
func transcriptDiff(left, right string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(left, right, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var result strings.Builder
	result.WriteString("--- left\n")
	result.WriteString("+++ right\n")
	result.WriteString("@@ Differences @@\n")

	for _, diff := range diffs {
		text := diff.Text
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			result.WriteString("+ ")
			result.WriteString(strings.ReplaceAll(text, "\n", "\n+ "))
			result.WriteString("\n")
		case diffmatchpatch.DiffDelete:
			result.WriteString("- ")
			result.WriteString(strings.ReplaceAll(text, "\n", "\n- "))
			result.WriteString("\n")
		case diffmatchpatch.DiffEqual:
			lines := strings.Split(text, "\n")
			if len(lines) > 4 {
				result.WriteString("  " + lines[0] + "\n")
				result.WriteString("  ...\n")
				result.WriteString("  " + lines[len(lines)-1] + "\n")
			} else {
				for _, line := range lines {
					if line != "" {
						result.WriteString("  " + line + "\n")
					}
				}
			}
		}
	}

	return result.String()
}
