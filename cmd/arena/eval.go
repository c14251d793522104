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
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/evals"
	"github.com/teradata-labs/arena/pkg/trace"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score and compare debate traces",
}

var (
	evalSave    bool
	evalJSONOut bool
	evalDBPath  string
)

var evalRunCmd = &cobra.Command{
	Use:   "run [trace.json]",
	Short: "Evaluate a debate trace",
	Long: heredoc.Doc(`
		Score a recorded debate trace on logic, evidence, rebuttal and
		clarity, deterministically and without any model calls. With
		--save the result is stored in the local evaluation database,
		keyed by trace id.
	`),
	Args: cobra.ExactArgs(1),
	RunE: runEvalRun,
}

var evalCompareCmd = &cobra.Command{
	Use:   "compare [left.json] [right.json]",
	Short: "Compare two debate traces",
	Long:  `Evaluate two traces and report score deltas, transcript similarity, and which run performed better.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runEvalCompare,
}

func init() {
	evalRunCmd.Flags().BoolVar(&evalSave, "save", false, "store the result in the evaluation database")
	evalRunCmd.Flags().StringVar(&evalDBPath, "db", "", "evaluation database path (default: $ARENA_DATA_DIR/evals.db)")
	evalRunCmd.Flags().BoolVar(&evalJSONOut, "json", false, "emit the full result as JSON")
	evalCompareCmd.Flags().BoolVar(&evalJSONOut, "json", false, "emit the full result as JSON")

	evalCmd.AddCommand(evalRunCmd)
	evalCmd.AddCommand(evalCompareCmd)
}

func loadTrace(path string) (*trace.DebateTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := trace.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func runEvalRun(cmd *cobra.Command, args []string) error {
	t, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	result := evals.EvaluateTrace(t)

	if evalSave {
		dbPath := evalDBPath
		if dbPath == "" {
			dbPath = filepath.Join(config.GetArenaDataDir(), "evals.db")
		}
		store, err := evals.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Save(cmd.Context(), result)
		if err != nil {
			return err
		}
		fmt.Printf("Saved as evaluation #%d\n", id)
	}

	if evalJSONOut {
		return printJSON(result)
	}

	s := newStyles()
	fmt.Println(s.Header.Render("Evaluation: " + result.TraceID))
	fmt.Printf("Overall:     %.2f\n", result.Overall)
	fmt.Printf("Logic:       %.2f\n", result.Dimensions.Logic)
	fmt.Printf("Evidence:    %.2f\n", result.Dimensions.Evidence)
	fmt.Printf("Rebuttal:    %.2f\n", result.Dimensions.Rebuttal)
	fmt.Printf("Clarity:     %.2f\n", result.Dimensions.Clarity)
	fmt.Printf("Consistency: %.2f\n", result.Consistency)
	if result.Winner != "" && result.ProAverage != nil && result.ConAverage != nil {
		fmt.Printf("Winner:      %s (pro %.2f, con %.2f)\n", result.Winner, *result.ProAverage, *result.ConAverage)
	}
	for _, note := range result.Notes {
		fmt.Println(s.Dim.Render("  " + note))
	}
	return nil
}

func runEvalCompare(cmd *cobra.Command, args []string) error {
	left, err := loadTrace(args[0])
	if err != nil {
		return err
	}
	right, err := loadTrace(args[1])
	if err != nil {
		return err
	}

	result := evals.CompareTraces(left, right)

	if evalJSONOut {
		return printJSON(result)
	}

	s := newStyles()
	fmt.Println(s.Header.Render(fmt.Sprintf("Compare: %s vs %s", result.Left.TraceID, result.Right.TraceID)))
	fmt.Printf("Left overall:  %.2f\n", result.Left.Overall)
	fmt.Printf("Right overall: %.2f\n", result.Right.Overall)
	fmt.Printf("Delta:         %+.2f\n", result.Delta.Overall)
	fmt.Printf("Similarity:    %.2f\n", result.TranscriptSimilarity)
	fmt.Printf("Better run:    %s\n", result.Winner)
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
