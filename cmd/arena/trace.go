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

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/teradata-labs/arena/pkg/costing"
	"github.com/teradata-labs/arena/pkg/graph"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect recorded debate traces",
}

var (
	traceTranscript bool
	traceMermaid    bool
	traceCost       bool
)

var traceShowCmd = &cobra.Command{
	Use:   "show [trace.json]",
	Short: "Pretty-print a debate trace",
	Long: `Print a trace as syntax-highlighted JSON, or as a readable transcript, an argument-graph Mermaid diagram, or a cost estimate.`,
	Args: cobra.ExactArgs(1),
	RunE: runTraceShow,
}

func init() {
	traceShowCmd.Flags().BoolVar(&traceTranscript, "transcript", false, "print the readable transcript instead of JSON")
	traceShowCmd.Flags().BoolVar(&traceMermaid, "mermaid", false, "print the argument graph as a Mermaid diagram")
	traceShowCmd.Flags().BoolVar(&traceCost, "cost", false, "print the token and cost estimate")

	traceCmd.AddCommand(traceShowCmd)
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	t, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	switch {
	case traceTranscript:
		fmt.Println(t.Transcript())
		return nil
	case traceMermaid:
		fmt.Println(graph.FromTrace(t).Mermaid())
		return nil
	case traceCost:
		est := costing.EstimateTrace(t)
		return printJSON(est)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(string(data))
		return nil
	}
	if err := quick.Highlight(os.Stdout, string(data)+"\n", "json", "terminal256", "monokai"); err != nil {
		// Fall back to plain output rather than failing the command.
		fmt.Println(string(data))
	}
	return nil
}
