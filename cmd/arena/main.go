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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/arena/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "arena",
	Short:   "Arena - adversarial multi-agent debates",
	Long:    `Arena runs structured pro/con debates and dialectic refinement between LLM agents, scores every round with a jury, and records portable traces for later evaluation.`,
	Version: version.Get(),
}

func init() {
	// Custom help template with Support at bottom
	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}

Quick Start:
  1. Save an API key: arena keys set openai
  2. Run a debate:    arena debate run --topic "AI 将取代多数人类工作"
  3. Or try offline:  arena debate run --topic "remote work" --provider mock

Support:
  GitHub: https://github.com/teradata-labs/arena/issues
  Documentation: https://github.com/teradata-labs/arena
`)

	rootCmd.AddCommand(debateCmd)
	rootCmd.AddCommand(dialecticCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(keysCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
