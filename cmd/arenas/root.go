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

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "arenas",
	Short:   "Arena Server - debate orchestration over HTTP and SSE",
	Long:    `Arena Server (arenas) exposes debate and dialectic sessions over an HTTP API with Server-Sent Event streams, persists transcripts to SQL, and sweeps finished sessions on a schedule.`,
	Version: version.Get(),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Custom help template with Support at bottom
	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}

Quick Start:
  1. Generate a config: arenas config example > ~/.arena/arenas.yaml
  2. Start the server:  arenas serve
  3. Stream a debate:   curl -N 'localhost:5000/api/v1/debate/stream?topic=remote+work&provider=mock'

Support:
  GitHub: https://github.com/teradata-labs/arena/issues
  Documentation: https://github.com/teradata-labs/arena
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $ARENA_DATA_DIR/arenas.yaml)")
}

func main() {
	Execute()
}
