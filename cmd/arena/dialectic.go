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
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/dialectic"
	"github.com/teradata-labs/arena/pkg/observability"
)

var dialecticCmd = &cobra.Command{
	Use:   "dialectic",
	Short: "Refine a thesis through antithesis and synthesis",
}

var dialecticRunFlags struct {
	topic       string
	rounds      int
	provider    string
	model       string
	temperature float64
	seed        int64
	apiKey      string
	jsonOut     bool
	treeOut     string
	verbose     bool
}

var dialecticRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a dialectic session locally",
	Long: heredoc.Doc(`
		Evolve a thesis over several rounds. Each round an opponent
		attacks the current thesis, a fallacy scan flags weak spots,
		and a synthesis folds the surviving points into the next
		thesis. Rounds below 5 are raised to 5 and above 10 lowered
		to 10.
	`),
	Example: heredoc.Doc(`
		arena dialectic run --topic "AI 将取代多数人类工作"
		arena dialectic run --topic "microservices" --rounds 7 --provider mock --seed 42
		arena dialectic run --topic "microservices" --tree tree.json
	`),
	RunE: runDialectic,
}

func init() {
	f := dialecticRunCmd.Flags()
	f.StringVar(&dialecticRunFlags.topic, "topic", "", "initial thesis (1 to 500 characters)")
	f.IntVar(&dialecticRunFlags.rounds, "rounds", 0, "number of rounds (clamped to 5-10)")
	f.StringVar(&dialecticRunFlags.provider, "provider", "", "LLM provider (openai, deepseek, gemini, anthropic, bedrock, mock)")
	f.StringVar(&dialecticRunFlags.model, "model", "", "model override for the chosen provider")
	f.Float64Var(&dialecticRunFlags.temperature, "temperature", -1, "sampling temperature override")
	f.Int64Var(&dialecticRunFlags.seed, "seed", -1, "random seed for reproducible runs")
	f.StringVar(&dialecticRunFlags.apiKey, "api-key", "", "API key (overrides env and keyring)")
	f.BoolVar(&dialecticRunFlags.jsonOut, "json", false, "emit raw JSON event lines instead of styled output")
	f.StringVar(&dialecticRunFlags.treeOut, "tree", "", "write the evolution tree JSON to this file")
	f.BoolVar(&dialecticRunFlags.verbose, "verbose", false, "log orchestrator internals to stderr")

	dialecticCmd.AddCommand(dialecticRunCmd)
}

func runDialectic(cmd *cobra.Command, args []string) error {
	// The debate request resolver supplies defaults and provider
	// validation; the orchestrator clamps rounds itself.
	req := config.RunRequest{
		Topic:    dialecticRunFlags.topic,
		Provider: dialecticRunFlags.provider,
		Model:    dialecticRunFlags.model,
	}
	if cmd.Flags().Changed("temperature") {
		t := dialecticRunFlags.temperature
		req.Temperature = &t
	}
	if cmd.Flags().Changed("seed") {
		s := dialecticRunFlags.seed
		req.Seed = &s
	}
	spec, err := req.Resolve()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	tracer := observability.Tracer(observability.NewNoOpTracer())
	if dialecticRunFlags.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		tracer = observability.NewLogTracer(logger)
	}

	providers, err := newLocalFactory(spec, dialecticRunFlags.apiKey, tracer)
	if err != nil {
		return err
	}
	provider, err := providers.CreateProvider(spec.Provider, spec.Model)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := dialectic.NewOrchestratorWithObservability(provider, tracer, logger)
	if err := o.Setup(ctx, dialectic.SetupConfig{
		Topic:       spec.Topic,
		TotalRounds: dialecticRunFlags.rounds,
		Temperature: spec.Temperature,
		Seed:        spec.Seed,
	}); err != nil {
		return err
	}

	s := newStyles()
	for ev := range o.RunStream(ctx) {
		if dialecticRunFlags.jsonOut {
			line, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
			continue
		}
		renderDialecticEvent(s, ev)
	}

	if o.State() != dialectic.StateCompleted {
		return fmt.Errorf("dialectic session did not complete")
	}

	if dialecticRunFlags.treeOut != "" {
		data, err := json.MarshalIndent(o.Memory().BuildTree(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(dialecticRunFlags.treeOut, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Evolution tree written to %s\n", dialecticRunFlags.treeOut)
	}
	return nil
}

func renderDialecticEvent(s styles, ev dialectic.Event) {
	switch ev.Kind {
	case dialectic.EventOpening:
		fmt.Println(s.Header.Render(fmt.Sprintf("Dialectic: %s (%d rounds)", ev.Topic, ev.TotalRounds)))
	case dialectic.EventRoundStart:
		fmt.Println()
		fmt.Println(s.Round.Render(fmt.Sprintf("── Round %d ──", ev.Round)))
		fmt.Println(s.Dim.Render("Thesis: " + ev.Thesis))
	case dialectic.EventThesis:
		fmt.Printf("\n%s:\n%s\n", s.Pro.Render("Defense"), ev.Content)
	case dialectic.EventAntithesis:
		fmt.Printf("\n%s:\n%s\n", s.Con.Render("Attack"), ev.Content)
	case dialectic.EventSynthesis:
		fmt.Printf("\n%s:\n%s\n", s.Jury.Render("Synthesis"), ev.Content)
	case dialectic.EventFallacy:
		for _, f := range ev.Items {
			fmt.Println(s.Dim.Render(fmt.Sprintf("  fallacy [%s/%s] %s: %q", f.Side, f.Severity, f.Type, f.Quote)))
		}
	case dialectic.EventComplete:
		fmt.Println()
		fmt.Println(s.Verdict.Render("Final thesis:\n" + ev.FinalThesis))
	case dialectic.EventError:
		fmt.Fprintln(os.Stderr, s.ErrStyle.Render("Error: "+ev.Message))
	}
}
