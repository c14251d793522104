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
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/r3labs/sse/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/costing"
	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/observability"
	"github.com/teradata-labs/arena/pkg/trace"
)

var debateCmd = &cobra.Command{
	Use:   "debate",
	Short: "Run and watch pro/con debates",
}

var debateRunFlags struct {
	topic       string
	rounds      int
	provider    string
	model       string
	temperature float64
	seed        int64
	preset      string
	proProvider string
	proModel    string
	conProvider string
	conModel    string
	apiKey      string
	scenario    string
	jsonOut     bool
	traceOut    string
	verbose     bool
}

var debateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a debate locally, round by round",
	Long: heredoc.Doc(`
		Run a full debate in the terminal. Two debater agents argue the
		topic over the requested rounds while a jury scores each round
		and issues a final verdict.

		Providers that need an API key resolve it from the --api-key
		flag, the provider's environment variable, or the system
		keyring, in that order. Use --provider mock for an offline,
		reproducible run.
	`),
	Example: heredoc.Doc(`
		arena debate run --topic "AI 将取代多数人类工作"
		arena debate run --topic "remote work" --rounds 3 --provider mock --seed 42
		arena debate run --topic "open source" --pro-provider openai --con-provider anthropic
		arena debate run --scenario debates/climate.yaml --json
	`),
	RunE: runDebate,
}

var debateWatchCmd = &cobra.Command{
	Use:   "watch [session-id]",
	Short: "Attach to a debate running on an arena server",
	Long: heredoc.Doc(`
		Subscribe to the event stream of a background debate session
		created with POST /api/v1/debates. Events are printed as they
		arrive, styled like a local run, or as raw JSON lines with
		--json.
	`),
	Args: cobra.ExactArgs(1),
	RunE: runDebateWatch,
}

var (
	watchServer  string
	watchJSONOut bool
)

func init() {
	f := debateRunCmd.Flags()
	f.StringVar(&debateRunFlags.topic, "topic", "", "debate topic (1 to 500 characters)")
	f.IntVar(&debateRunFlags.rounds, "rounds", 0, "number of rounds (1-10, default 3)")
	f.StringVar(&debateRunFlags.provider, "provider", "", "LLM provider (openai, deepseek, gemini, anthropic, bedrock, mock)")
	f.StringVar(&debateRunFlags.model, "model", "", "model override for the chosen provider")
	f.Float64Var(&debateRunFlags.temperature, "temperature", -1, "sampling temperature override")
	f.Int64Var(&debateRunFlags.seed, "seed", -1, "random seed for reproducible runs")
	f.StringVar(&debateRunFlags.preset, "preset", "", "named preset (basic, quality, budget)")
	f.StringVar(&debateRunFlags.proProvider, "pro-provider", "", "provider fielded for the pro side")
	f.StringVar(&debateRunFlags.proModel, "pro-model", "", "model fielded for the pro side")
	f.StringVar(&debateRunFlags.conProvider, "con-provider", "", "provider fielded for the con side")
	f.StringVar(&debateRunFlags.conModel, "con-model", "", "model fielded for the con side")
	f.StringVar(&debateRunFlags.apiKey, "api-key", "", "API key (overrides env and keyring)")
	f.StringVar(&debateRunFlags.scenario, "scenario", "", "YAML scenario file; flags override its values")
	f.BoolVar(&debateRunFlags.jsonOut, "json", false, "emit raw JSON event lines instead of styled output")
	f.StringVar(&debateRunFlags.traceOut, "out", "", "write the debate trace JSON to this file")
	f.BoolVar(&debateRunFlags.verbose, "verbose", false, "log orchestrator internals to stderr")

	debateWatchCmd.Flags().StringVarP(&watchServer, "server", "s", "http://localhost:5000", "arena server base URL")
	debateWatchCmd.Flags().BoolVar(&watchJSONOut, "json", false, "emit raw JSON event lines")

	debateCmd.AddCommand(debateRunCmd)
	debateCmd.AddCommand(debateWatchCmd)
}

// resolveRunSpec folds the scenario file and command flags into a
// validated RunSpec. Flags win over scenario values.
func resolveRunSpec(cmd *cobra.Command) (config.RunSpec, error) {
	req := config.RunRequest{}
	if debateRunFlags.scenario != "" {
		loaded, err := config.LoadScenario(debateRunFlags.scenario)
		if err != nil {
			return config.RunSpec{}, err
		}
		req = *loaded
	}

	if debateRunFlags.topic != "" {
		req.Topic = debateRunFlags.topic
	}
	if debateRunFlags.rounds != 0 {
		req.Rounds = debateRunFlags.rounds
	}
	if debateRunFlags.provider != "" {
		req.Provider = debateRunFlags.provider
	}
	if debateRunFlags.model != "" {
		req.Model = debateRunFlags.model
	}
	if debateRunFlags.preset != "" {
		req.Preset = debateRunFlags.preset
	}
	if cmd.Flags().Changed("temperature") {
		t := debateRunFlags.temperature
		req.Temperature = &t
	}
	if cmd.Flags().Changed("seed") {
		s := debateRunFlags.seed
		req.Seed = &s
	}
	if debateRunFlags.proProvider != "" || debateRunFlags.proModel != "" {
		req.Pro = &config.SideOverride{Provider: debateRunFlags.proProvider, Model: debateRunFlags.proModel}
	}
	if debateRunFlags.conProvider != "" || debateRunFlags.conModel != "" {
		req.Con = &config.SideOverride{Provider: debateRunFlags.conProvider, Model: debateRunFlags.conModel}
	}

	return req.Resolve()
}

// newLocalFactory builds a provider factory for a resolved run. Each
// fielded provider's key comes from the explicit flag value, the
// provider's environment variable, or the OS keyring, in that order.
func newLocalFactory(spec config.RunSpec, explicitKey string, tracer observability.Tracer) (*factory.ProviderFactory, error) {
	cfg := factory.FactoryConfig{
		DefaultProvider: spec.Provider,
		DefaultModel:    spec.Model,
		Temperature:     spec.Temperature,
		Seed:            spec.Seed,
		Tracer:          tracer,
	}

	for _, provider := range []string{spec.Provider, spec.Pro.Provider, spec.Con.Provider} {
		key, err := config.ResolveAPIKey(provider, explicitKey)
		if err != nil {
			return nil, err
		}
		switch provider {
		case "openai":
			cfg.OpenAIAPIKey = key
		case "deepseek":
			cfg.DeepSeekAPIKey = key
		case "gemini":
			cfg.GeminiAPIKey = key
		case "anthropic":
			cfg.AnthropicAPIKey = key
		}
	}

	return factory.NewProviderFactory(cfg), nil
}

func runDebate(cmd *cobra.Command, args []string) error {
	spec, err := resolveRunSpec(cmd)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	tracer := observability.Tracer(observability.NewNoOpTracer())
	if debateRunFlags.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		tracer = observability.NewLogTracer(logger)
	}

	providers, err := newLocalFactory(spec, debateRunFlags.apiKey, tracer)
	if err != nil {
		return err
	}
	jury, err := providers.CreateProvider(spec.Provider, spec.Model)
	if err != nil {
		return err
	}
	pro, err := providers.CreateProvider(spec.Pro.Provider, spec.Pro.Model)
	if err != nil {
		return fmt.Errorf("pro provider: %w", err)
	}
	con, err := providers.CreateProvider(spec.Con.Provider, spec.Con.Model)
	if err != nil {
		return fmt.Errorf("con provider: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := debate.NewOrchestratorWithObservability(jury, tracer, logger)
	if err := o.Setup(ctx, debate.SetupConfig{
		Topic:       spec.Topic,
		TotalRounds: spec.Rounds,
		Temperature: spec.Temperature,
		Seed:        spec.Seed,
		ProProvider: pro,
		ConProvider: con,
	}); err != nil {
		return err
	}

	s := newStyles()
	for ev := range o.RunStream(ctx) {
		if debateRunFlags.jsonOut {
			line, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
			continue
		}
		renderDebateEvent(s, ev)
	}

	if o.State() != debate.StateCompleted {
		return fmt.Errorf("debate did not complete")
	}

	if debateRunFlags.traceOut != "" {
		return writeTrace(o, spec)
	}
	return nil
}

// writeTrace exports the finished debate as a trace file with cost
// estimates attached.
func writeTrace(o *debate.Orchestrator, spec config.RunSpec) error {
	tr := trace.FromDebate(o.Memory().FullState(), o.Bus().ExportHistory(), spec.TraceRunConfig())
	tr.Cost = costing.EstimateTrace(tr)
	data, err := tr.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(debateRunFlags.traceOut, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Trace written to %s\n", debateRunFlags.traceOut)
	return nil
}

// renderDebateEvent prints one styled event. Streamed argument chunks
// are suppressed; the complete text arrives on argument_complete.
func renderDebateEvent(s styles, ev debate.Event) {
	switch ev.Kind {
	case debate.EventOpening:
		fmt.Println(s.Header.Render(fmt.Sprintf("Debate: %s (%d rounds)", ev.Topic, ev.TotalRounds)))
	case debate.EventRoundStart:
		fmt.Println()
		fmt.Println(s.Round.Render(fmt.Sprintf("── Round %d ──", ev.Round)))
	case debate.EventThinking:
		fmt.Println(s.Dim.Render(fmt.Sprintf("  %s is thinking...", s.sideLabel(ev.Side))))
	case debate.EventArgumentComplete:
		fmt.Printf("\n%s (%s):\n%s\n", s.sideLabel(ev.Side), ev.Name, ev.Content)
	case debate.EventEvaluation:
		if e := ev.Evaluation; e != nil {
			fmt.Println(s.Jury.Render(fmt.Sprintf(
				"  Jury: pro %.1f, con %.1f, round winner: %s",
				e.ProScore.Total(), e.ConScore.Total(), e.RoundWinner)))
			if e.Commentary != "" {
				fmt.Println(s.Dim.Render("  " + e.Commentary))
			}
		}
	case debate.EventStandings:
		if st := ev.Standings; st != nil {
			fmt.Println(s.Dim.Render(fmt.Sprintf(
				"  Standings: pro %.1f - con %.1f (leader: %s)",
				st.ProTotalScore, st.ConTotalScore, st.Leader)))
		}
	case debate.EventVerdict:
		if v := ev.Verdict; v != nil {
			var b strings.Builder
			fmt.Fprintf(&b, "Winner: %s (%s)\n", titleCaser.String(v.Winner), v.Margin)
			fmt.Fprintf(&b, "Final score: pro %.1f - con %.1f\n", v.ProTotalScore, v.ConTotalScore)
			b.WriteString(v.Summary)
			fmt.Println()
			fmt.Println(s.Verdict.Render(b.String()))
		}
	case debate.EventError:
		fmt.Fprintln(os.Stderr, s.ErrStyle.Render("Error: "+ev.Message))
	}
}

func runDebateWatch(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := sse.NewClient(strings.TrimRight(watchServer, "/") + "/api/v1/debates/" + sessionID + "/events")
	s := newStyles()

	err := client.SubscribeWithContext(ctx, sessionID, func(msg *sse.Event) {
		if len(msg.Data) == 0 {
			return
		}
		if watchJSONOut {
			fmt.Println(string(msg.Data))
			return
		}
		var ev debate.Event
		if json.Unmarshal(msg.Data, &ev) != nil {
			return
		}
		renderDebateEvent(s, ev)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to subscribe to %s: %w", watchServer, err)
	}
	return nil
}
