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
package dialectic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/arena/pkg/llm/mock"
	"github.com/teradata-labs/arena/pkg/trace"
	"github.com/teradata-labs/arena/pkg/types"
)

func readyOrchestrator(t *testing.T, provider types.LLMProvider, rounds int) *Orchestrator {
	t.Helper()
	o := NewOrchestratorWithObservability(provider, nil, zaptest.NewLogger(t))
	require.NoError(t, o.Setup(context.Background(), SetupConfig{
		Topic:       "技术进步必然造福所有人",
		TotalRounds: rounds,
		Temperature: 0.6,
		Seed:        123,
	}))
	return o
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func eventsOfKind(events []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// scrubVolatile blanks the fields that legitimately differ between two
// otherwise identical runs.
func scrubVolatile(t *testing.T, events []Event) string {
	t.Helper()
	data, err := json.Marshal(events)
	require.NoError(t, err)
	s := regexp.MustCompile(`"timestamp":"[^"]*"`).ReplaceAllString(string(data), `"timestamp":"ts"`)
	s = regexp.MustCompile(`"created_at":"[^"]*"`).ReplaceAllString(s, `"created_at":"ts"`)
	return s
}

func TestSetupClampsRounds(t *testing.T) {
	for requested, want := range map[int]int{
		-3: 5,
		0:  5,
		1:  5,
		5:  5,
		7:  7,
		10: 10,
		99: 10,
	} {
		o := readyOrchestrator(t, mock.NewClient(mock.Config{}), requested)
		assert.Equal(t, want, o.TotalRounds(), "requested %d rounds", requested)
	}
}

func TestSetupValidatesTopic(t *testing.T) {
	o := NewOrchestrator(mock.NewClient(mock.Config{}))

	err := o.Setup(context.Background(), SetupConfig{Topic: "", TotalRounds: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic must be")

	err = o.Setup(context.Background(), SetupConfig{Topic: strings.Repeat("题", 501), TotalRounds: 5})
	require.Error(t, err)
	assert.Equal(t, StateNotStarted, o.State(), "failed setup leaves the orchestrator untouched")
}

func TestSetupRequiresProvider(t *testing.T) {
	o := NewOrchestrator(nil)
	err := o.Setup(context.Background(), SetupConfig{Topic: "t", TotalRounds: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")
}

func TestSetupAccessors(t *testing.T) {
	o := readyOrchestrator(t, mock.NewClient(mock.Config{}), 6)
	assert.Equal(t, StateReady, o.State())
	assert.Equal(t, "技术进步必然造福所有人", o.Topic())
	assert.Equal(t, 6, o.TotalRounds())
	assert.Equal(t, 0, o.CurrentRound())
	assert.NotNil(t, o.Memory())
}

func TestRunBeforeSetupEmitsError(t *testing.T) {
	o := NewOrchestrator(mock.NewClient(mock.Config{}))

	events, err := o.Run(context.Background())
	require.Error(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Kind)
	assert.Contains(t, events[0].Message, "辩证法引擎未初始化")
	assert.Equal(t, StateNotStarted, o.State(), "a rejected run does not change state")
}

func TestRunFullProtocol(t *testing.T) {
	o := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5)

	events, err := o.Run(context.Background())
	require.NoError(t, err)

	want := []EventKind{EventOpening}
	for r := 1; r <= 5; r++ {
		want = append(want, EventRoundStart, EventThesis, EventAntithesis, EventSynthesis, EventFallacy, EventTreeUpdate)
	}
	want = append(want, EventComplete)
	require.Equal(t, want, kinds(events), "the per-round protocol is fixed")

	assert.Equal(t, "技术进步必然造福所有人", events[0].Topic)
	assert.Equal(t, 5, events[0].TotalRounds)
	for _, ev := range events {
		assert.False(t, ev.Timestamp.IsZero(), "every event is stamped")
	}

	starts := eventsOfKind(events, EventRoundStart)
	theses := eventsOfKind(events, EventThesis)
	antitheses := eventsOfKind(events, EventAntithesis)
	syntheses := eventsOfKind(events, EventSynthesis)
	updates := eventsOfKind(events, EventTreeUpdate)
	require.Len(t, starts, 5)
	require.Len(t, syntheses, 5)

	assert.Equal(t, "技术进步必然造福所有人", starts[0].Thesis, "round one opens from the topic")
	for i := range starts {
		round := i + 1
		assert.Equal(t, round, starts[i].Round)
		assert.Equal(t, SideThesis, theses[i].Side)
		assert.NotEmpty(t, theses[i].Content)
		assert.NotEmpty(t, theses[i].Thinking)
		assert.Equal(t, SideAntithesis, antitheses[i].Side)
		assert.NotEmpty(t, antitheses[i].Content)
		assert.Equal(t, SideSynthesis, syntheses[i].Side)
		assert.True(t, strings.HasPrefix(syntheses[i].Content, fmt.Sprintf("经过第%d轮交锋，", round)),
			"round %d synthesis names its round: %q", round, syntheses[i].Content)
		assert.Contains(t, syntheses[i].Thinking, "key_tensions")
		assert.Contains(t, syntheses[i].Thinking, "confidence")

		assert.Len(t, updates[i].Nodes, 3*round, "each round adds three nodes")
		wantEdges := 4 * round
		if round == 5 {
			wantEdges = 19
		}
		assert.Len(t, updates[i].Edges, wantEdges)

		if round < 5 {
			assert.Equal(t, syntheses[i].Content, starts[i+1].Thesis, "the synthesis ascends into the next thesis")
		}
	}

	complete := events[len(events)-1]
	assert.Equal(t, syntheses[4].Content, complete.FinalThesis)
	require.NotNil(t, complete.Trace)
	assert.Equal(t, "技术进步必然造福所有人", complete.Trace.Topic)
	assert.Equal(t, 5, complete.Trace.TotalRounds)
	require.Len(t, complete.Trace.Rounds, 5)
	assert.Equal(t, theses[0].Content, complete.Trace.Rounds[0].Thesis,
		"round records store the argument, not the proposition")
	assert.Equal(t, complete.FinalThesis, complete.Trace.FinalThesis)
	require.NotNil(t, complete.Trace.RunConfig)
	assert.Equal(t, "mock", complete.Trace.RunConfig.Provider)
	require.NotNil(t, complete.Tree)
	assert.Len(t, complete.Tree.Nodes, 15)
	assert.Len(t, complete.Tree.Edges, 19)

	assert.Equal(t, StateCompleted, o.State())
	assert.Equal(t, 5, o.CurrentRound())
}

func TestRunIsReproducible(t *testing.T) {
	first, err := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5).Run(context.Background())
	require.NoError(t, err)
	second, err := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scrubVolatile(t, first), scrubVolatile(t, second),
		"same seed and temperature replay the same session")
}

func TestRunStreamMatchesRun(t *testing.T) {
	collected, err := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5).Run(context.Background())
	require.NoError(t, err)

	var streamed []Event
	for ev := range readyOrchestrator(t, mock.NewClient(mock.Config{}), 5).RunStream(context.Background()) {
		streamed = append(streamed, ev)
	}

	assert.Equal(t, scrubVolatile(t, collected), scrubVolatile(t, streamed))
}

func TestRunDegradesWhenProviderFails(t *testing.T) {
	p := &scriptedProvider{err: errors.New("provider down")}
	o := readyOrchestrator(t, p, 5)

	events, err := o.Run(context.Background())
	require.NoError(t, err, "provider outages degrade turn by turn instead of aborting")

	assert.Empty(t, eventsOfKind(events, EventError))
	require.Len(t, events, 32)

	theses := eventsOfKind(events, EventThesis)
	antitheses := eventsOfKind(events, EventAntithesis)
	syntheses := eventsOfKind(events, EventSynthesis)
	fallacies := eventsOfKind(events, EventFallacy)
	assert.Equal(t, "[正题生成失败: provider down]", theses[0].Content)
	assert.Equal(t, "[反题生成失败: provider down]", antitheses[0].Content)
	assert.Equal(t, fallbackSynthesis, syntheses[0].Content)
	assert.Empty(t, fallacies[0].Items)

	assert.Equal(t, StateCompleted, o.State())
}

func TestRunTwiceEmitsError(t *testing.T) {
	o := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5)
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	events, err := o.Run(context.Background())
	require.Error(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Kind)
	assert.Equal(t, StateCompleted, o.State(), "a finished session stays finished")
}

func TestRunHonorsCancellation(t *testing.T) {
	o := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := o.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, events, 1, "only the opening precedes the first cancellation check")
	assert.Equal(t, EventOpening, events[0].Kind)
	assert.Equal(t, StateInProgress, o.State(), "a cancelled run never completes")
	assert.Equal(t, 0, o.CurrentRound())
}

func TestBuildTraceAttachesRunConfig(t *testing.T) {
	o := readyOrchestrator(t, mock.NewClient(mock.Config{}), 5)
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	tr := o.BuildTrace()
	require.NotNil(t, tr.RunConfig)
	assert.Equal(t, trace.RunConfig{
		Provider:    "mock",
		Model:       "mock-v1",
		Temperature: 0.6,
		Seed:        123,
		MaxRounds:   5,
	}, *tr.RunConfig)
	require.Len(t, tr.Rounds, 5)
	assert.Equal(t, tr.Rounds[4].Synthesis, tr.FinalThesis)
	assert.Equal(t, tr.Rounds[0].Timestamp, tr.CreatedAt)
}
