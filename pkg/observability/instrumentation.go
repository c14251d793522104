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
package observability

// Standard span names for consistency across arena.
// Use these constants instead of hardcoding strings.
const (
	// Agent spans
	SpanAgentThink    = "agent.think"
	SpanAgentAnalyze  = "agent.analyze"
	SpanAgentGenerate = "agent.generate"

	// LLM spans
	SpanLLMChat     = "llm.chat"
	SpanLLMStream   = "llm.stream"
	SpanLLMTokenize = "llm.tokenize" // #nosec G101 -- not a credential, just span name

	// Message bus spans
	SpanBusPublish   = "bus.publish"
	SpanBusSubscribe = "bus.subscribe"
	SpanBusBroadcast = "bus.broadcast"

	// Debate spans
	SpanDebateExecution  = "debate.execution"
	SpanDebateRound      = "debate.round"
	SpanDebateArgument   = "debate.argument"
	SpanDebateEvaluation = "debate.evaluation"
	SpanDebateVerdict    = "debate.verdict"

	// Dialectic spans
	SpanDialecticExecution = "dialectic.execution"
	SpanDialecticRound     = "dialectic.round"
	SpanDialecticObserve   = "dialectic.observe"
	SpanDialecticSynthesis = "dialectic.synthesis"

	// Argument graph spans
	SpanGraphBuild   = "graph.build"
	SpanGraphAnalyze = "graph.analyze"

	// Evaluation spans
	SpanEvalTrace   = "eval.trace"
	SpanEvalCompare = "eval.compare"

	// Storage spans
	SpanStorageSave = "storage.save"
	SpanStorageLoad = "storage.load"
)

// Standard metric names for consistency.
const (
	// LLM metrics
	MetricLLMCalls        = "llm.calls.total"
	MetricLLMLatency      = "llm.latency"
	MetricLLMTokensInput  = "llm.tokens.input"  // #nosec G101 -- not a credential, just metric name
	MetricLLMTokensOutput = "llm.tokens.output" // #nosec G101 -- not a credential, just metric name
	MetricLLMCost         = "llm.cost"
	MetricLLMErrors       = "llm.errors.total"

	// Streaming metrics
	MetricLLMStreamingTTFT       = "llm.streaming.ttft_ms"
	MetricLLMStreamingThroughput = "llm.streaming.throughput"
	MetricLLMStreamingChunks     = "llm.streaming.chunks.total"

	// Bus metrics
	MetricBusPublished = "bus.published.total"
	MetricBusDropped   = "bus.dropped.total"

	// Debate metrics
	MetricDebateRounds    = "debate.rounds.total"
	MetricDebateDuration  = "debate.duration"
	MetricDebateFallbacks = "debate.fallbacks.total"

	// Storage metrics
	MetricStorageWrites  = "storage.writes.total"
	MetricStorageRetries = "storage.retries.total"
)

// Standard attribute names for consistency.
// Use these constants for span and event attributes.
const (
	// Session context
	AttrSessionID = "session.id"
	AttrTraceID   = "trace.id"
	AttrSpanID    = "span.id"

	// LLM attributes
	AttrLLMProvider    = "llm.provider"
	AttrLLMModel       = "llm.model"
	AttrLLMTemperature = "llm.temperature"
	AttrLLMMaxTokens   = "llm.max_tokens" // #nosec G101 -- not a credential, just attribute name

	// Streaming attributes
	AttrLLMStreaming  = "llm.streaming"
	AttrLLMTTFT       = "llm.ttft_ms"
	AttrLLMThroughput = "llm.streaming.throughput"

	// Debate attributes
	AttrDebateTopic  = "debate.topic"
	AttrDebateRound  = "debate.round"
	AttrDebateSide   = "debate.side"
	AttrDebateWinner = "debate.winner"
	AttrDebateMargin = "debate.margin"

	// Agent attributes
	AttrAgentID   = "agent.id"
	AttrAgentRole = "agent.role"

	// Bus attributes
	AttrMessageKind     = "message.kind"
	AttrMessageSender   = "message.sender"
	AttrMessageReceiver = "message.receiver"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
	AttrErrorStack   = "error.stack"
)
