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

// Package mock provides a fully offline, deterministic LLM provider.
//
// The client never performs network I/O. Each call derives a 64-bit seed
// from (seed, temperature, model, messages) and renders a canonical
// response for the recognised prompt shape: debater analysis and argument
// prompts, evaluator round and verdict prompts, and the dialectic
// thesis/antithesis/synthesis/fallacy prompts. Two calls with identical
// inputs return byte-identical output, which makes whole debate runs
// reproducible in tests and demos.
package mock

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"

	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

// Default mock configuration values.
const (
	DefaultMockModel  = "mock-v1"
	DefaultChunkRunes = 24
)

// Config holds configuration for the mock client.
type Config struct {
	// Model label reported by Model() and mixed into the per-call seed.
	// Default: "mock-v1"
	Model string

	// Temperature used when ChatOptions leave it unset (negative).
	// Default: 0.7
	Temperature float64

	// Seed used when ChatOptions carry no seed. Zero is a valid seed;
	// it simply hashes as zero.
	Seed int64

	// ChunkRunes is the streaming chunk size in runes. Default: 24
	ChunkRunes int
}

// Client implements the LLMProvider interface without any backend.
type Client struct {
	model       string
	temperature float64
	seed        int64
	chunkRunes  int
}

// NewClient creates a new mock client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultMockModel
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.ChunkRunes <= 0 {
		config.ChunkRunes = DefaultChunkRunes
	}

	return &Client{
		model:       config.Model,
		temperature: config.Temperature,
		seed:        config.Seed,
		chunkRunes:  config.ChunkRunes,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "mock"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat renders the canonical response for the prompt shape.
// MaxTokens is accepted but never binding; canonical responses are short.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.Message, opts *llmtypes.ChatOptions) (*llmtypes.LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mock provider: %w", err)
	}

	seed := c.deriveSeed(messages, opts)
	shape := classifyPrompt(messages)
	content := render(shape, seed, lastUserContent(messages))

	return c.buildResponse(shape, content, messages), nil
}

// ChatStream emits the same canonical response as Chat, split into
// fixed-size rune chunks so streaming boundaries are reproducible.
func (c *Client) ChatStream(ctx context.Context, messages []llmtypes.Message,
	opts *llmtypes.ChatOptions, tokenCallback llmtypes.TokenCallback) (*llmtypes.LLMResponse, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mock provider: %w", err)
	}

	seed := c.deriveSeed(messages, opts)
	shape := classifyPrompt(messages)
	content := render(shape, seed, lastUserContent(messages))

	runes := []rune(content)
	for i := 0; i < len(runes); i += c.chunkRunes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mock provider: %w", err)
		}
		end := i + c.chunkRunes
		if end > len(runes) {
			end = len(runes)
		}
		if tokenCallback != nil {
			tokenCallback(string(runes[i:end]))
		}
	}

	return c.buildResponse(shape, content, messages), nil
}

// deriveSeed hashes (seed, temperature, model, messages) into the per-call
// seed. ChatOptions override the configured seed and temperature; the zero
// values defer to the client configuration, matching the other providers.
func (c *Client) deriveSeed(messages []llmtypes.Message, opts *llmtypes.ChatOptions) uint64 {
	seed := c.seed
	temperature := c.temperature
	if opts != nil {
		if opts.Seed != 0 {
			seed = opts.Seed
		}
		if opts.Temperature >= 0 {
			temperature = opts.Temperature
		}
	}

	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(temperature))
	h.Write(buf[:])
	h.Write([]byte(c.model))
	for _, m := range messages {
		// Separators keep role/content concatenations unambiguous.
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return h.Sum64()
}

func (c *Client) buildResponse(shape promptShape, content string, messages []llmtypes.Message) *llmtypes.LLMResponse {
	inputTokens := 0
	for _, m := range messages {
		inputTokens += estimateTokens(m.Content)
	}
	outputTokens := estimateTokens(content)

	return &llmtypes.LLMResponse{
		Content:    content,
		StopReason: "end_turn",
		Usage: llmtypes.Usage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
			CostUSD:      0,
		},
		Metadata: map[string]interface{}{
			"provider": "mock",
			"shape":    string(shape),
		},
	}
}

// estimateTokens uses the coarse 4-characters-per-token heuristic.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// ============================================================================
// Prompt classification
// ============================================================================

type promptShape string

const (
	shapeOpeningAnalysis    promptShape = "opening_analysis"
	shapeCounterAnalysis    promptShape = "counter_analysis"
	shapeArgument           promptShape = "argument"
	shapeRoundEvaluation    promptShape = "round_evaluation"
	shapeFinalVerdict       promptShape = "final_verdict"
	shapeThesisAnalysis     promptShape = "thesis_analysis"
	shapeThesisArgument     promptShape = "thesis_argument"
	shapeAntithesisAnalysis promptShape = "antithesis_analysis"
	shapeAntithesisArgument promptShape = "antithesis_argument"
	shapeSynthesis          promptShape = "synthesis"
	shapeFallacy            promptShape = "fallacy_scan"
	shapeGeneric            promptShape = "generic"
)

// shapeMarkers maps prompt-template phrases to shapes. Order matters:
// rendered output gets embedded in later prompts (the evaluation prompt
// quotes arguments, the verdict prompt quotes evaluations), so the outer
// shapes are tested before the inner ones.
var shapeMarkers = []struct {
	shape  promptShape
	marker string
}{
	{shapeFinalVerdict, "最终裁决"},
	{shapeRoundEvaluation, "请公正评估第"},
	{shapeFallacy, "检测以下两段论证中的逻辑谬误"},
	{shapeSynthesis, "综合正题与反题形成合题"},
	{shapeAntithesisAnalysis, "提出对当前正题的否定"},
	{shapeAntithesisArgument, "输出反题论证"},
	{shapeThesisAnalysis, "阐明并强化当前正题"},
	{shapeThesisArgument, "输出一段正题论证"},
	{shapeOpeningAnalysis, "这是辩论的开场"},
	{shapeCounterAnalysis, "制定反驳策略"},
	{shapeArgument, "请直接输出你的发言内容"},
}

func classifyPrompt(messages []llmtypes.Message) promptShape {
	prompt := lastUserContent(messages)
	for _, m := range shapeMarkers {
		if strings.Contains(prompt, m.marker) {
			return m.shape
		}
	}
	return shapeGeneric
}

// lastUserContent returns the most recent user message, falling back to
// the concatenated conversation when no user turn exists.
func lastUserContent(messages []llmtypes.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ============================================================================
// Canonical rendering
// ============================================================================

func render(shape promptShape, seed uint64, prompt string) string {
	switch shape {
	case shapeOpeningAnalysis:
		return renderOpeningAnalysis(seed, prompt)
	case shapeCounterAnalysis:
		return renderCounterAnalysis(seed)
	case shapeArgument:
		return renderArgument(seed, prompt)
	case shapeRoundEvaluation:
		return renderRoundEvaluation(seed)
	case shapeFinalVerdict:
		return renderFinalVerdict(seed, prompt)
	case shapeThesisAnalysis:
		return renderThesisAnalysis(seed, prompt)
	case shapeThesisArgument:
		return renderThesisArgument(seed, prompt)
	case shapeAntithesisAnalysis:
		return renderAntithesisAnalysis(seed)
	case shapeAntithesisArgument:
		return renderAntithesisArgument(seed)
	case shapeSynthesis:
		return renderSynthesis(seed, prompt)
	case shapeFallacy:
		return renderFallacies(seed)
	default:
		return pick(genericBank, seed)
	}
}

// pick indexes a bank with the given sub-seed. Different fields of one
// response shift the seed by different amounts so their picks decorrelate.
func pick(bank []string, n uint64) string {
	return bank[n%uint64(len(bank))]
}

// jsonSafe makes free text safe for interpolation into the canned JSON
// templates. Canonical bank strings avoid ASCII quotes already; this
// guards text lifted out of the prompt (topic, thesis).
func jsonSafe(s string) string {
	s = strings.ReplaceAll(s, `\`, "/")
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// extractSection pulls the body of a 【header】 block out of a prompt.
func extractSection(prompt, header string) string {
	i := strings.Index(prompt, header)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(header):]
	rest = strings.TrimLeft(rest, "\n")
	if j := strings.Index(rest, "\n【"); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.Index(rest, "\n\n"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

var (
	proTotalRe = regexp.MustCompile(`正方总分[:：]\s*(\d+)`)
	conTotalRe = regexp.MustCompile(`反方总分[:：]\s*(\d+)`)
	// Anchored to the 【轮次】 header so round numbers quoted inside
	// thesis or history text are not picked up.
	roundNumRe = regexp.MustCompile(`【轮次】\s*第\s*(\d+)\s*轮`)
)

func extractInt(re *regexp.Regexp, prompt string) (int, bool) {
	m := re.FindStringSubmatch(prompt)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// confidence renders a two-decimal confidence in [0.60, 0.89].
func confidence(seed uint64) string {
	return fmt.Sprintf("%.2f", 0.6+float64(((seed>>40)&0xff)%30)/100)
}

func renderOpeningAnalysis(seed uint64, prompt string) string {
	topic := jsonSafe(extractSection(prompt, "【辩论主题】"))
	if topic == "" {
		topic = "本场辩题"
	}
	return fmt.Sprintf("```json\n{\n"+
		`    "topic_analysis": "围绕「%s」，争议的实质在于判断标准与时间尺度的选取。",`+"\n"+
		`    "core_stance": "%s",`+"\n"+
		`    "opening_strategy": "%s",`+"\n"+
		`    "key_arguments": ["%s", "%s", "%s"],`+"\n"+
		`    "anticipated_opposition": ["%s"],`+"\n"+
		`    "confidence": %s`+"\n"+
		"}\n```",
		topic,
		pick(stanceBank, seed),
		pick(openingStrategyBank, seed>>4),
		pick(keyArgumentBank, seed>>8),
		pick(keyArgumentBank, (seed>>8)+1),
		pick(keyArgumentBank, (seed>>8)+2),
		pick(oppositionBank, seed>>12),
		confidence(seed))
}

func renderCounterAnalysis(seed uint64) string {
	return fmt.Sprintf("```json\n{\n"+
		`    "opponent_main_points": ["%s"],`+"\n"+
		`    "opponent_weaknesses": ["%s", "%s"],`+"\n"+
		`    "selected_strategy": "%s",`+"\n"+
		`    "strategy_reason": "%s",`+"\n"+
		`    "counter_points": ["%s", "%s"],`+"\n"+
		`    "new_arguments": ["%s"],`+"\n"+
		`    "confidence": %s`+"\n"+
		"}\n```",
		pick(opponentPointBank, seed),
		pick(weaknessBank, seed>>4),
		pick(weaknessBank, (seed>>4)+1),
		pick(strategyNames, seed>>8),
		pick(strategyReasonBank, seed>>12),
		pick(counterPointBank, seed>>16),
		pick(counterPointBank, (seed>>16)+1),
		pick(keyArgumentBank, seed>>20),
		confidence(seed))
}

func renderArgument(seed uint64, prompt string) string {
	lead := ""
	if topic := extractSection(prompt, "【辩论主题】"); topic != "" {
		lead = fmt.Sprintf("围绕「%s」，", truncateRunes(topic, 40))
	}
	return lead +
		pick(argumentOpenerBank, seed) +
		pick(argumentMiddleBank, seed>>8) +
		pick(argumentCloserBank, seed>>16)
}

func renderRoundEvaluation(seed uint64) string {
	var s [8]int
	for i := range s {
		s[i] = 6 + int((seed>>(8*uint(i)))&0xff)%4
	}
	proTotal := s[0] + s[1] + s[2] + s[3]
	conTotal := s[4] + s[5] + s[6] + s[7]
	winner := "tie"
	switch {
	case proTotal > conTotal:
		winner = "pro"
	case conTotal > proTotal:
		winner = "con"
	}

	return fmt.Sprintf("```json\n{\n"+
		`    "pro_score": {"logic": %d, "evidence": %d, "rhetoric": %d, "rebuttal": %d},`+"\n"+
		`    "con_score": {"logic": %d, "evidence": %d, "rhetoric": %d, "rebuttal": %d},`+"\n"+
		`    "round_winner": "%s",`+"\n"+
		`    "commentary": "%s",`+"\n"+
		`    "highlights": ["%s"],`+"\n"+
		`    "suggestions": {"pro": ["%s"], "con": ["%s"]}`+"\n"+
		"}\n```",
		s[0], s[1], s[2], s[3],
		s[4], s[5], s[6], s[7],
		winner,
		pick(commentaryBank, seed>>12),
		pick(highlightBank, seed>>20),
		pick(suggestionBank, seed>>24),
		pick(suggestionBank, (seed>>24)+1))
}

// renderFinalVerdict echoes the cumulative totals the verdict prompt
// carries so the verdict stays consistent with the recorded evaluations.
func renderFinalVerdict(seed uint64, prompt string) string {
	proTotal, okPro := extractInt(proTotalRe, prompt)
	conTotal, okCon := extractInt(conTotalRe, prompt)

	winner := "tie"
	margin := "marginal"
	if okPro && okCon {
		switch {
		case proTotal > conTotal:
			winner = "pro"
		case conTotal > proTotal:
			winner = "con"
		}
		base := proTotal
		if conTotal > base {
			base = conTotal
		}
		if base > 0 {
			gap := float64(proTotal-conTotal) / float64(base) * 100
			if gap < 0 {
				gap = -gap
			}
			switch {
			case gap > 15:
				margin = "decisive"
			case gap >= 5:
				margin = "close"
			}
		}
	}

	return fmt.Sprintf("```json\n{\n"+
		`    "winner": "%s",`+"\n"+
		`    "pro_total_score": %d,`+"\n"+
		`    "con_total_score": %d,`+"\n"+
		`    "margin": "%s",`+"\n"+
		`    "summary": "%s",`+"\n"+
		`    "pro_strengths": ["%s"],`+"\n"+
		`    "con_strengths": ["%s"],`+"\n"+
		`    "key_turning_points": ["%s"]`+"\n"+
		"}\n```",
		winner, proTotal, conTotal, margin,
		pick(verdictSummaryBank, seed),
		pick(strengthBank, seed>>8),
		pick(strengthBank, (seed>>8)+1),
		pick(turningPointBank, seed>>16))
}

func renderThesisAnalysis(seed uint64, prompt string) string {
	thesis := jsonSafe(truncateRunes(extractSection(prompt, "【当前正题】"), 60))
	if thesis == "" {
		thesis = pick(thesisCoreBank, seed)
	}
	return fmt.Sprintf("```json\n{\n"+
		`    "core_thesis": "%s",`+"\n"+
		`    "supporting_points": ["%s", "%s"],`+"\n"+
		`    "assumptions": ["%s"],`+"\n"+
		`    "confidence": %s`+"\n"+
		"}\n```",
		thesis,
		pick(supportingPointBank, seed>>4),
		pick(supportingPointBank, (seed>>4)+1),
		pick(assumptionBank, seed>>8),
		confidence(seed))
}

func renderThesisArgument(seed uint64, prompt string) string {
	lead := ""
	if thesis := extractSection(prompt, "【当前正题】"); thesis != "" {
		lead = fmt.Sprintf("就「%s」而言，", truncateRunes(thesis, 40))
	}
	return lead + pick(thesisMiddleBank, seed>>4) + pick(argumentCloserBank, seed>>12)
}

func renderAntithesisAnalysis(seed uint64) string {
	return fmt.Sprintf("```json\n{\n"+
		`    "antithesis": "%s",`+"\n"+
		`    "attack_points": ["%s", "%s"],`+"\n"+
		`    "hidden_assumptions": ["%s"],`+"\n"+
		`    "confidence": %s`+"\n"+
		"}\n```",
		pick(antithesisClaimBank, seed),
		pick(weaknessBank, seed>>4),
		pick(weaknessBank, (seed>>4)+1),
		pick(assumptionBank, seed>>8),
		confidence(seed))
}

func renderAntithesisArgument(seed uint64) string {
	return pick(antithesisClaimBank, seed) +
		pick(antithesisMiddleBank, seed>>8) +
		pick(argumentCloserBank, seed>>16)
}

func renderSynthesis(seed uint64, prompt string) string {
	lead := ""
	if round, ok := extractInt(roundNumRe, prompt); ok {
		lead = fmt.Sprintf("经过第%d轮交锋，", round)
	}
	return fmt.Sprintf("```json\n{\n"+
		`    "synthesis": "%s%s",`+"\n"+
		`    "key_tensions": ["%s", "%s"],`+"\n"+
		`    "confidence": %s`+"\n"+
		"}\n```",
		lead,
		pick(synthesisBank, seed),
		pick(tensionBank, seed>>4),
		pick(tensionBank, (seed>>4)+1),
		confidence(seed))
}

func renderFallacies(seed uint64) string {
	if seed%3 == 0 {
		return "```json\n[]\n```"
	}
	side := "thesis"
	if (seed>>1)%2 == 0 {
		side = "antithesis"
	}
	return fmt.Sprintf("```json\n[\n"+
		"    {\n"+
		`        "type": "%s",`+"\n"+
		`        "quote": "%s",`+"\n"+
		`        "explanation": "%s",`+"\n"+
		`        "severity": "%s",`+"\n"+
		`        "side": "%s"`+"\n"+
		"    }\n"+
		"]\n```",
		pick(fallacyTypeBank, seed>>2),
		pick(fallacyQuoteBank, seed>>6),
		pick(fallacyExplanationBank, seed>>10),
		pick(severityBank, seed>>14),
		side)
}

// ============================================================================
// Canonical banks
// ============================================================================

// strategyNames mirrors the debater's closed strategy set so parsed
// analyses always carry a recognised strategy tag.
var strategyNames = []string{
	"direct_refute",
	"evidence_attack",
	"reframe",
	"counter_example",
	"consequence",
	"strengthen",
}

var stanceBank = []string{
	"我方主张应以长期结构性证据作为判断基准",
	"我方主张在常态情形下该命题成立",
	"我方主张该命题的成立范围被明显高估",
	"我方主张以可检验的事实重新界定争议",
}

var openingStrategyBank = []string{
	"先确立判断标准，再逐项给出证据",
	"用历史对照案例奠定论证基调",
	"从概念界定入手，压缩对方的模糊空间",
	"以数据趋势开场，抢占事实高地",
}

var keyArgumentBank = []string{
	"历史上的技术变革更多改变任务构成而非岗位总量",
	"新分工总是在旧分工瓦解之处生长出来",
	"结构性转型的成本由过渡期政策决定而非技术本身",
	"证据应当优先于直觉与个例",
	"判断标准一旦统一，分歧将大幅收窄",
}

var oppositionBank = []string{
	"对方可能以短期冲击的个例概括长期趋势",
	"对方可能把极端情形当作常态来论证",
	"对方可能诉诸直觉而非可检验的证据",
}

var opponentPointBank = []string{
	"对方强调短期冲击的规模",
	"对方以局部案例推及整体",
	"对方诉诸长期趋势的不确定性",
	"对方把适应成本等同于不可逆损失",
}

var weaknessBank = []string{
	"样本选择偏向极端情形",
	"推理链条依赖未经论证的前提",
	"忽略了制度与政策的调节作用",
	"时间尺度的选取对结论并不中立",
	"概念界定含混导致论证滑动",
}

var strategyReasonBank = []string{
	"对方论证的核心环节证据最薄弱，正面突破收益最高",
	"重构问题框架能够化解对方预设的评判标准",
	"一个有力的反例足以动摇对方的普遍性结论",
	"顺着对方前提推演后果，可以暴露其立场的代价",
}

var counterPointBank = []string{
	"用对照案例说明趋势并非单向",
	"指出对方前提与其结论之间的跳跃",
	"以统计口径的差异削弱对方数据的权威性",
	"将讨论拉回双方认可的判断标准",
}

var argumentOpenerBank = []string{
	"我方的立场建立在可检验的事实之上。",
	"回到辩题本身，真正的分歧在于标准如何界定。",
	"对方刚才的论述回避了一个关键问题。",
	"先厘清概念，再谈结论。",
}

var argumentMiddleBank = []string{
	"从现有证据看，支持我方判断的案例在数量与质量上都更充分，对方所依赖的个例并不具有代表性。",
	"对方的推理链条中隐藏着未经论证的前提，一旦这个前提被质疑，其结论便难以成立。",
	"评估这一问题不能只看短期表象，更要看长期的结构性变化，而长期证据恰恰站在我方一边。",
	"把极端情形当作常态来论证，是对方论证的根本缺陷；常态情形下，我方的判断显然更稳健。",
}

var argumentCloserBank = []string{
	"综上，我方的结论不仅有据可依，而且经得起反例的检验。",
	"因此，在标准一致的前提下，我方立场更具说服力。",
	"基于以上理由，我方请各位回到证据本身做出判断。",
	"这正是我方坚持本立场的根本原因。",
}

var commentaryBank = []string{
	"双方均有清晰的论证结构，关键分歧在于证据的代表性",
	"正方论据扎实，反方反驳的针对性更强，互有胜负",
	"本轮交锋集中于判断标准之争，回应质量决定了比分",
	"双方都展现了策略意识，但对核心前提的处理深度不同",
}

var highlightBank = []string{
	"对判断标准的正面交锋",
	"用对照案例直接回应对方核心论据",
	"对隐含前提的精准识别",
}

var suggestionBank = []string{
	"加强对对方核心论据的正面回应",
	"给出更多可核查的数据支撑",
	"收紧概念界定避免论证滑动",
	"减少重复陈述，把篇幅留给新论据",
}

var verdictSummaryBank = []string{
	"整场辩论中领先一方的论证更系统，对关键质疑的回应也更充分",
	"双方围绕判断标准展开拉锯，累计得分反映了证据质量的差距",
	"比分差距来自对核心前提的处理深度，领先一方立论与反驳更均衡",
}

var strengthBank = []string{
	"立论框架完整，层次分明",
	"反驳针对性强，直指对方前提",
	"证据选取贴合论点，可信度高",
	"临场回应灵活，未被对方带偏",
}

var turningPointBank = []string{
	"对判断标准的重新界定改变了交锋走向",
	"关键反例的提出迫使对方收缩立场",
	"对隐含前提的揭示削弱了对方整体论证",
}

var thesisCoreBank = []string{
	"该命题在常态条件下成立",
	"现有证据足以支持该主张",
	"该主张的适用边界清晰可辨",
}

var thesisMiddleBank = []string{
	"当前主张抓住了问题的主要矛盾，其核心判断能够被经验与逻辑共同支持，质疑者需要先解释常态证据为何失效。",
	"把主张放回其适用范围内考察，前提清晰、推理连贯，既有的反例并不触及其核心。",
	"支持这一主张的证据来自彼此独立的来源，这种一致性本身就是有力的论据。",
}

var supportingPointBank = []string{
	"常态情形下的经验证据与主张一致",
	"主张的前提均可独立检验",
	"相竞争的解释无法覆盖同样多的事实",
	"主张在不同时间尺度上保持稳定",
}

var assumptionBank = []string{
	"观察期内外部条件大体稳定",
	"统计口径在比较双方之间一致",
	"个体差异不会系统性地偏向一方",
}

var antithesisClaimBank = []string{
	"正题忽略了条件变化时结论的脆弱性。",
	"正题的成立依赖一个并不牢靠的隐含前提。",
	"正题把局部经验不当地普遍化了。",
	"正题低估了反向证据的分量。",
}

var antithesisMiddleBank = []string{
	"一旦放宽其预设条件，正题给出的解释便与事实出现系统性偏差，这说明其结论缺乏稳健性。",
	"正题所依赖的证据多来自利益相关的来源，其独立性与代表性均值得怀疑。",
	"存在明确的反例表明正题的普遍性主张不成立，至少需要大幅收缩适用范围。",
}

var synthesisBank = []string{
	"双方的分歧可以在「条件化」中消解：在明确边界内接受正题的主张，在边界外承认反题的警示。",
	"问题的关键从「是否成立」转向「在何种条件下成立」，这一转向同时吸收了双方的合理部分。",
	"正题提供了方向，反题提供了约束，二者共同指向一个更有限定但更稳健的结论。",
	"争论揭示出衡量标准本身需要先行统一，在统一标准下双方的对立明显弱于表面分歧。",
}

var tensionBank = []string{
	"普遍性主张与边界条件之间的张力",
	"短期证据与长期趋势之间的张力",
	"解释力与稳健性之间的取舍",
	"个例的生动性与统计的代表性之争",
}

var fallacyTypeBank = []string{
	"稻草人谬误",
	"滑坡谬误",
	"诉诸权威",
	"假两难",
}

var fallacyQuoteBank = []string{
	"一旦接受这一点，后果将不可收拾",
	"所有专家都支持这一判断",
	"要么全面接受，要么彻底否定",
	"对方的立场无非是说一切都会失控",
}

var fallacyExplanationBank = []string{
	"将单一让步推演为连锁灾难，缺乏必然性论证",
	"以权威背书替代实质论证",
	"把连续谱问题压缩成二元选择",
	"先歪曲对方立场再加以反驳",
}

var severityBank = []string{"low", "medium", "high"}

var genericBank = []string{
	"这是一个值得进一步讨论的问题。从现有信息看，结论应当谨慎，需要更多证据支撑。",
	"综合来看，问题的关键在于界定清楚判断标准，在标准一致之后再比较双方的证据。",
	"目前的信息不足以给出确定结论，建议先澄清前提，再评估各方论证的强度。",
}

// Ensure Client implements LLMProvider interface.
var _ llmtypes.LLMProvider = (*Client)(nil)

// Ensure Client implements StreamingLLMProvider interface.
var _ llmtypes.StreamingLLMProvider = (*Client)(nil)
