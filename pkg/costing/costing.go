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

// Package costing estimates token usage and USD cost for completed
// sessions. The numbers are display-grade approximations built from
// completion text lengths and a static per-model price table, not
// billing data.
package costing

import (
	"math"
	"strings"

	"github.com/teradata-labs/arena/pkg/trace"
)

// Pricing is the USD price per 1K tokens of one model row.
type Pricing struct {
	Prompt     float64
	Completion float64
}

// Prompt token volume is not recorded per call, so it is projected from
// completion volume with a fixed overhead factor.
const promptOverhead = 1.2

// modelPricing maps normalized model id fragments to per-1K prices.
// Lookup picks the longest fragment contained in the model id, so
// region-prefixed and versioned ids resolve to their family row.
var modelPricing = map[string]Pricing{
	"claude-sonnet-4-5": {Prompt: 0.003, Completion: 0.015},
	"claude-3-opus":     {Prompt: 0.015, Completion: 0.075},
	"gpt-4o":            {Prompt: 0.0025, Completion: 0.01},
	"gpt-4-turbo":       {Prompt: 0.01, Completion: 0.03},
	"gpt-4":             {Prompt: 0.03, Completion: 0.06},
	"deepseek-chat":     {Prompt: 0.00027, Completion: 0.0011},
	"deepseek-reasoner": {Prompt: 0.00055, Completion: 0.00219},
	"gemini-2.5-flash":  {Prompt: 0.0003, Completion: 0.0025},
	"gemini-2.5-pro":    {Prompt: 0.00125, Completion: 0.01},
	"mock":              {},
}

// PricingFor resolves the price row for a model id. Unknown models cost
// nothing, which keeps estimates conservative rather than invented.
func PricingFor(model string) Pricing {
	id := strings.ToLower(strings.TrimSpace(model))
	if p, ok := modelPricing[id]; ok {
		return p
	}

	var (
		best    Pricing
		bestLen int
	)
	for fragment, p := range modelPricing {
		if len(fragment) > bestLen && strings.Contains(id, fragment) {
			best = p
			bestLen = len(fragment)
		}
	}
	return best
}

// Estimate prices a run from its completion texts with the estimate
// rule. Prompt volume is projected via the overhead factor and the USD
// total is rounded to six decimals.
func Estimate(texts []string, pricing Pricing) trace.CostEstimate {
	return estimate(EstimateTokens, texts, pricing)
}

// Estimate prices texts with this counter's token counts.
func (c *Counter) Estimate(texts []string, pricing Pricing) trace.CostEstimate {
	return estimate(c.Count, texts, pricing)
}

func estimate(count func(string) int, texts []string, pricing Pricing) trace.CostEstimate {
	completion := 0
	for _, text := range texts {
		completion += count(text)
	}
	prompt := int(float64(completion) * promptOverhead)

	usd := float64(prompt)/1000*pricing.Prompt + float64(completion)/1000*pricing.Completion
	return trace.CostEstimate{
		PromptTokens:         prompt,
		CompletionTokens:     completion,
		TotalTokens:          prompt + completion,
		EstimatedUSD:         roundUSD(usd),
		PricePer1KPrompt:     pricing.Prompt,
		PricePer1KCompletion: pricing.Completion,
	}
}

// EstimateTrace prices a trace from its turn outputs and the model
// recorded in the run config.
func EstimateTrace(t *trace.DebateTrace) *trace.CostEstimate {
	texts := make([]string, 0, len(t.Turns))
	for _, turn := range t.Turns {
		texts = append(texts, turn.Result)
	}
	estimate := Estimate(texts, PricingFor(t.RunConfig.Model))
	return &estimate
}

func roundUSD(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
