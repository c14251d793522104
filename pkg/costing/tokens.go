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
package costing

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// EstimateTokens is the coarse rule of thumb: one token per four
// characters, at least one for non-empty text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := (utf8.RuneCountInString(text) + 3) / 4
	if n < 1 {
		return 1
	}
	return n
}

// Counter counts tokens with the cl100k_base encoding when the encoder
// is available and falls back to EstimateTokens otherwise.
type Counter struct {
	encoder *tiktoken.Tiktoken
	mu      sync.Mutex
}

// NewCounter returns a counter backed by cl100k_base. When the encoding
// cannot be loaded the counter still works on the estimate rule.
func NewCounter() *Counter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &Counter{}
	}
	return &Counter{encoder: enc}
}

// Count returns the token count for text. A nil counter or a counter
// without an encoder estimates.
func (c *Counter) Count(text string) int {
	if c == nil || c.encoder == nil {
		return EstimateTokens(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoder.Encode(text, nil, nil))
}

// CountAll sums Count over texts.
func (c *Counter) CountAll(texts ...string) int {
	total := 0
	for _, text := range texts {
		total += c.Count(text)
	}
	return total
}
