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

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScenario loads a debate request from a YAML scenario file.
// Environment variables in the file are expanded before parsing, so
// scenarios can reference ${ARENA_TOPIC}-style values. The returned
// request is not yet resolved; callers layer flags on top and then
// call Resolve.
//
// Example scenario:
//
//	topic: 人工智能是否会取代人类工作
//	rounds: 3
//	provider: deepseek
//	preset: quality
//	pro:
//	  provider: openai
//	  model: gpt-4o
//	con:
//	  provider: anthropic
func LoadScenario(path string) (*RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	// Expand environment variables
	expanded := os.Expand(string(data), os.Getenv)

	var request RunRequest
	if err := yaml.Unmarshal([]byte(expanded), &request); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	return &request, nil
}
