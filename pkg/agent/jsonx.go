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
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/xeipuuv/gojsonschema"
)

// ExtractJSON returns the JSON payload embedded in a model response: the
// body of the first fenced code block when one is present, otherwise the
// span from the first '{' or '[' to the matching last '}' or ']'. When
// neither is found the trimmed response is returned unchanged.
func ExtractJSON(response string) string {
	s := strings.TrimSpace(response)

	for _, fence := range []string{"```json", "```"} {
		if _, after, ok := strings.Cut(s, fence); ok {
			body, _, _ := strings.Cut(after, "```")
			if t := strings.TrimSpace(body); t != "" {
				return t
			}
		}
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > start {
		return s[start : end+1]
	}
	return s
}

// Decode extracts the JSON payload from response and unmarshals it into
// out. Parsing falls back from strict JSON to automated repair to Hjson;
// out is only written from the strategy that succeeds.
func Decode(response string, out interface{}) error {
	raw := ExtractJSON(response)
	normalized, err := normalizeJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(normalized), out); err != nil {
		return fmt.Errorf("decode response payload: %w", err)
	}
	return nil
}

// normalizeJSON renders raw as strict JSON via the tolerant cascade.
func normalizeJSON(raw string) (string, error) {
	if json.Valid([]byte(raw)) {
		return raw, nil
	}
	if repaired, err := jsonrepair.RepairJSON(raw); err == nil && json.Valid([]byte(repaired)) {
		return repaired, nil
	}
	var v interface{}
	if err := hjson.Unmarshal([]byte(raw), &v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			return string(b), nil
		}
	}
	return "", fmt.Errorf("response carries no parseable JSON")
}

// ParseMap decodes an object payload, returning fallback and false when
// nothing parses to an object.
func ParseMap(response string, fallback map[string]interface{}) (map[string]interface{}, bool) {
	var out map[string]interface{}
	if err := Decode(response, &out); err != nil || out == nil {
		return fallback, false
	}
	return out, true
}

// ParseValidated is ParseMap with a JSON Schema gate: objects that parse
// but violate the schema count as parse failures and yield the fallback.
func ParseValidated(response, schema string, fallback map[string]interface{}) (map[string]interface{}, bool) {
	parsed, ok := ParseMap(response, fallback)
	if !ok {
		return fallback, false
	}
	if err := ValidateSchema(parsed, schema); err != nil {
		return fallback, false
	}
	return parsed, true
}

// ValidateSchema checks doc against a JSON Schema document.
func ValidateSchema(doc interface{}, schema string) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		violations := make([]string, len(result.Errors()))
		for i, verr := range result.Errors() {
			violations[i] = verr.String()
		}
		return fmt.Errorf("schema violations: %v", violations)
	}
	return nil
}

// Confidence reads the confidence field of a parsed analysis, defaulting
// to 0.5 when absent or non-numeric and clamping into [0, 1].
func Confidence(analysis map[string]interface{}) float64 {
	v, ok := analysis["confidence"]
	if !ok {
		return 0.5
	}
	f, ok := v.(float64)
	if !ok {
		return 0.5
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
