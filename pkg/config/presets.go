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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrUnknownPreset is returned when a preset name matches no profile.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset bundles run parameters under a named profile. Explicit request
// parameters override preset values; MaxRounds caps the requested round
// count rather than replacing it.
type Preset struct {
	Name        string
	Temperature float64
	Seed        int64
	MaxRounds   int
}

var presets = map[string]Preset{
	"basic":   {Name: "basic", Temperature: 0.6, Seed: 42, MaxRounds: 3},
	"quality": {Name: "quality", Temperature: 0.85, Seed: 42, MaxRounds: 5},
	"budget":  {Name: "budget", Temperature: 0.4, Seed: 42, MaxRounds: 2},
}

// PresetByName looks up a preset, case-insensitively. Unknown names are
// rejected with the closest known name when one resembles the input.
func PresetByName(name string) (Preset, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if p, ok := presets[normalized]; ok {
		return p, nil
	}
	if s := suggest(normalized, PresetNames()); s != "" {
		return Preset{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownPreset, name, s)
	}
	return Preset{}, fmt.Errorf("%w: %q (valid presets: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
}

// PresetNames lists the known preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggest returns the candidate closest to name, or empty when nothing
// resembles the input.
func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
