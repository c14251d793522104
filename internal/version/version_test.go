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
package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	assert.NotEmpty(t, Get())
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name   string
		client string
		server string
		want   bool
	}{
		{name: "same version", client: "2.0.0", server: "2.0.0", want: true},
		{name: "minor skew", client: "2.1.0", server: "2.0.3", want: true},
		{name: "major skew", client: "1.9.0", server: "2.0.0", want: false},
		{name: "v prefix tolerated", client: "v2.0.0", server: "2.3.1", want: true},
		{name: "dev client", client: "dev", server: "2.0.0", want: true},
		{name: "garbage server", client: "2.0.0", server: "yesterday's build", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.client, tt.server))
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("2.0.0", "v2.0.0"))
	assert.Equal(t, -1, Compare("2.0.0", "2.1.0"))
	assert.Equal(t, 1, Compare("3.0.0", "2.9.9"))
	assert.Equal(t, -1, Compare("not-a-version", "0.0.1"), "invalid sorts first")
}
