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
	"strings"

	"golang.org/x/mod/semver"
)

// Version can be overridden at build time via ldflags:
// go build -ldflags="-X github.com/teradata-labs/arena/internal/version.Version=vX.Y.Z"
var Version = "2.0.0" // Default version

// Get returns the current version
func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// Compatible reports whether a client and a server can talk to each
// other: they must share a major version. Dev builds and anything that
// does not parse as semver are always considered compatible.
func Compatible(client, server string) bool {
	c, s := canonical(client), canonical(server)
	if c == "" || s == "" {
		return true
	}
	return semver.Major(c) == semver.Major(s)
}

// Compare orders two versions like semver.Compare, tolerating a
// missing v prefix. An invalid version sorts before any valid one.
func Compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// canonical normalizes to the v-prefixed form semver expects, or empty
// when the input is not a semantic version.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "dev" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
