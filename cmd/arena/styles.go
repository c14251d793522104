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
package main

import (
	"os"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// styles carries the lipgloss styles used for debate output. When
// stdout is not a terminal every style renders as plain text.
type styles struct {
	Header   lipgloss.Style
	Round    lipgloss.Style
	Pro      lipgloss.Style
	Con      lipgloss.Style
	Jury     lipgloss.Style
	Dim      lipgloss.Style
	Verdict  lipgloss.Style
	ErrStyle lipgloss.Style
}

func newStyles() styles {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		plain := lipgloss.NewStyle()
		return styles{
			Header: plain, Round: plain, Pro: plain, Con: plain,
			Jury: plain, Dim: plain, Verdict: plain, ErrStyle: plain,
		}
	}
	return styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Round:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Pro:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Con:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Jury:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Verdict:  lipgloss.NewStyle().Bold(true).Border(lipgloss.RoundedBorder()).Padding(0, 1),
		ErrStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

var titleCaser = cases.Title(language.English)

// sideLabel renders "Pro" or "Con" in the side's color.
func (s styles) sideLabel(side string) string {
	label := titleCaser.String(side)
	if side == "pro" {
		return s.Pro.Render(label)
	}
	return s.Con.Render(label)
}
