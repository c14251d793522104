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
package debate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorecard_UnmarshalObject(t *testing.T) {
	var sc Scorecard
	require.NoError(t, json.Unmarshal([]byte(`{"logic":8,"evidence":7,"rhetoric":6,"rebuttal":9}`), &sc))

	assert.Equal(t, Scorecard{Logic: 8, Evidence: 7, Rhetoric: 6, Rebuttal: 9}, sc)
	assert.Equal(t, 30.0, sc.Total())
	assert.Equal(t, 7.5, sc.Average())
}

func TestScorecard_UnmarshalScalarSpreadsEvenly(t *testing.T) {
	var sc Scorecard
	require.NoError(t, json.Unmarshal([]byte(`30`), &sc))

	assert.Equal(t, 7.5, sc.Logic)
	assert.Equal(t, 7.5, sc.Rebuttal)
	assert.Equal(t, 30.0, sc.Total(), "a scalar score counts as-is toward the total")
}

func TestScorecard_UnmarshalRejectsGarbage(t *testing.T) {
	var sc Scorecard
	assert.Error(t, json.Unmarshal([]byte(`"high"`), &sc))
}

func TestScorecard_Clamped(t *testing.T) {
	sc := Scorecard{Logic: 0, Evidence: 15, Rhetoric: -3, Rebuttal: 7}.Clamped()
	assert.Equal(t, Scorecard{Logic: 1, Evidence: 10, Rhetoric: 1, Rebuttal: 7}, sc)
}

func TestLeaderOf(t *testing.T) {
	assert.Equal(t, WinnerPro, leaderOf(31, 28))
	assert.Equal(t, WinnerCon, leaderOf(28, 31))
	assert.Equal(t, WinnerTie, leaderOf(30, 30))
}

func TestRelativeGap(t *testing.T) {
	assert.InDelta(t, 20.0, relativeGap(100, 80), 1e-9)
	assert.InDelta(t, 20.0, relativeGap(80, 100), 1e-9, "gap is symmetric")
	assert.Zero(t, relativeGap(0, 0), "zero baseline yields zero gap")
}

func TestMarginFor(t *testing.T) {
	assert.Equal(t, MarginDecisive, marginFor(100, 80), "20% gap is decisive")
	assert.Equal(t, MarginClose, marginFor(100, 85), "15% gap is close")
	assert.Equal(t, MarginClose, marginFor(100, 95), "5% gap is close")
	assert.Equal(t, MarginMarginal, marginFor(100, 96), "4% gap is marginal")
	assert.Equal(t, MarginMarginal, marginFor(0, 0))
}

func TestValidWinnerAndMargin(t *testing.T) {
	assert.True(t, validWinner(WinnerPro))
	assert.True(t, validWinner(WinnerTie))
	assert.False(t, validWinner("正方"))
	assert.False(t, validWinner(""))

	assert.True(t, validMargin(MarginDecisive))
	assert.False(t, validMargin("landslide"))
}
