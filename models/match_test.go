package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundProgression(t *testing.T) {
	cases := []struct {
		round    Round
		next     Round
		hasNext  bool
		expected int
	}{
		{RoundEighths, RoundQuarters, true, 8},
		{RoundQuarters, RoundSemis, true, 4},
		{RoundSemis, RoundFinal, true, 2},
		{RoundFinal, "", false, 1},
	}
	for _, tc := range cases {
		next, ok := tc.round.Next()
		assert.Equal(t, tc.hasNext, ok, "%s", tc.round)
		assert.Equal(t, tc.next, next, "%s", tc.round)
		assert.Equal(t, tc.expected, tc.round.ExpectedMatches(), "%s", tc.round)
		assert.True(t, tc.round.IsKnockout(), "%s", tc.round)
	}

	_, ok := RoundRegular.Next()
	assert.False(t, ok)
	assert.False(t, RoundRegular.IsKnockout())
}

func TestScoreWinnerExplicitTie(t *testing.T) {
	assert.Equal(t, WinnerHome, Score{Home: 2, Visitor: 1}.Winner())
	assert.Equal(t, WinnerVisitor, Score{Home: 0, Visitor: 3}.Winner())
	assert.Equal(t, WinnerNone, Score{Home: 1, Visitor: 1}.Winner())
	assert.True(t, Score{Home: 1, Visitor: 1}.IsTie())
}

func TestMatchWinnerAndLoserTeam(t *testing.T) {
	m := &Match{}
	m.SetTeam(SlotHome, "h", "Home FC")
	m.SetTeam(SlotVisitor, "v", "Visitor FC")

	_, _, ok := m.WinnerTeam()
	assert.False(t, ok, "no score yet")

	m.Score = &Score{Home: 2, Visitor: 0}
	id, name, ok := m.WinnerTeam()
	assert.True(t, ok)
	assert.Equal(t, "h", id)
	assert.Equal(t, "Home FC", name)

	id, name, ok = m.LoserTeam()
	assert.True(t, ok)
	assert.Equal(t, "v", id)
	assert.Equal(t, "Visitor FC", name)

	m.Score = &Score{Home: 1, Visitor: 1}
	_, _, ok = m.WinnerTeam()
	assert.False(t, ok, "a tie decides nothing")
}

func TestStandingRecord(t *testing.T) {
	var s Standing
	s.Record(3, 1) // win
	s.Record(0, 0) // draw
	s.Record(1, 2) // loss

	assert.Equal(t, 4, s.Points)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 4, s.GoalsFor)
	assert.Equal(t, 3, s.GoalsAgainst)
	assert.Equal(t, 1, s.GoalDifference)
	assert.Equal(t, 3, s.MatchesPlayed)
}
