package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttimaizumi/tournaments-sub000/models"
)

func thirtyTwoTeams() []models.Team {
	teams := make([]models.Team, 32)
	for i := range teams {
		teams[i] = models.Team{
			ID:   fmt.Sprintf("team-%02d", i),
			Name: fmt.Sprintf("Team %02d", i),
		}
	}
	return teams
}

func TestDoubleEliminationRejectsWrongEntrantCount(t *testing.T) {
	gen := NewDoubleEliminationGenerator()

	for _, count := range []int{0, 1, 16, 31, 33, 64} {
		teams := make([]models.Team, count)
		_, err := gen.GenerateMatches(context.Background(), GenerateParams{
			TournamentID: "t1",
			Teams:        teams,
		})
		assert.ErrorIs(t, err, ErrInvalidEntrantCount, "count %d", count)
	}
}

func TestDoubleEliminationSkeleton(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.GenerateMatches(context.Background(), GenerateParams{
		TournamentID: "t1",
		Teams:        thirtyTwoTeams(),
	})
	require.NoError(t, err)
	require.Len(t, matches, 63)

	byName := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		require.NotNil(t, m.Name)
		assert.Equal(t, "t1", m.TournamentID)
		assert.Nil(t, m.GroupID)
		_, dup := byName[*m.Name]
		require.False(t, dup, "duplicate slot name %s", *m.Name)
		byName[*m.Name] = m
	}

	for i := 0; i < 31; i++ {
		require.Contains(t, byName, fmt.Sprintf("W%d", i))
	}
	for i := 0; i < 30; i++ {
		require.Contains(t, byName, fmt.Sprintf("L%d", i))
	}
	require.Contains(t, byName, "F0")
	require.Contains(t, byName, "F1")
}

func TestDoubleEliminationFirstRoundSeeding(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	teams := thirtyTwoTeams()
	matches, err := gen.GenerateMatches(context.Background(), GenerateParams{
		TournamentID: "t1",
		Teams:        teams,
	})
	require.NoError(t, err)

	byName := indexByName(matches)
	for i := 0; i < 16; i++ {
		m := byName[fmt.Sprintf("W%d", i)]
		require.NotNil(t, m.HomeTeamID)
		require.NotNil(t, m.VisitorTeamID)
		assert.Equal(t, teams[i*2].ID, *m.HomeTeamID)
		assert.Equal(t, teams[i*2+1].ID, *m.VisitorTeamID)
	}

	for i := 16; i < 31; i++ {
		m := byName[fmt.Sprintf("W%d", i)]
		assert.Nil(t, m.HomeTeamID, "W%d should start empty", i)
		assert.Nil(t, m.VisitorTeamID, "W%d should start empty", i)
	}
	for i := 0; i < 30; i++ {
		m := byName[fmt.Sprintf("L%d", i)]
		assert.Nil(t, m.HomeTeamID, "L%d should start empty", i)
		assert.Nil(t, m.VisitorTeamID, "L%d should start empty", i)
	}
}

// Every slot past the first winners round must be fed by exactly one edge per
// side, so the bracket graph fills every seat exactly once.
func TestDoubleEliminationEdgeCoverage(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.GenerateMatches(context.Background(), GenerateParams{
		TournamentID: "t1",
		Teams:        thirtyTwoTeams(),
	})
	require.NoError(t, err)

	byName := indexByName(matches)

	incoming := make(map[string]int)
	record := func(e *models.FeedEdge) {
		if e == nil {
			return
		}
		_, ok := byName[e.Match]
		require.True(t, ok, "edge targets unknown slot %s", e.Match)
		incoming[e.Match+"/"+string(e.Slot)]++
	}
	for _, m := range matches {
		record(m.WinnerNext)
		record(m.LoserNext)
	}

	// W16..W30, L0..L29, F0 and F1 each have both seats fed exactly once.
	for i := 16; i < 31; i++ {
		assertSeatFilled(t, incoming, fmt.Sprintf("W%d", i))
	}
	for i := 0; i < 30; i++ {
		assertSeatFilled(t, incoming, fmt.Sprintf("L%d", i))
	}
	assertSeatFilled(t, incoming, "F0")
	assertSeatFilled(t, incoming, "F1")

	// The first winners round is seeded directly, never fed.
	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("W%d", i)
		assert.Zero(t, incoming[name+"/"+string(models.SlotHome)])
		assert.Zero(t, incoming[name+"/"+string(models.SlotVisitor)])
	}
}

func assertSeatFilled(t *testing.T, incoming map[string]int, name string) {
	t.Helper()
	assert.Equal(t, 1, incoming[name+"/"+string(models.SlotHome)], "%s home seat", name)
	assert.Equal(t, 1, incoming[name+"/"+string(models.SlotVisitor)], "%s visitor seat", name)
}

func TestDoubleEliminationFinalsWiring(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.GenerateMatches(context.Background(), GenerateParams{
		TournamentID: "t1",
		Teams:        thirtyTwoTeams(),
	})
	require.NoError(t, err)

	byName := indexByName(matches)

	w30 := byName["W30"]
	require.NotNil(t, w30.WinnerNext)
	assert.Equal(t, "F0", w30.WinnerNext.Match)
	assert.Equal(t, models.SlotHome, w30.WinnerNext.Slot)
	require.NotNil(t, w30.LoserNext)
	assert.Equal(t, "L29", w30.LoserNext.Match)

	l29 := byName["L29"]
	require.NotNil(t, l29.WinnerNext)
	assert.Equal(t, "F0", l29.WinnerNext.Match)
	assert.Equal(t, models.SlotVisitor, l29.WinnerNext.Slot)
	assert.Nil(t, l29.LoserNext)

	f0 := byName["F0"]
	require.NotNil(t, f0.WinnerNext)
	assert.Equal(t, "F1", f0.WinnerNext.Match)
	require.NotNil(t, f0.LoserNext)
	assert.Equal(t, "F1", f0.LoserNext.Match)

	f1 := byName["F1"]
	assert.Nil(t, f1.WinnerNext)
	assert.Nil(t, f1.LoserNext)
}

func TestDoubleEliminationLosersNeverFeedLosses(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.GenerateMatches(context.Background(), GenerateParams{
		TournamentID: "t1",
		Teams:        thirtyTwoTeams(),
	})
	require.NoError(t, err)

	for _, m := range matches {
		if (*m.Name)[0] == 'L' {
			assert.Nil(t, m.LoserNext, "%s: a losers-bracket loss eliminates", *m.Name)
		}
	}
}

func indexByName(matches []*models.Match) map[string]*models.Match {
	byName := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		byName[*m.Name] = m
	}
	return byName
}
