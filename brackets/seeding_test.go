package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttimaizumi/tournaments-sub000/models"
)

func qualifierFixture() map[string][]models.Team {
	qualifiers := make(map[string][]models.Team, 8)
	for g := 'A'; g <= 'H'; g++ {
		group := string(g)
		qualifiers[group] = []models.Team{
			{ID: group + "1", Name: fmt.Sprintf("Winner %s", group)},
			{ID: group + "2", Name: fmt.Sprintf("Runner-up %s", group)},
		}
	}
	return qualifiers
}

func TestRoundOf16SeedingTable(t *testing.T) {
	table := RoundOf16Seeding()
	require.Len(t, table, 8)

	expected := [8]Pairing{
		{"A1", "H2"},
		{"B2", "G1"},
		{"C1", "F2"},
		{"D2", "E1"},
		{"D1", "E2"},
		{"C2", "F1"},
		{"B1", "G2"},
		{"A2", "H1"},
	}
	assert.Equal(t, expected, table)

	// Every group contributes exactly one winner and one runner-up, and no
	// pairing draws both sides from the same group.
	seen := make(map[string]bool)
	for _, p := range table {
		assert.NotEqual(t, p.Home[0], p.Visitor[0], "%s vs %s shares a group", p.Home, p.Visitor)
		assert.False(t, seen[p.Home], "%s drawn twice", p.Home)
		assert.False(t, seen[p.Visitor], "%s drawn twice", p.Visitor)
		seen[p.Home], seen[p.Visitor] = true, true
	}
	assert.Len(t, seen, 16)
}

func TestIsValidPairingIsOrderSensitive(t *testing.T) {
	assert.True(t, IsValidPairing("A1", "H2"))
	assert.False(t, IsValidPairing("H2", "A1"))
	assert.False(t, IsValidPairing("A1", "B2"))
}

func TestBuildRoundOf16(t *testing.T) {
	matches, err := BuildRoundOf16("t1", qualifierFixture())
	require.NoError(t, err)
	require.Len(t, matches, 8)

	for i, m := range matches {
		assert.Equal(t, "t1", m.TournamentID)
		assert.Equal(t, models.RoundEighths, m.Round)
		assert.Nil(t, m.GroupID)
		assert.Nil(t, m.Name)
		require.NotNil(t, m.HomeTeamID, "match %d", i)
		require.NotNil(t, m.VisitorTeamID, "match %d", i)
	}

	// Draw order follows the table: A1 hosts H2 first, A2 meets H1 last.
	assert.Equal(t, "A1", *matches[0].HomeTeamID)
	assert.Equal(t, "H2", *matches[0].VisitorTeamID)
	assert.Equal(t, "A2", *matches[7].HomeTeamID)
	assert.Equal(t, "H1", *matches[7].VisitorTeamID)

	for i, p := range RoundOf16Seeding() {
		assert.Equal(t, p.Home, *matches[i].HomeTeamID)
		assert.Equal(t, p.Visitor, *matches[i].VisitorTeamID)
	}
}

func TestBuildRoundOf16MissingQualifiers(t *testing.T) {
	qualifiers := qualifierFixture()
	qualifiers["D"] = qualifiers["D"][:1]

	_, err := BuildRoundOf16("t1", qualifiers)
	assert.ErrorIs(t, err, ErrMissingQualifiers)

	delete(qualifiers, "D")
	_, err = BuildRoundOf16("t1", qualifiers)
	assert.ErrorIs(t, err, ErrMissingQualifiers)
}
