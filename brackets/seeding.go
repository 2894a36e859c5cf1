package brackets

import (
	"errors"
	"fmt"

	"github.com/ttimaizumi/tournaments-sub000/models"
)

var ErrMissingQualifiers = errors.New("each group must provide exactly 2 qualifiers")

// Pairing maps two group rank labels (group letter + rank, e.g. "A1") to a
// round-of-16 matchup.
type Pairing struct {
	Home    string
	Visitor string
}

// roundOf16Seeding is the fixed cross-group draw. Group winners and runners-up
// never meet a team from their own group in the first knockout round.
var roundOf16Seeding = [8]Pairing{
	{"A1", "H2"},
	{"B2", "G1"},
	{"C1", "F2"},
	{"D2", "E1"},
	{"D1", "E2"},
	{"C2", "F1"},
	{"B1", "G2"},
	{"A2", "H1"},
}

// RoundOf16Seeding returns a copy of the seeding table in draw order.
func RoundOf16Seeding() [8]Pairing {
	return roundOf16Seeding
}

// IsValidPairing reports whether (home, visitor) appears in the seeding table
// as stored. Order matters: A1 hosts H2, not the other way around.
func IsValidPairing(home, visitor string) bool {
	for _, p := range roundOf16Seeding {
		if p.Home == home && p.Visitor == visitor {
			return true
		}
	}
	return false
}

// BuildRoundOf16 creates the 8 eighths-final matches from the qualifiers of
// the 8 groups, keyed by group name ("A".."H"), each holding the group's top
// two in rank order. The matches carry no group id.
func BuildRoundOf16(tournamentID string, qualifiers map[string][]models.Team) ([]*models.Match, error) {
	for g := 'A'; g <= 'H'; g++ {
		if len(qualifiers[string(g)]) != 2 {
			return nil, fmt.Errorf("%w: group %c has %d", ErrMissingQualifiers, g, len(qualifiers[string(g)]))
		}
	}

	matches := make([]*models.Match, 0, len(roundOf16Seeding))
	for _, p := range roundOf16Seeding {
		home := qualifiers[string(p.Home[0])][p.Home[1]-'1']
		visitor := qualifiers[string(p.Visitor[0])][p.Visitor[1]-'1']

		m := &models.Match{
			TournamentID: tournamentID,
			Round:        models.RoundEighths,
		}
		m.SetTeam(models.SlotHome, home.ID, home.Name)
		m.SetTeam(models.SlotVisitor, visitor.ID, visitor.Name)
		matches = append(matches, m)
	}

	return matches, nil
}
