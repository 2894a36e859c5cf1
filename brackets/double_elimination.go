package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/ttimaizumi/tournaments-sub000/models"
)

// DoubleEliminationTeamCount is the only field size the double-elimination
// skeleton supports: 32 entrants, 2n-1 = 63 matches.
const DoubleEliminationTeamCount = 32

var ErrInvalidEntrantCount = errors.New("double elimination requires exactly 32 teams")

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateMatches builds the full 63-match skeleton: winners bracket W0..W30
// (rounds of 16, 8, 4, 2, 1), losers bracket L0..L29 (8, 8, 4, 4, 2, 2, 1, 1)
// and the finals F0/F1. Only the 16 first-round winners matches receive teams,
// paired by consecutive index; every match carries the feed edges that route
// its winner and loser to later slots.
func (g *DoubleEliminationGenerator) GenerateMatches(_ context.Context, params GenerateParams) ([]*models.Match, error) {
	teams := params.Teams
	if len(teams) != DoubleEliminationTeamCount {
		return nil, fmt.Errorf("%w (found %d)", ErrInvalidEntrantCount, len(teams))
	}

	matches := make([]*models.Match, 0, 63)

	for i := 0; i < 31; i++ {
		m := newSlotMatch(params.TournamentID, winnersName(i))
		m.WinnerNext, m.LoserNext = winnersEdges(i)
		if i < 16 {
			m.SetTeam(models.SlotHome, teams[i*2].ID, teams[i*2].Name)
			m.SetTeam(models.SlotVisitor, teams[i*2+1].ID, teams[i*2+1].Name)
		}
		matches = append(matches, m)
	}

	for i := 0; i < 30; i++ {
		m := newSlotMatch(params.TournamentID, losersName(i))
		m.WinnerNext, m.LoserNext = losersEdges(i)
		matches = append(matches, m)
	}

	grandFinal := newSlotMatch(params.TournamentID, "F0")
	grandFinal.WinnerNext = &models.FeedEdge{Match: "F1", Slot: models.SlotHome}
	grandFinal.LoserNext = &models.FeedEdge{Match: "F1", Slot: models.SlotVisitor}
	bracketReset := newSlotMatch(params.TournamentID, "F1")
	matches = append(matches, grandFinal, bracketReset)

	return matches, nil
}

func newSlotMatch(tournamentID, name string) *models.Match {
	return &models.Match{
		TournamentID: tournamentID,
		Round:        models.RoundFinal, // bracket matches use slot names, not mundial rounds
		Name:         &name,
	}
}

func winnersName(i int) string {
	return fmt.Sprintf("W%d", i)
}

func losersName(i int) string {
	return fmt.Sprintf("L%d", i)
}

// pairSlot maps an even index to the home side of the shared target, an odd
// index to the visitor side.
func pairSlot(j int) models.TeamSlot {
	if j%2 == 0 {
		return models.SlotHome
	}
	return models.SlotVisitor
}

func feed(prefix string, index int, slot models.TeamSlot) *models.FeedEdge {
	return &models.FeedEdge{Match: fmt.Sprintf("%s%d", prefix, index), Slot: slot}
}

// winnersEdges wires winners-bracket match i: winners climb pairwise, losers
// drop into the losers ladder. Drop-ins always take the visitor side; the
// losers-bracket survivor they meet holds home.
func winnersEdges(i int) (winner, loser *models.FeedEdge) {
	switch {
	case i < 16: // round 1
		return feed("W", 16+i/2, pairSlot(i)), feed("L", i/2, pairSlot(i))
	case i < 24: // round 2
		j := i - 16
		return feed("W", 24+j/2, pairSlot(j)), feed("L", 8+j, models.SlotVisitor)
	case i < 28: // round 3
		j := i - 24
		return feed("W", 28+j/2, pairSlot(j)), feed("L", 20+j, models.SlotVisitor)
	case i < 30: // round 4
		j := i - 28
		return feed("W", 30, pairSlot(j)), feed("L", 26+j, models.SlotVisitor)
	default: // W30, winners bracket final
		return &models.FeedEdge{Match: "F0", Slot: models.SlotHome},
			&models.FeedEdge{Match: "L29", Slot: models.SlotVisitor}
	}
}

// losersEdges wires losers-bracket match i; a loss here eliminates, so there
// is never a loser edge.
func losersEdges(i int) (winner, loser *models.FeedEdge) {
	switch {
	case i < 8:
		return feed("L", 8+i, models.SlotHome), nil
	case i < 16:
		j := i - 8
		return feed("L", 16+j/2, pairSlot(j)), nil
	case i < 20:
		j := i - 16
		return feed("L", 20+j, models.SlotHome), nil
	case i < 24:
		j := i - 20
		return feed("L", 24+j/2, pairSlot(j)), nil
	case i < 26:
		j := i - 24
		return feed("L", 26+j, models.SlotHome), nil
	case i < 28:
		j := i - 26
		return feed("L", 28, pairSlot(j)), nil
	case i == 28:
		return feed("L", 29, models.SlotHome), nil
	default: // L29, losers bracket final
		return &models.FeedEdge{Match: "F0", Slot: models.SlotVisitor}, nil
	}
}
