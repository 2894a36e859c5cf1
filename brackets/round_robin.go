package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/ttimaizumi/tournaments-sub000/models"
)

var ErrInvalidGroupSize = errors.New("round robin requires a full group")

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateMatches creates one match per unordered pair of group members:
// C(4,2) = 6 matches, all scoped to the group and marked REGULAR. It is
// invoked exactly once per group, when membership reaches capacity.
func (g *RoundRobinGenerator) GenerateMatches(_ context.Context, params GenerateParams) ([]*models.Match, error) {
	teams := params.Teams
	if len(teams) != models.GroupCapacity {
		return nil, fmt.Errorf("%w of %d teams (found %d)", ErrInvalidGroupSize, models.GroupCapacity, len(teams))
	}

	groupID := params.GroupID
	matches := make([]*models.Match, 0, len(teams)*(len(teams)-1)/2)
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			m := &models.Match{
				TournamentID: params.TournamentID,
				GroupID:      &groupID,
				Round:        models.RoundRegular,
			}
			m.SetTeam(models.SlotHome, teams[i].ID, teams[i].Name)
			m.SetTeam(models.SlotVisitor, teams[j].ID, teams[j].Name)
			matches = append(matches, m)
		}
	}

	return matches, nil
}
