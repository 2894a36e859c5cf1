package brackets

import (
	"context"

	"github.com/ttimaizumi/tournaments-sub000/models"
)

type GenerateParams struct {
	TournamentID string
	// GroupID scopes the generated matches to a group; only the round-robin
	// generator uses it.
	GroupID string
	Teams   []models.Team
}

type Generator interface {
	GenerateMatches(ctx context.Context, params GenerateParams) ([]*models.Match, error)

	GetName() string
}
