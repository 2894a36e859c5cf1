package models

type Team struct {
	ID           string `json:"id,omitempty"`
	TournamentID string `json:"tournamentId,omitempty"`
	Name         string `json:"name"`
}
