package models

// Standing is a team's accumulated record within its group. It is owned by the
// group phase: created zeroed when the team joins, updated per completed
// match, read-only once qualifiers are drawn.
type Standing struct {
	ID             string `json:"id,omitempty"`
	TournamentID   string `json:"tournamentId"`
	GroupID        string `json:"groupId"`
	TeamID         string `json:"teamId"`
	TeamName       string `json:"teamName,omitempty"`
	Points         int    `json:"points"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	MatchesPlayed  int    `json:"matchesPlayed"`
}

// Record folds one completed match into the standing from this team's
// perspective: 3 points for a win, 1 each for a draw.
func (s *Standing) Record(ownGoals, opponentGoals int) {
	s.MatchesPlayed++
	s.GoalsFor += ownGoals
	s.GoalsAgainst += opponentGoals
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst

	switch {
	case ownGoals > opponentGoals:
		s.Wins++
		s.Points += 3
	case ownGoals < opponentGoals:
		s.Losses++
	default:
		s.Draws++
		s.Points++
	}
}
