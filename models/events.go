package models

// Queue topics. The consumer binds the inbound three; the API process
// publishes to them and subscribes to the outbound ones for live updates.
const (
	TopicScoreRecorded  = "match.score-recorded"
	TopicTeamAdded      = "group.team-added"
	TopicTournamentFull = "tournament.full"

	TopicMatchCreated        = "match.created"
	TopicRoundAdvanced       = "tournament.round-advanced"
	TopicTournamentCompleted = "tournament.completed"
)

type ScoreRecordedEvent struct {
	TournamentID     string `json:"tournamentId"`
	MatchID          string `json:"matchId"`
	HomeTeamScore    int    `json:"homeTeamScore"`
	VisitorTeamScore int    `json:"visitorTeamScore"`
}

type TeamAddedEvent struct {
	TournamentID string `json:"tournamentId"`
	GroupID      string `json:"groupId"`
	TeamID       string `json:"teamId"`
}

type TournamentFullEvent struct {
	TournamentID string `json:"tournamentId"`
}

type MatchCreatedEvent struct {
	TournamentID string   `json:"tournamentId"`
	Round        Round    `json:"round"`
	MatchIDs     []string `json:"matchIds"`
}

type RoundAdvancedEvent struct {
	TournamentID string `json:"tournamentId"`
	Stage        string `json:"stage"`
	MatchCount   int    `json:"matchCount"`
}

type TournamentCompletedEvent struct {
	TournamentID     string `json:"tournamentId"`
	ChampionTeamID   string `json:"championTeamId"`
	ChampionTeamName string `json:"championTeamName"`
}
