package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ttimaizumi/tournaments-sub000/brackets"
	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
)

// EventPublisher is the best-effort outbound notification sink. A publish
// failure never rolls back the state change it reports.
type EventPublisher interface {
	Publish(topic string, payload interface{}) error
}

// AdvancementEngine is the round-advancement state machine. It consumes queue
// notifications and moves tournaments through their phases: group round-robin
// into the seeded round of 16 and onwards to the final, or winners/losers
// double-elimination routed through bracket-slot edges.
type AdvancementEngine interface {
	ProcessScoreRecorded(ctx context.Context, event models.ScoreRecordedEvent) error
	ProcessTeamAdded(ctx context.Context, event models.TeamAddedEvent) error
	ProcessTournamentFull(ctx context.Context, event models.TournamentFullEvent) error
}

type advancementEngine struct {
	matchRepo      repositories.MatchRepository
	groupRepo      repositories.GroupRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	standings      StandingsCalculator
	publisher      EventPublisher
	logger         *slog.Logger
}

func NewAdvancementEngine(
	matchRepo repositories.MatchRepository,
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	standings StandingsCalculator,
	publisher EventPublisher,
	logger *slog.Logger,
) AdvancementEngine {
	return &advancementEngine{
		matchRepo:      matchRepo,
		groupRepo:      groupRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		standings:      standings,
		publisher:      publisher,
		logger:         logger,
	}
}

func (e *advancementEngine) ProcessScoreRecorded(ctx context.Context, event models.ScoreRecordedEvent) error {
	if event.HomeTeamScore < 0 || event.VisitorTeamScore < 0 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidScore, event.HomeTeamScore, event.VisitorTeamScore)
	}

	match, err := e.matchRepo.FindByTournamentAndID(ctx, event.TournamentID, event.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, event.MatchID)
		}
		return fmt.Errorf("failed to load match %s: %w", event.MatchID, err)
	}
	if match.Score == nil {
		// The notification can outrun the producer's store write; the event
		// carries the score, so act on it.
		match.Score = &models.Score{Home: event.HomeTeamScore, Visitor: event.VisitorTeamScore}
	}

	switch {
	case match.Name != nil:
		return e.advanceBracketSlot(ctx, match)
	case match.Round == models.RoundRegular:
		return e.maybeStartKnockout(ctx, match)
	default:
		return e.advanceKnockoutRound(ctx, match)
	}
}

// maybeStartKnockout re-checks group-phase completion after a regular match
// and, once every group match in the tournament has a score, draws the
// qualifiers into the round of 16.
func (e *advancementEngine) maybeStartKnockout(ctx context.Context, match *models.Match) error {
	if match.GroupID != nil {
		if _, err := e.standings.RecalculateGroup(ctx, match.TournamentID, *match.GroupID); err != nil {
			return err
		}
	}

	tournament, err := e.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return fmt.Errorf("%w: %s", ErrTournamentNotFound, match.TournamentID)
		}
		return fmt.Errorf("failed to load tournament %s: %w", match.TournamentID, err)
	}

	regular, err := e.matchRepo.FindByTournamentAndRound(ctx, match.TournamentID, models.RoundRegular)
	if err != nil {
		return fmt.Errorf("failed to load regular matches: %w", err)
	}
	expected := tournament.Format.RegularMatchCount()
	if len(regular) < expected {
		e.logger.Info("waiting for more regular matches",
			slog.String("tournament_id", match.TournamentID),
			slog.Int("found", len(regular)), slog.Int("expected", expected))
		return nil
	}

	groups, err := e.groupRepo.ListByTournament(ctx, match.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}
	if len(groups) != tournament.Format.NumberOfGroups {
		return fmt.Errorf("%w: expected %d groups, found %d",
			brackets.ErrMissingQualifiers, tournament.Format.NumberOfGroups, len(groups))
	}
	for _, group := range groups {
		done, err := e.standings.GroupComplete(ctx, match.TournamentID, group.ID)
		if err != nil {
			return fmt.Errorf("failed to check group %s: %w", group.ID, err)
		}
		if !done {
			e.logger.Info("waiting for group phase",
				slog.String("tournament_id", match.TournamentID),
				slog.String("group", group.Name))
			return nil
		}
	}

	qualifiers := make(map[string][]models.Team, len(groups))
	for _, group := range groups {
		top, err := e.standings.TopTeams(ctx, match.TournamentID, group.ID, 2)
		if err != nil {
			return err
		}
		for _, s := range top {
			qualifiers[group.Name] = append(qualifiers[group.Name], models.Team{ID: s.TeamID, Name: s.TeamName})
		}
	}

	eighths, err := brackets.BuildRoundOf16(match.TournamentID, qualifiers)
	if err != nil {
		return err
	}

	ids, err := e.matchRepo.CreateStage(ctx, match.TournamentID, string(models.RoundEighths), eighths)
	if err != nil {
		if errors.Is(err, repositories.ErrStageAlreadyCreated) {
			e.logger.Info("round of 16 already created, skipping",
				slog.String("tournament_id", match.TournamentID))
			return nil
		}
		return fmt.Errorf("failed to create round of 16: %w", err)
	}

	e.logger.Info("group phase complete, round of 16 created",
		slog.String("tournament_id", match.TournamentID), slog.Int("matches", len(ids)))
	e.notifyRound(match.TournamentID, models.RoundEighths, ids)
	return nil
}

// advanceKnockoutRound handles the mundial knockout progression: when every
// match of the current round has a score, pair the matches in creation order
// and promote each pair's winners into one match of the next round.
func (e *advancementEngine) advanceKnockoutRound(ctx context.Context, match *models.Match) error {
	if match.Score.IsTie() {
		return fmt.Errorf("%w: match %s", ErrTieNotAllowed, match.ID)
	}

	winnerID, winnerName, _ := match.WinnerTeam()
	if match.Round == models.RoundFinal {
		e.logger.Info("tournament complete",
			slog.String("tournament_id", match.TournamentID),
			slog.String("champion", winnerName))
		e.notifyChampion(match.TournamentID, winnerID, winnerName)
		return nil
	}

	roundMatches, err := e.matchRepo.FindByTournamentAndRound(ctx, match.TournamentID, match.Round)
	if err != nil {
		return fmt.Errorf("failed to load %s matches: %w", match.Round, err)
	}
	if len(roundMatches) < match.Round.ExpectedMatches() {
		return fmt.Errorf("expected %d matches in %s, found %d",
			match.Round.ExpectedMatches(), match.Round, len(roundMatches))
	}
	for _, m := range roundMatches {
		if !m.HasScore() {
			e.logger.Info("waiting for more matches in round",
				slog.String("tournament_id", match.TournamentID),
				slog.String("round", string(match.Round)))
			return nil
		}
	}

	// Pairing follows creation order, fixed when the round was generated.
	sort.Slice(roundMatches, func(i, j int) bool { return roundMatches[i].Seq < roundMatches[j].Seq })

	nextRound, ok := match.Round.Next()
	if !ok {
		return nil
	}

	created := make([]*models.Match, 0, len(roundMatches)/2)
	for i := 0; i+1 < len(roundMatches); i += 2 {
		homeID, homeName, ok1 := roundMatches[i].WinnerTeam()
		visitorID, visitorName, ok2 := roundMatches[i+1].WinnerTeam()
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: undecided match in %s", ErrTieNotAllowed, match.Round)
		}
		next := &models.Match{
			TournamentID: match.TournamentID,
			Round:        nextRound,
		}
		next.SetTeam(models.SlotHome, homeID, homeName)
		next.SetTeam(models.SlotVisitor, visitorID, visitorName)
		created = append(created, next)
	}

	ids, err := e.matchRepo.CreateStage(ctx, match.TournamentID, string(nextRound), created)
	if err != nil {
		if errors.Is(err, repositories.ErrStageAlreadyCreated) {
			e.logger.Info("next round already created, skipping",
				slog.String("tournament_id", match.TournamentID),
				slog.String("round", string(nextRound)))
			return nil
		}
		return fmt.Errorf("failed to create %s matches: %w", nextRound, err)
	}

	e.logger.Info("round advanced",
		slog.String("tournament_id", match.TournamentID),
		slog.String("round", string(nextRound)), slog.Int("matches", len(ids)))
	e.notifyRound(match.TournamentID, nextRound, ids)
	return nil
}

// advanceBracketSlot routes a finished double-elimination match: the winner
// and loser follow the feed edges stamped at generation time. F0 ends the
// tournament unless the losers-bracket champion forces the F1 bracket reset.
func (e *advancementEngine) advanceBracketSlot(ctx context.Context, match *models.Match) error {
	if match.Score.IsTie() {
		return fmt.Errorf("%w: bracket match %s", ErrTieNotAllowed, *match.Name)
	}

	winnerID, winnerName, _ := match.WinnerTeam()
	loserID, loserName, _ := match.LoserTeam()

	switch *match.Name {
	case "F1":
		e.notifyChampion(match.TournamentID, winnerID, winnerName)
		return nil
	case "F0":
		// The home slot holds the winners-bracket champion, still unbeaten; a
		// win closes the tournament. A loss levels both teams at one defeat
		// and forces the reset final.
		if match.Score.Winner() == models.WinnerHome {
			e.notifyChampion(match.TournamentID, winnerID, winnerName)
			return nil
		}
	}

	if match.WinnerNext != nil {
		if err := e.assignSlot(ctx, match.TournamentID, match.WinnerNext, winnerID, winnerName); err != nil {
			return err
		}
	}
	if match.LoserNext != nil {
		if err := e.assignSlot(ctx, match.TournamentID, match.LoserNext, loserID, loserName); err != nil {
			return err
		}
	}
	return nil
}

func (e *advancementEngine) assignSlot(ctx context.Context, tournamentID string, edge *models.FeedEdge, teamID, teamName string) error {
	target, err := e.matchRepo.FindByTournamentAndName(ctx, tournamentID, edge.Match)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: bracket slot %s", ErrMatchNotFound, edge.Match)
		}
		return fmt.Errorf("failed to load bracket slot %s: %w", edge.Match, err)
	}
	target.SetTeam(edge.Slot, teamID, teamName)
	if err := e.matchRepo.UpdateTeams(ctx, target); err != nil {
		return fmt.Errorf("failed to assign %s to slot %s: %w", teamName, edge.Match, err)
	}
	e.logger.Info("team advanced to bracket slot",
		slog.String("tournament_id", tournamentID),
		slog.String("slot", edge.Match), slog.String("team", teamName))
	return nil
}

// ProcessTeamAdded runs the round-robin scheduler once a group reaches
// capacity. The stage claim keeps redelivered membership events from
// scheduling the group twice.
func (e *advancementEngine) ProcessTeamAdded(ctx context.Context, event models.TeamAddedEvent) error {
	group, err := e.groupRepo.FindByTournamentAndID(ctx, event.TournamentID, event.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, event.GroupID)
		}
		return fmt.Errorf("failed to load group %s: %w", event.GroupID, err)
	}

	if !group.IsFull() {
		e.logger.Info("group waiting for more teams",
			slog.String("tournament_id", event.TournamentID),
			slog.String("group_id", event.GroupID), slog.Int("teams", len(group.Teams)))
		return nil
	}

	generator := brackets.NewRoundRobinGenerator()
	matches, err := generator.GenerateMatches(ctx, brackets.GenerateParams{
		TournamentID: event.TournamentID,
		GroupID:      group.ID,
		Teams:        group.Teams,
	})
	if err != nil {
		return err
	}

	stage := string(models.RoundRegular) + ":" + group.ID
	ids, err := e.matchRepo.CreateStage(ctx, event.TournamentID, stage, matches)
	if err != nil {
		if errors.Is(err, repositories.ErrStageAlreadyCreated) {
			e.logger.Info("group matches already exist, skipping",
				slog.String("group_id", event.GroupID))
			return nil
		}
		return fmt.Errorf("failed to create group matches: %w", err)
	}

	e.logger.Info("group complete, regular matches created",
		slog.String("tournament_id", event.TournamentID),
		slog.String("group_id", event.GroupID), slog.Int("matches", len(ids)))
	e.notifyMatches(event.TournamentID, models.RoundRegular, ids)
	return nil
}

// ProcessTournamentFull generates the 63-match double-elimination skeleton
// once the 32nd team registers.
func (e *advancementEngine) ProcessTournamentFull(ctx context.Context, event models.TournamentFullEvent) error {
	teams, err := e.teamRepo.ListByTournament(ctx, event.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}

	entrants := make([]models.Team, len(teams))
	for i, t := range teams {
		entrants[i] = *t
	}

	generator := brackets.NewDoubleEliminationGenerator()
	matches, err := generator.GenerateMatches(ctx, brackets.GenerateParams{
		TournamentID: event.TournamentID,
		Teams:        entrants,
	})
	if err != nil {
		return err
	}

	ids, err := e.matchRepo.CreateStage(ctx, event.TournamentID, "BRACKET", matches)
	if err != nil {
		if errors.Is(err, repositories.ErrStageAlreadyCreated) {
			e.logger.Info("bracket already generated, skipping",
				slog.String("tournament_id", event.TournamentID))
			return nil
		}
		return fmt.Errorf("failed to create bracket: %w", err)
	}

	e.logger.Info("double elimination bracket generated",
		slog.String("tournament_id", event.TournamentID), slog.Int("matches", len(ids)))
	e.notifyMatches(event.TournamentID, models.RoundFinal, ids)
	return nil
}

func (e *advancementEngine) notifyRound(tournamentID string, round models.Round, matchIDs []string) {
	e.notifyMatches(tournamentID, round, matchIDs)
	e.publish(models.TopicRoundAdvanced, models.RoundAdvancedEvent{
		TournamentID: tournamentID,
		Stage:        string(round),
		MatchCount:   len(matchIDs),
	})
}

func (e *advancementEngine) notifyMatches(tournamentID string, round models.Round, matchIDs []string) {
	e.publish(models.TopicMatchCreated, models.MatchCreatedEvent{
		TournamentID: tournamentID,
		Round:        round,
		MatchIDs:     matchIDs,
	})
}

func (e *advancementEngine) notifyChampion(tournamentID, teamID, teamName string) {
	e.publish(models.TopicTournamentCompleted, models.TournamentCompletedEvent{
		TournamentID:     tournamentID,
		ChampionTeamID:   teamID,
		ChampionTeamName: teamName,
	})
}

// publish is fire-and-forget: outbound notifications never fail a transition.
func (e *advancementEngine) publish(topic string, payload interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(topic, payload); err != nil {
		e.logger.Warn("failed to publish notification",
			slog.String("topic", topic), slog.Any("error", err))
	}
}
