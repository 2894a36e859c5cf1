package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")

	match, err := h.matchService.GetByID(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler lists every match of the tournament, optionally filtered
// by the round query parameter.
func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var (
		matches []*models.Match
		err     error
	)
	if round := r.URL.Query().Get("round"); round != "" {
		matches, err = h.matchService.ListByRound(r.Context(), tournamentID, models.Round(round))
	} else {
		matches, err = h.matchService.ListByTournament(r.Context(), tournamentID)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecordScoreHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")

	var input struct {
		HomeTeamScore    int `json:"homeTeamScore"`
		VisitorTeamScore int `json:"visitorTeamScore"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score := models.Score{Home: input.HomeTeamScore, Visitor: input.VisitorTeamScore}
	match, err := h.matchService.RecordScore(r.Context(), tournamentID, matchID, score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
