package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ttimaizumi/tournaments-sub000/handlers"
)

// SetupRoutes mounts the tournament API. Every resource lives under its
// tournament; match ids and group ids are only meaningful within one.
func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	groupHandler *handlers.GroupHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateTournamentHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetTournamentHandler)
			r.Get("/full", tournamentHandler.GetTournamentFullDataHandler)
			r.Post("/teams", tournamentHandler.RegisterTeamHandler)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", groupHandler.ListGroupsHandler)
				r.Post("/", groupHandler.CreateGroupHandler)
				r.Get("/{groupID}", groupHandler.GetGroupHandler)
				r.Post("/{groupID}/teams", groupHandler.AddTeamToGroupHandler)
				r.Get("/{groupID}/standings", groupHandler.GetGroupStandingsHandler)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", matchHandler.ListMatchesHandler)
				r.Get("/{matchID}", matchHandler.GetMatchHandler)
				r.Put("/{matchID}/score", matchHandler.RecordScoreHandler)
			})
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
