package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dauren-Zh/tourney-engine/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	outcomeHandler *handlers.OutcomeHandler,
	standingsHandler *handlers.StandingsHandler,
	pairingHandler *handlers.PairingHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Create)
		r.Get("/{userID}", userHandler.GetByID)
		r.Patch("/{userID}/rating", userHandler.UpdateRating)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.Create)
		r.Get("/", tournamentHandler.List)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByID)
			r.Patch("/status", tournamentHandler.UpdateStatus)
			r.Put("/config", tournamentHandler.UpdateConfig)
			r.Post("/rounds", tournamentHandler.AdvanceRound)

			r.Route("/participants", func(r chi.Router) {
				r.Post("/", participantHandler.Register)
				r.Get("/", participantHandler.List)
				r.Post("/{participantID}/withdraw", participantHandler.Withdraw)
				r.Post("/{participantID}/disqualify", participantHandler.Disqualify)
			})

			r.Route("/outcomes", func(r chi.Router) {
				r.Post("/", outcomeHandler.Submit)
				r.Get("/", outcomeHandler.List)
				r.Post("/{outcomeID}/confirm", outcomeHandler.Confirm)
				r.Patch("/{outcomeID}", outcomeHandler.Amend)
				r.Delete("/{outcomeID}", outcomeHandler.Delete)
			})

			r.Route("/standings", func(r chi.Router) {
				r.Get("/", standingsHandler.GetLatest)
				r.Get("/rounds/{round}", standingsHandler.GetByRound)
				r.Get("/progression/{participantID}", standingsHandler.GetProgression)
				r.Post("/recalculate", standingsHandler.Recalculate)
			})

			r.Post("/pairings", pairingHandler.Generate)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
