package routes

import (
	"net/http"

	"github.com/Dosada05/padel-manager/handlers"
	"github.com/Dosada05/padel-manager/middleware"
	"github.com/Dosada05/padel-manager/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Club        *handlers.ClubHandler
	Player      *handlers.PlayerHandler
	Tournament  *handlers.TournamentHandler
	Inscription *handlers.InscriptionHandler
	Zone        *handlers.ZoneHandler
	Match       *handlers.MatchHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, jwtSecret string, corsOrigins []string) {
	secret := []byte(jwtSecret)
	authenticate := middleware.Authenticate(secret)
	can := middleware.RequirePermission

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})
	router.With(authenticate).Get("/me", h.Auth.Me)

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", h.Club.List)
		r.Get("/{clubID}", h.Club.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, can(services.PermClubUpdate))
			r.Put("/{clubID}", h.Club.Update)
			r.Post("/{clubID}/logo", h.Club.UploadLogo)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.List)
		r.Get("/{playerID}", h.Player.GetByID)
	})
	router.Get("/ranking", h.Player.Ranking)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.With(authenticate, can(services.PermTournamentCreate)).Post("/", h.Tournament.Create)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetByID)
			r.With(middleware.OptionalAuthenticate(secret)).Get("/view", h.Tournament.View)
			r.Get("/inscriptions", h.Inscription.List)
			r.Get("/standings", h.Zone.Standings)
			r.Get("/matches", h.Match.List)

			r.With(authenticate, can(services.PermInscriptionCreate)).Post("/inscriptions", h.Inscription.Register)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, can(services.PermTournamentManage))
				r.Put("/", h.Tournament.Update)
				r.Patch("/status", h.Tournament.UpdateStatus)
				r.Post("/logo", h.Tournament.UploadLogo)
			})

			r.With(authenticate, can(services.PermInscriptionManage)).Post("/pairs", h.Inscription.Pair)
			r.With(authenticate, can(services.PermZoneStart)).Post("/zones", h.Zone.StartZonePhase)
			r.With(authenticate, can(services.PermBracketGenerate)).Post("/bracket", h.Zone.GenerateBracket)
		})
	})

	// владелец заявки или клуб-организатор проверяются в сервисе
	router.With(authenticate).Delete("/inscriptions/{inscriptionID}", h.Inscription.Delete)

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Use(authenticate)
		r.With(can(services.PermMatchResult)).Put("/result", h.Match.SubmitResult)
		r.With(can(services.PermMatchManage)).Patch("/", h.Match.Update)
		r.With(can(services.PermMatchManage)).Post("/cancel", h.Match.Cancel)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
