package routes

import (
	"net/http"

	"github.com/Dosada05/knockout-system/handlers"
	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

// Handlers bundles the HTTP handlers. Every data handler is nil when the server runs without a database.
type Handlers struct {
	System      *handlers.SystemHandler
	Club        *handlers.ClubHandler
	Event       *handlers.EventHandler
	Player      *handlers.PlayerHandler
	Fixture     *handlers.FixtureHandler
	Schedule    *handlers.ScheduleHandler
	MatchCode   *handlers.MatchCodeHandler
	Result      *handlers.ResultHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	CORSAllowedOrigins []string
	UmpireSecret       []byte
	RequireUmpireToken bool
	Metrics            *metrics.Metrics
}

func (h Handlers) storeConfigured() bool {
	return h.Club != nil
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/", h.System.Root)
	router.Get("/health", h.System.Health)
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	if !h.storeConfigured() {
		router.HandleFunc("/api/*", handlers.NotConfigured)
		router.HandleFunc("/ws/*", handlers.NotConfigured)
		return
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.Club.ListClubs)
			r.Post("/", h.Club.CreateClub)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.Event.ListEvents)
			r.Post("/", h.Event.CreateEvent)
			r.Get("/{eventID}", h.Event.GetEvent)
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Post("/", h.Player.CreatePlayer)
			r.Post("/upload-csv", h.Player.UploadCSV)
		})

		r.Post("/generate-fixtures", h.Fixture.GenerateFixtures)
		r.Get("/fixtures/{eventID}", h.Fixture.GetFixtures)

		r.Post("/schedule-matches", h.Schedule.ScheduleMatches)
		r.Get("/schedule/{courtID}", h.Schedule.GetCourtSchedule)

		r.Route("/match-code", func(r chi.Router) {
			r.Post("/generate", h.MatchCode.Generate)
			r.Post("/verify", h.MatchCode.Verify)
		})

		// a supplied umpire token is always checked; it is mandatory only with REQUIRE_UMPIRE_TOKEN
		r.With(middleware.UmpireAuthenticator(opts.UmpireSecret, opts.RequireUmpireToken)).
			Post("/update-score", h.Result.UpdateScore)

		r.Get("/leaderboard", h.Leaderboard.GetLeaderboard)
	})

	router.Get("/ws/events/{eventID}", h.WebSocket.ServeWs)
}
