package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/selective-league/docs"
	"github.com/Dosada05/selective-league/handlers"
	"github.com/Dosada05/selective-league/middleware"
	"github.com/Dosada05/selective-league/services"
)

type Handlers struct {
	Player    *handlers.PlayerHandler
	Selective *handlers.SelectiveHandler
	Match     *handlers.MatchHandler
	Ranking   *handlers.RankingHandler
	Auth      *handlers.AuthHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	AuthService    services.AuthService
	MetricsHandler http.Handler
	CORSOrigins    []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler)
	}
	router.Get(docs.DocPath, docs.Handler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docs.DocPath)))

	router.Route("/ws", func(r chi.Router) {
		r.Get("/ranking", h.WebSocket.ServeRanking)
		r.Get("/selectives/{selectiveID}", h.WebSocket.ServeSelective)
	})

	// Все JSON-маршруты ограничены по времени, websocket-соединения нет.
	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/auth/login", h.Auth.Login)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.List)
			r.Get("/{playerID}", h.Player.Get)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly(opts.AuthService)...)
				r.Post("/", h.Player.Create)
				r.Patch("/{playerID}", h.Player.Update)
			})
		})

		r.Route("/selectives", func(r chi.Router) {
			r.Get("/", h.Selective.List)
			r.Get("/{selectiveID}", h.Selective.Get)
			r.Get("/{selectiveID}/matches", h.Selective.Matches)
			r.Get("/{selectiveID}/standings", h.Selective.Standings)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly(opts.AuthService)...)
				r.Post("/", h.Selective.Create)
				r.Post("/{selectiveID}/complete", h.Selective.Complete)
				r.Delete("/{selectiveID}", h.Selective.Delete)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Use(adminOnly(opts.AuthService)...)
			r.Post("/{matchID}/winner", h.Match.SetWinner)
			r.Post("/{matchID}/undo", h.Match.Undo)
		})

		r.Route("/rankings", func(r chi.Router) {
			r.Get("/", h.Ranking.GetRankings)
			r.Get("/head-to-head", h.Ranking.HeadToHead)
			r.Get("/stats", h.Ranking.Stats)
			r.With(adminOnly(opts.AuthService)...).Post("/reset", h.Ranking.Reset)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.Ranking.GetSettings)
			r.With(adminOnly(opts.AuthService)...).Put("/", h.Ranking.UpdateSettings)
		})
	})
}

func adminOnly(authService services.AuthService) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Authenticate(authService),
		middleware.Authorize(services.RoleAdmin),
	}
}
