package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Marling1212/ntu-sports-sub001/handlers"
	"github.com/Marling1212/ntu-sports-sub001/middleware"
	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/services"
)

// SetupRoutes wires every HTTP endpoint. Viewing endpoints are public;
// anything that changes an event is restricted to its organizer.
func SetupRoutes(
	router *chi.Mux,
	authService services.AuthService,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	competitorHandler *handlers.CompetitorHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	announcementHandler *handlers.AnnouncementHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	authenticate := middleware.Authenticate(authService)
	organizerOnly := middleware.RequireRole(models.RoleOrganizer)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.RegisterHandler)
		r.Post("/login", authHandler.LoginHandler)
		r.With(authenticate).Get("/me", authHandler.MeHandler)
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListHandler)
		r.Get("/{eventID}", eventHandler.GetByIDHandler)
		r.Get("/{eventID}/competitors", competitorHandler.ListHandler)
		r.Get("/{eventID}/matches", matchHandler.ListByEventHandler)
		r.Get("/{eventID}/draw", bracketHandler.GetDrawHandler)
		r.Get("/{eventID}/standings", standingsHandler.GetHandler)
		r.Get("/{eventID}/announcements", announcementHandler.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", eventHandler.CreateHandler)
			r.Put("/{eventID}", eventHandler.UpdateHandler)
			r.Patch("/{eventID}/status", eventHandler.UpdateStatusHandler)
			r.Post("/{eventID}/logo", eventHandler.UploadLogoHandler)
			r.Delete("/{eventID}", eventHandler.DeleteHandler)

			r.Post("/{eventID}/competitors", competitorHandler.AddHandler)
			r.Post("/{eventID}/bracket", bracketHandler.SeedHandler)
			r.Post("/{eventID}/playoffs", bracketHandler.SeedPlayoffsHandler)
			r.Post("/{eventID}/announcements", announcementHandler.CreateHandler)
		})
	})

	router.Route("/competitors", func(r chi.Router) {
		r.Get("/{competitorID}", competitorHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Put("/{competitorID}", competitorHandler.UpdateHandler)
			r.Post("/{competitorID}/logo", competitorHandler.UploadLogoHandler)
			r.Delete("/{competitorID}", competitorHandler.DeleteHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Put("/{matchID}/result", matchHandler.RecordResultHandler)
			r.Patch("/{matchID}/status", matchHandler.UpdateStatusHandler)
		})
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
