package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/sparkmatch/internal/services/auth"
	boostsvc "github.com/ivankudzin/sparkmatch/internal/services/boost"
	feedsvc "github.com/ivankudzin/sparkmatch/internal/services/feed"
	matchessvc "github.com/ivankudzin/sparkmatch/internal/services/matches"
	prefsvc "github.com/ivankudzin/sparkmatch/internal/services/preferences"
	ratesvc "github.com/ivankudzin/sparkmatch/internal/services/rate"
	swipesvc "github.com/ivankudzin/sparkmatch/internal/services/swipes"
	"github.com/ivankudzin/sparkmatch/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	FeedService       *feedsvc.Service
	SwipeService      *swipesvc.Service
	MatchService      *matchessvc.Service
	PreferenceService *prefsvc.Service
	BoostService      *boostsvc.Service
	SwipeLimiter      *ratesvc.Limiter
	HealthChecks      map[string]handlers.Pinger
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	preferencesHandler := handlers.NewPreferencesHandler(deps.PreferenceService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	boostHandler := handlers.NewBoostHandler(deps.BoostService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	swipeLimitMW := SwipeRateLimit(deps.SwipeLimiter, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/matches", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", matchesHandler.List)
		r.With(swipeLimitMW).Post("/like", swipeHandler.Like)
		r.With(swipeLimitMW).Post("/dislike", swipeHandler.Dislike)
		r.With(swipeLimitMW).Post("/superlike", swipeHandler.SuperLike)
		r.Get("/feed", feedHandler.Feed)
		r.Get("/preference/users", feedHandler.PreferenceUsers)
		r.Get("/preferences", preferencesHandler.Get)
		r.Put("/preferences", preferencesHandler.Put)
		r.Get("/user/{id}", matchesHandler.Profile)
		r.Get("/likes/received", matchesHandler.LikesReceived)
		r.Get("/likes/sent", matchesHandler.LikesSent)
	})

	r.Route("/boost", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/status", boostHandler.Status)
		r.Get("/packages", boostHandler.Packages)
		r.Post("/purchase", boostHandler.Purchase)
		r.Post("/activate", boostHandler.Activate)
		r.Post("/deactivate", boostHandler.Deactivate)
	})
}
