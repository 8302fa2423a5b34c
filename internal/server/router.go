package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/auth"
	"github.com/emberdate/ember-server/internal/handler"
	"github.com/emberdate/ember-server/internal/service/account"
	"github.com/emberdate/ember-server/internal/service/conversation"
	"github.com/emberdate/ember-server/internal/service/match"
	"github.com/emberdate/ember-server/internal/service/profile"
	"github.com/emberdate/ember-server/internal/service/swipe"
)

// NewRouter assembles the service layer and mounts every HTTP route.
func NewRouter(appCtx *app.AppContext) http.Handler {
	tokens := auth.NewJWTManager(appCtx.Config.JWT.Secret, appCtx.Config.JWT.AccessTTL)

	accounts := account.NewService(appCtx, tokens)
	profiles := profile.NewService(appCtx)
	swipes := swipe.NewService(appCtx)
	matches := match.NewService(appCtx)
	conversations := conversation.NewService(appCtx)

	authHandler := handler.NewAuthHandler(accounts)
	profileHandler := handler.NewProfileHandler(profiles)
	swipeHandler := handler.NewSwipeHandler(swipes, matches)
	matchHandler := handler.NewMatchHandler(matches)
	messageHandler := handler.NewMessageHandler(conversations)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(tokens, appCtx.RedisCache))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens, appCtx.RedisCache))

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile/{id}", profileHandler.Get)
				r.Put("/profile/{id}", profileHandler.Update)
				r.Get("/potential-matches", swipeHandler.PotentialMatches)
				r.Post("/swipe", swipeHandler.Swipe)
				r.Get("/pending-match", swipeHandler.PendingMatch)
				r.Post("/mark-match-seen", swipeHandler.MarkMatchSeen)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", matchHandler.List)
				r.Delete("/{matchId}", matchHandler.Unmatch)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/unread-count", messageHandler.UnreadCount)
				r.Get("/{matchId}", messageHandler.Get)
				r.Post("/{matchId}", messageHandler.Send)
				r.Post("/{matchId}/read", messageHandler.MarkRead)
			})
		})
	})

	return r
}
