package api

import (
	"net/http"

	"github.com/garnizeh/buddyup/internal/config"
	"github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/internal/repository/sqlstore"
	"github.com/garnizeh/buddyup/internal/service"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, d *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and services
	store := sqlstore.New(d, logger)
	repos := service.Repos{Users: store, Profiles: store, Connections: store, Ads: store, Messages: store, Feed: store}

	userSvc := service.NewUserService(repos, logger)
	adSvc := service.NewAdService(repos, logger).WithLimits(cfg.Ads.DefaultLimit, cfg.Ads.MaxLimit)
	feedSvc := service.NewFeedService(repos, logger).WithDefaultLimit(cfg.Feed.DefaultLimit)

	// Create handlers
	systemHandler := NewSystemHandler(d)
	authHandler := NewAuthHandler(userSvc, cfg.JWTSecret, cfg.TokenDuration)
	usersHandler := NewUsersHandler(userSvc)
	connHandler := NewConnectionsHandler(service.NewConnectionService(repos, logger))
	adsHandler := NewAdsHandler(adSvc)
	msgHandler := NewMessagesHandler(service.NewMessageService(repos, logger))
	feedHandler := NewFeedHandler(feedSvc)

	auth := JWTAuthMiddlewareWithSecret(cfg.JWTSecret)
	optional := OptionalJWTMiddleware(cfg.JWTSecret)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/users/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/ads", adsHandler.Search).Methods("GET")
	r.HandleFunc("/ads/{id}", adsHandler.Get).Methods("GET")
	r.Handle("/feed-posts", optional(http.HandlerFunc(feedHandler.List))).Methods("GET")

	// Users and profiles
	r.Handle("/users/current", protected(usersHandler.Current)).Methods("GET")
	r.Handle("/users/current", protected(usersHandler.UpdateCurrent)).Methods("PUT")
	r.Handle("/profile", protected(usersHandler.Profile)).Methods("GET")
	r.Handle("/profile", protected(usersHandler.UpdateProfile)).Methods("PUT")
	r.Handle("/profile/{id}", protected(usersHandler.PublicProfile)).Methods("GET")

	// Ads
	r.Handle("/ads", protected(adsHandler.Create)).Methods("POST")
	r.Handle("/ads/{id}", protected(adsHandler.Delete)).Methods("DELETE")
	r.Handle("/ads/{id}/roles/{roleId}", protected(adsHandler.SetRoleOpen)).Methods("PUT")

	// Connections
	r.Handle("/connections", protected(connHandler.Send)).Methods("POST")
	r.Handle("/connections/requests", protected(connHandler.Requests)).Methods("GET")
	r.Handle("/connections/sent", protected(connHandler.Sent)).Methods("GET")
	r.Handle("/connections/all", protected(connHandler.All)).Methods("GET")
	r.Handle("/connections/stats", protected(connHandler.Stats)).Methods("GET")
	r.Handle("/connections/status/{userId}", protected(connHandler.Status)).Methods("GET")
	r.Handle("/connections/{id}/respond", protected(connHandler.Respond)).Methods("POST")
	r.Handle("/connections/{id}", protected(connHandler.Remove)).Methods("DELETE")

	// Messages
	r.Handle("/messages", protected(msgHandler.Create)).Methods("POST")
	r.Handle("/messages", protected(msgHandler.List)).Methods("GET")
	r.Handle("/messages/sent", protected(msgHandler.Sent)).Methods("GET")
	r.Handle("/messages/received", protected(msgHandler.Received)).Methods("GET")
	r.Handle("/messages/{id}", protected(msgHandler.Get)).Methods("GET")
	r.Handle("/messages/{id}", protected(msgHandler.Update)).Methods("POST")
	r.Handle("/messages/{id}/seen", protected(msgHandler.MarkSeen)).Methods("POST")
	r.Handle("/messages/{id}", protected(msgHandler.Delete)).Methods("DELETE")

	// Feed
	r.Handle("/feed-posts", protected(feedHandler.Create)).Methods("POST")
	r.Handle("/feed-posts/user/{userId}", protected(feedHandler.ListByUser)).Methods("GET")
	r.Handle("/feed-posts/{id}", protected(feedHandler.Get)).Methods("GET")
	r.Handle("/feed-posts/{id}", protected(feedHandler.Delete)).Methods("DELETE")
	r.Handle("/feed-posts/{id}/like", protected(feedHandler.Like)).Methods("POST")
	r.Handle("/feed-posts/{id}/like", protected(feedHandler.Unlike)).Methods("DELETE")
	r.Handle("/feed-posts/{id}/liked", protected(feedHandler.Liked)).Methods("GET")

	// Preflight requests must match a route so the middleware chain, and with
	// it CORSMiddleware, runs. Registered last so real routes win.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
