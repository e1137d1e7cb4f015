package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/auth"
	"github.com/rpupo63/wholspace-backend/config"
	"github.com/rpupo63/wholspace-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, service *services.Service, verifier *auth.Verifier) (Server, error) {
	if verifier == nil {
		return Server{}, fmt.Errorf("an identity verifier is required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(service, withConfig(c), withVerifier(verifier), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(c, "READ_TIMEOUT_SECONDS", 180*time.Second),
		WriteTimeout: config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second),
		IdleTimeout:  config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	verifier    *auth.Verifier
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withVerifier(v *auth.Verifier) func(*router) {
	return func(r *router) {
		r.verifier = v
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(service *services.Service, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	handlers := initializeHandlers(service)
	authMiddleware := newAuthMiddleware(router.verifier)

	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	chiRouter.Get("/health", healthHandler(router.startupTime))
	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func healthHandler(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthHandler").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, map[string]any{
			"status":        "ok",
			"uptimeSeconds": int(time.Since(startupTime).Seconds()),
		})
	}
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
