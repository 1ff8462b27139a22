package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/postty/showcase-agent/internal/handler/agenthttp"
	middlewarePkg "github.com/postty/showcase-agent/internal/middleware"
)

// NewRouter wires HTTP routes to the agent.
func NewRouter(a agenthttp.Agent) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	agentHandler := agenthttp.New(a)
	wsHandler := agenthttp.NewWebSocket(a)

	// Bare paths keep existing clients working; /api is the canonical prefix.
	agentHandler.RegisterRoutes(r)
	r.Get("/ws", wsHandler.HandleWS)

	r.Route("/api", func(api chi.Router) {
		agentHandler.RegisterRoutes(api)
		api.Get("/ws", wsHandler.HandleWS)
	})

	return r
}
