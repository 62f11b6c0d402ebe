/*
server.go - HTTP router configuration

ROUTER: chi
  Lightweight, context-based, middleware support, RESTful patterns.

MIDDLEWARE STACK:
  1. RequestID: unique ID per request for tracing
  2. Recoverer: panic recovery (500 instead of crash)
  3. CORS:      cross-origin requests for a frontend

ROUTE GROUPS:
  /api/accounts/*       account creation, lookup, recharge
  /api/transactions/*   single-row lookup
  /api/transfers        two-account transfer

No authentication middleware: identity is handled by the surrounding
application, this service trusts the owner ids it is handed.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all ledger routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/", h.GetAccount)
			r.Get("/{id}/transactions", h.GetTransactions)
			r.Post("/{id}/recharge", h.Recharge)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/{id}", h.GetTransaction)
		})

		r.Post("/transfers", h.Transfer)
	})

	return r
}
