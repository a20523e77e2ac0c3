// Package main provides the API router setup.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shopsense-ai/catalog-assistant/cmd/catalog-assistant-api/handlers"
	"github.com/shopsense-ai/catalog-assistant/cmd/catalog-assistant-api/middleware"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, requestTimeout time.Duration, chatSvc handlers.ChatService, productSvc handlers.ProductService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceID())
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"catalog-assistant"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, chatSvc)
	productsHandler := handlers.NewProductsHandler(logger, productSvc)

	r.Post("/chat", chatHandler.Chat)
	r.Get("/products", productsHandler.List)

	return r
}
