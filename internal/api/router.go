package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the operator API. Assets downloaded by the scraper
// are served statically under the configured public path.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Route("/api/{provider}", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Post("/categories/refresh", h.RefreshCategories)
		r.Post("/assets/{category}", h.ScrapeAssets)
		r.Get("/assets/{category}", h.ListAssets)
		r.Get("/scraped-products", h.ListSnapshots)
	})

	fileServer := http.StripPrefix(h.publicPath+"/", http.FileServer(http.Dir(h.assetsRoot)))
	r.Get(h.publicPath+"/*", fileServer.ServeHTTP)

	return r
}
