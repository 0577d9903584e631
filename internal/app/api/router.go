package api

import (
	"net/http"

	"app/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogchi "github.com/samber/slog-chi"
)

func (api *API) NewRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(slogchi.New(api.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.StripSlashes)

	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	router.Post("/register", api.register)
	router.Post("/login", api.login)

	router.Group(func(router chi.Router) {
		router.Use(api.AuthMiddleware)

		router.Get("/user", api.user)
		router.Get("/protected", api.protected)

		router.Get("/getTexts", api.getTexts)
		router.Post("/synthesize", api.synthesize)
		router.Post("/saveText", api.saveText)
		router.Post("/saveHistory", api.saveHistory)
		router.Delete("/clearHistory", api.clearHistory)
	})

	router.Handle("/static/*", http.FileServer(http.FS(web.Static)))
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusMovedPermanently)
	})

	return router
}
