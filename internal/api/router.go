package api

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/quickcdn/qcdn/docs"

	"github.com/quickcdn/qcdn/internal/api/handlers"
	"github.com/quickcdn/qcdn/internal/api/middleware"
	"github.com/quickcdn/qcdn/internal/config"
)

// SetupRouter wires the routes. Identity resolution runs on every request;
// authorization happens inside the pipelines, not here.
func SetupRouter(h *handlers.Handler, auth *middleware.Auth, cfg config.Config, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("GET /docs/", httpSwagger.WrapHandler)

	mux.HandleFunc("GET /upload", h.UploadPage)
	mux.HandleFunc("POST /upload", h.Upload)

	mux.HandleFunc("GET /file/{id}", h.Info)
	mux.HandleFunc("GET /file/{id}/download", h.Download)
	mux.HandleFunc("DELETE /file/{id}", h.Delete)

	mux.HandleFunc("GET /stats", h.Stats)
	mux.HandleFunc("GET /me", h.Me)
	mux.HandleFunc("POST /users", h.CreateUser)

	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)

	c := cors.New(cfg.CorsConfig)

	var handler http.Handler = mux
	handler = auth.Resolve(handler)
	handler = c.Handler(handler)
	handler = middleware.Logger(logger)(handler)
	return handler
}
