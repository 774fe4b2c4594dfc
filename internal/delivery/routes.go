package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterOptions struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
}

func NewRouter(h *ConvertHandler, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	RegisterRoutes(r, h, opts.RateLimitPerMinute)
	return r
}

func RegisterRoutes(r chi.Router, h *ConvertHandler, ratePerMinute int) {
	r.Group(func(cr chi.Router) {
		cr.Use(httputil.RecoverMiddleware)
		if ratePerMinute > 0 {
			cr.Use(httprate.LimitByIP(ratePerMinute, time.Minute))
		}

		cr.Post("/convert-pdf", h.Convert)
		cr.Post("/convert", h.Convert)
	})

	r.With(httputil.RecoverMiddleware).Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})
}
