package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/provlabs/classifyd/internal/core/application"
	"github.com/provlabs/classifyd/internal/interface/web/metrics"
	log "github.com/sirupsen/logrus"
)

// NewRouter mounts the whole classification API.
func NewRouter(
	svc application.Service, adminSvc application.AdminService, m *metrics.Metrics,
) http.Handler {
	h := newHandler(svc, adminSvc, m)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/definitions", func(r chi.Router) {
			r.Get("/", h.observe("/v1/definitions", h.listDefinitions))
			r.Post("/", h.observe("/v1/definitions", h.addDefinition))
			r.Put("/", h.observe("/v1/definitions", h.updateDefinition))
			r.Route("/{assetType}", func(r chi.Router) {
				r.Get("/", h.observe("/v1/definitions/{assetType}", h.getDefinition))
				r.Delete("/", h.observe("/v1/definitions/{assetType}", h.deleteDefinition))
				r.Post("/toggle", h.observe("/v1/definitions/{assetType}/toggle", h.toggleDefinition))
				r.Post("/verifiers", h.observe("/v1/definitions/{assetType}/verifiers", h.addVerifier))
				r.Put("/verifiers", h.observe("/v1/definitions/{assetType}/verifiers", h.updateVerifier))
			})
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.observe("/v1/assets", h.getAsset))
			r.Post("/onboard", h.observe("/v1/assets/onboard", h.onboardAsset))
			r.Post("/verify", h.observe("/v1/assets/verify", h.verifyAsset))
			r.Post("/access-routes", h.observe("/v1/assets/access-routes", h.updateAccessRoutes))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/alias", h.observe("/v1/admin/alias", h.bindAlias))
			r.Post("/transfer", h.observe("/v1/admin/transfer", h.transferAdmin))
		})

		r.Get("/state", h.observe("/v1/state", h.getState))
		r.Get("/version", h.observe("/v1/version", h.getVersion))
	})

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// NewServer builds an HTTP server with sane defaults for this project.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("status", ww.Status()).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("request_id", middleware.GetReqID(r.Context())).
			Debug("request handled")
	})
}
