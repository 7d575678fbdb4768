package appsapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"graphgate/internal/apps"
	"graphgate/pkg/middleware"
	"graphgate/pkg/store"
)

// Handler builds the router. Health and metrics stay outside auth.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Tracing())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/applications", func(r chi.Router) {
		r.Post("/", a.withAuth(a.createApplication))
		r.Get("/", a.withAuth(a.listApplications))
		r.Route("/{appKey}", func(r chi.Router) {
			r.Get("/tokens", a.withAuth(a.listTokens))
			r.Post("/tokens", a.withAuth(a.issueToken))
			r.Delete("/tokens/{name}", a.withAuth(a.revokeToken))
			r.Get("/config", a.withAuth(a.getConfig))
			r.Put("/config", a.withAuth(a.putConfig))
			r.Post("/exports", a.withAuth(a.createExport))
			r.Get("/exports/{exportID}", a.withAuth(a.getExport))
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the outward status codes.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unknownApp *apps.UnknownApplicationError
		unknownKey *apps.UnknownApiKeyError
		revoked    *apps.RevokedApiKeyError
		decodeErr  *store.DecodeError
	)
	switch {
	case errors.Is(err, errUnauthenticated):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.As(err, &revoked):
		http.Error(w, "api key revoked", http.StatusUnauthorized)
	case errors.Is(err, store.ErrAuthorizationDenied):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.As(err, &unknownApp), errors.As(err, &unknownKey):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, apps.ErrDuplicateRecords):
		a.log.Errorw("duplicate records", "path", r.URL.Path)
		http.Error(w, "conflicting records", http.StatusConflict)
	case errors.As(err, &decodeErr):
		a.log.Errorw("binding decode failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		a.log.Errorw("request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
