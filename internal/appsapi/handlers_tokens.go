package appsapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type tokenBody struct {
	Name string `json:"name"`
}

type tokenView struct {
	Key            string    `json:"key,omitempty"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	IssuedAt       time.Time `json:"issued_at"`
	ApplicationKey string    `json:"application_key"`
}

func (a *App) issueToken(w http.ResponseWriter, r *http.Request) {
	var b tokenBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if b.Name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	tok, err := a.svc.IssueToken(r.Context(), chi.URLParam(r, "appKey"), b.Name, AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	// The only moment the bearer key is ever shown.
	writeJSON(w, tokenView{
		Key:            tok.Key,
		Name:           tok.Label,
		Active:         tok.Active,
		IssuedAt:       tok.IssuedAt,
		ApplicationKey: tok.Application.Key,
	}, http.StatusCreated)
}

func (a *App) listTokens(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.ListTokens(r.Context(), chi.URLParam(r, "appKey"), AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	views := make([]tokenView, 0, len(list))
	for _, tok := range list {
		views = append(views, tokenView{
			Name:           tok.Label,
			Active:         tok.Active,
			IssuedAt:       tok.IssuedAt,
			ApplicationKey: tok.Application.Key,
		})
	}
	writeJSON(w, views, http.StatusOK)
}

func (a *App) revokeToken(w http.ResponseWriter, r *http.Request) {
	err := a.svc.RevokeToken(r.Context(), chi.URLParam(r, "appKey"), chi.URLParam(r, "name"), AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
