package appsapi

import (
	"encoding/json"
	"net/http"
)

type applicationBody struct {
	Label      string `json:"label"`
	Persistent bool   `json:"persistent"`
}

type applicationView struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Persistent bool   `json:"persistent"`
}

func (a *App) createApplication(w http.ResponseWriter, r *http.Request) {
	var b applicationBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if b.Label == "" {
		http.Error(w, "missing label", http.StatusBadRequest)
		return
	}
	app, err := a.svc.CreateApplication(r.Context(), b.Label, b.Persistent, AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, applicationView{Key: app.Key, Label: app.Label, Persistent: app.Persistent}, http.StatusCreated)
}

func (a *App) listApplications(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.ListApplications(r.Context(), AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	views := make([]applicationView, 0, len(list))
	for _, app := range list {
		views = append(views, applicationView{Key: app.Key, Label: app.Label, Persistent: app.Persistent})
	}
	writeJSON(w, views, http.StatusOK)
}
