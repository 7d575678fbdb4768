package appsapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type configBody struct {
	S3Host          string `json:"s3_host"`
	S3BucketID      string `json:"s3_bucket_id"`
	ExportFrequency string `json:"export_frequency"`
}

func (a *App) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.svc.GetConfig(r.Context(), chi.URLParam(r, "appKey"), AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"label":            cfg.Label,
		"persistent":       cfg.Persistent,
		"s3_host":          cfg.S3Host,
		"s3_bucket_id":     cfg.S3BucketID,
		"export_frequency": cfg.ExportFrequency,
	}, http.StatusOK)
}

func (a *App) putConfig(w http.ResponseWriter, r *http.Request) {
	var b configBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if b.S3Host == "" || b.S3BucketID == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	err := a.svc.SetConfig(r.Context(), chi.URLParam(r, "appKey"), b.S3Host, b.S3BucketID, b.ExportFrequency, AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (a *App) createExport(w http.ResponseWriter, r *http.Request) {
	key, err := a.svc.ExportApplication(r.Context(), chi.URLParam(r, "appKey"), AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"object_id": key}, http.StatusAccepted)
}

func (a *App) getExport(w http.ResponseWriter, r *http.Request) {
	info, err := a.svc.GetExport(r.Context(), chi.URLParam(r, "appKey"), chi.URLParam(r, "exportID"), AuthFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"s3_host":      info.S3Host,
		"s3_bucket_id": info.S3BucketID,
		"s3_object_id": info.S3ObjectID,
	}, http.StatusOK)
}
