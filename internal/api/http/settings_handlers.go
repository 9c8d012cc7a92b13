package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wenw80/GrowAssess-sub000/internal/settings"
)

// Admin-only knobs for the grading collaborator. Values land in the settings
// table and win over the environment defaults on the next grading call.

var settableKeys = map[string]bool{
	settings.KeyGradingBaseURL: true,
	settings.KeyGradingModel:   true,
	settings.KeyGradingAPIKey:  true,
}

// PUT /settings/{key}  { "value": "..." }
func PutSettingHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if !settableKeys[key] {
			http.Error(w, "unknown setting", http.StatusBadRequest)
			return
		}
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if err := store.Put(r.Context(), key, req.Value); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /settings/{key} — the API key is reported only as present/absent.
func GetSettingHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if !settableKeys[key] {
			http.Error(w, "unknown setting", http.StatusBadRequest)
			return
		}
		v, err := store.Get(r.Context(), key)
		if errors.Is(err, settings.ErrNotSet) {
			http.Error(w, "not set", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if key == settings.KeyGradingAPIKey {
			writeJSON(w, http.StatusOK, map[string]any{"key": key, "set": v != ""})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": v})
	}
}
