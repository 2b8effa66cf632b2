package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/prefs"
)

const maxClassifyBody = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *APIServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
	})
}

func (s *APIServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

type settingsResponse struct {
	Path     string         `json:"path"`
	LoadedAt time.Time      `json:"loaded_at"`
	Settings prefs.Settings `json:"settings"`
	Error    string         `json:"error,omitempty"`
}

func (s *APIServer) settings() settingsResponse {
	res := settingsResponse{
		Path:     s.store.Path(),
		LoadedAt: s.store.LoadedAt(),
		Settings: s.store.Settings(),
	}
	if err := s.store.Err(); err != nil {
		res.Error = err.Error()
	}
	return res
}

func (s *APIServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings())
}

func (s *APIServer) handleSettingsReload(w http.ResponseWriter, r *http.Request) {
	s.interceptor.OnSettingsChanged()
	writeJSON(w, http.StatusOK, s.settings())
}

func (s *APIServer) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.interceptor.Engine().Rules())
}

func (s *APIServer) handleClassify(w http.ResponseWriter, r *http.Request) {
	var in intent.Intent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.interceptor.DryRun(&in))
}

func (s *APIServer) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.interceptor.Recent())
}

func (s *APIServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recorder.Snapshot())
}
