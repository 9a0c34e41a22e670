package server

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	IndexStore string `json:"index_store"`
	Cache      string `json:"cache"`
	Bus        string `json:"bus"`
}

type versionResponse struct {
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    s.version,
		IndexStore: s.cfg.Index.Backend,
		Cache:      s.cfg.Cache.Type,
		Bus:        s.cfg.Bus.Type,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{Version: s.version})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
