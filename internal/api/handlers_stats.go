package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleResolverStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "resolver stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"stats": s.stats.Snapshot(),
	})
}
