package api

import (
	"net/http"

	"go.uber.org/zap"
)

func (s *Server) rows(w http.ResponseWriter, r *http.Request) {
	if s.deps.Rows == nil {
		writeStatus(w, http.StatusServiceUnavailable, "error", "No sink configured")
		return
	}
	rows, err := s.deps.Rows.Rows(r.Context())
	if err != nil {
		zap.L().Error("api: read rows failed", zap.Error(err))
		writeStatus(w, http.StatusBadGateway, "error", "Failed to read rows")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(rows),
		"rows":  rows,
	})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Status == nil {
		writeStatus(w, http.StatusServiceUnavailable, "error", "Polling is not enabled")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Status.Snapshot())
}
