package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

func (s *Server) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var ws models.Workspace
	if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ws.Host = platform.NormalizeHost(ws.Host)
	if ws.Host == "" {
		writeError(w, http.StatusBadRequest, "host is required")
		return
	}
	if ws.Name == "" {
		ws.Name = ws.Host
	}
	ws.Cloud = platform.DetectCloud(ws.Host)
	ws.AuthStatus = ""
	s.Workspaces.Create(&ws)
	writeJSON(w, http.StatusCreated, ws.Redacted())
}

func (s *Server) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	list := s.Workspaces.List()
	out := make([]models.Workspace, 0, len(list))
	for _, ws := range list {
		out = append(out, ws.Redacted())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var ws models.Workspace
	if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ws.ID = id
	ws.Host = platform.NormalizeHost(ws.Host)
	ws.Cloud = platform.DetectCloud(ws.Host)
	ws.AuthStatus, ws.AuthError, ws.User, ws.LastChecked = "", "", "", nil
	if !s.Workspaces.Update(&ws) {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, ws.Redacted())
}

func (s *Server) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Workspaces.Delete(id) {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestWorkspace runs the auth check against a saved workspace.
func (s *Server) TestWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ws := s.Workspaces.Get(id)
	if ws == nil {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}
	ws = platform.DiscoverAndStore(r.Context(), s.NewAPI, ws, s.Workspaces)
	if ws == nil {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}
	if ws.AuthStatus != "ok" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    false,
			"error": ws.AuthError,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": ws.User,
	})
}
