package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

// errBusy is returned when a second deletion is requested while one is running.
var errBusy = errors.New("another deletion is already running")

// runRequestBody is the JSON form of the page's inputs.
type runRequestBody struct {
	WorkspaceID             string   `json:"workspace_id"`
	Host                    string   `json:"host"`
	Token                   string   `json:"token"`
	Categories              []string `json:"categories"`
	DisableFoundationModels bool     `json:"disable_foundation_models"`
	DeleteAIBricks          bool     `json:"delete_ai_bricks"`
	Confirmed               bool     `json:"confirmed"`
}

// ListCategories returns the selectable resource categories in execution order.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ResourceTypes)
}

// CreateRun validates the request and starts the deletion in the background.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	var body runRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	sel, err := models.NewSelection(body.Categories)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := &models.RunRequest{
		Host:       platform.NormalizeHost(body.Host),
		Token:      body.Token,
		Categories: sel,
		Options: models.Options{
			DisableFoundationModels: body.DisableFoundationModels,
			DeleteAIBricks:          body.DeleteAIBricks,
		},
		Confirmed: body.Confirmed,
	}
	if body.WorkspaceID != "" {
		ws := s.Workspaces.Get(body.WorkspaceID)
		if ws == nil {
			writeError(w, http.StatusNotFound, "workspace not found")
			return
		}
		req.Host, req.Token = ws.BaseURL(), ws.Token
	}

	if err := req.Validate(); err != nil {
		msg := err.Error()
		if errors.Is(err, models.ErrInvalidHost) {
			msg = models.InvalidHostMessage
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if !s.runMu.TryLock() {
		writeError(w, http.StatusConflict, errBusy.Error())
		return
	}

	run := s.Runs.Create(req.Host, body.WorkspaceID, req.Categories.Ordered(), req.Options)
	if sid := s.existingSession(r); sid != "" {
		s.Sessions.SetLatestRun(sid, run.ID)
	}

	go func() {
		defer s.runMu.Unlock()
		s.execute(s.baseContext(), run, req)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": run.ID})
}

// ListRuns returns all runs, most recent first.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs := s.Runs.List()
	out := make([]*models.Run, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRun returns a run with its tagged status lines.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run := s.Runs.Get(id)
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":   run.Snapshot(),
		"lines": run.Lines(),
	})
}

// execute performs the deletion for a validated request and finalizes the run.
// The caller holds runMu.
func (s *Server) execute(ctx context.Context, run *models.Run, req *models.RunRequest) {
	logger := func(line string) {
		run.AppendLog(line)
		log.Info().Str("run", run.ID).Msg(line)
	}
	log.Info().Str("run", run.ID).Str("host", run.Host).Interface("categories", run.Categories).Msg("starting cleanup")

	defer func() {
		if s.Metrics != nil {
			s.Metrics.RecordRun(run)
		}
	}()

	api, err := s.NewAPI(&models.Workspace{Host: req.Host, Token: req.Token, Insecure: s.insecureFor(run.WorkspaceID)})
	if err != nil {
		msg := fmt.Sprintf("Connection error: %v", err)
		logger(msg)
		run.Fail(msg, nil)
		return
	}

	tallies := platform.Run(ctx, api, run.Categories, run.Options, logger)
	if err := ctx.Err(); err != nil {
		run.Fail(fmt.Sprintf("cancelled: %v", err), tallies)
		return
	}
	run.Complete(tallies)
	log.Info().Str("run", run.ID).Msg("cleanup complete")
}

func (s *Server) insecureFor(workspaceID string) bool {
	if workspaceID == "" {
		return false
	}
	if ws := s.Workspaces.Get(workspaceID); ws != nil {
		return ws.Insecure
	}
	return false
}
