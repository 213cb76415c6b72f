package api

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rflorenc/databricks-resource-cleaner/internal/metrics"
	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

// Server holds shared state for all handlers.
type Server struct {
	Workspaces *models.WorkspaceStore
	Runs       *models.RunStore
	Sessions   *models.SessionStore
	NewAPI     platform.Factory
	Metrics    *metrics.Metrics
	Page       *template.Template

	// BaseContext parents every run; cancelling it stops runs between categories.
	BaseContext context.Context

	// Only one deletion executes at a time.
	runMu sync.Mutex
}

// NewServer wires a Server with empty stores and the Databricks SDK client factory.
func NewServer(ctx context.Context, page *template.Template) *Server {
	return &Server{
		Workspaces:  models.NewWorkspaceStore(),
		Runs:        models.NewRunStore(),
		Sessions:    models.NewSessionStore(),
		NewAPI:      platform.NewAPI,
		Metrics:     metrics.New(),
		Page:        page,
		BaseContext: ctx,
	}
}

// ParsePage parses the form page template from the web filesystem.
func ParsePage(webFS fs.FS) (*template.Template, error) {
	return template.New("index.html").Funcs(template.FuncMap{
		"selected": func(sel models.Selection, c models.Category) bool { return sel[c] },
	}).ParseFS(webFS, "templates/index.html")
}

// NewRouter builds the chi router with the page, API routes and static file serving.
func NewRouter(s *Server, webFS fs.FS) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// Form page
	r.Get("/", s.Index)
	r.Post("/run", s.SubmitRun)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.ListCategories)

		// Saved workspaces
		r.Post("/workspaces", s.CreateWorkspace)
		r.Get("/workspaces", s.ListWorkspaces)
		r.Put("/workspaces/{id}", s.UpdateWorkspace)
		r.Delete("/workspaces/{id}", s.DeleteWorkspace)
		r.Post("/workspaces/{id}/test", s.TestWorkspace)

		// Runs (async)
		r.Post("/runs", s.CreateRun)
		r.Get("/runs", s.ListRuns)
		r.Get("/runs/{id}", s.GetRun)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/runs/{id}/logs", s.StreamRunLogs)

	// Page assets
	static, err := fs.Sub(webFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	return r
}

func (s *Server) baseContext() context.Context {
	if s.BaseContext != nil {
		return s.BaseContext
	}
	return context.Background()
}
