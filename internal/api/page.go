package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

const sessionCookie = "dbcleaner_session"

// pageData feeds templates/index.html.
type pageData struct {
	ResourceTypes []models.ResourceType
	Host          string
	Selection     models.Selection
	Options       models.Options
	Error         string
	Run           *models.Run
	Lines         []models.StatusLine
	Warning       string
}

// Index renders the form with the status log of the session's latest run.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	data := pageData{Selection: models.Selection{}}

	if run := s.Runs.Get(s.Sessions.LatestRun(sid)); run != nil {
		data.Run = run.Snapshot()
		data.Lines = run.Lines()
		data.Host = run.Host
		data.Options = run.Options
	}
	s.render(w, http.StatusOK, data)
}

// SubmitRun handles the delete button. The run executes synchronously, then
// the browser is redirected back to the page, which shows the fresh log.
func (s *Server) SubmitRun(w http.ResponseWriter, r *http.Request) {
	sid := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{Selection: models.Selection{}, Error: err.Error()})
		return
	}

	// Unknown labels are ignored; the page only offers registry entries.
	sel := models.Selection{}
	for _, v := range r.PostForm["categories"] {
		if c, err := models.ParseCategory(v); err == nil {
			sel[c] = true
		}
	}
	req := &models.RunRequest{
		Host:       platform.NormalizeHost(r.PostFormValue("host")),
		Token:      r.PostFormValue("token"),
		Categories: sel,
		Options: models.Options{
			DisableFoundationModels: r.PostFormValue("disable_foundation_models") != "",
			DeleteAIBricks:          r.PostFormValue("delete_ai_bricks") != "",
		},
		Confirmed: r.PostFormValue("confirm") != "",
	}

	data := pageData{Host: req.Host, Selection: sel, Options: req.Options}
	if err := req.Validate(); err != nil {
		data.Error = err.Error()
		if errors.Is(err, models.ErrInvalidHost) {
			data.Error = models.InvalidHostMessage
		}
		s.render(w, http.StatusBadRequest, data)
		return
	}

	if !s.runMu.TryLock() {
		data.Error = errBusy.Error()
		s.render(w, http.StatusConflict, data)
		return
	}
	defer s.runMu.Unlock()

	run := s.Runs.Create(req.Host, "", req.Categories.Ordered(), req.Options)
	s.Sessions.SetLatestRun(sid, run.ID)
	s.execute(s.baseContext(), run, req)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	data.ResourceTypes = models.ResourceTypes
	data.Warning = models.Warning

	var buf bytes.Buffer
	if err := s.Page.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("rendering page")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// session returns the caller's page session, issuing a cookie when missing or unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if sid := s.existingSession(r); sid != "" {
		return sid
	}
	sid := s.Sessions.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return sid
}

func (s *Server) existingSession(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil || !s.Sessions.Exists(c.Value) {
		return ""
	}
	return c.Value
}
