package models

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Workspace is a saved Databricks workspace the operator can run against
// without retyping credentials.
type Workspace struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Host     string `json:"host"`  // "https://<workspace>.cloud.databricks.com"
	Token    string `json:"token"` // personal access token
	Insecure bool   `json:"insecure"`

	Cloud       string     `json:"cloud,omitempty"` // "aws", "azure", "gcp"
	User        string     `json:"user,omitempty"`  // resolved by the auth check
	AuthStatus  string     `json:"auth_status"`     // "unknown", "ok", "error"
	AuthError   string     `json:"auth_error,omitempty"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

// BaseURL returns the host without a trailing slash.
func (w *Workspace) BaseURL() string {
	return strings.TrimRight(w.Host, "/")
}

// MaskedToken hides the token for API responses.
func (w *Workspace) MaskedToken() string {
	if w.Token == "" {
		return ""
	}
	return "••••••••"
}

// Redacted returns a copy safe to serialize.
func (w *Workspace) Redacted() Workspace {
	c := *w
	c.Token = w.MaskedToken()
	return c
}

// WorkspaceStore is an in-memory thread-safe store for saved workspaces.
// It keeps its own copies; callers only ever see snapshots.
type WorkspaceStore struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewWorkspaceStore creates an empty workspace store.
func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{workspaces: make(map[string]*Workspace)}
}

// Create adds a new workspace, assigning it a UUID.
func (s *WorkspaceStore) Create(w *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = uuid.New().String()
	if w.AuthStatus == "" {
		w.AuthStatus = "unknown"
	}
	s.workspaces[w.ID] = w.clone()
}

// Get returns a copy of a workspace by ID, or nil if not found.
func (s *WorkspaceStore) Get(id string) *Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil
	}
	return w.clone()
}

// List returns copies of all workspaces ordered by name.
func (s *WorkspaceStore) List() []*Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Workspace, 0, len(s.workspaces))
	for _, w := range s.workspaces {
		result = append(result, w.clone())
	}
	sortByName(result)
	return result
}

// Update replaces an existing workspace's settings. An empty or masked token keeps the old one.
func (s *WorkspaceStore) Update(w *Workspace) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.workspaces[w.ID]
	if !ok {
		return false
	}
	if w.Token == "" || w.Token == old.MaskedToken() {
		w.Token = old.Token
	}
	if w.AuthStatus == "" {
		w.AuthStatus = "unknown"
	}
	s.workspaces[w.ID] = w.clone()
	return true
}

// Delete removes a workspace by ID.
func (s *WorkspaceStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return false
	}
	delete(s.workspaces, id)
	return true
}

// SetHealth records the outcome of an auth check and returns the updated
// copy, or nil if the workspace was deleted meanwhile.
func (s *WorkspaceStore) SetHealth(id, authStatus, authError, user string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil
	}
	now := time.Now()
	w.AuthStatus = authStatus
	w.AuthError = authError
	if user != "" {
		w.User = user
	}
	w.LastChecked = &now
	return w.clone()
}

func (w *Workspace) clone() *Workspace {
	c := *w
	if w.LastChecked != nil {
		t := *w.LastChecked
		c.LastChecked = &t
	}
	return &c
}

func sortByName(ws []*Workspace) {
	for i := 0; i < len(ws); i++ {
		for j := i + 1; j < len(ws); j++ {
			if ws[j].Name < ws[i].Name {
				ws[i], ws[j] = ws[j], ws[i]
			}
		}
	}
}
