package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	cleaner "github.com/rflorenc/databricks-resource-cleaner"
	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

// stubAPI is a canned workspace: every listing returns fixed items and every
// mutation succeeds unless named in fail.
type stubAPI struct {
	mu       sync.Mutex
	catalogs []string
	jobs     []platform.Job
	fail     map[string]bool
	deleted  []string

	// onMutate, when set, runs after each successful mutation.
	onMutate func()
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		catalogs: []string{"hive_metastore", "sales"},
		jobs:     []platform.Job{{ID: 7}},
		fail:     map[string]bool{},
	}
}

func (a *stubAPI) mutate(key string) error {
	a.mu.Lock()
	if a.fail[key] {
		a.mu.Unlock()
		return errors.New("denied")
	}
	a.deleted = append(a.deleted, key)
	hook := a.onMutate
	a.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (a *stubAPI) CurrentUser(ctx context.Context) (string, error) { return "admin@example.com", nil }
func (a *stubAPI) ListCatalogs(ctx context.Context) ([]string, error) {
	return a.catalogs, nil
}
func (a *stubAPI) DeleteCatalog(ctx context.Context, name string) error { return a.mutate(name) }
func (a *stubAPI) ListJobs(ctx context.Context) ([]platform.Job, error) {
	return a.jobs, nil
}
func (a *stubAPI) DeleteJob(ctx context.Context, id int64) error { return a.mutate("job") }
func (a *stubAPI) ListObjects(ctx context.Context, root string) ([]platform.Object, error) {
	return nil, nil
}
func (a *stubAPI) DeleteObject(ctx context.Context, path string) error { return a.mutate(path) }
func (a *stubAPI) ListServingEndpoints(ctx context.Context) ([]string, error) {
	return nil, nil
}
func (a *stubAPI) DeleteServingEndpoint(ctx context.Context, name string) error {
	return a.mutate(name)
}
func (a *stubAPI) DisableServingEndpoint(ctx context.Context, name string) error {
	return a.mutate(name)
}

// factoryCalls counts client constructions.
type factoryCalls struct {
	mu    sync.Mutex
	hosts []string
}

func (f *factoryCalls) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hosts)
}

func newTestServer(t *testing.T, api platform.API, factoryErr error) (*Server, http.Handler, *factoryCalls) {
	t.Helper()
	webFS, err := fs.Sub(cleaner.WebFS, "web")
	require.NoError(t, err)
	page, err := ParsePage(webFS)
	require.NoError(t, err)

	calls := &factoryCalls{}
	s := NewServer(context.Background(), page)
	s.NewAPI = func(ws *models.Workspace) (platform.API, error) {
		calls.mu.Lock()
		calls.hosts = append(calls.hosts, ws.Host)
		calls.mu.Unlock()
		if factoryErr != nil {
			return nil, factoryErr
		}
		return api, nil
	}
	return s, NewRouter(s, webFS), calls
}

// browser keeps the session cookie across requests, like a page session.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) submit(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func validForm() url.Values {
	return url.Values{
		"host":       {"https://dbc-1.cloud.databricks.com/"},
		"token":      {"dapi-test"},
		"categories": {"catalogs", "jobs"},
		"confirm":    {"1"},
	}
}
