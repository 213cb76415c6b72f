package platform

import (
	"context"
	"errors"
	"fmt"
)

// fakeAPI is an in-memory API that records every mutating call.
type fakeAPI struct {
	user string

	catalogs  []string
	jobs      []Job
	objects   []Object
	endpoints []string

	listErr    map[string]error // keyed by "catalogs", "jobs", "objects", "endpoints"
	deleteErr  map[string]error // keyed by resource name, path or job ID
	disableErr map[string]error

	calls []string

	// afterCall, when set, runs after each mutating call is recorded.
	afterCall func(call string)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user:       "admin@example.com",
		listErr:    map[string]error{},
		deleteErr:  map[string]error{},
		disableErr: map[string]error{},
	}
}

func (f *fakeAPI) record(format string, args ...any) {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	if f.afterCall != nil {
		f.afterCall(call)
	}
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (string, error) {
	if f.user == "" {
		return "", errors.New("Invalid access token.")
	}
	return f.user, nil
}

func (f *fakeAPI) ListCatalogs(ctx context.Context) ([]string, error) {
	return f.catalogs, f.listErr["catalogs"]
}

func (f *fakeAPI) DeleteCatalog(ctx context.Context, name string) error {
	f.record("delete catalog %s", name)
	return f.deleteErr[name]
}

func (f *fakeAPI) ListJobs(ctx context.Context) ([]Job, error) {
	return f.jobs, f.listErr["jobs"]
}

func (f *fakeAPI) DeleteJob(ctx context.Context, id int64) error {
	f.record("delete job %d", id)
	return f.deleteErr[fmt.Sprint(id)]
}

func (f *fakeAPI) ListObjects(ctx context.Context, root string) ([]Object, error) {
	f.record("list objects %s", root)
	return f.objects, f.listErr["objects"]
}

func (f *fakeAPI) DeleteObject(ctx context.Context, path string) error {
	f.record("delete object %s", path)
	return f.deleteErr[path]
}

func (f *fakeAPI) ListServingEndpoints(ctx context.Context) ([]string, error) {
	return f.endpoints, f.listErr["endpoints"]
}

func (f *fakeAPI) DeleteServingEndpoint(ctx context.Context, name string) error {
	f.record("delete endpoint %s", name)
	return f.deleteErr[name]
}

func (f *fakeAPI) DisableServingEndpoint(ctx context.Context, name string) error {
	f.record("disable endpoint %s", name)
	return f.disableErr[name]
}

// collect returns a logger that appends to lines.
func collect(lines *[]string) func(string) {
	return func(s string) { *lines = append(*lines, s) }
}
