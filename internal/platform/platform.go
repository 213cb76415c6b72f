package platform

import "context"

// Job is the part of a listed job the cleanup needs.
type Job struct {
	ID   int64
	Name string
}

// Object is a listed workspace object.
type Object struct {
	Path string
	Type string // "NOTEBOOK", "DIRECTORY", "FILE", ...
}

// ObjectTypeNotebook is the only workspace object type the cleanup deletes.
const ObjectTypeNotebook = "NOTEBOOK"

// API defines the workspace operations the cleanup drives. Authentication,
// pagination and error semantics belong to the implementation.
type API interface {
	// CurrentUser resolves the identity behind the token. Used as the auth check.
	CurrentUser(ctx context.Context) (string, error)

	ListCatalogs(ctx context.Context) ([]string, error)
	// DeleteCatalog deletes a catalog and everything in it (force / cascade).
	DeleteCatalog(ctx context.Context, name string) error

	ListJobs(ctx context.Context) ([]Job, error)
	DeleteJob(ctx context.Context, id int64) error

	// ListObjects lists workspace objects under root, descending into directories.
	ListObjects(ctx context.Context, root string) ([]Object, error)
	DeleteObject(ctx context.Context, path string) error

	ListServingEndpoints(ctx context.Context) ([]string, error)
	DeleteServingEndpoint(ctx context.Context, name string) error
	// DisableServingEndpoint routes zero percent of traffic to the endpoint's model.
	DisableServingEndpoint(ctx context.Context, name string) error
}
