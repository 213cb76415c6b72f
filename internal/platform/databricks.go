package platform

import (
	"context"
	"fmt"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/service/catalog"
	"github.com/databricks/databricks-sdk-go/service/jobs"
	"github.com/databricks/databricks-sdk-go/service/serving"
	"github.com/databricks/databricks-sdk-go/service/workspace"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

// Factory builds an API for a workspace. The server and CLI take one so tests
// can substitute a fake.
type Factory func(ws *models.Workspace) (API, error)

// DatabricksClient implements API on top of the Databricks Go SDK.
type DatabricksClient struct {
	w *databricks.WorkspaceClient
}

// NewClient creates a DatabricksClient authenticated with the workspace's personal access token.
func NewClient(ws *models.Workspace) (*DatabricksClient, error) {
	w, err := databricks.NewWorkspaceClient(&databricks.Config{
		Host:               ws.BaseURL(),
		Token:              ws.Token,
		AuthType:           "pat",
		InsecureSkipVerify: ws.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating workspace client: %w", err)
	}
	return &DatabricksClient{w: w}, nil
}

// NewAPI is the default Factory.
func NewAPI(ws *models.Workspace) (API, error) {
	c, err := NewClient(ws)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *DatabricksClient) CurrentUser(ctx context.Context) (string, error) {
	me, err := c.w.CurrentUser.Me(ctx)
	if err != nil {
		return "", err
	}
	return me.UserName, nil
}

func (c *DatabricksClient) ListCatalogs(ctx context.Context) ([]string, error) {
	catalogs, err := c.w.Catalogs.ListAll(ctx, catalog.ListCatalogsRequest{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(catalogs))
	for _, ci := range catalogs {
		names = append(names, ci.Name)
	}
	return names, nil
}

func (c *DatabricksClient) DeleteCatalog(ctx context.Context, name string) error {
	return c.w.Catalogs.Delete(ctx, catalog.DeleteCatalogRequest{Name: name, Force: true})
}

func (c *DatabricksClient) ListJobs(ctx context.Context) ([]Job, error) {
	list, err := c.w.Jobs.ListAll(ctx, jobs.ListJobsRequest{})
	if err != nil {
		return nil, err
	}
	result := make([]Job, 0, len(list))
	for _, j := range list {
		job := Job{ID: j.JobId}
		if j.Settings != nil {
			job.Name = j.Settings.Name
		}
		result = append(result, job)
	}
	return result, nil
}

func (c *DatabricksClient) DeleteJob(ctx context.Context, id int64) error {
	return c.w.Jobs.Delete(ctx, jobs.DeleteJob{JobId: id})
}

func (c *DatabricksClient) ListObjects(ctx context.Context, root string) ([]Object, error) {
	list, err := c.w.Workspace.RecursiveList(ctx, root)
	if err != nil {
		return nil, err
	}
	result := make([]Object, 0, len(list))
	for _, o := range list {
		result = append(result, Object{Path: o.Path, Type: string(o.ObjectType)})
	}
	return result, nil
}

func (c *DatabricksClient) DeleteObject(ctx context.Context, path string) error {
	return c.w.Workspace.Delete(ctx, workspace.Delete{Path: path})
}

func (c *DatabricksClient) ListServingEndpoints(ctx context.Context) ([]string, error) {
	list, err := c.w.ServingEndpoints.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, e := range list {
		names = append(names, e.Name)
	}
	return names, nil
}

func (c *DatabricksClient) DeleteServingEndpoint(ctx context.Context, name string) error {
	return c.w.ServingEndpoints.Delete(ctx, serving.DeleteServingEndpointRequest{Name: name})
}

// DisableServingEndpoint sends a config update with a single zero-percent route.
// The returned waiter is dropped; the endpoint finishes updating on its own.
func (c *DatabricksClient) DisableServingEndpoint(ctx context.Context, name string) error {
	_, err := c.w.ServingEndpoints.UpdateConfig(ctx, serving.EndpointCoreConfigInput{
		Name: name,
		TrafficConfig: &serving.TrafficConfig{
			Routes: []serving.Route{{ServedModelName: name, TrafficPercentage: 0}},
		},
	})
	return err
}
