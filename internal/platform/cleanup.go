package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

const (
	// WorkspaceRoot is where the notebook sweep starts.
	WorkspaceRoot = "/"

	foundationModelMarker = "databricks-"
	aiBrickMarker         = "Please delete the AI Brick"
)

// Run executes the selected cleanups in registry order and returns one tally
// per executed category. Every failure is reported through logger; nothing is returned as an error.
// Cancellation is checked before each SDK call that deletes; the tallies cover
// what ran up to that point.
func Run(ctx context.Context, api API, categories []models.Category, opts models.Options, logger func(string)) []models.Tally {
	sel := models.Selection{}
	for _, c := range categories {
		sel[c] = true
	}

	var tallies []models.Tally
	for _, c := range sel.Ordered() {
		if ctx.Err() != nil {
			break
		}
		var t models.Tally
		switch c {
		case models.CategoryCatalogs:
			t = DeleteCatalogs(ctx, api, logger)
		case models.CategoryJobs:
			t = DeleteJobs(ctx, api, logger)
		case models.CategoryNotebooks:
			t = DeleteNotebooks(ctx, api, logger)
		case models.CategoryServingEndpoints:
			t = DeleteServingEndpoints(ctx, api, opts, logger)
		}
		tallies = append(tallies, t)
	}
	return tallies
}

// DeleteCatalogs force-deletes every catalog except the protected ones.
func DeleteCatalogs(ctx context.Context, api API, logger func(string)) models.Tally {
	log := logger
	t := models.Tally{Category: models.CategoryCatalogs}
	rt, _ := models.LookupResourceType(models.CategoryCatalogs)

	names, err := api.ListCatalogs(ctx)
	if err != nil {
		log(fmt.Sprintf("Error listing catalogs: %v", err))
		t.Failed++
		return t
	}

	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		if rt.Skip[name] {
			t.Skipped++
			continue
		}
		if err := api.DeleteCatalog(ctx, name); err != nil {
			log(fmt.Sprintf("Failed to delete catalog: %s. Error: %v", name, err))
			t.Failed++
			continue
		}
		log(fmt.Sprintf("Deleted catalog: %s", name))
		t.Succeeded++
	}
	return t
}

// DeleteJobs deletes every job by ID.
func DeleteJobs(ctx context.Context, api API, logger func(string)) models.Tally {
	log := logger
	t := models.Tally{Category: models.CategoryJobs}

	jobs, err := api.ListJobs(ctx)
	if err != nil {
		log(fmt.Sprintf("Error listing jobs: %v", err))
		t.Failed++
		return t
	}

	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		if err := api.DeleteJob(ctx, j.ID); err != nil {
			log(fmt.Sprintf("Failed to delete job with ID: %d. Error: %v", j.ID, err))
			t.Failed++
			continue
		}
		log(fmt.Sprintf("Deleted job with ID: %d", j.ID))
		t.Succeeded++
	}
	return t
}

// DeleteNotebooks deletes every notebook found under the workspace root.
// Directories, files and other object types are left alone.
func DeleteNotebooks(ctx context.Context, api API, logger func(string)) models.Tally {
	log := logger
	t := models.Tally{Category: models.CategoryNotebooks}

	objects, err := api.ListObjects(ctx, WorkspaceRoot)
	if err != nil {
		log(fmt.Sprintf("Error listing notebooks: %v", err))
		t.Failed++
		return t
	}

	for _, obj := range objects {
		if ctx.Err() != nil {
			break
		}
		if obj.Type != ObjectTypeNotebook {
			continue
		}
		if err := api.DeleteObject(ctx, obj.Path); err != nil {
			log(fmt.Sprintf("Failed to delete notebook: %s. Error: %v", obj.Path, err))
			t.Failed++
			continue
		}
		log(fmt.Sprintf("Deleted notebook: %s", obj.Path))
		t.Succeeded++
	}
	return t
}

// DeleteServingEndpoints deletes serving endpoints. Foundation model endpoints
// are throttled to zero traffic instead when opts.DisableFoundationModels is set.
func DeleteServingEndpoints(ctx context.Context, api API, opts models.Options, logger func(string)) models.Tally {
	log := logger
	t := models.Tally{Category: models.CategoryServingEndpoints}

	names, err := api.ListServingEndpoints(ctx)
	if err != nil {
		log(fmt.Sprintf("Error listing serving endpoints: %v", err))
		t.Failed++
		return t
	}

	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		if IsFoundationModel(name) && opts.DisableFoundationModels {
			err = api.DisableServingEndpoint(ctx, name)
			if err == nil {
				log(fmt.Sprintf("Disabled foundation model endpoint: %s (rate limits set to 0)", name))
				t.Succeeded++
				continue
			}
		} else {
			err = api.DeleteServingEndpoint(ctx, name)
			if err == nil {
				log(fmt.Sprintf("Deleted serving endpoint: %s", name))
				t.Succeeded++
				continue
			}
		}

		t.Failed++
		if IsAIBrickError(err) && opts.DeleteAIBricks {
			log(fmt.Sprintf("AI Brick deletion for %s not supported in SDK. Please delete manually via UI.", name))
		} else {
			log(fmt.Sprintf("Failed to delete serving endpoint: %s. Error: %v", name, err))
		}
	}
	return t
}

// IsFoundationModel reports whether an endpoint name marks a platform-provided model.
func IsFoundationModel(name string) bool {
	return strings.Contains(name, foundationModelMarker)
}

// IsAIBrickError reports whether a failure was caused by a dependent AI Brick.
func IsAIBrickError(err error) bool {
	return err != nil && strings.Contains(err.Error(), aiBrickMarker)
}
