package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

// Cloud suffixes of Databricks workspace hostnames.
var cloudSuffixes = []struct {
	suffix string
	cloud  string
}{
	{".cloud.databricks.com", "aws"},
	{".azuredatabricks.net", "azure"},
	{".gcp.databricks.com", "gcp"},
}

// NormalizeHost trims whitespace and trailing slashes from a workspace URL.
func NormalizeHost(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// DetectCloud infers the cloud provider from the workspace hostname.
// Returns empty string if the host is not a recognised Databricks domain.
func DetectCloud(host string) string {
	u, err := url.Parse(host)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	h := strings.ToLower(u.Hostname())
	for _, cs := range cloudSuffixes {
		if strings.HasSuffix(h, cs.suffix) {
			return cs.cloud
		}
	}
	return ""
}

// CheckAuth verifies the token by resolving the current user.
func CheckAuth(ctx context.Context, api API) (string, error) {
	user, err := api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("auth check: %w", err)
	}
	return user, nil
}

// DiscoverAndStore runs the auth check for a saved workspace and records the
// result. All discovery is best-effort: failures are stored, not returned.
// The stored copy is returned, nil if the workspace was deleted during the check.
func DiscoverAndStore(ctx context.Context, newAPI Factory, ws *models.Workspace, store *models.WorkspaceStore) *models.Workspace {
	api, err := newAPI(ws)
	if err != nil {
		log.Warn().Err(err).Str("workspace", ws.Name).Msg("discovery: client setup failed")
		return store.SetHealth(ws.ID, "error", err.Error(), "")
	}

	user, err := CheckAuth(ctx, api)
	if err != nil {
		log.Warn().Err(err).Str("workspace", ws.Name).Msg("discovery: auth failed")
		return store.SetHealth(ws.ID, "error", err.Error(), "")
	}

	log.Info().Str("workspace", ws.Name).Str("user", user).Str("cloud", ws.Cloud).Msg("discovery: authenticated")
	return store.SetHealth(ws.ID, "ok", "", user)
}
