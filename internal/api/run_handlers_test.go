package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func waitDone(t *testing.T, s *Server, id string) *models.Run {
	t.Helper()
	run := s.Runs.Get(id)
	require.NotNil(t, run)
	require.Eventually(t, run.Done, 2*time.Second, 10*time.Millisecond)
	return run
}

func TestListCategories(t *testing.T) {
	_, h, _ := newTestServer(t, newStubAPI(), nil)
	rec := doJSON(h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.ResourceType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 4)
	assert.Equal(t, "All Catalogs", got[0].Label)
	assert.Equal(t, "All Serving Endpoints", got[3].Label)
}

func TestCreateRun(t *testing.T) {
	s, h, _ := newTestServer(t, newStubAPI(), nil)

	rec := doJSON(h, http.MethodPost, "/api/runs", `{
		"host": "https://dbc-1.cloud.databricks.com",
		"token": "dapi-test",
		"categories": ["All Catalogs"],
		"confirmed": true
	}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	run := waitDone(t, s, resp["run_id"])
	assert.Equal(t, models.RunCompleted, run.State())
	assert.Equal(t, []string{"Deleted catalog: sales"}, run.LogsSince(0))

	rec = doJSON(h, http.MethodGet, "/api/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Run   models.Run          `json:"run"`
		Lines []models.StatusLine `json:"lines"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, models.RunCompleted, body.Run.Status)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, models.LevelSuccess, body.Lines[0].Level)
	require.Len(t, body.Run.Tallies, 1)
	assert.Equal(t, 1, body.Run.Tallies[0].Skipped)

	rec = doJSON(h, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dapi-test")
}

func TestCreateRun_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"bad json", `{`, http.StatusBadRequest, "invalid JSON"},
		{"unknown category", `{"host":"https://x","token":"t","categories":["All Clusters"],"confirmed":true}`, http.StatusBadRequest, "unknown resource category"},
		{"not confirmed", `{"host":"https://x","token":"t","categories":["jobs"]}`, http.StatusBadRequest, "required"},
		{"http host", `{"host":"http://x","token":"t","categories":["jobs"],"confirmed":true}`, http.StatusBadRequest, models.InvalidHostMessage},
		{"missing workspace", `{"workspace_id":"nope","categories":["jobs"],"confirmed":true}`, http.StatusNotFound, "workspace not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, h, calls := newTestServer(t, newStubAPI(), nil)
			rec := doJSON(h, http.MethodPost, "/api/runs", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.msg)
			assert.Zero(t, calls.count())
		})
	}
}

func TestCreateRun_Busy(t *testing.T) {
	s, h, _ := newTestServer(t, newStubAPI(), nil)
	s.runMu.Lock()
	defer s.runMu.Unlock()

	rec := doJSON(h, http.MethodPost, "/api/runs",
		`{"host":"https://x","token":"t","categories":["jobs"],"confirmed":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateRun_SavedWorkspace(t *testing.T) {
	s, h, calls := newTestServer(t, newStubAPI(), nil)
	ws := &models.Workspace{Name: "prod", Host: "https://prod.cloud.databricks.com", Token: "dapi-saved"}
	s.Workspaces.Create(ws)

	rec := doJSON(h, http.MethodPost, "/api/runs",
		`{"workspace_id":"`+ws.ID+`","categories":["jobs"],"confirmed":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	run := waitDone(t, s, resp["run_id"])
	assert.Equal(t, ws.ID, run.WorkspaceID)
	assert.Equal(t, 1, calls.count())
	assert.Equal(t, "https://prod.cloud.databricks.com", calls.hosts[0])
}

func TestGetRun_NotFound(t *testing.T) {
	_, h, _ := newTestServer(t, newStubAPI(), nil)
	rec := doJSON(h, http.MethodGet, "/api/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkspaceHandlers(t *testing.T) {
	s, h, _ := newTestServer(t, newStubAPI(), nil)

	rec := doJSON(h, http.MethodPost, "/api/workspaces",
		`{"name":"dev","host":"https://adb-1.2.azuredatabricks.net/","token":"dapi-secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dapi-secret")

	var created models.Workspace
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "azure", created.Cloud)
	assert.Equal(t, "https://adb-1.2.azuredatabricks.net", created.Host)
	assert.Equal(t, "dapi-secret", s.Workspaces.Get(created.ID).Token)

	rec = doJSON(h, http.MethodGet, "/api/workspaces", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dapi-secret")

	rec = doJSON(h, http.MethodPost, "/api/workspaces/"+created.ID+"/test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"user":"admin@example.com"}`, rec.Body.String())

	rec = doJSON(h, http.MethodPut, "/api/workspaces/"+created.ID,
		`{"name":"dev2","host":"https://dev.cloud.databricks.com","token":"••••••••"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := s.Workspaces.Get(created.ID)
	assert.Equal(t, "dev2", got.Name)
	assert.Equal(t, "aws", got.Cloud)
	assert.Equal(t, "dapi-secret", got.Token)

	rec = doJSON(h, http.MethodDelete, "/api/workspaces/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(h, http.MethodDelete, "/api/workspaces/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(h, http.MethodPost, "/api/workspaces", `{"name":"nohost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamRunLogs(t *testing.T) {
	s, h, _ := newTestServer(t, newStubAPI(), nil)
	run := s.Runs.Create("https://x", "", []models.Category{models.CategoryJobs}, models.Options{})
	run.AppendLog("Deleted job with ID: 7")
	run.AppendLog("Error listing notebooks: denied")
	run.Complete(nil)

	ts := httptest.NewServer(h)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/runs/" + run.ID + "/logs"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var got []models.StatusLine
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
		var line models.StatusLine
		require.NoError(t, json.Unmarshal(msg, &line))
		got = append(got, line)
	}
	assert.Equal(t, []models.StatusLine{
		{Text: "Deleted job with ID: 7", Level: models.LevelSuccess},
		{Text: "Error listing notebooks: denied", Level: models.LevelError},
	}, got)
}

func TestMetricsAndHealth(t *testing.T) {
	s, h, _ := newTestServer(t, newStubAPI(), nil)
	rec := doJSON(h, http.MethodPost, "/api/runs",
		`{"host":"https://x","token":"t","categories":["catalogs"],"confirmed":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	waitDone(t, s, resp["run_id"])

	// RecordRun runs after Complete; wait for the counter to land.
	require.Eventually(t, func() bool {
		rec := doJSON(h, http.MethodGet, "/metrics", "")
		return strings.Contains(rec.Body.String(), `dbcleaner_resource_outcomes_total{category="catalogs",result="succeeded"} 1`)
	}, 2*time.Second, 10*time.Millisecond)

	rec = doJSON(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExecute_CancelledKeepsTallies(t *testing.T) {
	stub := newStubAPI()
	stub.catalogs = []string{"sales", "marketing"}
	s, _, _ := newTestServer(t, stub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub.onMutate = cancel

	run := s.Runs.Create("https://x", "", []models.Category{models.CategoryCatalogs, models.CategoryJobs}, models.Options{})
	s.execute(ctx, run, &models.RunRequest{Host: "https://x", Token: "t"})

	assert.Equal(t, models.RunFailed, run.State())
	assert.Equal(t, []string{"Deleted catalog: sales"}, run.LogsSince(0))
	snap := run.Snapshot()
	require.Len(t, snap.Tallies, 1)
	assert.Equal(t, 1, snap.Tallies[0].Succeeded)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Outcomes.WithLabelValues("catalogs", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Runs.WithLabelValues(models.RunFailed)))
}
