package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dropd/internal/notify"
	"github.com/example/dropd/internal/scheduler"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/settings"
	"github.com/example/dropd/internal/storage"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "dropd-api-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.MigrateUp(db))

	repo, err := storage.NewSQLiteRepository(db)
	require.NoError(t, err)

	engine := scheduler.NewEngine(16)
	engine.Start()
	t.Cleanup(engine.Stop)

	notifier := notify.NewScheduler(engine, zerolog.Nop())
	svc := service.New(repo, notifier, nil, settings.Default(), zerolog.Nop())
	return New(svc, zerolog.Nop())
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createTask(t *testing.T, srv *Server, name string) taskResponse {
	t.Helper()
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/tasks", createTaskRequest{
		Name:     name,
		Interval: "daily",
		Priority: "medium",
		Category: "DeFi",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[taskResponse](t, resp)
}

func TestHealthz(t *testing.T) {
	srv := setupServer(t)
	resp := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetTask(t *testing.T) {
	srv := setupServer(t)

	created := createTask(t, srv, "Daily check-in")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "daily", created.Interval)
	assert.True(t, created.IsActive)
	assert.NotNil(t, created.NotificationID)

	resp := doJSON(t, srv, http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[taskResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Daily check-in", got.Name)
}

func TestCreateTaskValidation(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/v1/tasks", createTaskRequest{Name: ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/v1/tasks", createTaskRequest{Name: "x", Interval: "fortnightly"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTaskNotFound(t *testing.T) {
	srv := setupServer(t)
	resp := doJSON(t, srv, http.MethodGet, "/api/v1/tasks/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompleteAdvancesStreak(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Claim faucet")

	resp := doJSON(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := decodeBody[taskResponse](t, resp)
	assert.Equal(t, 1, done.Streak)
	assert.NotNil(t, done.LastCompleted)
	assert.True(t, done.NextDue.After(created.NextDue) || done.NextDue.Equal(created.NextDue))
}

func TestToggleClearsNotification(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Bridge weekly")

	resp := doJSON(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paused := decodeBody[taskResponse](t, resp)
	assert.False(t, paused.IsActive)
	assert.Nil(t, paused.NotificationID)
}

func TestEditTask(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Old name")

	newName := "New name"
	weekly := "weekly"
	resp := doJSON(t, srv, http.MethodPatch, "/api/v1/tasks/"+created.ID, editTaskRequest{
		Name:     &newName,
		Interval: &weekly,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := decodeBody[taskResponse](t, resp)
	assert.Equal(t, "New name", edited.Name)
	assert.Equal(t, "weekly", edited.Interval)
	assert.True(t, edited.NextDue.After(created.NextDue))
}

func TestDeleteTask(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Doomed")

	resp := doJSON(t, srv, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTasksWithFilters(t *testing.T) {
	srv := setupServer(t)
	createTask(t, srv, "First")
	second := createTask(t, srv, "Second")

	resp := doJSON(t, srv, http.MethodPost, "/api/v1/tasks/"+second.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, srv, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decodeBody[[]taskResponse](t, resp)
	assert.Len(t, all, 2)

	resp = doJSON(t, srv, http.MethodGet, "/api/v1/tasks?active=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	active := decodeBody[[]taskResponse](t, resp)
	require.Len(t, active, 1)
	assert.Equal(t, "First", active[0].Name)
}

func TestStatsEndpoint(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Tracked")
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decodeBody[statsResponse](t, resp)
	assert.Equal(t, 1, summary.TotalTasks)
	assert.Equal(t, 1, summary.CompletedToday)
	assert.Equal(t, 1, summary.ByCategory["DeFi"])
}

func TestExportImportEndpoints(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Portable")

	resp := doJSON(t, srv, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exported, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(exported), created.ID)

	resp = doJSON(t, srv, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	importResp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, importResp.StatusCode)
	result := decodeBody[importResponse](t, importResp)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Skipped)

	resp = doJSON(t, srv, http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restored := decodeBody[taskResponse](t, resp)
	assert.Equal(t, "Portable", restored.Name)
	assert.Nil(t, restored.NotificationID)
}

func TestImportRejectsGarbage(t *testing.T) {
	srv := setupServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader("not json"))
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	srv := setupServer(t)
	created := createTask(t, srv, "Quiet")

	resp := doJSON(t, srv, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decodeBody[settingsResponse](t, resp)
	assert.True(t, cfg.NotificationsEnabled)

	resp = doJSON(t, srv, http.MethodPut, "/api/v1/settings/notifications", notificationsRequest{Enabled: false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg = decodeBody[settingsResponse](t, resp)
	assert.False(t, cfg.NotificationsEnabled)

	resp = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%s", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	task := decodeBody[taskResponse](t, resp)
	assert.Nil(t, task.NotificationID, "disabling notifications clears stored ids")
}
