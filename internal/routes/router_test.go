package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/controller"
	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/internal/repository"
	"task-tracker/internal/service"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func newTestRouter(t *testing.T) (*gin.Engine, *repository.TaskStore) {
	t.Helper()
	db, err := database.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	store := repository.NewTaskStore(db)
	t.Cleanup(func() { _ = store.Close() })

	tasks := controller.NewTasks(service.New(store), nil)
	ready := controller.Ready(map[string]controller.Pinger{"database": store})
	return Router(tasks, ready), store
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListAndCreate(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodPost, "/tasks", `{"title":"Buy milk","description":"2 litres"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Task](t, w)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "completed_at")
	assert.NotContains(t, raw, "time_to_complete")

	w = do(t, r, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]models.Task](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.Equal(t, "2 litres", tasks[0].Description)
}

func TestCreate_TrimsFields(t *testing.T) {
	r, store := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/tasks", `{"title":"  Buy milk  ","description":" \t2 liters\n"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Task](t, w)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "2 liters", created.Description)

	stored, found, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Buy milk", stored.Title)
	assert.Equal(t, "2 liters", stored.Description)
}

func TestCreate_BadRequests(t *testing.T) {
	r, store := newTestRouter(t)

	cases := map[string]string{
		"missing title":       `{"description":"d"}`,
		"blank description":   `{"title":"t","description":"  "}`,
		"empty object":        `{}`,
		"malformed json":      `{"title":`,
		"wrong type for text": `{"title":1,"description":"d"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/tasks", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[map[string]any](t, w), "error")
		})
	}

	t.Run("no body", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/tasks", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	tasks, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGetTask(t *testing.T) {
	r, store := newTestRouter(t)
	task, err := store.Create(context.Background(), "t", "d")
	require.NoError(t, err)

	w := do(t, r, http.MethodGet, "/tasks/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, task.ID, decode[models.Task](t, w).ID)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/tasks/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/tasks/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/tasks/0", "").Code)
}

func TestCompleteTask(t *testing.T) {
	r, store := newTestRouter(t)
	task, err := store.Create(context.Background(), "t", "d")
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/tasks/1/complete", "")
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[models.Task](t, w)
	assert.Equal(t, task.ID, done.ID)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.TimeToComplete)
	assert.Equal(t, 0, *done.TimeToComplete)

	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/tasks/1/complete", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/tasks/7/complete", "").Code)
}

func TestDeleteIncomplete(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()
	keep, err := store.Create(ctx, "keep", "d")
	require.NoError(t, err)
	_, err = store.Create(ctx, "drop", "d")
	require.NoError(t, err)
	_, err = store.Complete(ctx, keep.ID)
	require.NoError(t, err)

	w := do(t, r, http.MethodDelete, "/tasks/incomplete", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	tasks := decode[[]models.Task](t, do(t, r, http.MethodGet, "/tasks", ""))
	require.Len(t, tasks, 1)
	assert.Equal(t, keep.ID, tasks[0].ID)
}

func TestStats(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()
	task, err := store.Create(ctx, "t", "d")
	require.NoError(t, err)
	_, err = store.Complete(ctx, task.ID)
	require.NoError(t, err)

	w := do(t, r, http.MethodGet, "/stats/weekdays", "")
	require.Equal(t, http.StatusOK, w.Code)
	weekdays := decode[[]models.WeekdayCount](t, w)
	require.Len(t, weekdays, 7)
	assert.Equal(t, "Monday", weekdays[0].Weekday)
	assert.Equal(t, 1, models.WeekdayTotal(weekdays))

	w = do(t, r, http.MethodGet, "/stats/completion-times", "")
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[models.CompletionHistogram](t, w)
	assert.Empty(t, hist.Buckets)
	assert.Equal(t, 1, hist.SameDay)

	for _, path := range []string{"/stats/weekdays?format=pdf", "/stats/completion-times?format=pdf"} {
		w = do(t, r, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	}
}

func TestHealthAndReady(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", "").Code)

	unready := Router(nil, controller.Ready(map[string]controller.Pinger{"redis": failingPinger{}}))
	w := do(t, unready, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"redis unavailable"}`, w.Body.String())
}

func TestStorageErrorIs500(t *testing.T) {
	r, store := newTestRouter(t)
	require.NoError(t, store.Close())

	w := do(t, r, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal error"}`, w.Body.String())
}
