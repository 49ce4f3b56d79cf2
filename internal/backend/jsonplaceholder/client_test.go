package jsonplaceholder_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapp/internal/backend/jsonplaceholder"
	"taskapp/internal/config"
	"taskapp/internal/service"
)

func newClient(t *testing.T, h http.HandlerFunc) *jsonplaceholder.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := jsonplaceholder.NewWithHTTPClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestList_AllAndByOwner(t *testing.T) {
	var gotQuery []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/todos", r.URL.Path)
		gotQuery = append(gotQuery, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []service.Task{
			{ID: 1, UserID: 3, Title: "delectus aut autem"},
			{ID: 2, UserID: 3, Title: "quis ut nam", Completed: true},
		})
	})

	tasks, err := c.List(context.Background(), service.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = c.List(context.Background(), service.ListOptions{UserID: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "userId=3"}, gotQuery)
	assert.True(t, tasks[1].Completed)
}

func TestCreate_ReturnsAssignedID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_, hasID := in["id"]
		assert.False(t, hasID, "create must not send an id")
		in["id"] = 201
		writeJSON(w, http.StatusCreated, in)
	})

	got, err := c.Create(context.Background(), service.Task{UserID: 2, Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, service.Task{ID: 201, UserID: 2, Title: "Buy milk"}, got)
}

func TestUpdate_SendsPatch(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/todos/7", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"completed":true}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "userId": 1, "title": "x y z", "completed": true})
	})

	got, err := c.Update(context.Background(), 7, service.CompletedPatch(true))
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.True(t, got.Completed)
}

func TestUpdate_FillsMissingID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"completed": false, "title": "abc"})
	})

	got, err := c.Update(context.Background(), 9, service.CompletedPatch(false))
	require.NoError(t, err)
	assert.Equal(t, 9, got.ID)
}

func TestDelete(t *testing.T) {
	called := false
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/todos/201", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	require.NoError(t, c.Delete(context.Background(), 201))
	assert.True(t, called)
}

func TestNonSuccessStatus_IsRemoteError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.Delete(context.Background(), 5)
	require.Error(t, err)

	var re *service.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, service.OpDelete, re.Op)
	assert.Equal(t, 5, re.ID)
	assert.Equal(t, http.StatusInternalServerError, re.Status)
	assert.False(t, re.Timeout())
	assert.Contains(t, err.Error(), "failed to delete task 5")
}

func TestTimeout_IsRemoteError(t *testing.T) {
	release := make(chan struct{})
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.SetTimeout(50 * time.Millisecond)

	_, err := c.List(context.Background(), service.ListOptions{})
	require.Error(t, err)

	var re *service.RemoteError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Timeout())
	assert.Equal(t, "failed to fetch tasks: request timed out", err.Error())
}

func TestInvalidBody_IsRemoteError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "not json")
	})

	_, err := c.List(context.Background(), service.ListOptions{})
	assert.True(t, service.IsRemote(err))
}

func TestNew_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []service.Task{})
	}))
	defer srv.Close()

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.BaseURL = srv.URL + "/"
	cfg.APIToken = "s3cret"

	c, err := jsonplaceholder.New(cfg, nil)
	require.NoError(t, err)

	tasks, err := c.List(context.Background(), service.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, "Bearer s3cret", auth)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.BaseURL = "ftp://example.com"

	_, err = jsonplaceholder.New(cfg, nil)
	assert.ErrorContains(t, err, "invalid base_url")
}
