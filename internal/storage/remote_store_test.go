package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitsyncd/internal/storage"
	"fitsyncd/internal/structures"
	"fitsyncd/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemoteStore(t *testing.T, handler http.Handler) storage.RemoteStoreInterface {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := &structures.Config{Remote: structures.RemoteConfig{BaseURL: server.URL}}
	return storage.NewRemoteStore(conf, &testutil.MockLogger{})
}

func TestGetDoc(t *testing.T) {
	store := newTestRemoteStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/schedules/u1", r.URL.Path)
		_, _ = w.Write([]byte(`{"v":1}`))
	}))

	payload, err := store.GetDoc(context.Background(), "schedules", "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":1}`), payload)
}

func TestGetDocNotFound(t *testing.T) {
	store := newTestRemoteStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := store.GetDoc(context.Background(), "schedules", "ghost")
	assert.ErrorIs(t, err, storage.ErrDocNotFound)
}

func TestGetDocServerErrorIsConnectivity(t *testing.T) {
	store := newTestRemoteStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := store.GetDoc(context.Background(), "schedules", "u1")
	require.Error(t, err)
	var cerr *storage.ConnectivityError
	assert.ErrorAs(t, err, &cerr)
	assert.NotErrorIs(t, err, storage.ErrDocNotFound)
}

func TestSetDoc(t *testing.T) {
	var gotBody []byte
	store := newTestRemoteStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/workouts/u1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := store.SetDoc(context.Background(), "workouts", "u1", []byte(`{"w":1}`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"w":1}`), gotBody)
}

func TestSetDocUnreachable(t *testing.T) {
	conf := &structures.Config{Remote: structures.RemoteConfig{BaseURL: "http://127.0.0.1:1"}}
	store := storage.NewRemoteStore(conf, &testutil.MockLogger{})

	err := store.SetDoc(context.Background(), "workouts", "u1", []byte(`{}`))
	require.Error(t, err)
	var cerr *storage.ConnectivityError
	assert.ErrorAs(t, err, &cerr)
}

func TestQueryDocs(t *testing.T) {
	store := newTestRemoteStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "email", r.URL.Query().Get("field"))
		assert.Equal(t, "a@b.c", r.URL.Query().Get("value"))
		_, _ = w.Write([]byte(`[{"id":"u1","data":{"email":"a@b.c"}}]`))
	}))

	docs, err := store.QueryDocs(context.Background(), "users", "email", "a@b.c")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u1", docs[0].ID)
	assert.JSONEq(t, `{"email":"a@b.c"}`, string(docs[0].Data))
}

func TestProbeUsesConfiguredPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	t.Cleanup(server.Close)

	conf := &structures.Config{Remote: structures.RemoteConfig{BaseURL: server.URL, ProbePath: "/ping"}}
	store := storage.NewRemoteStore(conf, &testutil.MockLogger{})

	require.NoError(t, store.Probe(context.Background()))
	assert.Equal(t, "/ping", gotPath)
}

func TestProbeFailure(t *testing.T) {
	store := newTestRemoteStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	assert.Error(t, store.Probe(context.Background()))
}
