package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing QA service", func(t *testing.T) {
		for _, ports := range []*Ports{nil, {}, {Ingest: &mockIngestService{}}} {
			server, err := NewServer(ports)
			assert.Nil(t, server)
			assert.ErrorIs(t, err, ErrMissingQAService)
		}
	})

	t.Run("defaults the session", func(t *testing.T) {
		ports := &Ports{QA: &mockQAService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.Equal(t, DefaultSession, ports.DefaultSession)
		assert.Equal(t, DefaultSession, server.session(""))
	})

	t.Run("keeps configured session", func(t *testing.T) {
		ports := &Ports{QA: &mockQAService{}, Ingest: &mockIngestService{}, DefaultSession: "deck"}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.Equal(t, "deck", server.session(""))
		assert.Equal(t, "other", server.session("other"))
	})
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, err := NewServer(&Ports{QA: &mockQAService{}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{QA: &mockQAService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
