package loki

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_EmptyURL(t *testing.T) {
	_, err := NewClient("", "gemini")
	require.Error(t, err)
}

func TestPushEventJSON(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "gemini")
	require.NoError(t, err)
	raw := []byte(`{"event_type":"http_request","source":"api","method":"POST","role":"astronomer","status":201,"created_at":"2026-03-01T10:00:00Z"}`)
	require.NoError(t, c.PushEventJSON(context.Background(), raw))

	require.Len(t, got.Streams, 1)
	s := got.Streams[0]
	assert.Equal(t, "gemini", s.Stream["job"])
	assert.Equal(t, "http_request", s.Stream["event_type"])
	assert.Equal(t, "2xx", s.Stream["status_class"])
	assert.Equal(t, "astronomer", s.Stream["role"])
	require.Len(t, s.Values, 1)
	assert.Equal(t, "1772359200000000000", s.Values[0][0])
	assert.Equal(t, string(raw), s.Values[0][1])
}

func TestPushEventJSON_Unparseable(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "gemini")
	require.NoError(t, c.PushEventJSON(context.Background(), []byte("not json")))
	require.Len(t, got.Streams, 1)
	assert.Equal(t, map[string]string{"job": "gemini"}, got.Streams[0].Stream)
}

func TestPush_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "gemini")
	err := c.PushEventJSON(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
