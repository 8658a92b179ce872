package discord

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

	"github.com/gliderlab/autochat/gateway/channels/types"
)

func TestFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/@me", r.URL.Path)
		assert.Equal(t, "raw-token", r.Header.Get("Authorization"))
		io.WriteString(w, `{"id":"900","username":"autochat"}`)
	}))
	defer srv.Close()

	c := NewChannel("raw-token", WithBaseURL(srv.URL))
	id, err := c.FetchIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "900", id)
}

func TestFetchIdentityUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message": "401: Unauthorized", "code": 0}`)
	}))
	defer srv.Close()

	c := NewChannel("bad", WithBaseURL(srv.URL))
	_, err := c.FetchIdentity(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Unauthorized")
}

func TestFetchLatestMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/123/messages", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		io.WriteString(w, `[
			{"id":"20","author":{"id":"1"},"type":0,"content":"newest"},
			{"id":"19","author":{"id":"2"},"type":8,"content":""}
		]`)
	}))
	defer srv.Close()

	c := NewChannel("tok", WithBaseURL(srv.URL+"/"), WithFetchLimit(5))
	msgs, err := c.FetchLatestMessages(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "20", msgs[0].ID)
	assert.Equal(t, "newest", msgs[0].Content)
	assert.Equal(t, types.MessageTypeSystem, msgs[1].Type)
}

func TestFetchLatestMessagesMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	_, err := NewChannel("tok", WithBaseURL(srv.URL)).FetchLatestMessages(context.Background(), "1")
	assert.Error(t, err)
}

func TestPostMessageReply(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/123/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"555","channel_id":"123"}`)
	}))
	defer srv.Close()

	c := NewChannel("tok", WithBaseURL(srv.URL))
	require.NoError(t, c.PostMessage(context.Background(), "123", "hello", "42"))
	assert.Equal(t, map[string]any{
		"content":           "hello",
		"message_reference": map[string]any{"message_id": "42"},
	}, got)
}

func TestPostMessagePlain(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewChannel("tok", WithBaseURL(srv.URL)).PostMessage(context.Background(), "123", "broadcast", ""))
	assert.Equal(t, map[string]any{"content": "broadcast"}, got)
}

func TestPostMessageForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"message":"Missing Permissions","code":50013}`)
	}))
	defer srv.Close()

	err := NewChannel("tok", WithBaseURL(srv.URL)).PostMessage(context.Background(), "123", "x", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, http.MethodPost, apiErr.Method)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewChannel("tok", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.FetchIdentity(context.Background())
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	c := NewChannel("tok")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
}
