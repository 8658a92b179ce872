package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gliderlab/autochat/pkg/config"
	"github.com/gliderlab/autochat/pkg/kv"
)

type discordStub struct {
	mu       sync.Mutex
	posts    []map[string]any
	identity int
	onPost   func()
}

func (d *discordStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"id":"900","username":"autochat"}`)
	})
	mux.HandleFunc("GET /channels/123/messages", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"4242","author":{"id":"7"},"type":0,"content":"hello bot"}]`)
	})
	mux.HandleFunc("POST /channels/123/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		d.mu.Lock()
		d.posts = append(d.posts, body)
		d.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"1","channel_id":"123"}`)
		if d.onPost != nil {
			d.onPost()
		}
	})
	return mux
}

func writeFixtures(t *testing.T, baseURL, extra string) (cfgPath, envPath string) {
	t.Helper()
	dir := t.TempDir()
	msgs := filepath.Join(dir, "pesan.txt")
	require.NoError(t, os.WriteFile(msgs, []byte("  good morning  \n\n"), 0o644))

	cfgPath = filepath.Join(dir, "autochat.yaml")
	yaml := fmt.Sprintf(`channel_id: "123"
messages_file: %q
read_delay: 3600
reply_delay: 0
send_interval: 1h
discord:
  base_url: %q
log:
  level: error
%s`, msgs, baseURL, extra)
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))
	return cfgPath, filepath.Join(dir, "missing.env")
}

func execute(ctx context.Context, args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(ctx)
}

func TestBroadcastCommand(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "test-token")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub := &discordStub{onPost: cancel}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	cfgPath, envPath := writeFixtures(t, srv.URL, "")
	require.NoError(t, execute(ctx, "broadcast", "--config", cfgPath, "--env-file", envPath))

	require.Len(t, stub.posts, 1)
	assert.Equal(t, map[string]any{"content": "good morning"}, stub.posts[0])
}

func TestReplyCommandCannedWithBadgerState(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "test-token")
	stateDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub := &discordStub{onPost: cancel}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	cfgPath, envPath := writeFixtures(t, srv.URL, fmt.Sprintf("state:\n  backend: badger\n  dir: %q\n", stateDir))
	require.NoError(t, execute(ctx, "reply", "--config", cfgPath, "--env-file", envPath, "--use-ai=false"))

	require.Len(t, stub.posts, 1)
	assert.Equal(t, "good morning", stub.posts[0]["content"])
	assert.Equal(t, map[string]any{"message_id": "4242"}, stub.posts[0]["message_reference"])

	store, err := kv.OpenBadgerStore(kv.DefaultOptions(stateDir))
	require.NoError(t, err)
	defer store.Close()
	marker, err := store.Load("123")
	require.NoError(t, err)
	assert.Equal(t, "4242", marker)
}

func TestReplyCommandIdentityFailure(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "wrong-token")
	stub := &discordStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	cfgPath, envPath := writeFixtures(t, srv.URL, "")
	err := execute(context.Background(), "reply", "--config", cfgPath, "--env-file", envPath, "--use-ai=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identify")
	assert.Empty(t, stub.posts)
}

func TestMissingToken(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "")
	cfgPath, envPath := writeFixtures(t, "http://127.0.0.1:1", "")

	err := execute(context.Background(), "broadcast", "--config", cfgPath, "--env-file", envPath)
	assert.ErrorIs(t, err, config.ErrMissingToken)
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "test-token")
	t.Setenv(config.EnvGoogleAPIKey, "")
	cfgPath, envPath := writeFixtures(t, "http://127.0.0.1:1", "")

	err := execute(context.Background(), "reply", "--config", cfgPath, "--env-file", envPath)
	assert.ErrorContains(t, err, config.EnvGoogleAPIKey)
}

func TestInvalidChannelFlag(t *testing.T) {
	t.Setenv(config.EnvDiscordToken, "test-token")
	cfgPath, envPath := writeFixtures(t, "http://127.0.0.1:1", "")

	err := execute(context.Background(), "broadcast", "--config", cfgPath, "--env-file", envPath, "--channel", "general")
	assert.ErrorContains(t, err, "channel_id must be numeric")
}

func TestDelayFlagsAcceptSeconds(t *testing.T) {
	cmd := newReplyCmd(&rootOptions{})
	require.NoError(t, cmd.Flags().Parse([]string{"--read-delay", "15", "--reply-delay", "500ms"}))
	assert.Equal(t, "15s", cmd.Flags().Lookup("read-delay").Value.String())
	assert.Equal(t, "500ms", cmd.Flags().Lookup("reply-delay").Value.String())
}
