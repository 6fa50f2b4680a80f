package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSessionNewStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/session", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"session_id":"s-1","token":"tok-1","expires_at":"2030-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "token")
	out, err := run(t, "--api", srv.URL, "--token", path, "session", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "session s-1 started")

	td, err := readToken(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", td.Token)
	assert.Equal(t, "s-1", td.SessionID)

	require.NoError(t, clearToken(path))
	require.NoError(t, clearToken(path), "clearing twice is fine")
}

func TestSearchPrintsHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "the left hand", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"query":"the left hand","total":1,"items":[
			{"key":"/works/OL1W","title":"The Left Hand of Darkness","author_key":"OL2A","snippet":"Ursula K. Le Guin · 1969 · Sci-Fi"}]}`))
	}))
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "search", "the", "left", "hand")
	require.NoError(t, err)
	assert.Contains(t, out, "/works/OL1W  The Left Hand of Darkness")
	assert.Contains(t, out, "Ursula K. Le Guin · 1969 · Sci-Fi")
	assert.Contains(t, out, "[author OL2A]")
}

func TestAPIErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"catalog unavailable"}`))
	}))
	defer srv.Close()

	c := &apiClient{base: srv.URL, http: srv.Client()}
	err := c.do(context.Background(), http.MethodGet, "/works/search", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502 catalog unavailable")
}

func TestPrefsPayload(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		c := &cobra.Command{Use: "set"}
		addPrefsFlags(c)
		require.NoError(t, c.ParseFlags(args))
		return c
	}

	p, err := prefsPayload(newCmd("--style", "80", "--genres", "scifi,fantasy"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"style": 80, "genres": []string{"scifi", "fantasy"}}, p)

	p, err = prefsPayload(newCmd("--clear-genres"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"genres": []string{}}, p)

	_, err = prefsPayload(newCmd("--pace", "101"))
	assert.Error(t, err)
	_, err = prefsPayload(newCmd("--genres", "horror"))
	assert.Error(t, err)
	_, err = prefsPayload(newCmd())
	assert.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	c := &apiClient{base: "https://api.example.com/base", token: "abc"}
	u, err := c.websocketURL("/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/base/ws?token=abc", u)

	c = &apiClient{base: "http://localhost:8080"}
	u, err = c.websocketURL("/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", u)
}

func TestWatchStopsAtDone(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for _, m := range []string{
			`{"type":"voices","data":{"status":"unavailable","items":[]}}`,
			`{"type":"recommendations","data":{"status":"ok","items":[{"title":"Hyperion","author_name":"Dan Simmons","key":"/works/H","reason_text":"Related rather than random."}]}}`,
			`{"type":"done"}`,
		} {
			_ = ws.WriteMessage(websocket.TextMessage, []byte(m))
		}
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	var out bytes.Buffer
	require.NoError(t, watch(context.Background(), ws, &out))
	assert.Contains(t, out.String(), "community threads are unavailable right now")
	assert.Contains(t, out.String(), "1. Hyperion by Dan Simmons (/works/H)")
	assert.Contains(t, out.String(), "Related rather than random.")
}
