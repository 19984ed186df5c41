package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/events"
	"github.com/shuliakovsky/proxy-sync/pkg/health"
	"github.com/shuliakovsky/proxy-sync/pkg/peers"
	"github.com/shuliakovsky/proxy-sync/pkg/registry"
)

type testEnv struct {
	srv   *httptest.Server
	store *peers.MemoryStore
	hub   *events.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := peers.NewMemoryStore()
	client := &http.Client{Timeout: 2 * time.Second}

	reg := registry.New(store, logger)
	engine := broadcast.New(reg, client, logger)
	checker := health.New(engine, client, logger)
	hub := events.NewHub()

	mux := http.NewServeMux()
	Mount(mux,
		NewProxies(reg, registry.NewEnroller(reg, checker, logger), hub, logger),
		NewSync(engine, checker, hub, logger),
		NewEvents(hub, logger),
	)
	srv := httptest.NewServer(WithLogging(logger, mux))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, Web) {
	t.Helper()
	var rd io.Reader
	if s, ok := body.(string); ok {
		rd = strings.NewReader(s)
	} else if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Web
	if resp.StatusCode != http.StatusMethodNotAllowed {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

type peerStub struct {
	mu    sync.Mutex
	paths []string
	srv   *httptest.Server
}

func newPeerStub(t *testing.T) *peerStub {
	t.Helper()
	p := &peerStub{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.paths = append(p.paths, r.Method+" "+r.URL.Path)
		p.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *peerStub) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func closedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func TestCreateProxy_Success(t *testing.T) {
	env := newTestEnv(t)
	peer := newPeerStub(t)

	status, body := env.do(t, http.MethodPost, "/proxy/create", map[string]string{"url": peer.srv.URL})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "201 Created", body.Code)
	require.Equal(t, "New proxy created", body.Message)
	require.Equal(t, "", body.Error)
	require.Equal(t, map[string]any{"url": peer.srv.URL}, body.Data)
	require.Equal(t, []string{"GET /health"}, peer.seen())

	status, body = env.do(t, http.MethodGet, "/proxy", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{map[string]any{"url": peer.srv.URL}}, body.Data)
}

func TestCreateProxy_Rejections(t *testing.T) {
	env := newTestEnv(t)
	peer := newPeerStub(t)
	_, _ = env.do(t, http.MethodPost, "/proxy/create", map[string]string{"url": peer.srv.URL})

	cases := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"duplicate", map[string]string{"url": peer.srv.URL}, http.StatusBadRequest, "Proxy already exists"},
		{"unreachable", map[string]string{"url": closedURL()}, http.StatusBadRequest, "Request to one proxy error"},
		{"invalid url", map[string]string{"url": "not a url"}, http.StatusBadRequest, "Invalid input"},
		{"bad json", `{"url":`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/proxy/create", tc.body)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.message, body.Message)
			require.NotEmpty(t, body.Error)
		})
	}

	list, err := env.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDeleteProxy_IdempotentAndLookup(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Insert(context.Background(), peers.Peer{URL: "http://proxy3:3000"}))

	status, body := env.do(t, http.MethodGet, "/proxy/lookup?url=http://proxy3:3000", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]any{"url": "http://proxy3:3000"}, body.Data)

	for i := 0; i < 2; i++ {
		status, body = env.do(t, http.MethodDelete, "/proxy/delete", map[string]string{"url": "http://proxy3:3000"})
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "Deleted proxy successfully", body.Message)
	}

	status, body = env.do(t, http.MethodGet, "/proxy/lookup?url=http://proxy3:3000", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "404 Not Found", body.Code)
}

func TestSync_BroadcastsToPeers(t *testing.T) {
	env := newTestEnv(t)
	peer := newPeerStub(t)
	ctx := context.Background()
	require.NoError(t, env.store.Insert(ctx, peers.Peer{URL: peer.srv.URL}))
	require.NoError(t, env.store.Insert(ctx, peers.Peer{URL: closedURL()}))

	status, body := env.do(t, http.MethodPost, "/sync", map[string]any{
		"type": "String", "key": "test_str", "value": map[string]string{"hello": "world"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Set data to all proxies successfully", body.Message)

	status, _ = env.do(t, http.MethodPost, "/sync/multi", map[string]any{
		"type": "Multi", "data": map[string]string{"hello1": "world1"},
	})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodDelete, "/sync", map[string]any{"type": "String", "key": "test_str", "ttl": "30"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Delete data from all proxies success", body.Message)

	require.Equal(t, []string{
		"POST /proxy-sync/v1",
		"POST /proxy-sync/v1/multi",
		"DELETE /proxy-sync/v1",
	}, peer.seen())
}

func TestSync_Validation(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/sync", map[string]any{"type": "String", "value": 1})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Invalid input", body.Message)

	status, _ = env.do(t, http.MethodPost, "/sync/multi", map[string]any{"type": "Multi"})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodGet, "/sync/multi", nil)
	require.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestSyncHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/sync/health", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "All proxies functional", body.Message)

	peer := newPeerStub(t)
	require.NoError(t, env.store.Insert(context.Background(), peers.Peer{URL: peer.srv.URL}))
	require.NoError(t, env.store.Insert(context.Background(), peers.Peer{URL: closedURL()}))

	status, body = env.do(t, http.MethodGet, "/sync/health", nil)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Request to proxies error", body.Message)
	require.Contains(t, body.Error, "A connection to one of the proxies could not be made")
}

func TestEventsFeed(t *testing.T) {
	env := newTestEnv(t)
	peer := newPeerStub(t)

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev events.Event
	status, _ := env.do(t, http.MethodGet, "/sync/health", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, events.Broadcast, ev.Type)

	status, _ = env.do(t, http.MethodPost, "/proxy/create", map[string]string{"url": peer.srv.URL})
	require.Equal(t, http.StatusCreated, status)
	var added events.Event
	require.NoError(t, conn.ReadJSON(&added))
	require.Equal(t, events.PeerAdded, added.Type)
	require.Equal(t, map[string]any{"url": peer.srv.URL}, added.Data)
}
