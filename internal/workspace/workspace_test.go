package workspace

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JohannVasquez/chatdeck/internal/config"
	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/localstore"
)

// fakeGatewayServer is a minimal in-process stand-in for the aggregating
// gateway, just enough surface for the workspace flows under test.
type fakeGatewayServer struct {
	mu             sync.Mutex
	server         *httptest.Server
	authHeaders    []string
	createdBodies  []gateway.MessageCreate
	presenceStatus []string
	channelLoads   int
}

func newFakeGatewayServer(t *testing.T) *fakeGatewayServer {
	t.Helper()
	f := &fakeGatewayServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req gateway.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-x","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-x" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"u1","username":"johann","email":"j@example.com"}`))
	})
	mux.HandleFunc("GET /channels", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.channelLoads++
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`[{"_id":"c1","name":"general"},{"id":"c2","name":"random"}]`))
	})
	mux.HandleFunc("GET /threads/channel/c1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"uuid":"t1","title":"introductions","channel_id":"c1"}]}`))
	})
	mux.HandleFunc("GET /messages/threads/t1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"m1","content":"hi there","user_id":"u2"}]}`))
	})
	mux.HandleFunc("POST /messages/threads/t1", func(w http.ResponseWriter, r *http.Request) {
		var req gateway.MessageCreate
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.createdBodies = append(f.createdBodies, req)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(gateway.Message{ID: "m2", ThreadID: "t1", Content: req.Content})
	})
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("POST /moderation/check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"is_approved":true}`))
	})
	mux.HandleFunc("GET /presence", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("GET /presence/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"online":0,"offline":0,"total":0}`))
	})
	mux.HandleFunc("POST /presence", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PATCH /presence/{userID}", func(w http.ResponseWriter, r *http.Request) {
		var update gateway.PresenceUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)
		f.mu.Lock()
		f.presenceStatus = append(f.presenceStatus, update.Status)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGatewayServer) config() config.ClientConfig {
	return config.ClientConfig{
		GatewayURL:        f.server.URL,
		HTTPTimeout:       5 * time.Second,
		DeviceTag:         "cli-test",
		PresenceRefresh:   time.Hour,
		HeartbeatInterval: time.Hour,
		PageSize:          50,
		MessageLimit:      100,
		CommandPrefix:     "/",
	}
}

func newTestWorkspace(t *testing.T) (*Workspace, *fakeGatewayServer, *fakeRecords) {
	t.Helper()
	srv := newFakeGatewayServer(t)
	cfg := srv.config()
	records := newFakeRecords()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := New(cfg, gateway.NewClient(cfg), records, logger)
	t.Cleanup(ws.Close)
	return ws, srv, records
}

func TestWorkspaceAutoSelectChain(t *testing.T) {
	ws, _, _ := newTestWorkspace(t)
	_, err := ws.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, ws.LoadChannels(context.Background()))

	// First channel, then its first thread, then that thread's messages,
	// all without further input.
	require.Equal(t, StateChannelAndThread, ws.Selection.State())
	require.Equal(t, "c1", ws.Selection.ChannelID())
	require.Equal(t, "t1", ws.Selection.ThreadID())

	threads := ws.Threads.Get()
	require.Equal(t, "c1", threads.Key)
	require.Len(t, threads.Items, 1)
	require.Equal(t, "introductions", threads.Items[0].ResolvedTitle())

	messages := ws.Messages.Get()
	require.Equal(t, "t1", messages.Key)
	require.Len(t, messages.Items, 1)
	require.Equal(t, "hi there", messages.Items[0].Content)
}

func TestWorkspaceLoginInstallsCredential(t *testing.T) {
	ws, srv, records := newTestWorkspace(t)
	_, err := ws.Start(context.Background())
	require.NoError(t, err)

	sess, err := ws.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-x", sess.Token)
	require.Contains(t, records.values, localstore.SessionKey)

	require.NoError(t, ws.LoadChannels(context.Background()))
	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Contains(t, srv.authHeaders, "Bearer tok-x")
}

func TestWorkspaceLoginBadPassword(t *testing.T) {
	ws, _, _ := newTestWorkspace(t)
	_, err := ws.Login(context.Background(), "johann", "nope")
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	require.Nil(t, ws.Session.Current())
}

func TestWorkspaceSendThroughStack(t *testing.T) {
	ws, srv, _ := newTestWorkspace(t)
	_, err := ws.Start(context.Background())
	require.NoError(t, err)
	_, err = ws.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)
	require.NoError(t, ws.LoadChannels(context.Background()))

	result, err := ws.Composer.Send(context.Background(), SendRequest{Content: "hello everyone"})
	require.NoError(t, err)
	require.Equal(t, "m2", result.Message.ID)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.createdBodies, 1)
	require.Equal(t, "hello everyone", srv.createdBodies[0].Content)
	require.Equal(t, "text", srv.createdBodies[0].MessageType)
	require.Equal(t, "u1", srv.createdBodies[0].UserID)
}

func TestWorkspaceLogoutGoesOffline(t *testing.T) {
	ws, srv, records := newTestWorkspace(t)
	_, err := ws.Start(context.Background())
	require.NoError(t, err)
	_, err = ws.Login(context.Background(), "johann", "secret")
	require.NoError(t, err)

	ws.Logout(context.Background())
	require.Nil(t, ws.Session.Current())
	require.NotContains(t, records.values, localstore.SessionKey)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Contains(t, srv.presenceStatus, "offline")
}

func TestWorkspaceRestoreOnStart(t *testing.T) {
	srv := newFakeGatewayServer(t)
	cfg := srv.config()
	records := newFakeRecords()
	raw, err := json.Marshal(Session{Token: "tok-x", User: gateway.User{ID: "u1", Username: "johann"}})
	require.NoError(t, err)
	records.values[localstore.SessionKey] = raw

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := New(cfg, gateway.NewClient(cfg), records, logger)
	t.Cleanup(ws.Close)

	sess, err := ws.Start(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "johann", sess.User.Username)

	require.NoError(t, ws.LoadChannels(context.Background()))
	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Contains(t, srv.authHeaders, "Bearer tok-x")
}

func TestWorkspaceRefreshReloadsSelection(t *testing.T) {
	ws, srv, _ := newTestWorkspace(t)
	_, err := ws.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, ws.LoadChannels(context.Background()))

	srv.mu.Lock()
	before := srv.channelLoads
	srv.mu.Unlock()

	require.NoError(t, ws.Refresh(context.Background()))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Equal(t, before+1, srv.channelLoads)
	require.Equal(t, "t1", ws.Messages.Get().Key)
	require.False(t, ws.Messages.Get().Stale)
}

func TestWorkspaceClearSelectionDropsCaches(t *testing.T) {
	ws, _, _ := newTestWorkspace(t)
	_, err := ws.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, ws.LoadChannels(context.Background()))

	ws.Selection.ClearChannel()
	require.Empty(t, ws.Threads.Get().Items)
	require.Empty(t, ws.Messages.Get().Items)
	require.Empty(t, ws.Attachments.Get().Items)
}
