package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
)

type fakePresenceGateway struct {
	mu       sync.Mutex
	entries  []gateway.PresenceEntry
	listErr  error
	stats    gateway.PresenceStats
	statsErr error

	registered []gateway.PresenceRegister
	updated    []gateway.PresenceUpdate

	registeredCh chan struct{}
	updatedCh    chan struct{}
}

func newFakePresenceGateway() *fakePresenceGateway {
	return &fakePresenceGateway{
		registeredCh: make(chan struct{}, 16),
		updatedCh:    make(chan struct{}, 16),
	}
}

func (f *fakePresenceGateway) ListPresence(ctx context.Context, status string) ([]gateway.PresenceEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, f.listErr
}

func (f *fakePresenceGateway) GetPresenceStats(ctx context.Context) (gateway.PresenceStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, f.statsErr
}

func (f *fakePresenceGateway) RegisterPresence(ctx context.Context, reg gateway.PresenceRegister) error {
	f.mu.Lock()
	f.registered = append(f.registered, reg)
	f.mu.Unlock()
	select {
	case f.registeredCh <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakePresenceGateway) UpdatePresence(ctx context.Context, userID string, update gateway.PresenceUpdate) error {
	f.mu.Lock()
	f.updated = append(f.updated, update)
	f.mu.Unlock()
	select {
	case f.updatedCh <- struct{}{}:
	default:
	}
	return nil
}

func waitSignal(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestHeartbeatRefreshPopulatesRoster(t *testing.T) {
	gw := newFakePresenceGateway()
	gw.entries = []gateway.PresenceEntry{{UserID: "u1", Status: "online"}}
	gw.stats = gateway.PresenceStats{Online: 1, Offline: 4, Total: 5}
	hb := NewHeartbeat(gw, "cli", time.Hour, time.Hour, nil)

	hb.refreshOnce(context.Background())

	entries, stats := hb.Roster()
	require.Len(t, entries, 1)
	require.Equal(t, "u1", entries[0].ResolvedUserID())
	require.Equal(t, 5, stats.Total)
}

func TestHeartbeatStatsFailureFallsBack(t *testing.T) {
	gw := newFakePresenceGateway()
	gw.entries = []gateway.PresenceEntry{{UserID: "u1"}, {UserID: "u2"}}
	gw.statsErr = errors.New("stats down")
	hb := NewHeartbeat(gw, "cli", time.Hour, time.Hour, nil)

	hb.refreshOnce(context.Background())

	_, stats := hb.Roster()
	require.Equal(t, 2, stats.Online)
}

func TestHeartbeatListFailureKeepsRoster(t *testing.T) {
	gw := newFakePresenceGateway()
	gw.entries = []gateway.PresenceEntry{{UserID: "u1"}}
	hb := NewHeartbeat(gw, "cli", time.Hour, time.Hour, nil)
	hb.refreshOnce(context.Background())

	gw.mu.Lock()
	gw.listErr = errors.New("presence down")
	gw.mu.Unlock()
	hb.refreshOnce(context.Background())

	entries, _ := hb.Roster()
	require.Len(t, entries, 1, "a failed refresh keeps the last roster")
}

func TestStartSessionRegistersAndBeats(t *testing.T) {
	gw := newFakePresenceGateway()
	hb := NewHeartbeat(gw, "cli-test", time.Hour, 10*time.Millisecond, nil)
	defer hb.Stop()

	hb.StartSession(context.Background(), "u1")
	waitSignal(t, gw.registeredCh, "presence registration")
	waitSignal(t, gw.updatedCh, "liveness ping")

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Equal(t, gateway.PresenceRegister{UserID: "u1", Device: "cli-test"}, gw.registered[0])
	require.True(t, gw.updated[0].Heartbeat)
	require.Empty(t, gw.updated[0].Status)
}

func TestStopSessionHaltsPings(t *testing.T) {
	gw := newFakePresenceGateway()
	hb := NewHeartbeat(gw, "cli", time.Hour, 10*time.Millisecond, nil)

	hb.StartSession(context.Background(), "u1")
	waitSignal(t, gw.registeredCh, "presence registration")
	hb.StopSession()
	hb.Stop()

	// Drain whatever was in flight, then confirm silence.
	for {
		select {
		case <-gw.updatedCh:
			continue
		default:
		}
		break
	}
	select {
	case <-gw.updatedCh:
		t.Fatal("ping arrived after session stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartSessionIsIdempotent(t *testing.T) {
	gw := newFakePresenceGateway()
	hb := NewHeartbeat(gw, "cli", time.Hour, time.Hour, nil)
	defer hb.Stop()

	hb.StartSession(context.Background(), "u1")
	hb.StartSession(context.Background(), "u1")
	waitSignal(t, gw.registeredCh, "presence registration")

	select {
	case <-gw.registeredCh:
		t.Fatal("second session loop registered")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRosterLoopRefreshesOnStart(t *testing.T) {
	gw := newFakePresenceGateway()
	gw.entries = []gateway.PresenceEntry{{UserID: "u1"}}
	hb := NewHeartbeat(gw, "cli", time.Hour, time.Hour, nil)

	hb.Start(context.Background())
	defer hb.Stop()

	require.Eventually(t, func() bool {
		entries, _ := hb.Roster()
		return len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
