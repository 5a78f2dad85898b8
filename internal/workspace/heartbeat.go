package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
)

// presenceGateway is the slice of the gateway client the heartbeat needs.
type presenceGateway interface {
	ListPresence(ctx context.Context, status string) ([]gateway.PresenceEntry, error)
	GetPresenceStats(ctx context.Context) (gateway.PresenceStats, error)
	RegisterPresence(ctx context.Context, reg gateway.PresenceRegister) error
	UpdatePresence(ctx context.Context, userID string, update gateway.PresenceUpdate) error
}

// Heartbeat runs the two recurring presence tasks: a roster refresh that is
// useful even when logged out, and a per-session liveness ping. Presence is
// best-effort telemetry; every failure is swallowed after a debug log and
// neither loop ever stops on error.
type Heartbeat struct {
	gw           presenceGateway
	log          *slog.Logger
	device       string
	refreshEvery time.Duration
	beatEvery    time.Duration

	mu            sync.Mutex
	roster        []gateway.PresenceEntry
	stats         gateway.PresenceStats
	rosterCancel  context.CancelFunc
	sessionCancel context.CancelFunc
	wg            sync.WaitGroup
}

// NewHeartbeat builds a heartbeat; intervals at or below zero fall back to
// the defaults the web client uses (45s roster, 60s liveness).
func NewHeartbeat(gw presenceGateway, device string, refreshEvery, beatEvery time.Duration, log *slog.Logger) *Heartbeat {
	if log == nil {
		log = slog.Default()
	}
	if refreshEvery <= 0 {
		refreshEvery = 45 * time.Second
	}
	if beatEvery <= 0 {
		beatEvery = 60 * time.Second
	}
	return &Heartbeat{
		gw:           gw,
		log:          log,
		device:       device,
		refreshEvery: refreshEvery,
		beatEvery:    beatEvery,
	}
}

// Roster returns the latest refreshed presence list and stats.
func (h *Heartbeat) Roster() ([]gateway.PresenceEntry, gateway.PresenceStats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := make([]gateway.PresenceEntry, len(h.roster))
	copy(entries, h.roster)
	return entries, h.stats
}

// Start launches the roster refresh loop. It runs regardless of whether a
// session exists and keeps running until Stop or ctx cancellation.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	if h.rosterCancel != nil {
		h.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	h.rosterCancel = cancel
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.refreshOnce(ctx)
		ticker := time.NewTicker(h.refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.refreshOnce(ctx)
			}
		}
	}()
}

// StartSession registers the user's presence and launches the liveness ping
// loop for the lifetime of the session.
func (h *Heartbeat) StartSession(ctx context.Context, userID string) {
	h.mu.Lock()
	if h.sessionCancel != nil {
		h.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	h.sessionCancel = cancel
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.gw.RegisterPresence(ctx, gateway.PresenceRegister{UserID: userID, Device: h.device}); err != nil {
			h.log.Debug("presence register failed", "err", err)
		}
		ticker := time.NewTicker(h.beatEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := h.gw.UpdatePresence(ctx, userID, gateway.PresenceUpdate{Heartbeat: true}); err != nil {
					h.log.Debug("presence heartbeat failed", "err", err)
				}
			}
		}
	}()
}

// StopSession cancels the liveness loop. Logout calls this before sending
// the offline notice so a ping still in flight cannot overwrite it.
func (h *Heartbeat) StopSession() {
	h.mu.Lock()
	cancel := h.sessionCancel
	h.sessionCancel = nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Stop cancels both loops and waits for them to exit.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	rosterCancel := h.rosterCancel
	sessionCancel := h.sessionCancel
	h.rosterCancel = nil
	h.sessionCancel = nil
	h.mu.Unlock()
	if rosterCancel != nil {
		rosterCancel()
	}
	if sessionCancel != nil {
		sessionCancel()
	}
	h.wg.Wait()
}

func (h *Heartbeat) refreshOnce(ctx context.Context) {
	entries, err := h.gw.ListPresence(ctx, "online")
	if err != nil {
		h.log.Debug("presence refresh failed", "err", err)
		return
	}
	stats, err := h.gw.GetPresenceStats(ctx)
	if err != nil {
		h.log.Debug("presence stats failed", "err", err)
		stats = gateway.PresenceStats{Online: len(entries)}
	}
	h.mu.Lock()
	h.roster = entries
	h.stats = stats
	h.mu.Unlock()
}
