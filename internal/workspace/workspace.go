// Package workspace is the client-side synchronization core of the chat
// workspace: it reconciles the independently fetched session, channel,
// thread, message, attachment, and presence resources into one consistent
// view, with background presence polling, optimistic invalidation, and
// best-effort degradation when any one upstream call fails.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JohannVasquez/chatdeck/internal/config"
	"github.com/JohannVasquez/chatdeck/internal/gateway"
)

// Workspace wires the synchronization components together. Selection
// changes publish events; the workspace subscribes the caches to them so
// that channel→threads and thread→messages+attachments loads follow
// selection without hidden control flow.
type Workspace struct {
	cfg config.ClientConfig
	gw  *gateway.Client
	log *slog.Logger
	ctx context.Context

	Session     *SessionStore
	Selection   *Selection
	Channels    *Cache[gateway.Channel]
	Threads     *Cache[gateway.Thread]
	Messages    *Cache[gateway.Message]
	Attachments *Cache[gateway.Attachment]
	Heartbeat   *Heartbeat
	Composer    *Composer
	Searcher    *Searcher
}

// channelsKey is the cache key of the one global channel directory page.
const channelsKey = "directory"

// New assembles a workspace over the gateway client and local records.
func New(cfg config.ClientConfig, gw *gateway.Client, records sessionRecords, log *slog.Logger) *Workspace {
	if log == nil {
		log = slog.Default()
	}
	ws := &Workspace{
		cfg: cfg,
		gw:  gw,
		log: log,
		ctx: context.Background(),
	}

	ws.Session = NewSessionStore(gw, records, log)
	ws.Selection = NewSelection()
	ws.Channels = NewCache("channels", func(ctx context.Context, _ string) ([]gateway.Channel, error) {
		return gw.ListChannels(ctx, 1, cfg.PageSize)
	}, log)
	ws.Threads = NewCache("threads", func(ctx context.Context, channelID string) ([]gateway.Thread, error) {
		return gw.ListThreadsByChannel(ctx, channelID)
	}, log)
	ws.Messages = NewCache("messages", func(ctx context.Context, threadID string) ([]gateway.Message, error) {
		return gw.ListMessages(ctx, threadID, cfg.MessageLimit)
	}, log)
	ws.Attachments = NewCache("attachments", func(ctx context.Context, threadID string) ([]gateway.Attachment, error) {
		return gw.ListFiles(ctx, gateway.FileFilter{ThreadID: threadID})
	}, log)
	ws.Heartbeat = NewHeartbeat(gw, cfg.DeviceTag, cfg.PresenceRefresh, cfg.HeartbeatInterval, log)
	ws.Composer = NewComposer(gw, ws.Session, ws.Selection, ws.Messages, ws.Attachments, log)
	ws.Searcher = NewSearcher(gw)

	ws.Selection.Subscribe(ws.onSelectionEvent)
	return ws
}

// Start restores any persisted session, installs its credential, and starts
// the presence loops. The context bounds every background activity and the
// selection-driven loads.
func (w *Workspace) Start(ctx context.Context) (*Session, error) {
	w.ctx = ctx
	w.Heartbeat.Start(ctx)
	sess, err := w.Session.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if sess != nil {
		w.Heartbeat.StartSession(ctx, sess.User.ID)
	}
	return sess, nil
}

// Close stops the background presence loops.
func (w *Workspace) Close() {
	w.Heartbeat.Stop()
}

// Login authenticates, commits the session, and starts the liveness loop.
func (w *Workspace) Login(ctx context.Context, usernameOrEmail, password string) (Session, error) {
	sess, err := w.Session.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return Session{}, err
	}
	w.Heartbeat.StartSession(w.ctx, sess.User.ID)
	return sess, nil
}

// Logout stops the liveness loop first so a heartbeat still in flight
// cannot overwrite the offline notice, then tears the session down.
func (w *Workspace) Logout(ctx context.Context) {
	w.Heartbeat.StopSession()
	w.Session.Logout(ctx)
}

// LoadChannels fetches the channel directory. On the initial load, with
// nothing selected yet, the first channel in upstream order is selected to
// seed the view.
func (w *Workspace) LoadChannels(ctx context.Context) error {
	if err := w.Channels.Load(ctx, channelsKey); err != nil {
		return err
	}
	snapshot := w.Channels.Get()
	if w.Selection.State() == StateNoChannel && len(snapshot.Items) > 0 {
		return w.Selection.SelectChannel(snapshot.Items[0])
	}
	return nil
}

// CreateThread opens a thread in the selected channel and refreshes the
// thread list.
func (w *Workspace) CreateThread(ctx context.Context, name string) (gateway.Thread, error) {
	sess := w.Session.Current()
	if sess == nil {
		return gateway.Thread{}, fmt.Errorf("%w: log in before creating threads", ErrValidation)
	}
	channelID := w.Selection.ChannelID()
	if channelID == "" {
		return gateway.Thread{}, fmt.Errorf("%w: select a channel first", ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return gateway.Thread{}, fmt.Errorf("%w: thread name is empty", ErrValidation)
	}
	thread, err := w.gw.CreateThread(ctx, gateway.ThreadCreate{
		ChannelID:  channelID,
		ThreadName: name,
		UserID:     sess.User.ID,
	})
	if err != nil {
		return gateway.Thread{}, err
	}
	w.Threads.Invalidate(channelID)
	if err := w.Threads.Load(ctx, channelID); err != nil {
		w.log.Debug("thread list refresh failed", "err", err)
	}
	return thread, nil
}

// AskWiki queries the Wikipedia assistant.
func (w *Workspace) AskWiki(ctx context.Context, question string) (string, error) {
	reply, err := w.gw.AskWiki(ctx, question)
	if err != nil {
		return "", err
	}
	return reply.Text(), nil
}

// AskProgramming queries the programming assistant.
func (w *Workspace) AskProgramming(ctx context.Context, question string) (string, error) {
	reply, err := w.gw.AskProgramming(ctx, question)
	if err != nil {
		return "", err
	}
	return reply.Text(), nil
}

// Refresh marks every populated cache stale and reloads the ones the
// current selection depends on.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.Channels.Invalidate(channelsKey)
	err := w.Channels.Load(ctx, channelsKey)
	if channelID := w.Selection.ChannelID(); channelID != "" {
		w.Threads.Invalidate(channelID)
		if loadErr := w.Threads.Load(ctx, channelID); err == nil {
			err = loadErr
		}
	}
	if threadID := w.Selection.ThreadID(); threadID != "" {
		w.Messages.Invalidate(threadID)
		w.Attachments.Invalidate(threadID)
		if loadErr := w.Messages.Load(ctx, threadID); err == nil {
			err = loadErr
		}
		if loadErr := w.Attachments.Load(ctx, threadID); err == nil {
			err = loadErr
		}
	}
	return err
}

// onSelectionEvent reacts to selection transitions with the dependent
// fetches. It runs on the goroutine that performed the transition, so in
// the TUI it executes inside command goroutines, never on the render loop.
func (w *Workspace) onSelectionEvent(event SelectionEvent) {
	switch event.Type {
	case EventChannelSelected:
		// Messages and attachments of the previous thread belong to
		// another channel now; drop them rather than let them linger.
		w.Messages.Clear()
		w.Attachments.Clear()
		channelID := event.Channel.ResolvedID()
		if err := w.Threads.Load(w.ctx, channelID); err != nil {
			return
		}
		// Seed the thread selection exactly once per fresh channel, and
		// only if the user has not already moved on.
		if w.Selection.ChannelID() != channelID || w.Selection.State() != StateChannelOnly {
			return
		}
		snapshot := w.Threads.Get()
		if len(snapshot.Items) > 0 {
			if err := w.Selection.SelectThread(snapshot.Items[0]); err != nil {
				w.log.Debug("thread auto-select rejected", "err", err)
			}
		}
	case EventThreadSelected:
		threadID := event.Thread.ResolvedID()
		if err := w.Messages.Load(w.ctx, threadID); err != nil {
			w.log.Debug("message load failed", "thread", threadID, "err", err)
		}
		if err := w.Attachments.Load(w.ctx, threadID); err != nil {
			w.log.Debug("attachment load failed", "thread", threadID, "err", err)
		}
	case EventSelectionCleared:
		w.Threads.Clear()
		w.Messages.Clear()
		w.Attachments.Clear()
	}
}
