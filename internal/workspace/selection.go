package workspace

import (
	"fmt"
	"sync"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
)

// SelectionState enumerates the selection state machine.
type SelectionState int

const (
	StateNoChannel SelectionState = iota
	StateChannelOnly
	StateChannelAndThread
)

// SelectionEventType identifies what changed.
type SelectionEventType int

const (
	// EventChannelSelected fires when the channel changes; any previous
	// thread selection has already been dropped.
	EventChannelSelected SelectionEventType = iota
	// EventThreadSelected fires when a thread inside the current channel
	// is picked.
	EventThreadSelected
	// EventSelectionCleared fires when the channel selection is cleared,
	// cascading away thread, message, and attachment state.
	EventSelectionCleared
)

// SelectionEvent notifies subscribers of a selection transition.
type SelectionEvent struct {
	Type    SelectionEventType
	Channel gateway.Channel
	Thread  gateway.Thread
}

// Selection tracks the user's current channel and thread. It never performs
// I/O itself; subscribers react to its events and fetch.
type Selection struct {
	mu      sync.Mutex
	channel *gateway.Channel
	thread  *gateway.Thread
	subs    []func(SelectionEvent)
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Subscribe registers a handler for selection events. Handlers run
// synchronously on the goroutine performing the transition, after the
// transition has been committed.
func (s *Selection) Subscribe(fn func(SelectionEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// State reports where the machine currently is.
func (s *Selection) State() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.channel == nil:
		return StateNoChannel
	case s.thread == nil:
		return StateChannelOnly
	default:
		return StateChannelAndThread
	}
}

// Channel returns a copy of the selected channel, or nil.
func (s *Selection) Channel() *gateway.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil {
		return nil
	}
	copied := *s.channel
	return &copied
}

// Thread returns a copy of the selected thread, or nil.
func (s *Selection) Thread() *gateway.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thread == nil {
		return nil
	}
	copied := *s.thread
	return &copied
}

// ChannelID returns the canonical id of the selected channel, or empty.
func (s *Selection) ChannelID() string {
	if ch := s.Channel(); ch != nil {
		return ch.ResolvedID()
	}
	return ""
}

// ThreadID returns the canonical id of the selected thread, or empty.
func (s *Selection) ThreadID() string {
	if t := s.Thread(); t != nil {
		return t.ResolvedID()
	}
	return ""
}

// SelectChannel makes channel the current selection. The thread selection is
// invalidated first: whatever thread was active belonged to another channel
// and must not survive the switch.
func (s *Selection) SelectChannel(channel gateway.Channel) error {
	if channel.ResolvedID() == "" {
		return fmt.Errorf("%w: channel has no id", ErrValidation)
	}
	s.mu.Lock()
	s.thread = nil
	copied := channel
	s.channel = &copied
	subs := append([]func(SelectionEvent){}, s.subs...)
	s.mu.Unlock()

	publish(subs, SelectionEvent{Type: EventChannelSelected, Channel: channel})
	return nil
}

// SelectThread makes thread the current selection inside the current
// channel. A thread naming a different channel is rejected; a thread whose
// payload omits the channel id is accepted, since upstream shapes are not
// reliable enough to refuse it.
func (s *Selection) SelectThread(thread gateway.Thread) error {
	if thread.ResolvedID() == "" {
		return fmt.Errorf("%w: thread has no id", ErrValidation)
	}
	s.mu.Lock()
	if s.channel == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no channel selected", ErrValidation)
	}
	if thread.ChannelID != "" && thread.ChannelID != s.channel.ResolvedID() {
		s.mu.Unlock()
		return fmt.Errorf("%w: thread belongs to channel %s, not %s", ErrValidation, thread.ChannelID, s.channel.ResolvedID())
	}
	copied := thread
	s.thread = &copied
	channel := *s.channel
	subs := append([]func(SelectionEvent){}, s.subs...)
	s.mu.Unlock()

	publish(subs, SelectionEvent{Type: EventThreadSelected, Channel: channel, Thread: thread})
	return nil
}

// ClearChannel drops the whole selection.
func (s *Selection) ClearChannel() {
	s.mu.Lock()
	s.channel = nil
	s.thread = nil
	subs := append([]func(SelectionEvent){}, s.subs...)
	s.mu.Unlock()

	publish(subs, SelectionEvent{Type: EventSelectionCleared})
}

func publish(subs []func(SelectionEvent), event SelectionEvent) {
	for _, fn := range subs {
		fn(event)
	}
}
