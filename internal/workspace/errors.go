package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a local precondition failed; no network call
	// was made.
	ErrValidation = errors.New("validation failed")
	// ErrSend indicates a transport or service failure while sending a
	// message or uploading its attachment.
	ErrSend = errors.New("send failed")
	// ErrSearch indicates a transport failure during a search dispatch.
	ErrSearch = errors.New("search failed")
	// ErrLoad indicates a cache fetch failure. It is recorded per cache and
	// surfaced only in that cache's context.
	ErrLoad = errors.New("load failed")
)

// ModerationRejectedError reports content vetoed by the moderation check.
// The message was never sent.
type ModerationRejectedError struct {
	Reason string
}

func (e *ModerationRejectedError) Error() string {
	if e.Reason == "" {
		return "moderation rejected the message"
	}
	return fmt.Sprintf("moderation rejected the message: %s", e.Reason)
}
