package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
)

// composerGateway is the slice of the gateway client the composer needs.
type composerGateway interface {
	CheckContent(ctx context.Context, check gateway.ModerationCheck) (gateway.ModerationResult, error)
	CreateMessage(ctx context.Context, threadID string, req gateway.MessageCreate) (gateway.Message, error)
	UploadFile(ctx context.Context, upload gateway.FileUpload) (gateway.Attachment, error)
}

// AttachmentInput is a file staged in the composer.
type AttachmentInput struct {
	Filename string
	Content  []byte
}

// SendRequest is one compose action.
type SendRequest struct {
	Content     string
	MessageType string
	Attachment  *AttachmentInput
}

// SendResult reports what a successful send produced.
type SendResult struct {
	Message    gateway.Message
	Attachment *gateway.Attachment
}

// Composer validates and pre-screens outgoing messages. Every send passes
// the moderation check before it may reach the message service.
type Composer struct {
	gw          composerGateway
	session     *SessionStore
	selection   *Selection
	messages    *Cache[gateway.Message]
	attachments *Cache[gateway.Attachment]
	log         *slog.Logger
}

// NewComposer wires the composer to the session, selection, and the caches
// it invalidates after a send.
func NewComposer(gw composerGateway, session *SessionStore, selection *Selection, messages *Cache[gateway.Message], attachments *Cache[gateway.Attachment], log *slog.Logger) *Composer {
	if log == nil {
		log = slog.Default()
	}
	return &Composer{
		gw:          gw,
		session:     session,
		selection:   selection,
		messages:    messages,
		attachments: attachments,
		log:         log,
	}
}

// Send pushes one message into the active thread.
//
// Local preconditions fail fast without touching the network. The moderation
// check runs next and its veto is final: a rejected message is never handed
// to the message service. After creation, a staged attachment is uploaded
// tagged with the thread id and the created message's id — the association
// can only happen post-creation, the id does not exist before. A message
// that was created but whose attachment failed to upload stays created;
// at-least-once for the message, best-effort for the attachment link.
func (c *Composer) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sess := c.session.Current()
	if sess == nil {
		return SendResult{}, fmt.Errorf("%w: log in before sending messages", ErrValidation)
	}
	channelID := c.selection.ChannelID()
	threadID := c.selection.ThreadID()
	if channelID == "" || threadID == "" {
		return SendResult{}, fmt.Errorf("%w: select a channel and thread first", ErrValidation)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return SendResult{}, fmt.Errorf("%w: message content is empty", ErrValidation)
	}

	verdict, err := c.gw.CheckContent(ctx, gateway.ModerationCheck{
		UserID:    sess.User.ID,
		ChannelID: channelID,
		Content:   content,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: moderation check: %w", ErrSend, err)
	}
	if !verdict.Approved() {
		return SendResult{}, &ModerationRejectedError{Reason: verdict.Message}
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}
	msg, err := c.gw.CreateMessage(ctx, threadID, gateway.MessageCreate{
		Content:     content,
		MessageType: messageType,
		UserID:      sess.User.ID,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: create message: %w", ErrSend, err)
	}
	// The message exists upstream from here on; let the next render pick it
	// up whatever happens to the attachment.
	c.messages.Invalidate(threadID)

	result := SendResult{Message: msg}
	if req.Attachment != nil {
		file, err := c.gw.UploadFile(ctx, gateway.FileUpload{
			Filename:  req.Attachment.Filename,
			Content:   req.Attachment.Content,
			ThreadID:  threadID,
			MessageID: msg.ID,
		})
		if err != nil {
			return result, fmt.Errorf("%w: upload attachment: %w", ErrSend, err)
		}
		result.Attachment = &file
		c.attachments.Invalidate(threadID)
	}
	return result, nil
}
