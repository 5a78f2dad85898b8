package gateway

import (
	"context"
	"net/url"
	"strconv"
)

// MessageCreate posts a new message into a thread.
type MessageCreate struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// MessageUpdate edits message content.
type MessageUpdate struct {
	Content string `json:"content"`
}

func threadMessagesPath(threadID string) string {
	return "/messages/threads/" + url.PathEscape(threadID)
}

// ListMessages fetches up to limit messages of a thread.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return getList[Message](ctx, c, threadMessagesPath(threadID), query)
}

// GetMessage fetches a single message.
func (c *Client) GetMessage(ctx context.Context, threadID, messageID string) (Message, error) {
	var msg Message
	err := c.getJSON(ctx, threadMessagesPath(threadID)+"/messages/"+url.PathEscape(messageID), nil, &msg)
	return msg, err
}

// CreateMessage posts a message.
func (c *Client) CreateMessage(ctx context.Context, threadID string, req MessageCreate) (Message, error) {
	var msg Message
	err := c.sendJSON(ctx, "POST", threadMessagesPath(threadID), req, &msg)
	return msg, err
}

// UpdateMessage edits a message.
func (c *Client) UpdateMessage(ctx context.Context, threadID, messageID string, update MessageUpdate) (Message, error) {
	var msg Message
	err := c.sendJSON(ctx, "PUT", threadMessagesPath(threadID)+"/messages/"+url.PathEscape(messageID), update, &msg)
	return msg, err
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, threadID, messageID string) error {
	return c.delete(ctx, threadMessagesPath(threadID)+"/messages/"+url.PathEscape(messageID))
}
