package gateway

import (
	"context"
	"net/url"
)

// ThreadCreate opens a new thread in a channel.
type ThreadCreate struct {
	ChannelID  string `json:"channel_id"`
	ThreadName string `json:"thread_name"`
	UserID     string `json:"user_id"`
}

// ThreadUpdate renames a thread.
type ThreadUpdate struct {
	ThreadName string `json:"thread_name,omitempty"`
	Title      string `json:"title,omitempty"`
}

// ListThreadsByChannel fetches the threads of a channel.
func (c *Client) ListThreadsByChannel(ctx context.Context, channelID string) ([]Thread, error) {
	return getList[Thread](ctx, c, "/threads/channel/"+url.PathEscape(channelID), nil)
}

// ListMyThreads fetches the threads a user participates in.
func (c *Client) ListMyThreads(ctx context.Context, userID string) ([]Thread, error) {
	return getList[Thread](ctx, c, "/threads/mine/"+url.PathEscape(userID), nil)
}

// GetThread fetches a single thread.
func (c *Client) GetThread(ctx context.Context, id string) (Thread, error) {
	var thread Thread
	err := c.getJSON(ctx, "/threads/"+url.PathEscape(id), nil, &thread)
	return thread, err
}

// CreateThread opens a thread.
func (c *Client) CreateThread(ctx context.Context, req ThreadCreate) (Thread, error) {
	var thread Thread
	err := c.sendJSON(ctx, "POST", "/threads", req, &thread)
	return thread, err
}

// UpdateThread renames a thread.
func (c *Client) UpdateThread(ctx context.Context, id string, update ThreadUpdate) (Thread, error) {
	var thread Thread
	err := c.sendJSON(ctx, "PUT", "/threads/"+url.PathEscape(id), update, &thread)
	return thread, err
}
