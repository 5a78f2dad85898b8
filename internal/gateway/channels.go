package gateway

import (
	"context"
	"net/url"
	"strconv"
)

// ChannelCreate describes a new channel.
type ChannelCreate struct {
	Name        string   `json:"name"`
	OwnerID     string   `json:"owner_id"`
	Description string   `json:"description,omitempty"`
	Users       []string `json:"users,omitempty"`
	ChannelType string   `json:"channel_type,omitempty"`
}

// ChannelUpdate modifies channel fields; zero values are omitted.
type ChannelUpdate struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListChannels fetches one page of the channel directory.
func (c *Client) ListChannels(ctx context.Context, page, pageSize int) ([]Channel, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	return getList[Channel](ctx, c, "/channels", query)
}

// ListChannelsByOwner fetches the channels owned by a user.
func (c *Client) ListChannelsByOwner(ctx context.Context, ownerID string) ([]Channel, error) {
	return getList[Channel](ctx, c, "/channels/owner/"+url.PathEscape(ownerID), nil)
}

// ListChannelsByMember fetches the channels a user belongs to.
func (c *Client) ListChannelsByMember(ctx context.Context, userID string) ([]Channel, error) {
	return getList[Channel](ctx, c, "/channels/member/"+url.PathEscape(userID), nil)
}

// GetChannel fetches a single channel.
func (c *Client) GetChannel(ctx context.Context, id string) (Channel, error) {
	var channel Channel
	err := c.getJSON(ctx, "/channels/"+url.PathEscape(id), nil, &channel)
	return channel, err
}

// CreateChannel creates a channel.
func (c *Client) CreateChannel(ctx context.Context, req ChannelCreate) (Channel, error) {
	var channel Channel
	err := c.sendJSON(ctx, "POST", "/channels", req, &channel)
	return channel, err
}

// UpdateChannel modifies a channel.
func (c *Client) UpdateChannel(ctx context.Context, id string, update ChannelUpdate) (Channel, error) {
	var channel Channel
	err := c.sendJSON(ctx, "PUT", "/channels/"+url.PathEscape(id), update, &channel)
	return channel, err
}

// DeleteChannel removes a channel.
func (c *Client) DeleteChannel(ctx context.Context, id string) error {
	return c.delete(ctx, "/channels/"+url.PathEscape(id))
}
