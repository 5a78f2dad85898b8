package gateway

import (
	"context"
	"net/url"
)

// PresenceRegister announces a user's presence from a device.
type PresenceRegister struct {
	UserID string `json:"user_id"`
	Device string `json:"device,omitempty"`
}

// PresenceUpdate patches a presence entry. Either a heartbeat or a status
// change, never both.
type PresenceUpdate struct {
	Status    string `json:"status,omitempty"`
	Heartbeat bool   `json:"heartbeat,omitempty"`
}

// ListPresence fetches the roster, optionally filtered by status.
func (c *Client) ListPresence(ctx context.Context, status string) ([]PresenceEntry, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	return getList[PresenceEntry](ctx, c, "/presence", query)
}

// GetPresenceStats fetches roster counters.
func (c *Client) GetPresenceStats(ctx context.Context) (PresenceStats, error) {
	var stats PresenceStats
	err := c.getJSON(ctx, "/presence/stats", nil, &stats)
	return stats, err
}

// GetPresence fetches one user's presence entry.
func (c *Client) GetPresence(ctx context.Context, userID string) (PresenceEntry, error) {
	var entry PresenceEntry
	err := c.getJSON(ctx, "/presence/"+url.PathEscape(userID), nil, &entry)
	return entry, err
}

// RegisterPresence creates or refreshes a presence entry.
func (c *Client) RegisterPresence(ctx context.Context, reg PresenceRegister) error {
	return c.sendJSON(ctx, "POST", "/presence", reg, nil)
}

// UpdatePresence patches a presence entry.
func (c *Client) UpdatePresence(ctx context.Context, userID string, update PresenceUpdate) error {
	return c.sendJSON(ctx, "PATCH", "/presence/"+url.PathEscape(userID), update, nil)
}

// RemovePresence deletes a presence entry.
func (c *Client) RemovePresence(ctx context.Context, userID string) error {
	return c.delete(ctx, "/presence/"+url.PathEscape(userID))
}
