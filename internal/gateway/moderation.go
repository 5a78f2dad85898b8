package gateway

import (
	"context"
	"net/url"
)

// ModerationCheck asks whether content may be posted to a channel.
type ModerationCheck struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// TextAnalysis is a standalone content analysis request.
type TextAnalysis struct {
	Text string `json:"text"`
}

// UserModerationStatus reports sanctions applying to a user in a channel.
type UserModerationStatus struct {
	UserID    string `json:"user_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	IsBanned  bool   `json:"is_banned,omitempty"`
	IsMuted   bool   `json:"is_muted,omitempty"`
}

// CheckContent runs the pre-send moderation screen.
func (c *Client) CheckContent(ctx context.Context, check ModerationCheck) (ModerationResult, error) {
	var result ModerationResult
	err := c.sendJSON(ctx, "POST", "/moderation/check", check, &result)
	return result, err
}

// AnalyzeText runs the content analyzer without a send in flight.
func (c *Client) AnalyzeText(ctx context.Context, text string) (ModerationResult, error) {
	var result ModerationResult
	err := c.sendJSON(ctx, "POST", "/moderation/analyze", TextAnalysis{Text: text}, &result)
	return result, err
}

// GetUserModerationStatus fetches sanctions for a user in a channel.
func (c *Client) GetUserModerationStatus(ctx context.Context, userID, channelID string) (UserModerationStatus, error) {
	var status UserModerationStatus
	err := c.getJSON(ctx, "/moderation/status/"+url.PathEscape(userID)+"/"+url.PathEscape(channelID), nil, &status)
	return status, err
}

// ListBannedUsers fetches the global ban list.
func (c *Client) ListBannedUsers(ctx context.Context) ([]User, error) {
	return getList[User](ctx, c, "/moderation/banned-users", nil)
}

// ListBlacklistWords fetches the word blacklist.
func (c *Client) ListBlacklistWords(ctx context.Context) ([]string, error) {
	return getList[string](ctx, c, "/moderation/blacklist/words", nil)
}
