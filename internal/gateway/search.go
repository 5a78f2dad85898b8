package gateway

import (
	"context"
	"net/url"
)

// SearchScope selects which resource kind a query targets.
type SearchScope string

const (
	ScopeMessages SearchScope = "messages"
	ScopeFiles    SearchScope = "files"
	ScopeChannels SearchScope = "channels"
	ScopeAll      SearchScope = "all"
)

// SearchFilters narrow a query to a channel and/or thread. Empty fields are
// not sent.
type SearchFilters struct {
	ChannelID string
	ThreadID  string
}

func searchQuery(q string, filters SearchFilters) url.Values {
	query := url.Values{}
	query.Set("q", q)
	if filters.ChannelID != "" {
		query.Set("channel_id", filters.ChannelID)
	}
	if filters.ThreadID != "" {
		query.Set("thread_id", filters.ThreadID)
	}
	return query
}

// Search routes the query to the endpoint matching the scope. ScopeAll hits
// the global endpoint, which fans out across services upstream.
func (c *Client) Search(ctx context.Context, scope SearchScope, q string, filters SearchFilters) ([]SearchHit, error) {
	path := "/search"
	switch scope {
	case ScopeMessages:
		path = "/search/messages"
	case ScopeFiles:
		path = "/search/files"
	case ScopeChannels:
		path = "/search/channels"
	}
	return getList[SearchHit](ctx, c, path, searchQuery(q, filters))
}
