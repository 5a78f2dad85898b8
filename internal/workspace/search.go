package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannVasquez/chatdeck/internal/gateway"
)

// searchGateway is the slice of the gateway client the searcher needs.
type searchGateway interface {
	Search(ctx context.Context, scope gateway.SearchScope, q string, filters gateway.SearchFilters) ([]gateway.SearchHit, error)
}

// Searcher dispatches parameterized queries across the four search scopes.
// It holds no state; an empty result set is a valid outcome, not an error.
type Searcher struct {
	gw searchGateway
}

// NewSearcher builds a searcher over the gateway.
func NewSearcher(gw searchGateway) *Searcher {
	return &Searcher{gw: gw}
}

// Search runs one query. Filters are passed through only when non-empty.
func (s *Searcher) Search(ctx context.Context, scope gateway.SearchScope, query string, filters gateway.SearchFilters) ([]gateway.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrValidation)
	}
	hits, err := s.gw.Search(ctx, scope, query, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSearch, scope, err)
	}
	return hits, nil
}
