package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/user-directory/internal/query"
	"github.com/iliyamo/user-directory/internal/repository"
)

// ListingCache is the small cache surface the listing path depends on.  The
// redis-backed gateway satisfies it; both methods are failure-free by
// contract (a failed Get is a miss, a failed Set is silence).
type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// AccountService serves the admin directory listing with a cache-aside read
// path, plus account soft deletion.
type AccountService struct {
	store AccountStore
	cache ListingCache // may be nil: listing then always hits the store
	ttl   time.Duration
}

func NewAccountService(store AccountStore, cache ListingCache, ttl time.Duration) *AccountService {
	return &AccountService{store: store, cache: cache, ttl: ttl}
}

// List returns one page of the account directory as a serialized pagination
// envelope.  Raw options are sanitized here against the repository's
// allow-lists.  The cache is consulted first; on a miss the store produces
// the page and the serialized result is written back best-effort.  Returning
// the stored bytes on both paths keeps hit and miss responses byte-identical.
func (s *AccountService) List(ctx context.Context, opts query.Options) ([]byte, error) {
	p := query.Sanitize(opts, repository.SortableColumns, repository.DefaultSort)
	key := p.CacheKey("users")

	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, key); ok {
			return b, nil
		}
	}

	accounts, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, viewOf(a))
	}

	payload, err := json.Marshal(query.NewEnvelope(views, total, p))
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, payload, s.ttl)
	}
	return payload, nil
}

// Delete soft-deletes an account.  The row keeps its tombstone and drops out
// of every lookup and listing.
func (s *AccountService) Delete(ctx context.Context, accountID uint64) error {
	if err := s.store.SoftDelete(ctx, accountID); err != nil {
		if isNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
