package userstore

import (
	"context"

	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// Fetcher implements auth.UserFetcher to load the fresh profile on each request,
// so admin changes (modules, admin flag) take effect without re-login.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a UserFetcher backed by the given store.
func NewFetcher(store *Store) *Fetcher {
	return &Fetcher{store: store}
}

// FetchUser returns the profile for uid, or nil if it does not exist or
// cannot be read.
func (f *Fetcher) FetchUser(ctx context.Context, uid string) *models.User {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.store.GetByID(ctx, uid)
	if err != nil {
		return nil
	}
	return &u
}
