package service

import (
	"context"

	"locator/internal/domain/entity"
)

// ResolveFunc loads a postcode from the store. A miss is reported either as
// repository.ErrLocationNotFound or as a nil location with a nil error.
type ResolveFunc func(ctx context.Context, postcode string) (*entity.Location, error)

// PostcodeCache memoizes exact postcode lookups.
// Each normalized postcode triggers at most one resolve while its entry is resident.
type PostcodeCache interface {
	// Get returns the cached location for postcode, calling resolve on a miss.
	// Known misses return repository.ErrLocationNotFound without touching the store.
	Get(ctx context.Context, postcode string, resolve ResolveFunc) (*entity.Location, error)

	// Purge drops every entry.
	Purge()

	// Len returns the number of cached entries.
	Len() int

	// Capacity returns the configured maximum entry count.
	Capacity() int
}
