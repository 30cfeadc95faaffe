package usecase

import (
	"context"

	"locator/internal/domain/entity"
)

// LocationUsecase defines the interface for exact postcode lookups
type LocationUsecase interface {
	// Lookup normalizes postcode and returns its first matching row.
	// Returns ErrInvalidPostcode for malformed input and ErrPostcodeNotFound on a miss.
	Lookup(ctx context.Context, postcode string) (*entity.Location, error)
}
