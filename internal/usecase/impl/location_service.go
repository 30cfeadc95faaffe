package impl

import (
	"context"

	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"
	"locator/internal/errors"
	"locator/internal/usecase"
)

type locationService struct {
	locationRepo repository.LocationRepository
	cache        service.PostcodeCache
}

// NewLocationService creates a new location service instance
func NewLocationService(locationRepo repository.LocationRepository, cache service.PostcodeCache) usecase.LocationUsecase {
	return &locationService{
		locationRepo: locationRepo,
		cache:        cache,
	}
}

// Lookup resolves a postcode through the cache
func (s *locationService) Lookup(ctx context.Context, postcode string) (*entity.Location, error) {
	normalized, ok := entity.NormalizePostcode(postcode)
	if !ok {
		return nil, domainerrors.ErrInvalidPostcode.WithDetails("postcode must match the UK outward/inward format")
	}

	location, err := s.cache.Get(ctx, normalized, s.locationRepo.FindByPostcode)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return nil, domainerrors.ErrPostcodeNotFound.WithDetails(normalized)
		}

		return nil, errors.Wrap(err, "failed to look up postcode")
	}

	return location, nil
}
