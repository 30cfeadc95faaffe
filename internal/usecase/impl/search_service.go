package impl

import (
	"cmp"
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"locator/config"
	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"
	"locator/internal/domain/service"
	"locator/internal/errors"
	"locator/internal/usecase"
)

type searchService struct {
	locationRepo repository.LocationRepository
	strategy     service.DistanceStrategy
	logger       *slog.Logger

	defaultLimit int
	maxLimit     int
	maxRadius    float64
}

// NewSearchService creates a new search service instance
func NewSearchService(
	locationRepo repository.LocationRepository,
	strategy service.DistanceStrategy,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.SearchUsecase {
	search := cfg.Search
	if search.DefaultLimit <= 0 {
		search.DefaultLimit = config.DefaultSearchLimit
	}
	if search.MaxLimit <= 0 {
		search.MaxLimit = config.DefaultMaxSearchLimit
	}
	if search.MaxRadiusMeters <= 0 {
		search.MaxRadiusMeters = config.DefaultMaxRadiusMeters
	}

	return &searchService{
		locationRepo: locationRepo,
		strategy:     strategy,
		logger:       logger,
		defaultLimit: search.DefaultLimit,
		maxLimit:     search.MaxLimit,
		maxRadius:    search.MaxRadiusMeters,
	}
}

// Search plans and executes criteria
func (s *searchService) Search(ctx context.Context, criteria entity.SearchCriteria) (*entity.SearchResult, error) {
	plan, err := s.Plan(criteria)
	if err != nil {
		return nil, err
	}

	return s.Execute(ctx, plan)
}

// Plan validates criteria and builds an executable plan
func (s *searchService) Plan(criteria entity.SearchCriteria) (*entity.QueryPlan, error) {
	field, ok := entity.ParseSearchField(criteria.Field)
	if !ok {
		return nil, domainerrors.NewUnknownFieldError(criteria.Field, searchFieldNames())
	}

	limit := criteria.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 || limit > s.maxLimit {
		return nil, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("limit must be between 1 and %d", s.maxLimit))
	}

	query := strings.TrimSpace(criteria.Query)
	if field != entity.SearchFieldNone && query == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("query is required when a field is given")
	}

	plan := &entity.QueryPlan{Limit: limit}
	if field != entity.SearchFieldNone {
		plan.Filter = entity.FieldFilter{Field: field, Pattern: strings.ToUpper(query)}
	}

	if criteria.Geofence != nil {
		if err := s.validateGeofence(criteria.Geofence); err != nil {
			return nil, err
		}
		fence := *criteria.Geofence
		plan.Geofence = &fence
		plan.Empty = fence.RadiusMeters == 0
	}

	return plan, nil
}

func (s *searchService) validateGeofence(fence *entity.Geofence) error {
	lat, lon, radius := fence.Lat(), fence.Lon(), fence.RadiusMeters

	switch {
	case math.IsNaN(lat) || lat < -90 || lat > 90:
		return domainerrors.ErrValidationFailed.WithDetails("center_lat must be between -90 and 90")
	case math.IsNaN(lon) || lon < -180 || lon > 180:
		return domainerrors.ErrValidationFailed.WithDetails("center_lon must be between -180 and 180")
	case math.IsNaN(radius) || radius < 0 || radius > s.maxRadius:
		return domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("radius_meters must be between 0 and %g", s.maxRadius))
	}

	return nil
}

// Execute runs a validated plan
func (s *searchService) Execute(ctx context.Context, plan *entity.QueryPlan) (*entity.SearchResult, error) {
	if plan.Empty {
		return newSearchResult(nil, true), nil
	}

	if plan.Geofence == nil {
		locations, err := s.locationRepo.FindByField(ctx, plan.Filter, plan.Limit)
		if err != nil {
			return nil, errors.Wrap(err, "failed to search locations")
		}

		results := make([]entity.GeofenceResult, 0, len(locations))
		for _, location := range locations {
			results = append(results, entity.GeofenceResult{Location: location})
		}

		return newSearchResult(results, false), nil
	}

	results, err := s.searchGeofence(ctx, plan)
	if err != nil {
		return nil, err
	}

	return newSearchResult(results, true), nil
}

// searchGeofence pushes the geofence down to the store when the geodesic
// strategy is active and ranks box candidates in process otherwise.
func (s *searchService) searchGeofence(ctx context.Context, plan *entity.QueryPlan) ([]entity.GeofenceResult, error) {
	fence := *plan.Geofence
	ranker := s.strategy

	if s.strategy.Name() == service.StrategyGeodesic {
		results, err := s.locationRepo.FindWithinRadius(ctx, plan.Filter, fence, plan.Limit)
		if err == nil {
			return results, nil
		}
		if !canFallBack(err) {
			return nil, errors.Wrap(err, "failed to search locations within radius")
		}
		ranker = fallbackOf(s.strategy)
		s.logger.WarnContext(ctx, "Geodesic search failed, ranking box candidates in process",
			slog.String("strategy", ranker.Name()),
			slog.Any("error", err))
	}

	nearest := make(nearestResults, 0, min(plan.Limit, nearestInitialCapacity))
	err := s.locationRepo.ScanWithinBox(ctx, plan.Filter, ranker.Bound(fence.Center, fence.RadiusMeters),
		func(location *entity.Location) error {
			meters, err := ranker.Distance(ctx, fence.Center, location.Point())
			if err != nil {
				return errors.Wrap(err, "failed to measure distance")
			}
			if !service.Classify(meters, fence.RadiusMeters) {
				return nil
			}

			nearest.offer(entity.GeofenceResult{
				Location:       location,
				DistanceMeters: meters,
				WithinGeofence: true,
			}, plan.Limit)

			return nil
		})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search locations within box")
	}

	results := []entity.GeofenceResult(nearest)
	slices.SortFunc(results, compareResults)

	return results, nil
}

// fallbackOf returns the in-process strategy behind a store-backed one.
func fallbackOf(strategy service.DistanceStrategy) service.DistanceStrategy {
	if f, ok := strategy.(service.FallbackStrategy); ok {
		return f.Fallback()
	}

	return strategy
}

// nearestInitialCapacity caps the up-front allocation for large limits.
const nearestInitialCapacity = 64

// nearestResults is a max-heap on compareResults holding the best results seen so far.
type nearestResults []entity.GeofenceResult

func (h nearestResults) Len() int           { return len(h) }
func (h nearestResults) Less(i, j int) bool { return compareResults(h[i], h[j]) > 0 }
func (h nearestResults) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nearestResults) Push(x any) {
	*h = append(*h, x.(entity.GeofenceResult))
}

func (h *nearestResults) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]

	return last
}

// offer keeps result if it ranks among the limit best.
func (h *nearestResults) offer(result entity.GeofenceResult, limit int) {
	if limit <= 0 {
		return
	}
	if h.Len() < limit {
		heap.Push(h, result)

		return
	}
	if compareResults(result, (*h)[0]) < 0 {
		(*h)[0] = result
		heap.Fix(h, 0)
	}
}

// compareResults orders by distance, then postcode, then row id.
func compareResults(a, b entity.GeofenceResult) int {
	return cmp.Or(
		cmp.Compare(a.DistanceMeters, b.DistanceMeters),
		strings.Compare(a.Postcode, b.Postcode),
		cmp.Compare(a.RowID, b.RowID),
	)
}

// canFallBack reports whether a push-down failure can be retried on the box path.
// Unavailable stores and unsearchable fields would fail the same way there.
func canFallBack(err error) bool {
	if errors.Is(err, repository.ErrGeodesicUnsupported) {
		return true
	}

	_, ok := errors.AsType[*domainerrors.DatabaseExecuteError](err)

	return ok
}

func newSearchResult(results []entity.GeofenceResult, geofenced bool) *entity.SearchResult {
	if results == nil {
		results = []entity.GeofenceResult{}
	}

	within := len(results)
	if geofenced {
		within = 0
		for _, result := range results {
			if result.WithinGeofence {
				within++
			}
		}
	}

	return &entity.SearchResult{
		Results:           results,
		Geofenced:         geofenced,
		TotalCount:        len(results),
		WithinRadiusCount: within,
	}
}

func searchFieldNames() []string {
	fields := entity.SearchFields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.String())
	}

	return names
}
