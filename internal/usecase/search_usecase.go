package usecase

import (
	"context"

	"locator/internal/domain/entity"
)

// SearchUsecase plans and runs field and geofence searches
type SearchUsecase interface {
	// Plan validates criteria and resolves defaults without touching the store.
	Plan(criteria entity.SearchCriteria) (*entity.QueryPlan, error)

	// Execute runs a plan produced by Plan.
	Execute(ctx context.Context, plan *entity.QueryPlan) (*entity.SearchResult, error)

	// Search is Plan followed by Execute.
	Search(ctx context.Context, criteria entity.SearchCriteria) (*entity.SearchResult, error)
}
