package usecase

import "context"

// Health statuses
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
)

// DatabaseHealth reports store reachability
type DatabaseHealth struct {
	Connected   bool   `json:"connected"`
	RecordCount *int64 `json:"record_count"`
	Error       string `json:"error,omitempty"`
}

// CacheHealth reports postcode cache occupancy
type CacheHealth struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
}

// HealthReport is the outcome of a health check
type HealthReport struct {
	Status           string         `json:"status"`
	Database         DatabaseHealth `json:"database"`
	DistanceStrategy string         `json:"distance_strategy"`
	Cache            CacheHealth    `json:"cache"`
}

// HealthUsecase defines the interface for service health checks
type HealthUsecase interface {
	// Check never fails: store problems are reported as a degraded status.
	Check(ctx context.Context) *HealthReport
}
