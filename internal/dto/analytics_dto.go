package dto

import (
	"time"

	"github.com/noah-isme/pantau-go-api/internal/analytics"
)

// AnalyticsResponse wraps the computed analytics with serving metadata.
// Handlers send a null data payload instead when no snapshots exist.
type AnalyticsResponse struct {
	*analytics.Analytics
	CacheHit    bool      `json:"cacheHit"`
	GeneratedAt time.Time `json:"generatedAt"`
}
