package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pantau-go-api/internal/service"
	"github.com/noah-isme/pantau-go-api/internal/utils"
)

// AnalyticsHandler serves the computed progress analytics.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register wires analytics routes.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("", h.get)
}

func (h *AnalyticsHandler) get(c *fiber.Ctx) error {
	result, err := h.service.GetAnalytics(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("analytics computation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute analytics")
	}

	// No snapshots yet: a null payload, not an error.
	if result == nil {
		return utils.SendSuccess(c, "no report data", nil)
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "analytics retrieved", result)
}
