package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pantau-go-api/internal/ingest"
	"github.com/noah-isme/pantau-go-api/internal/service"
	"github.com/noah-isme/pantau-go-api/internal/utils"
)

// SnapshotHandler handles report upload, listing and deletion.
type SnapshotHandler struct {
	service service.SnapshotService
	logger  zerolog.Logger
}

// NewSnapshotHandler constructs the handler.
func NewSnapshotHandler(service service.SnapshotService, logger zerolog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		service: service,
		logger:  logger.With().Str("component", "snapshot_handler").Logger(),
	}
}

// Register wires snapshot routes. The upload route takes its own middleware
// chain so rate limiting can be applied to it alone.
func (h *SnapshotHandler) Register(router fiber.Router, uploadMiddleware ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, uploadMiddleware...), h.importSnapshot)
	router.Post("", handlers...)
	router.Get("", h.list)
	router.Delete("/:id", h.delete)
}

func (h *SnapshotHandler) importSnapshot(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Import(c.Context(), file, c.FormValue("name"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed), errors.Is(err, ingest.ErrNoLearnerColumn):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("snapshot import failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to import report")
		}
	}

	return utils.SendCreated(c, "report imported", result)
}

func (h *SnapshotHandler) list(c *fiber.Ctx) error {
	snapshots, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list snapshots")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list reports")
	}

	return utils.SendSuccess(c, "reports retrieved", snapshots)
}

func (h *SnapshotHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid snapshot id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrSnapshotNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("snapshot_id", id).Msg("snapshot delete failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete report")
	}

	return utils.SendSuccess(c, "report deleted", fiber.Map{"id": id})
}
