package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pantau-go-api/internal/dto"
	"github.com/noah-isme/pantau-go-api/internal/service"
	"github.com/noah-isme/pantau-go-api/internal/utils"
)

// ExportHandler serves CSV downloads of the learner lists.
type ExportHandler struct {
	service  service.ExportService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, validate *validator.Validate, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("", h.export)
}

func (h *ExportHandler) export(c *fiber.Ctx) error {
	req := dto.ExportRequest{
		List: c.Query("list"),
		Mode: c.Query("mode"),
	}
	if err := h.validate.Struct(req); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid list or mode")
		}
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Export(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNoExportData) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export report")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.FileName+`"`)
	return c.Status(fiber.StatusOK).Send(result.Content)
}
