package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/retailermedia/internal/domain"
)

// MetadataHandler manages the upload rules of design configuration fields
type MetadataHandler struct {
	repo domain.FieldMetadataRepository
}

// NewMetadataHandler creates a new metadata handler
func NewMetadataHandler(repo domain.FieldMetadataRepository) *MetadataHandler {
	return &MetadataHandler{repo: repo}
}

// List handles GET /v1/admin/design/metadata
func (h *MetadataHandler) List(c *fiber.Ctx) error {
	metadata, err := h.repo.Get(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load metadata",
		})
	}
	return c.JSON(fiber.Map{"data": metadata})
}

// Upsert handles PUT /v1/admin/design/metadata/:code
func (h *MetadataHandler) Upsert(c *fiber.Ctx) error {
	var meta domain.FieldMetadata
	if err := c.BodyParser(&meta); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	meta.Code = c.Params("code")

	if err := h.repo.Upsert(c.UserContext(), &meta); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save metadata",
		})
	}
	return c.Status(fiber.StatusOK).JSON(meta)
}

// Delete handles DELETE /v1/admin/design/metadata/:code
func (h *MetadataHandler) Delete(c *fiber.Ctx) error {
	if err := h.repo.Delete(c.UserContext(), c.Params("code")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Metadata not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete metadata",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
