package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/middleware"
)

// UploadHandler handles design configuration file uploads
type UploadHandler struct {
	uploads domain.UploadService
	stores  domain.URLResolver
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads domain.UploadService, stores domain.URLResolver) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		stores:  stores,
	}
}

// SaveTemporary handles POST /v1/admin/design/files/:fieldId
// The admin form reads "error" and "errorcode" from the body, so rejected
// uploads are still answered with 200.
func (h *UploadHandler) SaveTemporary(c *fiber.Ctx) error {
	fieldID := c.Params("fieldId")

	storeCode := c.Get("X-Store-Code")
	if storeCode == "" {
		storeCode = c.Query("store")
	}
	store, err := h.stores.Resolve(storeCode)
	if err != nil {
		var uploadErr *domain.UploadError
		if errors.As(err, &uploadErr) {
			c.Locals(middleware.SkipIdempotencyKey, true)
			return c.Status(fiber.StatusOK).JSON(domain.Failure(uploadErr.Message, uploadErr.Code))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if claims := middleware.ClaimsFrom(c); claims != nil && !claims.CanAccessStore(store.Code) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No access to store " + store.Code,
		})
	}

	header := formFile(c, fieldID)
	var file *domain.UploadedFile
	if header != nil {
		content, err := header.Open()
		if err != nil {
			c.Locals(middleware.SkipIdempotencyKey, true)
			return c.Status(fiber.StatusOK).JSON(domain.Failure(domain.ErrFileNotUploaded.Message, domain.ErrFileNotUploaded.Code))
		}
		defer content.Close()

		file = &domain.UploadedFile{
			FieldID:     fieldID,
			Name:        header.Filename,
			ContentType: header.Header.Get(fiber.HeaderContentType),
			Size:        header.Size,
			Content:     content,
		}
	}

	outcome := h.uploads.SaveTemporary(c.UserContext(), store, fieldID, file)
	if !outcome.OK() {
		c.Locals(middleware.SkipIdempotencyKey, true)
	}
	return c.Status(fiber.StatusOK).JSON(outcome)
}

// formFile returns the file posted under the field code, falling back to "file"
func formFile(c *fiber.Ctx, fieldID string) *multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	for _, key := range []string{fieldID, "file"} {
		if key == "" {
			continue
		}
		if files := form.File[key]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}
