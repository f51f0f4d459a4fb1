package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryMetadataRepo is an in-memory FieldMetadataRepository
type memoryMetadataRepo struct {
	entries map[string]domain.FieldMetadata
}

func (r *memoryMetadataRepo) Get(ctx context.Context) (map[string]domain.FieldMetadata, error) {
	return r.entries, nil
}

func (r *memoryMetadataRepo) Upsert(ctx context.Context, meta *domain.FieldMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	r.entries[meta.Code] = *meta
	return nil
}

func (r *memoryMetadataRepo) Delete(ctx context.Context, code string) error {
	if _, ok := r.entries[code]; !ok {
		return domain.ErrNotFound
	}
	delete(r.entries, code)
	return nil
}

func newMetadataApp(repo domain.FieldMetadataRepository) *fiber.App {
	h := NewMetadataHandler(repo)
	app := fiber.New()
	app.Get("/metadata", h.List)
	app.Put("/metadata/:code", h.Upsert)
	app.Delete("/metadata/:code", h.Delete)
	return app
}

func TestMetadataHandler(t *testing.T) {
	repo := &memoryMetadataRepo{entries: map[string]domain.FieldMetadata{}}
	app := newMetadataApp(repo)

	put := func(code, body string) int {
		req := httptest.NewRequest(http.MethodPut, "/metadata/"+code, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, put("header_logo_src", `{"path":"design/header/logo_src","backend_model":"image","allowed_extensions":["png","svg"]}`))
	assert.Equal(t, "design/header/logo_src", repo.entries["header_logo_src"].Path)

	assert.Equal(t, fiber.StatusBadRequest, put("bad", `{"path":"design/bad","backend_model":"video"}`))
	assert.Equal(t, fiber.StatusBadRequest, put("bad", `not json`))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metadata", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Contains(t, body["data"], "header_logo_src")

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/metadata/header_logo_src", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/metadata/header_logo_src", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
