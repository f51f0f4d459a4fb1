package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingUploads captures what the handler passes to the upload service
type recordingUploads struct {
	store   domain.StoreContext
	fieldID string
	name    string
	body    string
	gotFile bool
}

func (r *recordingUploads) SaveTemporary(ctx context.Context, store domain.StoreContext, fieldID string, file *domain.UploadedFile) domain.UploadOutcome {
	r.store = store
	r.fieldID = fieldID
	if file == nil {
		return domain.Failure(domain.ErrFileNotUploaded.Message, domain.ErrFileNotUploaded.Code)
	}
	r.gotFile = true
	r.name = file.Name
	data, _ := io.ReadAll(file.Content)
	r.body = string(data)
	return domain.Success(&domain.UploadResult{
		Name: file.Name,
		File: file.Name,
		Size: file.Size,
		Type: file.ContentType,
		URL:  service.TmpMediaURL(store.MediaBaseURL, file.Name),
	})
}

func newUploadApp(uploads domain.UploadService) *fiber.App {
	resolver := service.NewStoreResolver(map[string]string{
		"default": "https://shop.example.com/media",
		"de":      "https://de.shop.example.com/media",
	}, "default")
	h := NewUploadHandler(uploads, resolver)

	app := fiber.New()
	app.Post("/v1/admin/design/files/:fieldId", h.SaveTemporary)
	return app
}

func multipartRequest(t *testing.T, target, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("form_key", "abc"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUploadHandler_SaveTemporary(t *testing.T) {
	uploads := &recordingUploads{}
	app := newUploadApp(uploads)

	req := multipartRequest(t, "/v1/admin/design/files/header_logo_src", "header_logo_src", "logo.png", "png-bytes")
	req.Header.Set("X-Store-Code", "de")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "logo.png", body["name"])
	assert.Equal(t, "https://de.shop.example.com/media/tmp/design/file/logo.png", body["url"])
	assert.NotContains(t, body, "error")

	assert.Equal(t, "header_logo_src", uploads.fieldID)
	assert.Equal(t, "de", uploads.store.Code)
	assert.Equal(t, "png-bytes", uploads.body)
}

func TestUploadHandler_FallsBackToFileField(t *testing.T) {
	uploads := &recordingUploads{}
	app := newUploadApp(uploads)

	req := multipartRequest(t, "/v1/admin/design/files/email_logo?store=default", "file", "mail.png", "x")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, uploads.gotFile)
	assert.Equal(t, "mail.png", uploads.name)
	assert.Equal(t, "default", uploads.store.Code)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	uploads := &recordingUploads{}
	app := newUploadApp(uploads)

	resp, err := app.Test(multipartRequest(t, "/v1/admin/design/files/email_logo", "", "", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "File was not uploaded.", body["error"])
	assert.Equal(t, float64(domain.CodeFileNotUploaded), body["errorcode"])
	assert.False(t, uploads.gotFile)
}

func TestUploadHandler_UnknownStore(t *testing.T) {
	uploads := &recordingUploads{}
	app := newUploadApp(uploads)

	req := multipartRequest(t, "/v1/admin/design/files/email_logo", "email_logo", "logo.png", "x")
	req.Header.Set("X-Store-Code", "fr")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, `Store "fr" is not configured.`, body["error"])
	assert.Equal(t, float64(domain.CodeConfiguration), body["errorcode"])
	assert.Empty(t, uploads.fieldID)
}
