package document

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"binary-metadata/feature/document/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *fixture) {
	f := newFixture(t, Options{})
	app := fiber.New()
	feature := NewFeature(f.service)
	require.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app, f
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func createPicture(t *testing.T, app *fiber.App) models.Document {
	t.Helper()
	body, contentType := multipartBody(t,
		map[string]string{"type": "Picture"},
		"photo.jpg", []byte(`{"Title":"Sunset","Model":"X100"}`))

	req := httptest.NewRequest("POST", "/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	return decode[models.Document](t, resp.Body)
}

func TestHandleCreate_Multipart(t *testing.T) {
	app, _ := setupTestApp(t)

	doc := createPicture(t, app)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Sunset", doc.Fields["dc:title"])
	assert.Equal(t, "photo.jpg", doc.Blobs["file:content"].Filename)
}

func TestHandleCreate_JSON(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/documents", strings.NewReader(`{"type":"Note","fields":{"dc:title":"Draft"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	doc := decode[models.Document](t, resp.Body)
	assert.Equal(t, "Note", doc.Type)
	assert.Equal(t, "Draft", doc.Fields["dc:title"])
}

func TestHandleCreate_BadRequests(t *testing.T) {
	app, _ := setupTestApp(t)

	t.Run("MissingType", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/documents", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("BrokenFields", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"type": "Picture", "fields": "{nope"}, "", nil)
		req := httptest.NewRequest("POST", "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		errBody := decode[map[string]string](t, resp.Body)
		assert.Contains(t, errBody["error"], "fields must be a JSON object")
	})
}

func TestHandleGet(t *testing.T) {
	app, _ := setupTestApp(t)
	doc := createPicture(t, app)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents/"+doc.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, doc.ID, decode[models.Document](t, resp.Body).ID)

	resp, err = app.Test(httptest.NewRequest("GET", "/documents/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleUpdate(t *testing.T) {
	app, f := setupTestApp(t)
	doc := createPicture(t, app)

	body, contentType := multipartBody(t, map[string]string{"fields": `{"dc:title":"Dawn"}`}, "", nil)
	req := httptest.NewRequest("PATCH", "/documents/"+doc.ID, body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated := decode[models.Document](t, resp.Body)
	assert.Equal(t, "Dawn", updated.Fields["dc:title"])
	assert.Equal(t, "Dawn", f.storage.object(updated.Blobs["file:content"].Key)["Title"])

	req = httptest.NewRequest("PATCH", "/documents/"+doc.ID, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleReadMetadata(t *testing.T) {
	app, _ := setupTestApp(t)
	doc := createPicture(t, app)

	resp, err := app.Test(httptest.NewRequest("GET", "/documents/"+doc.ID+"/metadata?keys=Model,%20Title", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[models.MetadataResponse](t, resp.Body)
	assert.Equal(t, doc.ID, body.DocumentID)
	assert.Equal(t, map[string]any{"Model": "X100", "Title": "Sunset"}, body.Metadata)

	resp, err = app.Test(httptest.NewRequest("GET", "/documents/"+doc.ID+"/metadata?processor=tika", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleRefresh(t *testing.T) {
	app, _ := setupTestApp(t)
	doc := createPicture(t, app)

	resp, err := app.Test(httptest.NewRequest("POST", "/documents/"+doc.ID+"/metadata/refresh", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "X100", decode[models.Document](t, resp.Body).Fields["camera:model"])

	resp, err = app.Test(httptest.NewRequest("POST", "/documents/ghost/metadata/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleListDescriptors(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/metadata/mappings", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	mappings := decode[map[string]any](t, resp.Body)
	assert.Equal(t, float64(2), mappings["count"])

	resp, err = app.Test(httptest.NewRequest("GET", "/metadata/rules", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	rules := decode[map[string]any](t, resp.Body)
	items := rules["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "pictures", items[0].(map[string]any)["id"])
}
