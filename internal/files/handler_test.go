package files

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecloud/service/internal/config"
	"github.com/homecloud/service/internal/storage"
)

func newRouter(gw Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.StripSlashes)
	r.Route("/api/azure", NewHandler(gw).Routes)
	return r
}

func readyGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	cfg := config.StorageConfig{Provider: config.ProviderMemory, ContainerName: "files", AccountName: "homecloud"}
	gw := storage.NewGateway(context.Background(), cfg, storage.Connect)
	require.True(t, gw.Ready())
	return gw
}

func disabledGateway() *storage.Gateway {
	return storage.NewGateway(context.Background(), config.StorageConfig{}, storage.Connect)
}

func multipartUpload(t *testing.T, filename, content, blobName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if blobName != "" {
		require.NoError(t, mw.WriteField("blob_name", blobName))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/azure/files/upload/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestUploadDownloadDelete_EndToEnd(t *testing.T) {
	h := newRouter(readyGateway(t))

	rec := do(h, multipartUpload(t, "hello.txt", "hi", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "hello.txt", body["blobName"])
	assert.Equal(t, "memory://files/hello.txt", body["url"])
	assert.Equal(t, "application/octet-stream", body["contentType"])

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/hello.txt/download/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
	assert.Equal(t, `attachment; filename=hello.txt`, rec.Header().Get("Content-Disposition"))

	rec = do(h, httptest.NewRequest(http.MethodDelete, "/api/azure/files/hello.txt/delete/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/hello.txt/download/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_BlobNameOverridesFilename(t *testing.T) {
	h := newRouter(readyGateway(t))

	rec := do(h, multipartUpload(t, "scan.pdf", "%PDF", "invoices-2024-01"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "invoices-2024-01", decode(t, rec)["blobName"])

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/invoices-2024-01/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestNamesWithPercentRoundTrip(t *testing.T) {
	h := newRouter(readyGateway(t))

	cases := []struct {
		name    string
		escaped string
	}{
		{"100%.txt", "100%25.txt"},
		{"a%41.txt", "a%2541.txt"},
		{"hello world.txt", "hello%20world.txt"},
	}
	for _, tc := range cases {
		rec := do(h, multipartUpload(t, "f", tc.name, tc.name))
		require.Equal(t, http.StatusOK, rec.Code, tc.name)
		assert.Equal(t, tc.name, decode(t, rec)["blobName"])

		for _, suffix := range []string{"/download/", "/download"} {
			rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/"+tc.escaped+suffix, nil))
			require.Equal(t, http.StatusOK, rec.Code, "%s%s", tc.escaped, suffix)
			assert.Equal(t, tc.name, rec.Body.String())
		}

		rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/"+tc.escaped+"/url/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.name, decode(t, rec)["blobName"])

		rec = do(h, httptest.NewRequest(http.MethodDelete, "/api/azure/files/"+tc.escaped+"/delete/", nil))
		require.Equal(t, http.StatusOK, rec.Code, tc.name)

		rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/"+tc.escaped+"/download/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.name)
	}
}

func TestEncodedSlashInName(t *testing.T) {
	h := newRouter(readyGateway(t))

	rec := do(h, multipartUpload(t, "f", "nested", "docs/a%41.txt"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/docs%2Fa%2541.txt/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nested", rec.Body.String())
}

func TestUpload_MissingFile(t *testing.T) {
	h := newRouter(readyGateway(t))

	rec := do(h, multipartUpload(t, "", "", "name-only"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/azure/files/upload/", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = do(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete_MissingIsFailure(t *testing.T) {
	h := newRouter(readyGateway(t))

	rec := do(h, httptest.NewRequest(http.MethodDelete, "/api/azure/files/nope.txt/delete/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "nope.txt")
}

func TestList(t *testing.T) {
	h := newRouter(readyGateway(t))

	for _, name := range []string{"docs/a.txt", "docs/b.txt", "img.png"} {
		rec := do(h, multipartUpload(t, "f", "data", name))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/?prefix=docs/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Files []storage.BlobDescriptor `json:"files"`
		Total int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Files, 2)
	assert.Equal(t, "docs/a.txt", body.Files[0].Name)
	assert.Equal(t, int64(4), body.Files[0].Size)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
}

func TestURL(t *testing.T) {
	h := newRouter(readyGateway(t))

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/azure/files/any.txt/url/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "any.txt", body["blobName"])
	assert.Equal(t, "memory://files/any.txt", body["url"])
}

func TestStatus(t *testing.T) {
	rec := do(newRouter(readyGateway(t)), httptest.NewRequest(http.MethodGet, "/api/azure/status/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"configured":    true,
		"containerName": "files",
		"accountName":   "homecloud",
	}, decode(t, rec))

	rec = do(newRouter(disabledGateway()), httptest.NewRequest(http.MethodGet, "/api/azure/status/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"configured":    false,
		"containerName": nil,
		"accountName":   nil,
	}, decode(t, rec))
}

func TestSelfTest(t *testing.T) {
	rec := do(newRouter(readyGateway(t)), httptest.NewRequest(http.MethodGet, "/api/azure/test/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["uploadSuccess"])
	assert.Equal(t, true, body["downloadSuccess"])
	assert.Equal(t, true, body["contentMatches"])
	assert.Equal(t, "files", body["containerName"])
}

func TestDisabledGateway_Returns500(t *testing.T) {
	h := newRouter(disabledGateway())

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/azure/test/", nil),
		httptest.NewRequest(http.MethodGet, "/api/azure/files/", nil),
		multipartUpload(t, "hello.txt", "hi", ""),
		httptest.NewRequest(http.MethodGet, "/api/azure/files/hello.txt/download/", nil),
		httptest.NewRequest(http.MethodDelete, "/api/azure/files/hello.txt/delete/", nil),
		httptest.NewRequest(http.MethodGet, "/api/azure/files/hello.txt/url/", nil),
	}
	for _, req := range requests {
		rec := do(h, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "%s %s", req.Method, req.URL.Path)
		assert.Contains(t, decode(t, rec)["error"], "not configured")
	}
}
