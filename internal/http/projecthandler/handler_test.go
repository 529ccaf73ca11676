package projecthandler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/services/crud"
	"auctionshowcase/internal/services/project"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploader, err := media.NewUploader(store, 2)
	require.NoError(t, err)
	t.Cleanup(uploader.Release)

	svc := project.NewProjectService(docstore.NewMemory(), crud.Limits{Default: 10, Max: 50}, time.UTC)
	r := gin.New()
	New(svc, uploader, media.NewPresenter("https://api.example/uploads")).Register(r.Group("/api/v1"))
	r.NoRoute(httpapi.NoRoute)
	return r
}

func do(r http.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r.ServeHTTP(w, req)
	return w
}

type itemEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

func decodeItem(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env itemEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	return env.Data
}

func TestCreateJSONAndList(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/projects", "application/json", []byte(`{
		"title": "  Waterfront  ",
		"description": "Sea view plots",
		"dateStart": "2099-01-01",
		"auctionStartTime": "16:30"
	}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeItem(t, w)
	assert.Equal(t, "Waterfront", data["title"])
	assert.Equal(t, "upcoming", data["status"])
	assert.Equal(t, true, data["isPublished"])
	assert.Equal(t, []any{}, data["images"])

	w = do(r, http.MethodGet, "/api/v1/projects?status=upcoming&fields=title,status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Success          bool             `json:"success"`
		Results          int              `json:"results"`
		PaginationResult map[string]any   `json:"paginationResult"`
		Data             []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Equal(t, 1, list.Results)
	assert.EqualValues(t, 1, list.PaginationResult["totalPages"])
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Waterfront", list.Data[0]["title"])
	assert.NotContains(t, list.Data[0], "description")
}

func TestCreateValidation(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/projects", "application/json",
		[]byte(`{"title":"x","description":"y","dateStart":"2099-01-01","auctionStartTime":"4:75"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "is not a valid time format")

	w = do(r, http.MethodPost, "/api/v1/projects", "application/json",
		[]byte(`{"title":"`+strings.Repeat("t", 101)+`"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Title must be at most 100 characters")

	w = do(r, http.MethodPost, "/api/v1/projects", "application/json",
		[]byte(`{"title":"x","description":"y","dateStart":"tomorrow","auctionStartTime":"10:00"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "dateStart expects a date")
}

func TestCreateMultipartStoresImages(t *testing.T) {
	r := newRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"title":            "Hillside",
		"description":      "Villas",
		"dateStart":        "2099-05-01",
		"auctionStartTime": "9:00",
		"playButton":       "true",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("imageCover", "cover.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, mw.Close())

	w := do(r, http.MethodPost, "/api/v1/projects", mw.FormDataContentType(), body.Bytes())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeItem(t, w)
	cover, _ := data["imageCover"].(string)
	assert.True(t, strings.HasPrefix(cover, "https://api.example/uploads/projects/project-"), cover)
	assert.Equal(t, true, data["playButton"])
}

func TestStatusAndPublishToggle(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodPost, "/api/v1/projects", "application/json",
		[]byte(`{"title":"A","description":"B","dateStart":"2099-01-01","auctionStartTime":"10:00"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeItem(t, w)["id"].(string)

	w = do(r, http.MethodPatch, "/api/v1/projects/"+id+"/status", "application/json", []byte(`{"status":"paused"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Status must be either: upcoming, ongoing, completed")

	w = do(r, http.MethodPatch, "/api/v1/projects/"+id+"/status", "application/json", []byte(`{"status":"ongoing"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ongoing", decodeItem(t, w)["status"])

	w = do(r, http.MethodPatch, "/api/v1/projects/"+id+"/toggle-publish", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeItem(t, w)["isPublished"])
}

func TestNotFoundAndDelete(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodGet, "/api/v1/projects/6f1d2a8e-0000-4000-8000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No project with id: 6f1d2a8e-0000-4000-8000-000000000000","kind":"not_found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/projects/42", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Can't find this route /api/v1/nope")

	w = do(r, http.MethodPost, "/api/v1/projects", "application/json",
		[]byte(`{"title":"A","description":"B","dateStart":"2099-01-01","auctionStartTime":"10:00"}`))
	id := decodeItem(t, w)["id"].(string)
	w = do(r, http.MethodDelete, "/api/v1/projects/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodDelete, "/api/v1/projects/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
