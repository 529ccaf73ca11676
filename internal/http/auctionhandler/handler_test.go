package auctionhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/auction"
	"auctionshowcase/internal/services/crud"
)

type fixture struct {
	router    *gin.Engine
	projectID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := docstore.NewMemory()
	p, err := mem.Insert(context.Background(), models.Projects, docstore.Document{
		"title": "Waterfront", "description": "Plots", "dateStart": time.Now(), "auctionStartTime": "10:00",
	})
	require.NoError(t, err)

	store, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploader, err := media.NewUploader(store, 1)
	require.NoError(t, err)
	t.Cleanup(uploader.Release)

	svc := auction.NewAuctionService(mem, crud.Limits{}, nil)
	r := gin.New()
	New(svc, uploader, media.NewPresenter("https://api.example/uploads")).Register(r.Group("/api/v1"))
	return fixture{router: r, projectID: p.ID()}
}

func (f fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	f.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (f fixture) create(t *testing.T, name string) string {
	t.Helper()
	code, out := f.do(t, http.MethodPost, "/api/v1/projects/"+f.projectID+"/auctions", `{"auctionName":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, code, out)
	data := out["data"].(map[string]any)
	assert.Equal(t, f.projectID, data["project"])
	return data["id"].(string)
}

func TestToggleRunningMessages(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "Lot A")
	b := f.create(t, "Lot B")

	code, out := f.do(t, http.MethodPatch, "/api/v1/auctions/"+a+"/toggle-running", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Auction started successfully", out["message"])
	assert.Equal(t, true, out["data"].(map[string]any)["isRunning"])

	code, _ = f.do(t, http.MethodPatch, "/api/v1/auctions/"+b+"/toggle-running", "")
	require.Equal(t, http.StatusOK, code)

	code, out = f.do(t, http.MethodGet, "/api/v1/auctions/running", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, b, out["data"].(map[string]any)["id"])

	code, out = f.do(t, http.MethodGet, "/api/v1/auctions?isRunning=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["results"])

	code, out = f.do(t, http.MethodPatch, "/api/v1/auctions/"+b+"/toggle-running", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Auction stopped successfully", out["message"])

	code, _ = f.do(t, http.MethodGet, "/api/v1/auctions/running", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestToggleDisplay(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "Lot A")

	code, out := f.do(t, http.MethodPatch, "/api/v1/auctions/"+a+"/toggle-display/title", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, `Can only toggle fields that start with "display"`, out["error"])

	code, out = f.do(t, http.MethodPatch, "/api/v1/auctions/"+a+"/toggle-display/displayArea", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["data"].(map[string]any)["displayArea"])
}

func TestRunningFlagIsNotWritable(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "Lot A")

	code, out := f.do(t, http.MethodPut, "/api/v1/auctions/"+a, `{"itemName":"Plot 7","isRunning":true}`)
	require.Equal(t, http.StatusOK, code)
	data := out["data"].(map[string]any)
	assert.Equal(t, "Plot 7", data["itemName"])
	assert.Equal(t, false, data["isRunning"], "unknown body fields are ignored")
}

func TestCreateRequiresProject(t *testing.T) {
	f := newFixture(t)

	code, out := f.do(t, http.MethodPost, "/api/v1/auctions", `{"auctionName":"Lot A"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Associated project is required", out["error"])

	code, out = f.do(t, http.MethodPost, "/api/v1/auctions", `{"project":"`+f.projectID+`"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Auction name is required", out["error"])

	code, out = f.do(t, http.MethodGet, "/api/v1/projects/"+f.projectID+"/auctions", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, out["results"])
}
