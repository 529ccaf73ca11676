package pricehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/crud"
	"auctionshowcase/internal/services/price"
)

func TestPriceEmbedsPresentedAuction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := docstore.NewMemory()
	ctx := context.Background()
	p, err := mem.Insert(ctx, models.Projects, docstore.Document{"title": "P"})
	require.NoError(t, err)
	a, err := mem.Insert(ctx, models.Auctions, docstore.Document{"auctionName": "Lot A", "project": p.ID(), "logoOne": "logo.png"})
	require.NoError(t, err)

	r := gin.New()
	New(price.NewPriceService(mem, crud.Limits{}, nil), media.NewPresenter("https://cdn.example")).Register(r.Group("/api/v1"))

	send := func(method, path, body string) (int, map[string]any) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		out := map[string]any{}
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w.Code, out
	}

	code, out := send(http.MethodPost, "/api/v1/auctions/"+a.ID()+"/prices", `{"soldPrice":1250000,"paddleNum":" 17 "}`)
	require.Equal(t, http.StatusCreated, code, out)
	data := out["data"].(map[string]any)
	assert.Equal(t, "17", data["paddleNum"])
	assert.Equal(t, a.ID(), data["auction"])

	code, out = send(http.MethodGet, "/api/v1/prices/"+data["id"].(string), "")
	require.Equal(t, http.StatusOK, code)
	embedded := out["data"].(map[string]any)["auction"].(map[string]any)
	assert.Equal(t, "Lot A", embedded["auctionName"])
	assert.Equal(t, "https://cdn.example/auctions/logo.png", embedded["logoOne"])

	code, out = send(http.MethodGet, "/api/v1/auctions/"+a.ID()+"/prices?soldPrice[gte]=2000000", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, out["results"])

	code, out = send(http.MethodPost, "/api/v1/prices", `{"soldPrice":-5,"auction":"`+a.ID()+`"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "SoldPrice failed the gte rule", out["error"])
}
