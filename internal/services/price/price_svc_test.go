package price

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/crud"
)

type priceLog struct {
	auctions []string
}

func (p *priceLog) AuctionChanged(context.Context, string, docstore.Document) {}
func (p *priceLog) RunningChanged(context.Context, docstore.Document)         {}
func (p *priceLog) PriceRecorded(_ context.Context, doc docstore.Document) {
	p.auctions = append(p.auctions, doc.String("auction"))
}

func seedAuction(t *testing.T, mem *docstore.Memory, name string) string {
	t.Helper()
	ctx := context.Background()
	project, err := mem.Insert(ctx, models.Projects, docstore.Document{"title": "P", "description": "D", "auctionStartTime": "10:00"})
	require.NoError(t, err)
	auction, err := mem.Insert(ctx, models.Auctions, docstore.Document{"auctionName": name, "project": project.ID()})
	require.NoError(t, err)
	return auction.ID()
}

func TestCreateAndEmbed(t *testing.T) {
	mem := docstore.NewMemory()
	log := &priceLog{}
	svc := NewPriceService(mem, crud.Limits{}, log)
	ctx := context.Background()
	auctionID := seedAuction(t, mem, "Lot A")

	_, err := svc.Create(ctx, docstore.Document{"soldPrice": 1200.0})
	assert.ErrorIs(t, err, ErrAuctionRequired)

	_, err = svc.Create(ctx, docstore.Document{"auction": uuid.NewString()})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, log.auctions)

	created, err := svc.Create(ctx, docstore.Document{"auction": auctionID, "soldPrice": 1200.0, "paddleNum": "17"})
	require.NoError(t, err)
	assert.Equal(t, []string{auctionID}, log.auctions)

	got, err := svc.Get(ctx, created.ID())
	require.NoError(t, err)
	embedded, ok := got["auction"].(docstore.Document)
	require.True(t, ok)
	assert.Equal(t, "Lot A", embedded["auctionName"])
	assert.Equal(t, 1200.0, got["soldPrice"])
}

func TestListByAuctionFiltersNumbers(t *testing.T) {
	mem := docstore.NewMemory()
	svc := NewPriceService(mem, crud.Limits{Default: 2, Max: 10}, nil)
	ctx := context.Background()
	a := seedAuction(t, mem, "Lot A")
	b := seedAuction(t, mem, "Lot B")

	for i, sold := range []float64{50, 150, 250, 350} {
		_, err := svc.Create(ctx, docstore.Document{"auction": a, "soldPrice": sold, "paddleNum": string(rune('1' + i))})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, docstore.Document{"auction": b, "soldPrice": 999.0})
	require.NoError(t, err)

	page, err := svc.ListByAuction(ctx, a, url.Values{"soldPrice[gte]": {"100"}, "sort": {"soldPrice"}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Pagination.TotalCount)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Docs, 2)
	assert.Equal(t, 150.0, page.Docs[0]["soldPrice"])

	_, err = svc.ListByAuction(ctx, "not-an-id", url.Values{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
