package price

import (
	"context"
	"net/url"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/live"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/crud"
)

var ErrAuctionRequired = apperr.Validation("Associated auction is required")

type IPriceService interface {
	List(ctx context.Context, params url.Values) (*crud.Page, error)
	ListByAuction(ctx context.Context, auctionID string, params url.Values) (*crud.Page, error)
	// Get returns the price with its auction document embedded under "auction".
	Get(ctx context.Context, id string) (docstore.Document, error)
	Create(ctx context.Context, doc docstore.Document) (docstore.Document, error)
	Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error)
	Delete(ctx context.Context, id string) error
}

type priceService struct {
	*crud.Resource
	repo docstore.Repository
	pub  live.Publisher
}

var _ IPriceService = (*priceService)(nil)

func NewPriceService(repo docstore.Repository, limits crud.Limits, pub live.Publisher) IPriceService {
	if pub == nil {
		pub = live.Nop{}
	}
	return &priceService{
		Resource: crud.New(repo, models.Prices, limits),
		repo:     repo,
		pub:      pub,
	}
}

func (svc *priceService) ListByAuction(ctx context.Context, auctionID string, params url.Values) (*crud.Page, error) {
	return svc.ListWhere(ctx, params, "auction", auctionID)
}

func (svc *priceService) Get(ctx context.Context, id string) (docstore.Document, error) {
	doc, err := svc.Resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	auctionID := doc.String("auction")
	if auctionID == "" {
		return doc, nil
	}
	auction, err := svc.repo.FindByID(ctx, models.Auctions, auctionID)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return doc, nil
	case err != nil:
		return nil, err
	}
	doc["auction"] = auction
	return doc, nil
}

func (svc *priceService) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	auctionID := doc.String("auction")
	if auctionID == "" {
		return nil, ErrAuctionRequired
	}
	if err := svc.checkAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	created, err := svc.Resource.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	svc.pub.PriceRecorded(ctx, created)
	return created, nil
}

func (svc *priceService) Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error) {
	if _, ok := patch["auction"]; ok {
		if err := svc.checkAuction(ctx, patch.String("auction")); err != nil {
			return nil, err
		}
	}
	updated, err := svc.Resource.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	svc.pub.PriceRecorded(ctx, updated)
	return updated, nil
}

func (svc *priceService) checkAuction(ctx context.Context, auctionID string) error {
	_, err := svc.repo.FindByID(ctx, models.Auctions, auctionID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation("No auction with id: %s", auctionID)
	}
	return err
}
