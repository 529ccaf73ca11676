package banner

import (
	"context"
	"net/url"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/crud"
)

type IBannerService interface {
	List(ctx context.Context, params url.Values) (*crud.Page, error)
	Get(ctx context.Context, id string) (docstore.Document, error)
	Create(ctx context.Context, doc docstore.Document) (docstore.Document, error)
	Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error)
	Delete(ctx context.Context, id string) error
}

type bannerService struct {
	*crud.Resource
}

var _ IBannerService = (*bannerService)(nil)

func NewBannerService(repo docstore.Repository, limits crud.Limits) IBannerService {
	return &bannerService{Resource: crud.New(repo, models.Banners, limits)}
}
