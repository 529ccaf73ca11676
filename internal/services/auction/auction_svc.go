package auction

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"

	"go.uber.org/zap"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/live"
	"auctionshowcase/internal/metrics"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/crud"
)

var (
	ErrNameRequired    = apperr.Validation("Auction name is required")
	ErrProjectRequired = apperr.Validation("Associated project is required")
	ErrNoneRunning     = apperr.NotFound("No auction is running")
)

type IAuctionService interface {
	List(ctx context.Context, params url.Values) (*crud.Page, error)
	ListByProject(ctx context.Context, projectID string, params url.Values) (*crud.Page, error)
	Get(ctx context.Context, id string) (docstore.Document, error)
	Create(ctx context.Context, doc docstore.Document) (docstore.Document, error)
	Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error)
	Delete(ctx context.Context, id string) error
	// ToggleRunning starts or stops an auction. Starting one stops every
	// other running auction in the same transaction.
	ToggleRunning(ctx context.Context, id string) (docstore.Document, error)
	// ToggleDisplay flips one of the display* presentation flags.
	ToggleDisplay(ctx context.Context, id, field string) (docstore.Document, error)
	Running(ctx context.Context) (docstore.Document, error)
	// SyncRunning republishes the running snapshot from the database.
	SyncRunning(ctx context.Context) error
}

type auctionService struct {
	*crud.Resource
	repo docstore.Repository
	pub  live.Publisher
	// liveMu orders snapshot reads with their publishes.
	liveMu sync.Mutex
}

var _ IAuctionService = (*auctionService)(nil)

func NewAuctionService(repo docstore.Repository, limits crud.Limits, pub live.Publisher) IAuctionService {
	return newAuctionService(repo, limits, pub)
}

func newAuctionService(repo docstore.Repository, limits crud.Limits, pub live.Publisher) *auctionService {
	if pub == nil {
		pub = live.Nop{}
	}
	return &auctionService{
		Resource: crud.New(repo, models.Auctions, limits),
		repo:     repo,
		pub:      pub,
	}
}

func (svc *auctionService) ListByProject(ctx context.Context, projectID string, params url.Values) (*crud.Page, error) {
	return svc.ListWhere(ctx, params, "project", projectID)
}

func (svc *auctionService) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	if doc.String("auctionName") == "" {
		return nil, ErrNameRequired
	}
	if doc.String("project") == "" {
		return nil, ErrProjectRequired
	}
	if err := svc.checkProject(ctx, doc.String("project")); err != nil {
		return nil, err
	}
	return svc.Resource.Create(ctx, doc)
}

func (svc *auctionService) Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error) {
	if v, ok := patch["auctionName"]; ok && v == "" {
		return nil, ErrNameRequired
	}
	if _, ok := patch["project"]; ok {
		if err := svc.checkProject(ctx, patch.String("project")); err != nil {
			return nil, err
		}
	}
	doc, err := svc.Resource.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	svc.pub.AuctionChanged(ctx, live.EventUpdated, doc)
	if doc.Bool(models.RunningFlag) {
		svc.refreshRunning(ctx)
	}
	return doc, nil
}

func (svc *auctionService) checkProject(ctx context.Context, projectID string) error {
	_, err := svc.repo.FindByID(ctx, models.Projects, projectID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation("No project found for id %s", projectID)
	}
	return err
}

func (svc *auctionService) Delete(ctx context.Context, id string) error {
	doc, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.Resource.Delete(ctx, id); err != nil {
		return err
	}
	svc.pub.AuctionChanged(ctx, live.EventDeleted, doc)
	if doc.Bool(models.RunningFlag) {
		svc.refreshRunning(ctx)
	}
	return nil
}

func (svc *auctionService) ToggleRunning(ctx context.Context, id string) (docstore.Document, error) {
	doc, err := svc.repo.ToggleExclusive(ctx, models.Auctions, id, models.RunningFlag)
	metrics.TogglesTotal.WithLabelValues(models.Auctions.Table, models.RunningFlag, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	zap.L().Info("auction_running_toggled", zap.String("auction_id", doc.ID()), zap.Bool("running", doc.Bool(models.RunningFlag)))

	svc.refreshRunning(ctx)
	return doc, nil
}

func (svc *auctionService) ToggleDisplay(ctx context.Context, id, field string) (docstore.Document, error) {
	doc, err := docstore.ToggleNamedField(ctx, svc.repo, models.Auctions, id, field, models.DisplayPrefix)
	metrics.TogglesTotal.WithLabelValues(models.Auctions.Table, displayLabel(field), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	svc.pub.AuctionChanged(ctx, live.EventDisplay, doc)
	if doc.Bool(models.RunningFlag) {
		svc.refreshRunning(ctx)
	}
	return doc, nil
}

// displayLabel keeps client-supplied names out of metric labels.
func displayLabel(field string) string {
	if slices.Contains(models.DisplayFlags, field) {
		return field
	}
	return "invalid"
}

func (svc *auctionService) Running(ctx context.Context) (docstore.Document, error) {
	page, err := svc.List(ctx, url.Values{models.RunningFlag: {"true"}, "limit": {"1"}})
	if err != nil {
		return nil, err
	}
	if len(page.Docs) == 0 {
		return nil, ErrNoneRunning
	}
	return page.Docs[0], nil
}

// SyncRunning publishes whatever the database holds as running. The read and
// the publish happen under liveMu, so publishes follow read order and the
// last snapshot written reflects the latest committed toggle.
func (svc *auctionService) SyncRunning(ctx context.Context) error {
	svc.liveMu.Lock()
	defer svc.liveMu.Unlock()

	doc, err := svc.Running(ctx)
	switch {
	case errors.Is(err, ErrNoneRunning):
		doc = nil
	case err != nil:
		return err
	}
	svc.pub.RunningChanged(ctx, doc)
	return nil
}

// refreshRunning is SyncRunning after a committed write; failures only log.
func (svc *auctionService) refreshRunning(ctx context.Context) {
	if err := svc.SyncRunning(ctx); err != nil {
		zap.L().Warn("live_running_refresh_failed", zap.Error(err))
	}
}
