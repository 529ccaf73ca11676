package project

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/metrics"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/queryfeatures"
	"auctionshowcase/internal/services/crud"
)

type IProjectService interface {
	List(ctx context.Context, params url.Values) (*crud.Page, error)
	Get(ctx context.Context, id string) (docstore.Document, error)
	Create(ctx context.Context, doc docstore.Document) (docstore.Document, error)
	Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error)
	Delete(ctx context.Context, id string) error
	// SetStatus sets the status explicitly. Moving to ongoing restarts the
	// schedule at the current minute.
	SetStatus(ctx context.Context, id, status string) (docstore.Document, error)
	TogglePublish(ctx context.Context, id string) (docstore.Document, error)
	// PromoteStarted moves every upcoming project whose start has passed to
	// ongoing and reports how many moved.
	PromoteStarted(ctx context.Context) (int64, error)
}

var required = []struct{ field, message string }{
	{"title", "Project title is required"},
	{"description", "Project description is required"},
	{"auctionStartTime", "Auction start time is required"},
}

type projectService struct {
	*crud.Resource
	repo docstore.Repository
	loc  *time.Location
	now  func() time.Time
}

var _ IProjectService = (*projectService)(nil)

func NewProjectService(repo docstore.Repository, limits crud.Limits, loc *time.Location) IProjectService {
	return newProjectService(repo, limits, loc, time.Now)
}

func newProjectService(repo docstore.Repository, limits crud.Limits, loc *time.Location, now func() time.Time) *projectService {
	if loc == nil {
		loc = time.UTC
	}
	return &projectService{
		Resource: crud.New(repo, models.Projects, limits),
		repo:     repo,
		loc:      loc,
		now:      now,
	}
}

func (svc *projectService) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	for _, req := range required {
		if doc.String(req.field) == "" {
			return nil, apperr.Validation("%s", req.message)
		}
	}
	if _, ok := doc.Time("dateStart"); !ok {
		return nil, apperr.Validation("Start date is required")
	}
	doc = doc.Clone()
	if err := svc.schedule(doc); err != nil {
		return nil, err
	}
	return svc.Resource.Create(ctx, doc)
}

func (svc *projectService) Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error) {
	_, dateChanged := patch["dateStart"]
	_, timeChanged := patch["auctionStartTime"]
	if !dateChanged && !timeChanged {
		return svc.Resource.Update(ctx, id, patch)
	}

	cur, err := svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := patch.Clone()
	if !dateChanged {
		merged["dateStart"] = cur["dateStart"]
	}
	if !timeChanged {
		merged["auctionStartTime"] = cur["auctionStartTime"]
	}
	if err := svc.schedule(merged); err != nil {
		return nil, err
	}
	patch = patch.Clone()
	patch["startsAt"] = merged["startsAt"]
	patch["status"] = merged["status"]
	return svc.Resource.Update(ctx, id, patch)
}

// schedule derives startsAt and status from dateStart and auctionStartTime.
func (svc *projectService) schedule(doc docstore.Document) error {
	date, ok := doc.Time("dateStart")
	if !ok {
		return apperr.Validation("Start date is required")
	}
	startsAt, err := models.StartsAt(date, doc.String("auctionStartTime"), svc.loc)
	if err != nil {
		return err
	}
	doc["startsAt"] = startsAt
	doc["status"] = models.DeriveStatus(startsAt, svc.now())
	return nil
}

func (svc *projectService) SetStatus(ctx context.Context, id, status string) (docstore.Document, error) {
	if !models.ValidStatus(status) {
		return nil, apperr.Validation("Status must be either: upcoming, ongoing, completed")
	}
	patch := docstore.Document{"status": status}
	if status == models.StatusOngoing {
		now := svc.now().In(svc.loc).Truncate(time.Minute)
		patch["dateStart"] = now
		patch["auctionStartTime"] = models.Clock(now, svc.loc)
		patch["startsAt"] = now
	}
	return svc.Resource.Update(ctx, id, patch)
}

func (svc *projectService) TogglePublish(ctx context.Context, id string) (docstore.Document, error) {
	doc, err := svc.repo.ToggleField(ctx, models.Projects, id, "isPublished")
	metrics.TogglesTotal.WithLabelValues(models.Projects.Table, "isPublished", metrics.Outcome(err)).Inc()
	return doc, err
}

func (svc *projectService) PromoteStarted(ctx context.Context) (int64, error) {
	filter := queryfeatures.Filter{}
	filter.Add("status", queryfeatures.Condition{Op: queryfeatures.OpEq, Values: []string{models.StatusUpcoming}})
	filter.Add("startsAt", queryfeatures.Condition{Op: queryfeatures.OpLte, Values: []string{svc.now().UTC().Format(time.RFC3339)}})

	n, err := svc.repo.UpdateMany(ctx, models.Projects, filter, docstore.Document{"status": models.StatusOngoing})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.StatusSweeps.WithLabelValues(models.StatusOngoing).Add(float64(n))
		zap.L().Info("projects_promoted", zap.Int64("count", n))
	}
	return n, nil
}
