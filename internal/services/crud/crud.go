// Package crud implements the list/get/create/update/delete operations every
// resource shares.
package crud

import (
	"context"
	"net/url"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/queryfeatures"
)

// Limits bounds list page sizes.
type Limits struct {
	Default int
	Max     int
}

// Page is one page of a filtered list.
type Page struct {
	Docs       []docstore.Document
	Pagination queryfeatures.Pagination
}

type Resource struct {
	repo   docstore.Repository
	coll   *docstore.Collection
	limits Limits
}

func New(repo docstore.Repository, coll *docstore.Collection, limits Limits) *Resource {
	return &Resource{repo: repo, coll: coll, limits: limits}
}

// Plan builds the fetch plan for a list request.
func (r *Resource) Plan(params url.Values) (*queryfeatures.Plan, error) {
	opts := queryfeatures.DefaultOptions()
	opts.SearchableFields = r.coll.SearchFields
	if r.limits.Default > 0 {
		opts.DefaultLimit = r.limits.Default
	}
	if r.limits.Max > 0 {
		opts.MaxLimit = r.limits.Max
	}
	return queryfeatures.Build(params, opts)
}

func (r *Resource) List(ctx context.Context, params url.Values) (*Page, error) {
	plan, err := r.Plan(params)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, plan)
}

// ListWhere lists the documents whose field equals value, e.g. the auctions
// of one project.
func (r *Resource) ListWhere(ctx context.Context, params url.Values, field, value string) (*Page, error) {
	plan, err := r.Plan(params)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, docstore.Scoped(plan, field, value))
}

func (r *Resource) list(ctx context.Context, plan *queryfeatures.Plan) (*Page, error) {
	docs, pg, err := docstore.List(ctx, r.repo, r.coll, plan)
	if err != nil {
		return nil, err
	}
	return &Page{Docs: docs, Pagination: pg}, nil
}

func (r *Resource) Get(ctx context.Context, id string) (docstore.Document, error) {
	return r.repo.FindByID(ctx, r.coll, id)
}

func (r *Resource) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	return r.repo.Insert(ctx, r.coll, doc)
}

func (r *Resource) Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error) {
	return r.repo.UpdateByID(ctx, r.coll, id, patch)
}

func (r *Resource) Delete(ctx context.Context, id string) error {
	return r.repo.DeleteByID(ctx, r.coll, id)
}
