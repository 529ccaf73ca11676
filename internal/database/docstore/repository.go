package docstore

import (
	"context"
	"strings"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/queryfeatures"
)

// Repository is the collection access the services depend on.
type Repository interface {
	Count(ctx context.Context, c *Collection, plan *queryfeatures.Plan) (int64, error)
	Find(ctx context.Context, c *Collection, plan *queryfeatures.Plan) ([]Document, error)
	FindByID(ctx context.Context, c *Collection, id string) (Document, error)
	Insert(ctx context.Context, c *Collection, doc Document) (Document, error)
	UpdateByID(ctx context.Context, c *Collection, id string, patch Document) (Document, error)
	UpdateMany(ctx context.Context, c *Collection, filter queryfeatures.Filter, set Document) (int64, error)
	DeleteByID(ctx context.Context, c *Collection, id string) error
	// ToggleField flips a writable boolean field.
	ToggleField(ctx context.Context, c *Collection, id, field string) (Document, error)
	// ToggleExclusive flips flag on id while keeping at most one document in
	// the collection with flag set.
	ToggleExclusive(ctx context.Context, c *Collection, id, flag string) (Document, error)
}

// List counts the documents matching plan, paginates with that count and
// fetches the page. The count always reflects the filtered set.
func List(ctx context.Context, r Repository, c *Collection, plan *queryfeatures.Plan) ([]Document, queryfeatures.Pagination, error) {
	total, err := r.Count(ctx, c, plan)
	if err != nil {
		return nil, queryfeatures.Pagination{}, err
	}
	pg := plan.Paginate(total)
	if plan.Page > pg.TotalPages {
		return []Document{}, pg, nil
	}
	docs, err := r.Find(ctx, c, plan)
	if err != nil {
		return nil, queryfeatures.Pagination{}, err
	}
	return docs, pg, nil
}

// Scoped returns a copy of plan additionally constrained to field == value.
// Used for nested routes such as /projects/:id/auctions.
func Scoped(plan *queryfeatures.Plan, field, value string) *queryfeatures.Plan {
	p := *plan
	p.Filter = plan.Filter.Clone()
	p.Filter.Add(field, queryfeatures.Condition{Op: queryfeatures.OpEq, Values: []string{value}})
	return &p
}

// ToggleNamedField flips a client-named boolean. The name must carry
// allowedPrefix and be on the collection's toggle allow-list.
func ToggleNamedField(ctx context.Context, r Repository, c *Collection, id, field, allowedPrefix string) (Document, error) {
	if !strings.HasPrefix(field, allowedPrefix) {
		return nil, apperr.Validation("Can only toggle fields that start with %q", allowedPrefix)
	}
	f, ok := c.Field(field)
	if !ok || !f.Toggleable || f.Type != TypeBool {
		return nil, invalidToggle(c, field)
	}
	return r.ToggleField(ctx, c, id, field)
}
