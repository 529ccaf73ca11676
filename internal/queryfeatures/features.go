// Package queryfeatures turns a request's query string into a collection
// fetch plan: filter, keyword search, sort, field projection and pagination.
//
// Nothing here touches storage. Callers build a Plan, count the documents it
// matches, call Plan.Paginate with that count and only then fetch the page:
//
//	plan, err := queryfeatures.Build(c.Request.URL.Query(), opts)
//	total, err := store.Count(ctx, coll, plan)
//	paging := plan.Paginate(total)
//	docs, err := store.Find(ctx, coll, plan)
package queryfeatures

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"auctionshowcase/internal/apperr"
)

// Reserved query keys. They drive the plan and never become filters.
const (
	KeyPage    = "page"
	KeySort    = "sort"
	KeyLimit   = "limit"
	KeyFields  = "fields"
	KeyKeyword = "keyword"
)

var DefaultReservedKeys = []string{KeyPage, KeySort, KeyLimit, KeyFields, KeyKeyword}

const (
	DefaultLimit = 50
	MaxLimit     = 500
	// MaxPage bounds the requested page so offsets stay well inside int64.
	MaxPage = 1<<31 - 1
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Options struct {
	// ReservedKeys replaces DefaultReservedKeys when non-empty.
	ReservedKeys     []string
	SearchableFields []string
	// DefaultSort is used when the request has no sort key, e.g. "-createdAt".
	DefaultSort string
	// DefaultExclude is projected out when the request has no fields key.
	DefaultExclude []string
	DefaultLimit   int
	MaxLimit       int
}

func DefaultOptions() Options {
	return Options{
		ReservedKeys:   DefaultReservedKeys,
		DefaultSort:    "-createdAt",
		DefaultExclude: []string{"version"},
		DefaultLimit:   DefaultLimit,
		MaxLimit:       MaxLimit,
	}
}

// Search is an OR of case-insensitive substring matches of Keyword over Fields.
type Search struct {
	Keyword string
	Fields  []string
}

type SortField struct {
	Field string
	Desc  bool
}

// Projection holds either an include list or an exclude list, never both.
type Projection struct {
	Include []string
	Exclude []string
}

// Plan is a composed fetch that has not run yet.
type Plan struct {
	Filter     Filter
	Search     *Search
	Sort       []SortField
	Projection Projection
	Page       int
	Limit      int
	Pagination *Pagination
}

// Offset is the number of matching documents skipped before the page.
func (p *Plan) Offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Builder composes a Plan step by step. The first failing step wins; later
// steps become no-ops.
type Builder struct {
	params   url.Values
	opts     Options
	reserved map[string]struct{}
	plan     Plan
	err      error
}

func New(params url.Values, opts Options) *Builder {
	if len(opts.ReservedKeys) == 0 {
		opts.ReservedKeys = DefaultReservedKeys
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if params == nil {
		params = url.Values{}
	}

	reserved := make(map[string]struct{}, len(opts.ReservedKeys))
	for _, k := range opts.ReservedKeys {
		reserved[k] = struct{}{}
	}

	b := &Builder{params: params, opts: opts, reserved: reserved}
	b.plan.Filter = Filter{}
	b.plan.Page = min(positiveInt(params.Get(KeyPage), 1), MaxPage)
	b.plan.Limit = min(positiveInt(params.Get(KeyLimit), opts.DefaultLimit), opts.MaxLimit)
	return b
}

// Build applies filter, search, sort and limitFields in that order.
func Build(params url.Values, opts Options) (*Plan, error) {
	return New(params, opts).Filter().Search().Sort().LimitFields().Plan()
}

func (b *Builder) Plan() (*Plan, error) {
	if b.err != nil {
		return nil, b.err
	}
	p := b.plan
	return &p, nil
}

func (b *Builder) Search() *Builder {
	if b.err != nil {
		return b
	}
	keyword := strings.TrimSpace(b.params.Get(KeyKeyword))
	if keyword == "" || len(b.opts.SearchableFields) == 0 {
		return b
	}
	b.plan.Search = &Search{Keyword: keyword, Fields: b.opts.SearchableFields}
	return b
}

func (b *Builder) Sort() *Builder {
	if b.err != nil {
		return b
	}
	raw := b.params.Get(KeySort)
	if strings.TrimSpace(raw) == "" {
		raw = b.opts.DefaultSort
	}
	fields, err := parseSort(raw)
	if err != nil {
		b.err = err
		return b
	}
	b.plan.Sort = fields
	return b
}

func (b *Builder) LimitFields() *Builder {
	if b.err != nil {
		return b
	}
	raw := b.params.Get(KeyFields)
	if strings.TrimSpace(raw) == "" {
		b.plan.Projection = Projection{Exclude: append([]string(nil), b.opts.DefaultExclude...)}
		return b
	}
	proj, err := parseProjection(raw)
	if err != nil {
		b.err = err
		return b
	}
	b.plan.Projection = proj
	return b
}

func parseSort(raw string) ([]SortField, error) {
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if !identRe.MatchString(name) {
			return nil, apperr.Validation("invalid sort field %q", part)
		}
		out = append(out, SortField{Field: name, Desc: desc})
	}
	return out, nil
}

func parseProjection(raw string) (Projection, error) {
	var p Projection
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, exclude := strings.CutPrefix(part, "-")
		if !identRe.MatchString(name) {
			return Projection{}, apperr.Validation("invalid field %q", part)
		}
		if exclude {
			p.Exclude = append(p.Exclude, name)
		} else {
			p.Include = append(p.Include, name)
		}
	}
	if len(p.Include) > 0 && len(p.Exclude) > 0 {
		return Projection{}, apperr.Validation("fields cannot mix inclusion and exclusion")
	}
	return p, nil
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
