package queryfeatures

// Pagination is the page metadata returned next to a list.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	Skip        int64 `json:"-"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	NextPage    *int  `json:"nextPage,omitempty"`
	PrevPage    *int  `json:"prevPage,omitempty"`
} // @name Pagination

// Paginate computes page metadata for totalCount matching documents and
// records it on the plan. totalCount must be the filtered count.
func (p *Plan) Paginate(totalCount int64) Pagination {
	if totalCount < 0 {
		totalCount = 0
	}
	limit := int64(p.Limit)
	pg := Pagination{
		CurrentPage: p.Page,
		Limit:       p.Limit,
		Skip:        p.Offset(),
		TotalCount:  totalCount,
		TotalPages:  int((totalCount + limit - 1) / limit),
	}
	if p.Page < pg.TotalPages {
		next := p.Page + 1
		pg.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		pg.PrevPage = &prev
	}
	p.Pagination = &pg
	return pg
}
