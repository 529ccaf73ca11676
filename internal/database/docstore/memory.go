package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"auctionshowcase/internal/queryfeatures"
)

// Memory is an in-process Repository with the same validation and query
// semantics as Store. Every operation holds one lock, so toggles are
// trivially serialized.
type Memory struct {
	mu     sync.Mutex
	tables map[string]map[string]Document
	now    func() time.Time
}

var _ Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{tables: map[string]map[string]Document{}, now: time.Now}
}

// WithClock replaces the timestamp source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) table(c *Collection) map[string]Document {
	t, ok := m.tables[c.Table]
	if !ok {
		t = map[string]Document{}
		m.tables[c.Table] = t
	}
	return t
}

func (m *Memory) Count(_ context.Context, c *Collection, plan *queryfeatures.Plan) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, err := m.matching(c, plan.Filter, plan.Search)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (m *Memory) Find(_ context.Context, c *Collection, plan *queryfeatures.Plan) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, err := projectedFields(c, plan.Projection)
	if err != nil {
		return nil, err
	}
	docs, err := m.matching(c, plan.Filter, plan.Search)
	if err != nil {
		return nil, err
	}
	for _, s := range plan.Sort {
		if _, err := sortField(c, s.Field); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range plan.Sort {
			cmp := compareValues(docs[i][s.Field], docs[j][s.Field])
			if s.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return docs[i].ID() < docs[j].ID()
	})

	start := int(min(max(plan.Offset(), 0), int64(len(docs))))
	end := min(start+plan.Limit, len(docs))
	out := make([]Document, 0, end-start)
	for _, d := range docs[start:end] {
		out = append(out, project(d, fields))
	}
	return out, nil
}

func (m *Memory) FindByID(_ context.Context, c *Collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(c, id)
	if err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

func (m *Memory) Insert(_ context.Context, c *Collection, doc Document) (Document, error) {
	if _, err := writableFields(c, doc, false); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	d := Document{FieldID: uuid.NewString(), FieldCreatedAt: now, FieldUpdatedAt: now, FieldVersion: int64(0)}
	for _, f := range c.fields {
		if isSystemField(f.Name) {
			continue
		}
		switch {
		case f.Default != nil:
			d[f.Name] = f.Default
		case f.Type == TypeStringList:
			d[f.Name] = []string{}
		}
	}
	apply(d, doc)
	m.table(c)[d.ID()] = d
	return d.Clone(), nil
}

func (m *Memory) UpdateByID(_ context.Context, c *Collection, id string, patch Document) (Document, error) {
	if _, err := writableFields(c, patch, false); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(c, id)
	if err != nil {
		return nil, err
	}
	if len(patch) > 0 {
		apply(d, patch)
		m.touch(d)
	}
	return d.Clone(), nil
}

func (m *Memory) UpdateMany(_ context.Context, c *Collection, filter queryfeatures.Filter, set Document) (int64, error) {
	if len(set) == 0 {
		return 0, nil
	}
	if _, err := writableFields(c, set, true); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, err := m.matching(c, filter, nil)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		apply(d, set)
		m.touch(d)
	}
	return int64(len(docs)), nil
}

func (m *Memory) DeleteByID(_ context.Context, c *Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(c, id)
	if err != nil {
		return err
	}
	delete(m.table(c), d.ID())
	return nil
}

func (m *Memory) ToggleField(_ context.Context, c *Collection, id, field string) (Document, error) {
	f, ok := c.Field(field)
	if !ok || f.Type != TypeBool || f.ReadOnly {
		return nil, invalidToggle(c, field)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(c, id)
	if err != nil {
		return nil, err
	}
	d[f.Name] = !d.Bool(f.Name)
	m.touch(d)
	return d.Clone(), nil
}

func (m *Memory) ToggleExclusive(_ context.Context, c *Collection, id, flag string) (Document, error) {
	f, ok := c.Field(flag)
	if !ok || f.Type != TypeBool {
		return nil, invalidToggle(c, flag)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(c, id)
	if err != nil {
		return nil, err
	}
	if !d.Bool(f.Name) {
		for _, other := range m.table(c) {
			if other.ID() != d.ID() && other.Bool(f.Name) {
				other[f.Name] = false
				m.touch(other)
			}
		}
	}
	d[f.Name] = !d.Bool(f.Name)
	m.touch(d)
	return d.Clone(), nil
}

func (m *Memory) get(c *Collection, id string) (Document, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	d, ok := m.table(c)[id]
	if !ok {
		return nil, notFound(c, id)
	}
	return d, nil
}

func (m *Memory) touch(d Document) {
	d[FieldUpdatedAt] = m.now()
	v, _ := d[FieldVersion].(int64)
	d[FieldVersion] = v + 1
}

func (m *Memory) matching(c *Collection, filter queryfeatures.Filter, search *queryfeatures.Search) ([]Document, error) {
	type cond struct {
		field string
		op    queryfeatures.Operator
		vals  []any
	}
	var conds []cond
	for _, name := range filter.Fields() {
		for _, fc := range filter[name] {
			f, err := filterField(c, name, fc.Op)
			if err != nil {
				return nil, err
			}
			vals := make([]any, len(fc.Values))
			for i, raw := range fc.Values {
				if vals[i], err = Coerce(f, raw); err != nil {
					return nil, err
				}
			}
			conds = append(conds, cond{field: f.Name, op: fc.Op, vals: vals})
		}
	}

	var textFields []string
	keyword := ""
	if search != nil && search.Keyword != "" {
		keyword = strings.ToLower(search.Keyword)
		for _, name := range search.Fields {
			if f, ok := c.Field(name); ok && f.Type == TypeText {
				textFields = append(textFields, name)
			}
		}
	}

	var out []Document
docs:
	for _, d := range m.table(c) {
		for _, cd := range conds {
			if !satisfies(d[cd.field], cd.op, cd.vals) {
				continue docs
			}
		}
		if len(textFields) > 0 {
			hit := false
			for _, name := range textFields {
				if strings.Contains(strings.ToLower(d.String(name)), keyword) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func satisfies(v any, op queryfeatures.Operator, vals []any) bool {
	if v == nil {
		return false
	}
	switch op {
	case queryfeatures.OpIn:
		for _, want := range vals {
			if compareValues(v, want) == 0 {
				return true
			}
		}
		return false
	case queryfeatures.OpEq:
		return compareValues(v, vals[0]) == 0
	case queryfeatures.OpGt:
		return compareValues(v, vals[0]) > 0
	case queryfeatures.OpGte:
		return compareValues(v, vals[0]) >= 0
	case queryfeatures.OpLt:
		return compareValues(v, vals[0]) < 0
	case queryfeatures.OpLte:
		return compareValues(v, vals[0]) <= 0
	}
	return false
}

// compareValues orders two document values of the same type. Missing values
// sort after everything else, as NULLs do in Postgres.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case float64:
		return cmpOrdered(x, b.(float64))
	case int64:
		return cmpOrdered(x, b.(int64))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}

func cmpOrdered[T float64 | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func apply(d, patch Document) {
	for k, v := range patch {
		if v == nil {
			delete(d, k)
			continue
		}
		if list, ok := v.([]string); ok {
			v = append([]string{}, list...)
		}
		d[k] = v
	}
}

func project(d Document, fields []Field) Document {
	out := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := d[f.Name]; ok {
			if list, ok := v.([]string); ok {
				v = append([]string{}, list...)
			}
			out[f.Name] = v
		}
	}
	return out
}
