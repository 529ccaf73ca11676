package queryfeatures

import (
	"regexp"
	"sort"

	"auctionshowcase/internal/apperr"
)

// Operator is a comparison applied to a field.
type Operator string

const (
	OpEq  Operator = "eq"
	OpIn  Operator = "in"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// suffixOperators are the operators a client may write as key[op].
var suffixOperators = map[string]Operator{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// Condition constrains one field. Values has exactly one element except for OpIn.
type Condition struct {
	Op     Operator
	Values []string
}

// Filter maps a field name to the conditions it must satisfy (ANDed).
type Filter map[string][]Condition

// Fields returns the filtered field names in a stable order.
func (f Filter) Fields() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy that can be extended without touching f.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = append([]Condition(nil), v...)
	}
	return out
}

// Add appends a condition on field.
func (f Filter) Add(field string, c Condition) {
	f[field] = append(f[field], c)
}

var filterKeyRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[([^\[\]]*)\])?$`)

func (b *Builder) Filter() *Builder {
	if b.err != nil {
		return b
	}
	filter := Filter{}
	for key, values := range b.params {
		if b.isReserved(key) {
			continue
		}
		m := filterKeyRe.FindStringSubmatch(key)
		if m == nil {
			b.err = apperr.Validation("malformed filter key %q", key)
			return b
		}
		field, opName := m[1], m[2]
		if b.isReserved(field) {
			continue
		}
		if m[0] != field || opName != "" {
			op, ok := suffixOperators[opName]
			if !ok {
				b.err = apperr.Validation("unknown filter operator %q on %q", opName, field)
				return b
			}
			for _, v := range values {
				filter.Add(field, Condition{Op: op, Values: []string{v}})
			}
			continue
		}
		switch len(values) {
		case 0:
		case 1:
			filter.Add(field, Condition{Op: OpEq, Values: []string{values[0]}})
		default:
			filter.Add(field, Condition{Op: OpIn, Values: append([]string(nil), values...)})
		}
	}
	b.plan.Filter = filter
	return b
}

func (b *Builder) isReserved(key string) bool {
	_, ok := b.reserved[key]
	return ok
}
