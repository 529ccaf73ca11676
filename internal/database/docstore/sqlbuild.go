package docstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"auctionshowcase/internal/queryfeatures"
)

// sqlArgs collects positional parameters.
type sqlArgs struct {
	vals []any
}

func (a *sqlArgs) add(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

var comparisons = map[queryfeatures.Operator]string{
	queryfeatures.OpEq:  "=",
	queryfeatures.OpGt:  ">",
	queryfeatures.OpGte: ">=",
	queryfeatures.OpLt:  "<",
	queryfeatures.OpLte: "<=",
}

// whereClause renders filter and search. It returns "" when nothing applies.
func whereClause(c *Collection, filter queryfeatures.Filter, search *queryfeatures.Search, args *sqlArgs) (string, error) {
	var parts []string
	for _, name := range filter.Fields() {
		for _, cond := range filter[name] {
			f, err := filterField(c, name, cond.Op)
			if err != nil {
				return "", err
			}
			if cond.Op == queryfeatures.OpIn {
				placeholders := make([]string, 0, len(cond.Values))
				for _, raw := range cond.Values {
					v, err := Coerce(f, raw)
					if err != nil {
						return "", err
					}
					placeholders = append(placeholders, args.add(v))
				}
				parts = append(parts, fmt.Sprintf("%s IN (%s)", f.Column, strings.Join(placeholders, ", ")))
				continue
			}
			sqlOp, ok := comparisons[cond.Op]
			if !ok || len(cond.Values) != 1 {
				return "", fmt.Errorf("docstore: unsupported condition %v on %s", cond.Op, name)
			}
			v, err := Coerce(f, cond.Values[0])
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", f.Column, sqlOp, args.add(v)))
		}
	}

	if search != nil && search.Keyword != "" {
		var ors []string
		var ph string
		for _, name := range search.Fields {
			f, ok := c.Field(name)
			if !ok || f.Type != TypeText {
				continue
			}
			if ph == "" {
				ph = args.add("%" + escapeLike(search.Keyword) + "%")
			}
			ors = append(ors, fmt.Sprintf("%s ILIKE %s", f.Column, ph))
		}
		if len(ors) > 0 {
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}

	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

func orderClause(c *Collection, sort []queryfeatures.SortField) (string, error) {
	terms := make([]string, 0, len(sort)+1)
	byID := false
	for _, s := range sort {
		f, err := sortField(c, s.Field)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		terms = append(terms, f.Column+" "+dir)
		byID = byID || f.Name == FieldID
	}
	if !byID {
		terms = append(terms, "id ASC")
	}
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

func columnList(fields []Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		if f.Type == TypeID {
			cols[i] = f.Column + "::text"
		} else {
			cols[i] = f.Column
		}
	}
	return strings.Join(cols, ", ")
}

// encodeValue adapts a document value to a driver parameter.
func encodeValue(f Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if f.Type == TypeStringList {
		list, ok := v.([]string)
		if !ok {
			return nil, fmt.Errorf("docstore: %s expects []string, got %T", f.Name, v)
		}
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return v, nil
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
