package docstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/queryfeatures"
)

// Coerce converts a query-string value to the Go type of f.
func Coerce(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Type {
	case TypeText:
		return raw, nil
	case TypeNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Validation("%s expects a number, got %q", f.Name, raw)
		}
		return v, nil
	case TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperr.Validation("%s expects an integer, got %q", f.Name, raw)
		}
		return v, nil
	case TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperr.Validation("%s expects true or false, got %q", f.Name, raw)
		}
		return v, nil
	case TypeTime:
		return ParseTime(f.Name, raw)
	case TypeID:
		return ParseID(raw)
	}
	return nil, apperr.Validation("%s cannot be filtered", f.Name)
}

// ParseTime accepts RFC 3339 timestamps and bare dates.
func ParseTime(name, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("%s expects a date (YYYY-MM-DD or RFC 3339), got %q", name, raw)
}

// ParseID validates a document id and returns its canonical form.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperr.Validation("invalid id %q", raw)
	}
	return id.String(), nil
}

// filterField resolves a filter field and checks op is meaningful for it.
func filterField(c *Collection, name string, op queryfeatures.Operator) (Field, error) {
	f, ok := c.Field(name)
	if !ok {
		return Field{}, apperr.Validation("unknown filter field %q", name)
	}
	switch op {
	case queryfeatures.OpEq, queryfeatures.OpIn:
		if f.Type == TypeStringList {
			return Field{}, apperr.Validation("%s cannot be filtered", name)
		}
	default:
		switch f.Type {
		case TypeNumber, TypeInt, TypeTime, TypeText:
		default:
			return Field{}, apperr.Validation("operator %s is not supported on %s", op, name)
		}
	}
	return f, nil
}

func sortField(c *Collection, name string) (Field, error) {
	f, ok := c.Field(name)
	if !ok || f.Type == TypeStringList {
		return Field{}, apperr.Validation("unknown sort field %q", name)
	}
	return f, nil
}

// projectedFields returns the fields a read returns. id is always included.
func projectedFields(c *Collection, p queryfeatures.Projection) ([]Field, error) {
	if len(p.Include) > 0 {
		out := []Field{c.byName[FieldID]}
		seen := map[string]bool{FieldID: true}
		for _, name := range p.Include {
			f, ok := c.Field(name)
			if !ok {
				return nil, apperr.Validation("unknown field %q", name)
			}
			if !seen[name] {
				seen[name] = true
				out = append(out, f)
			}
		}
		return out, nil
	}

	excluded := make(map[string]bool, len(p.Exclude))
	for _, name := range p.Exclude {
		if _, ok := c.Field(name); !ok {
			return nil, apperr.Validation("unknown field %q", name)
		}
		if name != FieldID {
			excluded[name] = true
		}
	}
	out := make([]Field, 0, len(c.fields))
	for _, f := range c.fields {
		if !excluded[f.Name] {
			out = append(out, f)
		}
	}
	return out, nil
}

// writableFields validates doc against the collection for Insert/UpdateByID
// and returns the fields in a stable order. When trusted, read-only
// fields other than the system ones are accepted.
func writableFields(c *Collection, doc Document, trusted bool) ([]Field, error) {
	out := make([]Field, 0, len(doc))
	for _, f := range c.fields {
		if _, ok := doc[f.Name]; ok {
			if f.ReadOnly && (!trusted || isSystemField(f.Name)) {
				return nil, apperr.Validation("%s cannot be written", f.Name)
			}
			out = append(out, f)
		}
	}
	if len(out) != len(doc) {
		for k := range doc {
			if _, ok := c.Field(k); !ok {
				return nil, apperr.Validation("unknown field %q", k)
			}
		}
	}
	return out, nil
}

func isSystemField(name string) bool {
	switch name {
	case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldVersion:
		return true
	}
	return false
}
