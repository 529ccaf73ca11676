// Package docstore exposes Postgres tables as document collections: plain
// maps keyed by API field names, queried through queryfeatures plans.
//
// A Collection whitelists every field a client may filter, sort, project or
// write, and maps it to its column. Nothing outside the descriptor ever
// reaches SQL text.
package docstore

import (
	"time"
)

type FieldType int

const (
	TypeText FieldType = iota
	TypeNumber
	TypeInt
	TypeBool
	TypeTime
	TypeID
	TypeStringList
)

func (t FieldType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeInt:
		return "integer"
	case TypeBool:
		return "boolean"
	case TypeTime:
		return "time"
	case TypeID:
		return "id"
	case TypeStringList:
		return "list"
	}
	return "unknown"
}

// Field describes one document field.
type Field struct {
	Name   string
	Column string
	Type   FieldType
	// ReadOnly fields are never accepted by Insert or UpdateByID.
	ReadOnly bool
	// Toggleable marks the boolean fields ToggleNamedField may flip.
	Toggleable bool
	// Asset fields hold stored file names, rewritten to URLs on output.
	Asset   bool
	Default any
}

func Text(name, column string) Field       { return Field{Name: name, Column: column, Type: TypeText} }
func Number(name, column string) Field     { return Field{Name: name, Column: column, Type: TypeNumber} }
func Bool(name, column string) Field       { return Field{Name: name, Column: column, Type: TypeBool} }
func Time(name, column string) Field       { return Field{Name: name, Column: column, Type: TypeTime} }
func Ref(name, column string) Field        { return Field{Name: name, Column: column, Type: TypeID} }
func StringList(name, column string) Field { return Field{Name: name, Column: column, Type: TypeStringList} }

func (f Field) AsReadOnly() Field { f.ReadOnly = true; return f }
func (f Field) AsToggle() Field   { f.Toggleable = true; return f }
func (f Field) AsAsset() Field    { f.Asset = true; return f }

func (f Field) WithDefault(v any) Field { f.Default = v; return f }

// System fields present on every collection.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldVersion   = "version"
)

// Collection describes a table exposed as documents.
type Collection struct {
	// Name is the singular label used in messages, e.g. "auction".
	Name  string
	Table string
	// AssetFolder is the storage folder of the collection's uploads.
	AssetFolder  string
	SearchFields []string

	fields []Field
	byName map[string]Field
}

// NewCollection prepends the system fields to fields.
func NewCollection(name, table string, fields ...Field) *Collection {
	all := []Field{
		Ref(FieldID, "id").AsReadOnly(),
		Time(FieldCreatedAt, "created_at").AsReadOnly(),
		Time(FieldUpdatedAt, "updated_at").AsReadOnly(),
		{Name: FieldVersion, Column: "version", Type: TypeInt, ReadOnly: true},
	}
	all = append(all, fields...)

	c := &Collection{Name: name, Table: table, fields: all, byName: make(map[string]Field, len(all))}
	for _, f := range all {
		c.byName[f.Name] = f
	}
	return c
}

// Searchable sets the fields keyword search runs over.
func (c *Collection) Searchable(names ...string) *Collection {
	c.SearchFields = names
	return c
}

// StoredIn sets the upload folder.
func (c *Collection) StoredIn(folder string) *Collection {
	c.AssetFolder = folder
	return c
}

func (c *Collection) Fields() []Field { return c.fields }

func (c *Collection) Field(name string) (Field, bool) {
	f, ok := c.byName[name]
	return f, ok
}

func (c *Collection) AssetFields() []Field {
	var out []Field
	for _, f := range c.fields {
		if f.Asset {
			out = append(out, f)
		}
	}
	return out
}

// Document is a stored record keyed by API field names. Null columns are
// absent.
type Document map[string]any

func (d Document) ID() string {
	s, _ := d[FieldID].(string)
	return s
}

func (d Document) String(name string) string {
	s, _ := d[name].(string)
	return s
}

func (d Document) Bool(name string) bool {
	b, _ := d[name].(bool)
	return b
}

func (d Document) Time(name string) (time.Time, bool) {
	t, ok := d[name].(time.Time)
	return t, ok
}

// Clone returns a shallow copy with list values copied.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if list, ok := v.([]string); ok {
			v = append([]string{}, list...)
		}
		out[k] = v
	}
	return out
}
