package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/queryfeatures"
)

// Store is the Postgres Repository.
type Store struct {
	db *sql.DB
}

var _ Repository = (*Store)(nil)

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Count(ctx context.Context, c *Collection, plan *queryfeatures.Plan) (int64, error) {
	var args sqlArgs
	where, err := whereClause(c, plan.Filter, plan.Search, &args)
	if err != nil {
		return 0, err
	}
	var n int64
	q := "SELECT count(*) FROM " + c.Table + where
	if err := s.db.QueryRowContext(ctx, q, args.vals...).Scan(&n); err != nil {
		return 0, s.fail(c, "count", err)
	}
	return n, nil
}

func (s *Store) Find(ctx context.Context, c *Collection, plan *queryfeatures.Plan) ([]Document, error) {
	fields, err := projectedFields(c, plan.Projection)
	if err != nil {
		return nil, err
	}
	var args sqlArgs
	where, err := whereClause(c, plan.Filter, plan.Search, &args)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(c, plan.Sort)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + columnList(fields) + " FROM " + c.Table + where + order +
		" LIMIT " + args.add(plan.Limit) + " OFFSET " + args.add(plan.Offset())

	rows, err := s.db.QueryContext(ctx, q, args.vals...)
	if err != nil {
		return nil, s.fail(c, "find", err)
	}
	defer rows.Close()

	docs := make([]Document, 0, plan.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows, fields)
		if err != nil {
			return nil, s.fail(c, "scan", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(c, "find", err)
	}
	return docs, nil
}

func (s *Store) FindByID(ctx context.Context, c *Collection, id string) (Document, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + columnList(c.fields) + " FROM " + c.Table + " WHERE id = $1"
	doc, err := scanDocument(s.db.QueryRowContext(ctx, q, id), c.fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(c, id)
	}
	if err != nil {
		return nil, s.fail(c, "find_by_id", err)
	}
	return doc, nil
}

func (s *Store) Insert(ctx context.Context, c *Collection, doc Document) (Document, error) {
	fields, err := writableFields(c, doc, false)
	if err != nil {
		return nil, err
	}
	var args sqlArgs
	q := "INSERT INTO " + c.Table
	if len(fields) == 0 {
		q += " DEFAULT VALUES"
	} else {
		cols := make([]string, len(fields))
		phs := make([]string, len(fields))
		for i, f := range fields {
			v, err := encodeValue(f, doc[f.Name])
			if err != nil {
				return nil, err
			}
			cols[i] = f.Column
			phs[i] = args.add(v)
		}
		q += " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(phs, ", ") + ")"
	}
	q += " RETURNING " + columnList(c.fields)

	out, err := scanDocument(s.db.QueryRowContext(ctx, q, args.vals...), c.fields)
	if err != nil {
		return nil, s.fail(c, "insert", err)
	}
	return out, nil
}

func (s *Store) UpdateByID(ctx context.Context, c *Collection, id string, patch Document) (Document, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return s.FindByID(ctx, c, id)
	}
	fields, err := writableFields(c, patch, false)
	if err != nil {
		return nil, err
	}
	var args sqlArgs
	set, err := setClause(fields, patch, &args)
	if err != nil {
		return nil, err
	}
	q := "UPDATE " + c.Table + " SET " + set + " WHERE id = " + args.add(id) +
		" RETURNING " + columnList(c.fields)

	out, err := scanDocument(s.db.QueryRowContext(ctx, q, args.vals...), c.fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(c, id)
	}
	if err != nil {
		return nil, s.fail(c, "update", err)
	}
	return out, nil
}

// UpdateMany applies set to every document matching filter. Unlike
// UpdateByID it may write read-only fields other than the system ones.
func (s *Store) UpdateMany(ctx context.Context, c *Collection, filter queryfeatures.Filter, set Document) (int64, error) {
	if len(set) == 0 {
		return 0, nil
	}
	fields, err := writableFields(c, set, true)
	if err != nil {
		return 0, err
	}
	var args sqlArgs
	setSQL, err := setClause(fields, set, &args)
	if err != nil {
		return 0, err
	}
	where, err := whereClause(c, filter, nil, &args)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "UPDATE "+c.Table+" SET "+setSQL+where, args.vals...)
	if err != nil {
		return 0, s.fail(c, "update_many", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail(c, "update_many", err)
	}
	return n, nil
}

func (s *Store) DeleteByID(ctx context.Context, c *Collection, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+c.Table+" WHERE id = $1", id)
	if err != nil {
		return s.fail(c, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(c, "delete", err)
	}
	if n == 0 {
		return notFound(c, id)
	}
	return nil
}

func setClause(fields []Field, doc Document, args *sqlArgs) (string, error) {
	parts := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		v, err := encodeValue(f, doc[f.Name])
		if err != nil {
			return "", err
		}
		parts = append(parts, f.Column+" = "+args.add(v))
	}
	parts = append(parts, "updated_at = now()", "version = version + 1")
	return strings.Join(parts, ", "), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, fields []Field) (Document, error) {
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f.Type {
		case TypeText, TypeID:
			dest[i] = new(sql.NullString)
		case TypeNumber:
			dest[i] = new(sql.NullFloat64)
		case TypeInt:
			dest[i] = new(sql.NullInt64)
		case TypeBool:
			dest[i] = new(sql.NullBool)
		case TypeTime:
			dest[i] = new(sql.NullTime)
		case TypeStringList:
			dest[i] = new([]byte)
		}
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	doc := make(Document, len(fields))
	for i, f := range fields {
		switch v := dest[i].(type) {
		case *sql.NullString:
			if v.Valid {
				doc[f.Name] = v.String
			}
		case *sql.NullFloat64:
			if v.Valid {
				doc[f.Name] = v.Float64
			}
		case *sql.NullInt64:
			if v.Valid {
				doc[f.Name] = v.Int64
			}
		case *sql.NullBool:
			if v.Valid {
				doc[f.Name] = v.Bool
			}
		case *sql.NullTime:
			if v.Valid {
				doc[f.Name] = v.Time
			}
		case *[]byte:
			list := []string{}
			if len(*v) > 0 {
				if err := json.Unmarshal(*v, &list); err != nil {
					return nil, fmt.Errorf("decode %s: %w", f.Name, err)
				}
			}
			doc[f.Name] = list
		}
	}
	return doc, nil
}

func notFound(c *Collection, id string) error {
	return apperr.NotFound("No %s with id: %s", c.Name, id)
}

// fail maps a driver error to an apperr. Constraint violations are the
// client's fault; everything else is logged and hidden.
func (s *Store) fail(c *Collection, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return apperr.Validation("%s references a document that does not exist", c.Name)
		case "23514", "23502", "22001", "22P02":
			return apperr.Validation("invalid %s: %s", c.Name, pgErr.Message)
		case "23505":
			return apperr.Validation("%s conflicts with an existing document", c.Name)
		}
	}
	zap.L().Error("docstore_"+op+"_failed", zap.String("collection", c.Table), zap.Error(err))
	return apperr.OperationFailed(fmt.Sprintf("Error accessing %s data", c.Name), err)
}
