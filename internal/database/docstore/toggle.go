package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"auctionshowcase/internal/apperr"
)

func (s *Store) ToggleField(ctx context.Context, c *Collection, id, field string) (Document, error) {
	f, ok := c.Field(field)
	if !ok || f.Type != TypeBool || f.ReadOnly {
		return nil, invalidToggle(c, field)
	}
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("UPDATE %s SET %s = NOT %s, updated_at = now(), version = version + 1 WHERE id = $1 RETURNING %s",
		c.Table, f.Column, f.Column, columnList(c.fields))
	doc, err := scanDocument(s.db.QueryRowContext(ctx, q, id), c.fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(c, id)
	}
	if err != nil {
		return nil, s.fail(c, "toggle", err)
	}
	return doc, nil
}

// ToggleExclusive flips flag on id. Turning it on clears it everywhere else
// in the same transaction. A transaction-scoped advisory lock on
// table.column serializes concurrent toggles, so no reader ever sees two
// documents with the flag set.
func (s *Store) ToggleExclusive(ctx context.Context, c *Collection, id, flag string) (Document, error) {
	f, ok := c.Field(flag)
	if !ok || f.Type != TypeBool {
		return nil, invalidToggle(c, flag)
	}
	if _, err := s.FindByID(ctx, c, id); err != nil {
		return nil, err
	}
	id, _ = ParseID(id)

	doc, err := s.toggleExclusiveTx(ctx, c, f, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		zap.L().Error("docstore_toggle_exclusive_failed",
			zap.String("collection", c.Table),
			zap.String("field", f.Name),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, apperr.OperationFailed(fmt.Sprintf("Error toggling %s state", c.Name), err)
	}
	return doc, nil
}

func (s *Store) toggleExclusiveTx(ctx context.Context, c *Collection, f Field, id string) (Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", c.Table+"."+f.Column); err != nil {
		return nil, err
	}

	var current bool
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 FOR UPDATE", f.Column, c.Table), id,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(c, id)
	}
	if err != nil {
		return nil, err
	}

	if !current {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET %s = false, updated_at = now(), version = version + 1 WHERE id <> $1 AND %s",
				c.Table, f.Column, f.Column),
			id,
		); err != nil {
			return nil, err
		}
	}

	doc, err := scanDocument(tx.QueryRowContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = NOT %s, updated_at = now(), version = version + 1 WHERE id = $1 RETURNING %s",
			c.Table, f.Column, f.Column, columnList(c.fields)),
		id,
	), c.fields)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return doc, nil
}

func invalidToggle(c *Collection, field string) error {
	return apperr.Validation("Field %q not found in %s schema", field, c.Name)
}
