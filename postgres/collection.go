// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/diffeo/go-collection/collection"
	"github.com/lib/pq"
)

type pgCollection struct {
	catalog *pgCatalog
	id      int
	name    string
}

func (coll *pgCollection) Catalog() *pgCatalog {
	return coll.catalog
}

func (coll *pgCollection) Name() string {
	return coll.name
}

func (coll *pgCollection) Config() (cfg collection.Config, err error) {
	qp := queryParams{}
	query := buildSelect([]string{
		"default_page_size",
		"max_page_size",
		"known_fields",
	}, []string{"collections"}, []string{
		"id=" + qp.Param(coll.id),
	})
	err = withTx(coll, context.Background(), true, func(tx *sql.Tx) error {
		row := tx.QueryRow(query, qp...)
		return row.Scan(&cfg.DefaultPageSize, &cfg.MaxPageSize,
			pq.Array(&cfg.KnownFields))
	})
	if err == sql.ErrNoRows {
		err = collection.ErrGone
	}
	return
}

// stillExists probes for this collection's row, so that operations on
// a destroyed collection fail rather than acting on an empty record
// set.
func (coll *pgCollection) stillExists(ctx context.Context, tx *sql.Tx) error {
	row := tx.QueryRowContext(ctx,
		"SELECT 1 FROM collections WHERE id=$1", coll.id)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return collection.ErrGone
	}
	return err
}

// conditions translates a selection into SQL conditions over the
// records table.  Field names and values both travel as query
// parameters; nothing from the selection is ever spliced into the
// statement text.
func (coll *pgCollection) conditions(qp *queryParams, sel collection.Selection) []string {
	conditions := []string{"collection_id=" + qp.Param(coll.id)}
	for field, value := range sel.Filters {
		conditions = append(conditions,
			"(data->>"+qp.Param(field)+")="+qp.Param(value))
	}
	if sel.SearchTerm != "" {
		pattern := qp.Param(likePattern(sel.SearchTerm))
		if len(sel.SearchFields) > 0 {
			matches := make([]string, len(sel.SearchFields))
			for i, field := range sel.SearchFields {
				matches[i] = "(data->>" + qp.Param(field) + ") ILIKE " + pattern
			}
			conditions = append(conditions,
				"("+strings.Join(matches, " OR ")+")")
		} else {
			conditions = append(conditions,
				"EXISTS (SELECT 1 FROM jsonb_each_text(data) AS kv "+
					"WHERE kv.value ILIKE "+pattern+")")
		}
	}
	return conditions
}

// orderBy translates sort keys into an ORDER BY clause.  Each key
// expands to three expressions: records missing the field sort last,
// JSON numbers sort numerically, and everything else sorts as a
// case-insensitive string.  The record ID breaks any remaining ties
// so pagination is stable.
func orderBy(qp *queryParams, keys []collection.SortKey) string {
	var orders []string
	for _, key := range keys {
		field := qp.Param(key.Field)
		direction := "ASC"
		if key.Descending {
			direction = "DESC"
		}
		orders = append(orders,
			"((data->"+field+") IS NULL)",
			"(CASE WHEN jsonb_typeof(data->"+field+")='number' "+
				"THEN (data->>"+field+")::numeric END) "+
				direction+" NULLS LAST",
			"lower(data->>"+field+") "+direction)
	}
	orders = append(orders, "id ASC")
	return " ORDER BY " + strings.Join(orders, ", ")
}

func (coll *pgCollection) Count(ctx context.Context, sel collection.Selection) (count int, err error) {
	err = withTx(coll, ctx, true, func(tx *sql.Tx) error {
		if err := coll.stillExists(ctx, tx); err != nil {
			return err
		}
		qp := queryParams{}
		query := buildSelect([]string{"COUNT(*)"},
			[]string{"records"},
			coll.conditions(&qp, sel))
		return tx.QueryRowContext(ctx, query, qp...).Scan(&count)
	})
	return
}

func (coll *pgCollection) Fetch(ctx context.Context, sel collection.Selection, keys []collection.SortKey, offset, limit int) (records []collection.Record, err error) {
	err = withTx(coll, ctx, true, func(tx *sql.Tx) error {
		if err := coll.stillExists(ctx, tx); err != nil {
			return err
		}
		qp := queryParams{}
		query := buildSelect([]string{"data"},
			[]string{"records"},
			coll.conditions(&qp, sel))
		query += orderBy(&qp, keys)
		query += " LIMIT " + qp.Param(limit)
		query += " OFFSET " + qp.Param(offset)
		rows, err := tx.QueryContext(ctx, query, qp...)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				return err
			}
			record, err := bytesToRecord(data)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	return
}

func (coll *pgCollection) AddRecord(ctx context.Context, rec collection.Record) error {
	data, err := recordToBytes(rec)
	if err != nil {
		return err
	}
	return withTx(coll, ctx, false, func(tx *sql.Tx) error {
		qp := queryParams{}
		fields := fieldList{}
		fields.Add(&qp, "collection_id", coll.id)
		fields.Add(&qp, "data", string(data))
		_, err := tx.ExecContext(ctx, fields.InsertStatement("records"), qp...)
		if pqerr, ok := err.(*pq.Error); ok && pqerr.Code == "23503" {
			// Foreign key failure: the collection is gone
			return collection.ErrGone
		}
		return err
	})
}

func (coll *pgCollection) DeleteRecords(ctx context.Context, sel collection.Selection) (deleted int, err error) {
	err = withTx(coll, ctx, false, func(tx *sql.Tx) error {
		if err := coll.stillExists(ctx, tx); err != nil {
			return err
		}
		qp := queryParams{}
		query := "DELETE FROM records WHERE " +
			strings.Join(coll.conditions(&qp, sel), " AND ")
		result, err := tx.ExecContext(ctx, query, qp...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		deleted = int(count)
		return err
	})
	return
}
