// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package query

import (
	"context"
	"github.com/diffeo/go-collection/collection"
)

// PageResult is the outcome of applying a Descriptor to a source: one
// page of (possibly projected) records plus the metadata a client
// needs to walk the collection.
type PageResult struct {
	// Items holds the records on this page, in source order,
	// projected onto the descriptor's Fields if any were
	// requested.
	Items []collection.Record

	// TotalItems counts every record matching the descriptor's
	// filters and search, independent of pagination.
	TotalItems int

	// PageCount counts the records actually present on this page,
	// which is len(Items), not the total number of pages.
	PageCount int

	// Page and PageSize echo the request.
	Page     int
	PageSize int

	// Next and Previous are query strings for the adjacent pages,
	// preserving every non-pagination parameter of the original
	// request.  They are empty strings at the edges of the
	// collection, never malformed links.
	Next     string
	Previous string
}

// Apply runs a parsed query against a source.  The computation order
// is fixed so results stay deterministic and consistent across pages:
// count, then fetch with offset (page-1)*page_size, then project.
//
// Apply is stateless and has no side effects beyond invoking the
// source.  Faults from the source propagate unchanged; retry policy
// belongs to the source, and timeout and cancellation arrive through
// ctx, which is handed through to both source calls.
func Apply(ctx context.Context, d *Descriptor, source collection.Source) (*PageResult, error) {
	sel := d.Selection()

	total, err := source.Count(ctx, sel)
	if err != nil {
		return nil, err
	}

	offset := (d.Page - 1) * d.PageSize
	records, err := source.Fetch(ctx, sel, d.Sort, offset, d.PageSize)
	if err != nil {
		return nil, err
	}

	items := make([]collection.Record, len(records))
	for i, rec := range records {
		items[i] = rec.Project(d.Fields)
	}

	result := &PageResult{
		Items:      items,
		TotalItems: total,
		PageCount:  len(items),
		Page:       d.Page,
		PageSize:   d.PageSize,
	}
	if offset+d.PageSize < total {
		result.Next = d.pageLink(d.Page + 1)
	}
	if d.Page > 1 {
		result.Previous = d.pageLink(d.Page - 1)
	}
	return result, nil
}
