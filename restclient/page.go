// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"strings"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/restdata"
)

// Page is one page of records from a raw query, together with the
// links needed to walk to its neighbors.
type Page struct {
	// Items holds the records of this page.
	Items []collection.Record

	// Pagination locates this page within the whole result.
	Pagination restdata.PaginationMetadata

	coll *restCollection
}

// Query runs a raw query string, as it would appear in a request URL,
// against a named collection on a REST catalog.  The query string is
// passed to the server verbatim; the server's query processor
// validates it.  cat must have come from New() in this package, or
// this returns ErrWrongBackend.
func Query(ctx context.Context, cat collection.Catalog, name, rawQuery string) (*Page, error) {
	rcat, ok := cat.(*restCatalog)
	if !ok {
		return nil, collection.ErrWrongBackend
	}
	coll, err := rcat.makeCollection(name)
	if err != nil {
		return nil, err
	}
	return coll.query(ctx, rawQuery)
}

// query fetches one page of records with a verbatim query string.
func (coll *restCollection) query(ctx context.Context, rawQuery string) (*Page, error) {
	u, err := coll.records(nil)
	if err != nil {
		return nil, err
	}
	u.RawQuery = strings.TrimPrefix(rawQuery, "?")
	resp := restdata.PageResponse{}
	err = coll.Do(ctx, "GET", u, nil, &resp)
	if err != nil {
		return nil, coll.goneIfMissing(err)
	}
	return &Page{
		Items:      resp.Items,
		Pagination: resp.Pagination,
		coll:       coll,
	}, nil
}

// Next retrieves the following page, or nil if this is the last one.
func (p *Page) Next(ctx context.Context) (*Page, error) {
	return p.follow(ctx, p.Pagination.Next)
}

// Previous retrieves the preceding page, or nil if this is the first
// one.
func (p *Page) Previous(ctx context.Context) (*Page, error) {
	return p.follow(ctx, p.Pagination.Previous)
}

func (p *Page) follow(ctx context.Context, link *string) (*Page, error) {
	if link == nil {
		return nil, nil
	}
	return p.coll.query(ctx, *link)
}
