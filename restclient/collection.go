// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/restdata"
)

type restCollection struct {
	resource
	name           string
	Representation restdata.CollectionRepr
}

func (coll *restCollection) Refresh() error {
	coll.Representation = restdata.CollectionRepr{}
	return coll.Get(&coll.Representation)
}

func (coll *restCollection) Name() string {
	return coll.name
}

func (coll *restCollection) Config() (collection.Config, error) {
	err := coll.goneIfMissing(coll.Refresh())
	return coll.Representation.Config, err
}

// goneIfMissing remaps "no such collection" for this collection to
// ErrGone: a collection handle whose collection has been destroyed
// behaves the same way it would on a local backend.
func (coll *restCollection) goneIfMissing(err error) error {
	if missing, ok := err.(collection.ErrNoSuchCollection); ok && missing.Name == coll.name {
		return collection.ErrGone
	}
	return err
}

// records resolves the collection's record endpoint with a query
// string attached.
func (coll *restCollection) records(values url.Values) (*url.URL, error) {
	if coll.Representation.RecordsURL == "" {
		if err := coll.goneIfMissing(coll.Refresh()); err != nil {
			return nil, err
		}
	}
	u, err := coll.URL.Parse(coll.Representation.RecordsURL)
	if err != nil {
		return nil, err
	}
	u.RawQuery = values.Encode()
	return u, nil
}

// queryValues translates a selection and sort order into the query
// parameters the server's query processor understands.
func queryValues(sel collection.Selection, keys []collection.SortKey) url.Values {
	values := url.Values{}
	for field, value := range sel.Filters {
		values.Set(field, value)
	}
	if sel.SearchTerm != "" {
		values.Set("q", sel.SearchTerm)
		if len(sel.SearchFields) > 0 {
			values.Set("q_fields", strings.Join(sel.SearchFields, ","))
		}
	}
	if len(keys) > 0 {
		tokens := make([]string, len(keys))
		for i, key := range keys {
			tokens[i] = key.String()
		}
		values.Set("sort", strings.Join(tokens, ","))
	}
	return values
}

func (coll *restCollection) Count(ctx context.Context, sel collection.Selection) (int, error) {
	// Any page of results carries the total count; ask for the
	// smallest one
	values := queryValues(sel, nil)
	values.Set("page", "1")
	values.Set("page_size", "1")
	u, err := coll.records(values)
	if err != nil {
		return 0, err
	}
	resp := restdata.PageResponse{}
	err = coll.Do(ctx, "GET", u, nil, &resp)
	if err != nil {
		return 0, coll.goneIfMissing(err)
	}
	return resp.Pagination.TotalItems, nil
}

func (coll *restCollection) Fetch(ctx context.Context, sel collection.Selection, keys []collection.SortKey, offset, limit int) ([]collection.Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	// The wire protocol deals in pages, not arbitrary windows.
	// Walk the page-size-limit pages overlapping the requested
	// window and trim the edges; a window of size limit spans at
	// most two such pages.  Windows that are page-aligned, which
	// is how the query processor calls this, take a single
	// request.
	firstPage := offset / limit
	lastPage := (offset + limit - 1) / limit
	var items []collection.Record
	for page := firstPage; page <= lastPage; page++ {
		values := queryValues(sel, keys)
		values.Set("page", strconv.Itoa(page+1))
		values.Set("page_size", strconv.Itoa(limit))
		u, err := coll.records(values)
		if err != nil {
			return nil, err
		}
		resp := restdata.PageResponse{}
		err = coll.Do(ctx, "GET", u, nil, &resp)
		if err != nil {
			return nil, coll.goneIfMissing(err)
		}
		items = append(items, resp.Items...)
		if len(resp.Items) < limit {
			// Short page; nothing further to read
			break
		}
	}

	skip := offset - firstPage*limit
	if skip >= len(items) {
		return nil, nil
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end], nil
}

func (coll *restCollection) AddRecord(ctx context.Context, rec collection.Record) error {
	u, err := coll.records(url.Values{})
	if err != nil {
		return err
	}
	return coll.goneIfMissing(coll.Do(ctx, "POST", u, rec, nil))
}

func (coll *restCollection) DeleteRecords(ctx context.Context, sel collection.Selection) (int, error) {
	u, err := coll.records(queryValues(sel, nil))
	if err != nil {
		return 0, err
	}
	resp := restdata.DeletedResponse{}
	err = coll.Do(ctx, "DELETE", u, nil, &resp)
	if err != nil {
		return 0, coll.goneIfMissing(err)
	}
	return resp.Deleted, nil
}
