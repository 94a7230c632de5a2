// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package query_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/memory"
	"github.com/diffeo/go-collection/query"
	"github.com/stretchr/testify/assert"
)

var ticketConfig = collection.Config{
	DefaultPageSize: 15,
	MaxPageSize:     100,
	KnownFields:     []string{"state", "created_at", "name"},
}

// makeTickets builds a collection with nOpen "open" and nClosed
// "closed" tickets, created_at ascending across all of them.
func makeTickets(t *testing.T, nOpen, nClosed int) collection.Collection {
	catalog := memory.New()
	coll, err := catalog.SetCollection("tickets", ticketConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	ctx := context.Background()
	for i := 0; i < nOpen+nClosed; i++ {
		state := "open"
		if i >= nOpen {
			state = "closed"
		}
		err = coll.AddRecord(ctx, collection.Record{
			"name":       fmt.Sprintf("ticket-%03d", i),
			"state":      state,
			"created_at": fmt.Sprintf("2018-01-01T%02d:%02d:00Z", i/60, i%60),
		})
		if !assert.NoError(t, err) {
			t.FailNow()
		}
	}
	return coll
}

func parseAndApply(t *testing.T, coll collection.Collection, rawQuery string) *query.PageResult {
	d, err := query.Parse(rawQuery, ticketConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	result, err := query.Apply(context.Background(), d, coll)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return result
}

// TestApplyFirstPage is the canonical scenario: 30 open tickets,
// filtered and sorted, first of two pages.
func TestApplyFirstPage(t *testing.T) {
	coll := makeTickets(t, 30, 5)
	result := parseAndApply(t, coll, "page=1&page_size=15&sort=-created_at&state=open")

	assert.Equal(t, 30, result.TotalItems)
	assert.Equal(t, 15, result.PageSize)
	assert.Equal(t, 15, result.PageCount)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, "?page=2&page_size=15&sort=-created_at&state=open", result.Next)
	assert.Equal(t, "", result.Previous)

	if assert.Len(t, result.Items, 15) {
		// Newest open ticket first.
		assert.Equal(t, "ticket-029", result.Items[0]["name"])
		assert.Equal(t, "ticket-015", result.Items[14]["name"])
	}
}

// TestApplyRoundTrip follows next from page 1 and previous back from
// page 2, and checks both reproduce the adjacent pages exactly.
func TestApplyRoundTrip(t *testing.T) {
	coll := makeTickets(t, 30, 5)
	page1 := parseAndApply(t, coll, "page=1&page_size=15&sort=-created_at&state=open")

	page2 := parseAndApply(t, coll, page1.Next)
	assert.Equal(t, 2, page2.Page)
	assert.Equal(t, 30, page2.TotalItems)
	assert.Equal(t, 15, page2.PageCount)
	assert.Equal(t, "", page2.Next)
	if assert.Len(t, page2.Items, 15) {
		assert.Equal(t, "ticket-014", page2.Items[0]["name"])
		assert.Equal(t, "ticket-000", page2.Items[14]["name"])
	}

	back := parseAndApply(t, coll, page2.Previous)
	assert.Equal(t, page1, back)
}

// TestApplyIdempotent applies the same descriptor twice against an
// unchanged source.
func TestApplyIdempotent(t *testing.T) {
	coll := makeTickets(t, 10, 0)
	d, err := query.Parse("page_size=4&sort=name", ticketConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	first, err := query.Apply(context.Background(), d, coll)
	assert.NoError(t, err)
	second, err := query.Apply(context.Background(), d, coll)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestApplyPageCount checks the page-count formula
// min(page_size, max(0, total - (page-1)*page_size)) across every
// page of an unevenly sized collection.
func TestApplyPageCount(t *testing.T) {
	total := 23
	pageSize := 5
	coll := makeTickets(t, total, 0)

	for page := 1; page <= 6; page++ {
		result := parseAndApply(t, coll,
			fmt.Sprintf("page=%d&page_size=%d&sort=name", page, pageSize))

		want := total - (page-1)*pageSize
		if want < 0 {
			want = 0
		}
		if want > pageSize {
			want = pageSize
		}
		assert.Equal(t, want, result.PageCount, "page %v", page)
		assert.Equal(t, total, result.TotalItems)

		if page*pageSize < total {
			assert.NotEmpty(t, result.Next, "page %v", page)
		} else {
			assert.Empty(t, result.Next, "page %v", page)
		}
		if page > 1 {
			assert.NotEmpty(t, result.Previous, "page %v", page)
		} else {
			assert.Empty(t, result.Previous, "page %v", page)
		}
	}
}

// TestApplyProjection restricts the returned fields.
func TestApplyProjection(t *testing.T) {
	coll := makeTickets(t, 3, 0)
	result := parseAndApply(t, coll, "fields=name,created_at&sort=name")

	if assert.Len(t, result.Items, 3) {
		for _, item := range result.Items {
			assert.Contains(t, item, "name")
			assert.Contains(t, item, "created_at")
			assert.NotContains(t, item, "state")
		}
	}
}

// TestApplyDefaultPageLink checks the next link when the original
// request never named a page.
func TestApplyDefaultPageLink(t *testing.T) {
	coll := makeTickets(t, 40, 0)
	result := parseAndApply(t, coll, "state=open")

	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 15, result.PageSize)
	assert.Equal(t, "?page=2&state=open", result.Next)
	assert.Equal(t, "", result.Previous)
}

// TestApplyEmptyCollection checks the degenerate empty result.
func TestApplyEmptyCollection(t *testing.T) {
	coll := makeTickets(t, 0, 0)
	result := parseAndApply(t, coll, "")

	assert.Equal(t, 0, result.TotalItems)
	assert.Equal(t, 0, result.PageCount)
	assert.Len(t, result.Items, 0)
	assert.Equal(t, "", result.Next)
	assert.Equal(t, "", result.Previous)
}

// TestApplyPastTheEnd requests a page beyond the data; the page is
// empty but well formed.
func TestApplyPastTheEnd(t *testing.T) {
	coll := makeTickets(t, 5, 0)
	result := parseAndApply(t, coll, "page=4&page_size=5")

	assert.Equal(t, 5, result.TotalItems)
	assert.Equal(t, 0, result.PageCount)
	assert.Equal(t, "", result.Next)
	assert.Equal(t, "?page=3&page_size=5", result.Previous)
}

// failingSource reports a fault from every call.
type failingSource struct{}

var errBroken = errors.New("backend exploded")

func (failingSource) Count(ctx context.Context, sel collection.Selection) (int, error) {
	return 0, errBroken
}

func (failingSource) Fetch(ctx context.Context, sel collection.Selection, sort []collection.SortKey, offset, limit int) ([]collection.Record, error) {
	return nil, errBroken
}

// TestApplySourceFault checks that source faults propagate unchanged.
func TestApplySourceFault(t *testing.T) {
	d, err := query.Parse("", ticketConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	_, err = query.Apply(context.Background(), d, failingSource{})
	assert.Equal(t, errBroken, err)
}
