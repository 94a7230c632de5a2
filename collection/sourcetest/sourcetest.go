// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package sourcetest provides generic functional tests for the
// collection API.  A backend test module sets the package-level
// Catalog variable in an init function and then calls the exported
// test functions from its own tests:
//
//     package mybackend_test
//
//     import (
//             "testing"
//             "github.com/diffeo/go-collection/collection/sourcetest"
//     )
//
//     func init() {
//             sourcetest.Catalog = New()
//     }
//
//     func TestCatalogTrivial(t *testing.T) {
//             sourcetest.TestCatalogTrivial(t)
//     }
//
// Each test function creates collections under its own names, so the
// functions are independent of each other, but the catalog is shared.
package sourcetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/stretchr/testify/assert"
)

// Catalog contains the top-level interface to the backend under
// test.  It is set by importing packages.
var Catalog collection.Catalog

// defaultConfig is the configuration most tests use, matching the
// ticket-tracker example from the design documentation.
var defaultConfig = collection.Config{
	DefaultPageSize: 15,
	MaxPageSize:     100,
	KnownFields:     []string{"state", "created_at", "name", "priority"},
}

// makeCollection creates (or resets) a collection with the default
// configuration and returns it.
func makeCollection(t *testing.T, name string) collection.Collection {
	coll, err := Catalog.SetCollection(name, defaultConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	_, err = coll.DeleteRecords(context.Background(), collection.Selection{})
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return coll
}

// seedTickets adds n records to the collection, alternating between
// "open" and "closed" states, with ascending created_at timestamps
// and names ticket-000, ticket-001, ....
func seedTickets(t *testing.T, coll collection.Collection, n int) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		state := "open"
		if i%2 == 1 {
			state = "closed"
		}
		err := coll.AddRecord(ctx, collection.Record{
			"name":       fmt.Sprintf("ticket-%03d", i),
			"state":      state,
			"created_at": fmt.Sprintf("2018-01-01T00:%02d:00Z", i),
			"priority":   float64(i % 5),
		})
		if !assert.NoError(t, err) {
			t.FailNow()
		}
	}
}

// TestCatalogTrivial creates, lists, and destroys a collection.
func TestCatalogTrivial(t *testing.T) {
	coll, err := Catalog.SetCollection("trivial", defaultConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, "trivial", coll.Name())
	}

	coll, err = Catalog.Collection("trivial")
	if assert.NoError(t, err) {
		cfg, err := coll.Config()
		if assert.NoError(t, err) {
			assert.Equal(t, 15, cfg.DefaultPageSize)
			assert.Equal(t, 100, cfg.MaxPageSize)
		}
	}

	names, err := Catalog.CollectionNames()
	if assert.NoError(t, err) {
		assert.Contains(t, names, "trivial")
	}

	err = Catalog.DestroyCollection("trivial")
	assert.NoError(t, err)

	_, err = Catalog.Collection("trivial")
	assert.IsType(t, collection.ErrNoSuchCollection{}, err)

	err = Catalog.DestroyCollection("trivial")
	assert.IsType(t, collection.ErrNoSuchCollection{}, err)
}

// TestBadConfig verifies configuration validation in SetCollection.
func TestBadConfig(t *testing.T) {
	_, err := Catalog.SetCollection("bad", collection.Config{
		DefaultPageSize: 0,
		MaxPageSize:     100,
	})
	assert.Error(t, err)

	_, err = Catalog.SetCollection("bad", collection.Config{
		DefaultPageSize: 200,
		MaxPageSize:     100,
	})
	assert.Error(t, err)

	_, err = Catalog.Collection("bad")
	assert.IsType(t, collection.ErrNoSuchCollection{}, err)
}

// TestCountFilters checks filtered and unfiltered counts.
func TestCountFilters(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "count")
	seedTickets(t, coll, 10)

	count, err := coll.Count(ctx, collection.Selection{})
	if assert.NoError(t, err) {
		assert.Equal(t, 10, count)
	}

	count, err = coll.Count(ctx, collection.Selection{
		Filters: map[string]string{"state": "open"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 5, count)
	}

	count, err = coll.Count(ctx, collection.Selection{
		Filters: map[string]string{"state": "open", "name": "ticket-002"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 1, count)
	}

	count, err = coll.Count(ctx, collection.Selection{
		Filters: map[string]string{"state": "missing"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 0, count)
	}
}

// TestNumericFilter checks that filter values match the string form
// of non-string fields.
func TestNumericFilter(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "numeric")
	seedTickets(t, coll, 10)

	count, err := coll.Count(ctx, collection.Selection{
		Filters: map[string]string{"priority": "3"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 2, count)
	}
}

// TestSearch checks free-text search, both across all fields and
// restricted to specific fields.
func TestSearch(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "search")
	seedTickets(t, coll, 4)

	// Case-insensitive substring across all fields.
	count, err := coll.Count(ctx, collection.Selection{SearchTerm: "TICKET-00"})
	if assert.NoError(t, err) {
		assert.Equal(t, 4, count)
	}

	// "open" appears only in the state field.
	count, err = coll.Count(ctx, collection.Selection{
		SearchTerm:   "open",
		SearchFields: []string{"name"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 0, count)
	}

	count, err = coll.Count(ctx, collection.Selection{
		SearchTerm:   "open",
		SearchFields: []string{"state"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 2, count)
	}

	count, err = coll.Count(ctx, collection.Selection{SearchTerm: "no such text"})
	if assert.NoError(t, err) {
		assert.Equal(t, 0, count)
	}
}

// TestSortOrder checks single- and multi-key sorting in both
// directions.
func TestSortOrder(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "sort")
	seedTickets(t, coll, 6)

	recs, err := coll.Fetch(ctx, collection.Selection{}, []collection.SortKey{
		{Field: "created_at", Descending: true},
	}, 0, 100)
	if assert.NoError(t, err) && assert.Len(t, recs, 6) {
		assert.Equal(t, "ticket-005", recs[0]["name"])
		assert.Equal(t, "ticket-000", recs[5]["name"])
	}

	// Sort by state ascending ("closed" before "open"), then by
	// created_at descending within each state.
	recs, err = coll.Fetch(ctx, collection.Selection{}, []collection.SortKey{
		{Field: "state"},
		{Field: "created_at", Descending: true},
	}, 0, 100)
	if assert.NoError(t, err) && assert.Len(t, recs, 6) {
		assert.Equal(t, "ticket-005", recs[0]["name"])
		assert.Equal(t, "ticket-001", recs[2]["name"])
		assert.Equal(t, "ticket-004", recs[3]["name"])
		assert.Equal(t, "ticket-000", recs[5]["name"])
	}
}

// TestNumericSort checks that numbers order numerically, not
// lexicographically.
func TestNumericSort(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "numsort")
	for _, p := range []float64{10, 2, 1} {
		err := coll.AddRecord(ctx, collection.Record{
			"name":     fmt.Sprintf("p%v", p),
			"priority": p,
		})
		if !assert.NoError(t, err) {
			t.FailNow()
		}
	}

	recs, err := coll.Fetch(ctx, collection.Selection{}, []collection.SortKey{
		{Field: "priority"},
	}, 0, 100)
	if assert.NoError(t, err) && assert.Len(t, recs, 3) {
		assert.Equal(t, "p1", recs[0]["name"])
		assert.Equal(t, "p2", recs[1]["name"])
		assert.Equal(t, "p10", recs[2]["name"])
	}
}

// TestFetchWindow checks offset/limit windowing, including windows
// off the end of the matched records.
func TestFetchWindow(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "window")
	seedTickets(t, coll, 7)
	byName := []collection.SortKey{{Field: "name"}}

	recs, err := coll.Fetch(ctx, collection.Selection{}, byName, 0, 3)
	if assert.NoError(t, err) && assert.Len(t, recs, 3) {
		assert.Equal(t, "ticket-000", recs[0]["name"])
	}

	recs, err = coll.Fetch(ctx, collection.Selection{}, byName, 6, 3)
	if assert.NoError(t, err) && assert.Len(t, recs, 1) {
		assert.Equal(t, "ticket-006", recs[0]["name"])
	}

	recs, err = coll.Fetch(ctx, collection.Selection{}, byName, 7, 3)
	if assert.NoError(t, err) {
		assert.Len(t, recs, 0)
	}

	recs, err = coll.Fetch(ctx, collection.Selection{}, byName, 100, 3)
	if assert.NoError(t, err) {
		assert.Len(t, recs, 0)
	}
}

// TestPageConsistency walks the collection page by page and checks
// that every record appears exactly once.
func TestPageConsistency(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "pages")
	seedTickets(t, coll, 10)
	byName := []collection.SortKey{{Field: "name"}}

	seen := map[string]int{}
	for offset := 0; offset < 10; offset += 3 {
		recs, err := coll.Fetch(ctx, collection.Selection{}, byName, offset, 3)
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		for _, rec := range recs {
			seen[rec["name"].(string)]++
		}
	}
	assert.Len(t, seen, 10)
	for name, count := range seen {
		assert.Equal(t, 1, count, "record %v appeared %v times", name, count)
	}
}

// TestDeleteRecords checks bulk deletion by selection and the
// deleted-record count.
func TestDeleteRecords(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "delete")
	seedTickets(t, coll, 10)

	deleted, err := coll.DeleteRecords(ctx, collection.Selection{
		Filters: map[string]string{"state": "closed"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, 5, deleted)
	}

	count, err := coll.Count(ctx, collection.Selection{})
	if assert.NoError(t, err) {
		assert.Equal(t, 5, count)
	}

	deleted, err = coll.DeleteRecords(ctx, collection.Selection{})
	if assert.NoError(t, err) {
		assert.Equal(t, 5, deleted)
	}

	count, err = coll.Count(ctx, collection.Selection{})
	if assert.NoError(t, err) {
		assert.Equal(t, 0, count)
	}
}

// TestReconfigure checks that reconfiguring a collection keeps its
// records.
func TestReconfigure(t *testing.T) {
	ctx := context.Background()
	coll := makeCollection(t, "reconfig")
	seedTickets(t, coll, 3)

	cfg := defaultConfig
	cfg.DefaultPageSize = 5
	coll2, err := Catalog.SetCollection("reconfig", cfg)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	newCfg, err := coll2.Config()
	if assert.NoError(t, err) {
		assert.Equal(t, 5, newCfg.DefaultPageSize)
	}

	count, err := coll2.Count(ctx, collection.Selection{})
	if assert.NoError(t, err) {
		assert.Equal(t, 3, count)
	}
}

// TestCanceledContext checks that a canceled context aborts source
// calls.
func TestCanceledContext(t *testing.T) {
	coll := makeCollection(t, "canceled")
	seedTickets(t, coll, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coll.Count(ctx, collection.Selection{})
	assert.Error(t, err)

	_, err = coll.Fetch(ctx, collection.Selection{}, nil, 0, 10)
	assert.Error(t, err)
}
