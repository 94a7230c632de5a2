// Copyright 2016-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-collection/cache"
	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/memory"
	"github.com/stretchr/testify/assert"
)

type CacheAssertions struct {
	*assert.Assertions
	Backend collection.Catalog
	Catalog collection.Catalog
	Clock   *clock.Mock
}

func NewCacheAssertions(t assert.TestingT) *CacheAssertions {
	backend := memory.New()
	clk := clock.NewMock()
	return &CacheAssertions{
		assert.New(t),
		backend,
		cache.NewWithClock(backend, time.Minute, clk),
		clk,
	}
}

// Collection creates a collection through the cache; if it fails,
// fail the test.
func (a *CacheAssertions) Collection(name string) collection.Collection {
	coll, err := a.Catalog.SetCollection(name, collection.Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		KnownFields:     []string{"state"},
	})
	if !a.NoError(err, "error creating collection") {
		a.FailNow("cannot create collection")
	}
	return coll
}

// AddDirect adds a record through the backend, behind the cache's
// back.
func (a *CacheAssertions) AddDirect(name string, rec collection.Record) {
	coll, err := a.Backend.Collection(name)
	if !a.NoError(err) {
		a.FailNow("cannot get backend collection")
	}
	a.NoError(coll.AddRecord(context.Background(), rec))
}

// Count counts everything in a collection; if the count fails, fail
// the test.
func (a *CacheAssertions) Count(coll collection.Collection) int {
	count, err := coll.Count(context.Background(), collection.Selection{})
	if !a.NoError(err, "error counting records") {
		a.FailNow("cannot count records")
	}
	return count
}

// TestCountTTL validates that counts are served from cache until
// their lifetime passes, even if the backend changes underneath.
func TestCountTTL(t *testing.T) {
	a := NewCacheAssertions(t)
	coll := a.Collection("c")
	a.Equal(0, a.Count(coll))

	a.AddDirect("c", collection.Record{"state": "open"})

	// The write bypassed the cache, so the result is stale
	a.Equal(0, a.Count(coll))

	// ...until the entry expires
	a.Clock.Add(time.Minute)
	a.Equal(1, a.Count(coll))
}

// TestWriteThroughInvalidates validates that a write made through the
// cache is visible on the next read.
func TestWriteThroughInvalidates(t *testing.T) {
	a := NewCacheAssertions(t)
	coll := a.Collection("c")
	a.Equal(0, a.Count(coll))

	a.NoError(coll.AddRecord(context.Background(), collection.Record{"state": "open"}))
	a.Equal(1, a.Count(coll))

	deleted, err := coll.DeleteRecords(context.Background(), collection.Selection{})
	if a.NoError(err) {
		a.Equal(1, deleted)
	}
	a.Equal(0, a.Count(coll))
}

// TestFetchStale validates that fetch results age out the same way
// counts do.
func TestFetchStale(t *testing.T) {
	a := NewCacheAssertions(t)
	coll := a.Collection("c")
	a.AddDirect("c", collection.Record{"state": "open", "name": "one"})

	records, err := coll.Fetch(context.Background(), collection.Selection{}, nil, 0, 10)
	if a.NoError(err) {
		a.Len(records, 1)
	}

	a.AddDirect("c", collection.Record{"state": "open", "name": "two"})

	// Same query, still the old answer
	records, err = coll.Fetch(context.Background(), collection.Selection{}, nil, 0, 10)
	if a.NoError(err) {
		a.Len(records, 1)
	}

	// A different window is a different query and misses the cache
	records, err = coll.Fetch(context.Background(), collection.Selection{}, nil, 1, 10)
	if a.NoError(err) {
		a.Len(records, 1)
	}

	a.Clock.Add(time.Minute)
	records, err = coll.Fetch(context.Background(), collection.Selection{}, nil, 0, 10)
	if a.NoError(err) {
		a.Len(records, 2)
	}
}

// TestResultCacheSurvivesLookup validates that re-fetching the
// collection object from the catalog reuses its cached results.
func TestResultCacheSurvivesLookup(t *testing.T) {
	a := NewCacheAssertions(t)
	coll := a.Collection("c")
	a.Equal(0, a.Count(coll))

	a.AddDirect("c", collection.Record{"state": "open"})

	again, err := a.Catalog.Collection("c")
	if !a.NoError(err) {
		a.FailNow("cannot get collection")
	}
	a.Equal(0, a.Count(again))
}

// TestReconfigureInvalidates validates that SetCollection on an
// existing collection drops its cached results.
func TestReconfigureInvalidates(t *testing.T) {
	a := NewCacheAssertions(t)
	coll := a.Collection("c")
	a.Equal(0, a.Count(coll))

	a.AddDirect("c", collection.Record{"state": "open"})
	coll = a.Collection("c")
	a.Equal(1, a.Count(coll))
}

// TestDestroyedCollection validates that destroying a collection is
// visible immediately, cache or no cache.
func TestDestroyedCollection(t *testing.T) {
	a := NewCacheAssertions(t)
	coll := a.Collection("c")
	a.Equal(0, a.Count(coll))

	a.NoError(a.Catalog.DestroyCollection("c"))

	_, err := a.Catalog.Collection("c")
	if a.Error(err) {
		a.IsType(collection.ErrNoSuchCollection{}, err)
	}

	// The old handle reports the collection gone rather than
	// serving the stale count
	_, err = coll.Count(context.Background(), collection.Selection{})
	a.Equal(collection.ErrGone, err)
}
