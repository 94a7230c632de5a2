// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

//go:generate cptest --output sourcetest_test.go --package memory_test github.com/diffeo/go-collection/collection/sourcetest

import (
	"context"
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/collection/sourcetest"
	"github.com/diffeo/go-collection/memory"
	"github.com/stretchr/testify/assert"
)

func init() {
	sourcetest.Catalog = memory.New()
}

// TestFetchIsolation checks that mutating a fetched record does not
// reach back into the store.
func TestFetchIsolation(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	coll, err := backend.SetCollection("iso", collection.Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		KnownFields:     []string{"name"},
	})
	if !assert.NoError(t, err) {
		return
	}
	err = coll.AddRecord(ctx, collection.Record{"name": "before"})
	if !assert.NoError(t, err) {
		return
	}

	fetched, err := coll.Fetch(ctx, collection.Selection{}, nil, 0, 10)
	if assert.NoError(t, err) && assert.Len(t, fetched, 1) {
		fetched[0]["name"] = "after"
	}

	again, err := coll.Fetch(ctx, collection.Selection{}, nil, 0, 10)
	if assert.NoError(t, err) && assert.Len(t, again, 1) {
		assert.Equal(t, "before", again[0]["name"])
	}
}
