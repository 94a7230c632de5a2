// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/memory"
	"github.com/diffeo/go-collection/restclient"
	"github.com/stretchr/testify/assert"
)

func makePaged(t *testing.T, count int) {
	coll, err := testBackend.SetCollection("paged", collection.Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		KnownFields:     []string{"name"},
	})
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	ctx := context.Background()
	_, err = coll.DeleteRecords(ctx, collection.Selection{})
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	for i := 0; i < count; i++ {
		err = coll.AddRecord(ctx, collection.Record{
			"name": fmt.Sprintf("item-%03d", i),
		})
		if !assert.NoError(t, err) {
			t.FailNow()
		}
	}
}

func TestPageNavigation(t *testing.T) {
	makePaged(t, 5)
	ctx := context.Background()

	page, err := restclient.Query(ctx, testBackend, "paged", "page_size=2&sort=name")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Equal(t, 5, page.Pagination.TotalItems)
	assert.Equal(t, 1, page.Pagination.Page)
	if assert.Len(t, page.Items, 2) {
		assert.Equal(t, "item-000", page.Items[0]["name"])
	}
	assert.Nil(t, page.Pagination.Previous)

	second, err := page.Next(ctx)
	if !assert.NoError(t, err) || !assert.NotNil(t, second) {
		t.FailNow()
	}
	assert.Equal(t, 2, second.Pagination.Page)
	if assert.Len(t, second.Items, 2) {
		assert.Equal(t, "item-002", second.Items[0]["name"])
	}

	last, err := second.Next(ctx)
	if !assert.NoError(t, err) || !assert.NotNil(t, last) {
		t.FailNow()
	}
	assert.Equal(t, 3, last.Pagination.Page)
	assert.Len(t, last.Items, 1)
	assert.Nil(t, last.Pagination.Next)

	end, err := last.Next(ctx)
	assert.NoError(t, err)
	assert.Nil(t, end)

	back, err := second.Previous(ctx)
	if assert.NoError(t, err) && assert.NotNil(t, back) {
		assert.Equal(t, 1, back.Pagination.Page)
		assert.Equal(t, page.Items, back.Items)
	}
}

func TestQueryValidationError(t *testing.T) {
	makePaged(t, 1)
	_, err := restclient.Query(context.Background(), testBackend, "paged", "bogus=1")
	if assert.IsType(t, collection.ValidationError{}, err) {
		verr := err.(collection.ValidationError)
		assert.Equal(t, collection.UnknownParameter, verr.Kind)
		assert.Equal(t, "bogus", verr.Target)
	}
}

func TestQueryWrongBackend(t *testing.T) {
	_, err := restclient.Query(context.Background(), memory.New(), "paged", "")
	assert.Equal(t, collection.ErrWrongBackend, err)
}
