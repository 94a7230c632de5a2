// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package query

import (
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/stretchr/testify/assert"
)

var testConfig = collection.Config{
	DefaultPageSize: 15,
	MaxPageSize:     100,
	KnownFields:     []string{"state", "created_at", "name"},
}

// kindOf extracts the validation error kind, failing the test if err
// is not a ValidationError.
func kindOf(t *testing.T, err error) collection.ErrorKind {
	if !assert.IsType(t, collection.ValidationError{}, err) {
		t.FailNow()
	}
	return err.(collection.ValidationError).Kind
}

func TestParseDefaults(t *testing.T) {
	d, err := Parse("", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, d.Page)
		assert.Equal(t, 15, d.PageSize)
		assert.Empty(t, d.Filters)
		assert.Empty(t, d.Sort)
		assert.Empty(t, d.Fields)
		assert.Equal(t, "", d.SearchTerm)
	}
}

func TestParseFull(t *testing.T) {
	d, err := Parse("?page=2&page_size=20&sort=-created_at&state=open&q=urgent&q_fields=name&fields=name,state", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, 2, d.Page)
		assert.Equal(t, 20, d.PageSize)
		assert.Equal(t, []collection.SortKey{
			{Field: "created_at", Descending: true},
		}, d.Sort)
		assert.Equal(t, map[string]string{"state": "open"}, d.Filters)
		assert.Equal(t, "urgent", d.SearchTerm)
		assert.Equal(t, []string{"name"}, d.SearchFields)
		assert.Equal(t, []string{"name", "state"}, d.Fields)
	}
}

func TestParseSortDirections(t *testing.T) {
	d, err := Parse("sort=-created_at,name", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, []collection.SortKey{
			{Field: "created_at", Descending: true},
			{Field: "name", Descending: false},
		}, d.Sort)
	}
}

func TestParsePercentDecoding(t *testing.T) {
	d, err := Parse("q=hello%20world&name=a%26b", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, "hello world", d.SearchTerm)
		assert.Equal(t, "a&b", d.Filters["name"])
	}
}

func TestParseLastValueWins(t *testing.T) {
	d, err := Parse("page=2&page=3", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, 3, d.Page)
	}

	// Every occurrence is still validated.
	_, err = Parse("page=2&page=zero", testConfig)
	assert.Equal(t, collection.InvalidPageValue, kindOf(t, err))
}

func TestParseUnknownParameter(t *testing.T) {
	_, err := Parse("foo=1", testConfig)
	if assert.IsType(t, collection.ValidationError{}, err) {
		verr := err.(collection.ValidationError)
		assert.Equal(t, collection.UnknownParameter, verr.Kind)
		assert.Equal(t, "foo", verr.Target)
	}
}

func TestParseInvalidSortField(t *testing.T) {
	_, err := Parse("sort=-created_at,bogus", testConfig)
	if assert.IsType(t, collection.ValidationError{}, err) {
		verr := err.(collection.ValidationError)
		assert.Equal(t, collection.InvalidSortField, verr.Kind)
		assert.Equal(t, "bogus", verr.Target)
	}

	// A bare "-" has an empty field name, which cannot be known.
	_, err = Parse("sort=-", testConfig)
	assert.Equal(t, collection.InvalidSortField, kindOf(t, err))
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse("fields=name,foo", testConfig)
	if assert.IsType(t, collection.ValidationError{}, err) {
		verr := err.(collection.ValidationError)
		assert.Equal(t, collection.UnknownField, verr.Kind)
		assert.Equal(t, "foo", verr.Target)
	}

	_, err = Parse("q_fields=foo", testConfig)
	assert.Equal(t, collection.UnknownField, kindOf(t, err))
}

func TestParsePageValues(t *testing.T) {
	_, err := Parse("page=0", testConfig)
	assert.Equal(t, collection.InvalidPageValue, kindOf(t, err))

	_, err = Parse("page=-1", testConfig)
	assert.Equal(t, collection.InvalidPageValue, kindOf(t, err))

	_, err = Parse("page=two", testConfig)
	assert.Equal(t, collection.InvalidPageValue, kindOf(t, err))

	_, err = Parse("page_size=0", testConfig)
	assert.Equal(t, collection.InvalidPageValue, kindOf(t, err))

	d, err := Parse("page=1", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, d.Page)
	}
}

func TestParsePageSizeBoundary(t *testing.T) {
	// Exactly the maximum succeeds.
	d, err := Parse("page_size=100", testConfig)
	if assert.NoError(t, err) {
		assert.Equal(t, 100, d.PageSize)
	}

	// One past the maximum fails; it never silently clamps.
	_, err = Parse("page_size=101", testConfig)
	assert.Equal(t, collection.PageSizeTooLarge, kindOf(t, err))
}

func TestPageLink(t *testing.T) {
	d, err := Parse("page=1&page_size=15&sort=-created_at&state=open", testConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Equal(t, "?page=2&page_size=15&sort=-created_at&state=open", d.pageLink(2))

	// Parameter order and encoding are preserved exactly.
	d, err = Parse("state=open&q=a%26b&page=3", testConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Equal(t, "?state=open&q=a%26b&page=2", d.pageLink(2))

	// If the request never named a page, one is prepended.
	d, err = Parse("state=open", testConfig)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Equal(t, "?page=2&state=open", d.pageLink(2))
}
