// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package query implements the collection query processor.  It turns
// a raw URL query string into a validated, immutable Descriptor, and
// applies a Descriptor against any collection.Source to produce one
// page of results plus pagination metadata and navigation links.
//
// The processor itself is stateless: Parse never blocks, Apply blocks
// only inside the source's Count and Fetch calls, and both are safe
// to call concurrently so long as the injected source is.  Retry,
// caching, and timeout policy all belong to the collaborators, not
// here.
//
// Query Syntax
//
// The recognized query parameters are:
//
//     page       positive integer page number, default 1
//     page_size  positive integer page size, bounded by the
//                collection's maximum, default from configuration
//     sort       comma-separated field names, each with an optional
//                leading "-" for descending order
//     q          free-text search term
//     q_fields   comma-separated fields to search; all fields if absent
//     fields     comma-separated fields to project into the response
//
// Any other parameter whose name is one of the collection's known
// fields is an equality filter on that field.  Anything else fails
// validation; there is no silent coercion beyond the documented
// defaults.
package query

import (
	"github.com/diffeo/go-collection/collection"
	"net/url"
	"strconv"
	"strings"
)

// param is one parameter from the original query string.  The raw
// segments are retained, in order and unre-encoded, so that
// navigation links can reproduce the request byte for byte with only
// the page number changed.
type param struct {
	// Raw is the original undecoded "key=value" segment.
	Raw string

	// Key is the decoded parameter name.
	Key string
}

// Descriptor is the parsed, validated form of a request's query
// string.  It is constructed once per request by Parse, is immutable
// afterwards, and owns no resources beyond its own fields.
type Descriptor struct {
	// Filters holds the equality filters, field name to required
	// value.
	Filters map[string]string

	// Sort holds the requested sort order, outermost key first.
	Sort []collection.SortKey

	// SearchTerm holds the free-text search term, or empty string.
	SearchTerm string

	// SearchFields holds the fields to search; empty means all.
	SearchFields []string

	// Fields holds the fields to project in the response, in
	// order; empty means return records unchanged.
	Fields []string

	// Page is the 1-based page number.
	Page int

	// PageSize is the number of records per page.
	PageSize int

	// params holds the decoded original query pairs in order.
	params []param
}

// Selection returns the filter/search portion of the descriptor in
// the form the collection API consumes.
func (d *Descriptor) Selection() collection.Selection {
	return collection.Selection{
		Filters:      d.Filters,
		SearchTerm:   d.SearchTerm,
		SearchFields: d.SearchFields,
	}
}

// Parse decodes and validates a raw query string against a
// collection's configuration.  A leading "?" is permitted and
// ignored.  On success the returned descriptor satisfies all of the
// data-model invariants (page >= 1, 1 <= page_size <= max); on
// failure the error is a collection.ValidationError and no partial
// descriptor is exposed.
//
// If the same parameter appears more than once, the last occurrence
// wins; every occurrence is still validated.
func Parse(rawQuery string, cfg collection.Config) (*Descriptor, error) {
	rawQuery = strings.TrimPrefix(rawQuery, "?")

	d := &Descriptor{
		Filters:  make(map[string]string),
		Page:     1,
		PageSize: cfg.DefaultPageSize,
	}

	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		var key, value string
		var err error
		pieces := strings.SplitN(segment, "=", 2)
		key, err = url.QueryUnescape(pieces[0])
		if err == nil && len(pieces) == 2 {
			value, err = url.QueryUnescape(pieces[1])
		}
		if err != nil {
			return nil, collection.ValidationError{
				Kind:   collection.UnknownParameter,
				Target: segment,
			}
		}

		if err := d.assign(key, value, cfg); err != nil {
			return nil, err
		}
		d.params = append(d.params, param{Raw: segment, Key: key})
	}

	return d, nil
}

// assign validates a single decoded parameter and stores it in the
// descriptor.
func (d *Descriptor) assign(key, value string, cfg collection.Config) error {
	switch key {
	case "page":
		page, err := parsePositiveInt(value)
		if err != nil {
			return collection.ValidationError{
				Kind:   collection.InvalidPageValue,
				Target: "page",
			}
		}
		d.Page = page

	case "page_size":
		size, err := parsePositiveInt(value)
		if err != nil {
			return collection.ValidationError{
				Kind:   collection.InvalidPageValue,
				Target: "page_size",
			}
		}
		if size > cfg.MaxPageSize {
			return collection.ValidationError{
				Kind:   collection.PageSizeTooLarge,
				Target: value,
			}
		}
		d.PageSize = size

	case "sort":
		keys, err := parseSort(value, cfg)
		if err != nil {
			return err
		}
		d.Sort = keys

	case "q":
		d.SearchTerm = value

	case "q_fields":
		fields, err := parseFieldList(value, cfg)
		if err != nil {
			return err
		}
		d.SearchFields = fields

	case "fields":
		fields, err := parseFieldList(value, cfg)
		if err != nil {
			return err
		}
		d.Fields = fields

	default:
		if !cfg.HasField(key) {
			return collection.ValidationError{
				Kind:   collection.UnknownParameter,
				Target: key,
			}
		}
		d.Filters[key] = value
	}
	return nil
}

// parsePositiveInt parses a strictly positive decimal integer.
func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// parseSort splits a comma-separated sort expression into sort keys.
// An empty expression yields no sort keys.
func parseSort(value string, cfg collection.Config) ([]collection.SortKey, error) {
	if value == "" {
		return nil, nil
	}
	tokens := strings.Split(value, ",")
	keys := make([]collection.SortKey, 0, len(tokens))
	for _, token := range tokens {
		key := collection.SortKey{Field: token}
		if strings.HasPrefix(token, "-") {
			key.Field = token[1:]
			key.Descending = true
		}
		if !cfg.HasField(key.Field) {
			return nil, collection.ValidationError{
				Kind:   collection.InvalidSortField,
				Target: token,
			}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// parseFieldList splits a comma-separated field list, requiring every
// entry to be a known field.  An empty expression yields no fields.
func parseFieldList(value string, cfg collection.Config) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	fields := strings.Split(value, ",")
	for _, field := range fields {
		if !cfg.HasField(field) {
			return nil, collection.ValidationError{
				Kind:   collection.UnknownField,
				Target: field,
			}
		}
	}
	return fields, nil
}

// pageLink reconstructs the original query string with the page
// parameter replaced by the given value and every other parameter
// preserved in its original order.  The result includes a leading
// "?".  If the original request never named a page, the page
// parameter is prepended.
func (d *Descriptor) pageLink(page int) string {
	value := strconv.Itoa(page)
	pieces := make([]string, 0, len(d.params)+1)
	sawPage := false
	for _, p := range d.params {
		if p.Key == "page" {
			pieces = append(pieces, "page="+value)
			sawPage = true
		} else {
			pieces = append(pieces, p.Raw)
		}
	}
	if !sawPage {
		pieces = append([]string{"page=" + value}, pieces...)
	}
	return "?" + strings.Join(pieces, "&")
}
