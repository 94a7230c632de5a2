// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  Generally JSON encodings of
// these are passed across the wire as the
// application/vnd.diffeo.collection.v1+json MIME type.
//
// In spite of the "v1" label this representation is not considered
// fully stable yet.
//
// API Usage
//
// HTTP GET the root document at its specified URL.  This will return
// a JSON serialization of the RootData object.  That serialization
// has links to other resources; follow these links, possibly filling
// in template values, to get to other resources.
//
// Many of the URL fields are actually RFC 6570 URI templates.
// This is a fancy way of saying that they are URL strings with a
// {parameter} in curly braces.  For instance, if the system is rooted
// at /, a JSON serialization of RootData will look like
//
//     {
//         "collections_url": "/collection",
//         "collection_url": "/collection/{collection}"
//     }
//
// While the URL structure is predictable and formulaic, it is not
// actually part of the API contract.  The only specific guarantee is
// that retrieving the root resource will return a serialization of
// RootData.
//
// Encoding Considerations
//
// A name that appears in a URL string must be made of ASCII
// characters that can be represented unescaped.  Other names are
// escaped by encoding their byte representations using the base64
// URL-safe encoding with no padding, and prepending a hyphen to the
// name.  Names that would be otherwise safe and begin with hyphens
// are also encoded.
//
// The URL path
//
//     /collection/-/record
//
// refers to the records of the collection whose name is the empty
// string.
//
// Record queries pass their entire query string through to the
// query package; see its documentation for the recognized
// parameters.  The "next" and "previous" pagination links returned
// in PaginationMetadata preserve the query string of the request
// that produced them, changing only the "page" parameter.
//
// HTTP Considerations
//
// Each URL reference notes the applicable HTTP verbs.  In most cases
// simple resource references support GET, PUT, and DELETE, and
// actions support POST and possibly GET.  Any resource that supports
// GET also supports HEAD.
//
// The server returns 200 OK for successful requests, 400 Bad Request
// for validation failures and undecodable bodies, 404 Not Found for
// collections that do not exist, 415 Unsupported Media Type for
// unrecognized Content-Type headers, and 500 Internal Server Error
// for backend faults.
//
// Errors
//
// Errors are returned as encodings of the ErrorResponse type.  This
// can round-trip all of the collection package's errors but may
// return most other errors as plain strings that are not the same
// objects as other standard errors.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "panic".
package restdata

import (
	"github.com/diffeo/go-collection/collection"
)

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.collection.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.collection+json"

// Resource is a base type for all resources in this module.
type Resource struct {
	// URL points at this resource.  If this record is a "short"
	// record, the contents of this URL are the full record.  This
	// field does not need to be provided when posting data (and
	// indeed for HTTP PUT requests you need to know the URL to
	// post at all).
	URL string `json:"url"`
}

// NamedResource is a resource with a name.
type NamedResource struct {
	Resource

	// Name holds the name of this resource.  This is generally
	// immutable.  This field does not need to be provided when
	// posting data.
	Name string `json:"name"`
}

// RootData is returned by the root path.
type RootData struct {
	Resource

	// CollectionsURL points at the collection list.  This
	// endpoint supports HTTP GET to return a CollectionList.
	// This endpoint also supports HTTP POST to submit a new
	// CollectionRepr, returning a CollectionShort pointing at the
	// result.
	CollectionsURL string `json:"collections_url"`

	// CollectionURL points at the representation of a single
	// collection.  This endpoint supports HTTP GET, PUT, and
	// DELETE, and its representation is a CollectionRepr.  This
	// field is a URI template with a single parameter,
	// "collection", which should be substituted for the (possibly
	// escaped) name of the collection.
	CollectionURL string `json:"collection_url"`
}

// CollectionShort provides minimal data to identify a single
// collection.
type CollectionShort struct {
	NamedResource
}

// CollectionList is a list of CollectionShort.
type CollectionList struct {
	// Collections is a list of the collections available in the
	// system.
	Collections []CollectionShort `json:"collections"`
}

// CollectionRepr is the full representation of a collection.
type CollectionRepr struct {
	CollectionShort

	// Config holds the query-validation settings of this
	// collection.  It must be provided when creating a collection
	// and is required to pass collection.Config.Validate().
	Config collection.Config `json:"config"`

	// RecordsURL points at the records of this collection.  This
	// endpoint supports HTTP GET with a query string to run a
	// paginated query, returning a PageResponse; HTTP POST to
	// submit a single record; and HTTP DELETE with a query string
	// of filters to bulk-delete records, returning a
	// DeletedResponse.
	RecordsURL string `json:"records_url,omitempty"`
}

// PaginationMetadata describes the position of one page within a
// query result.
type PaginationMetadata struct {
	// TotalItems counts every record matching the query's
	// filters and search, across all pages.
	TotalItems int `json:"total_items"`

	// PageSize is the page size the query requested, even on a
	// short final page.
	PageSize int `json:"page_size"`

	// PageCount is the number of items on this page.
	PageCount int `json:"page_count"`

	// Page is the 1-based number of this page.
	Page int `json:"page"`

	// Next is a query string for the following page, or null on
	// the last page.
	Next *string `json:"next"`

	// Previous is a query string for the preceding page, or null
	// on the first page.
	Previous *string `json:"previous"`
}

// PageResponse is one page of records from a query.
type PageResponse struct {
	// Items holds the records of this page, in sorted order,
	// after field projection.
	Items []collection.Record `json:"items"`

	// Pagination locates this page within the whole result.
	Pagination PaginationMetadata `json:"pagination_metadata"`
}

// DeletedResponse reports the outcome of a bulk record deletion.
type DeletedResponse struct {
	// Deleted is the number of records actually removed.
	Deleted int `json:"deleted"`
}

// OptionalString boxes a string, mapping empty to null, the way the
// pagination links are represented on the wire.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
