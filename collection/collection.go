// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package collection defines an abstract API to queryable record
// collections.
//
// In most cases, applications will know of specific implementations
// of this API and will get an implementation of Catalog from that
// implementation; the memory and postgres packages in this repository
// are the standard ones.  The restclient package implements Catalog
// over a REST transport, and the cache package wraps any other
// Catalog with a result cache.
//
// In general, objects here have a small amount of immutable data (a
// Collection.Name() never changes, for instance) and the accessors of
// these return the value directly.  Accessors to mutable data return
// the value and an error.
package collection

import "context"

// Catalog is the principal interface to a set of named collections.
// Implementations of this interface provide a specific database
// backend, RPC system, or other way to reach the stored records.
type Catalog interface {
	// Collection retrieves a collection by name.  If no
	// collection exists with that name, returns an instance of
	// ErrNoSuchCollection as an error.
	Collection(name string) (Collection, error)

	// SetCollection creates or reconfigures a collection.  The
	// configuration must pass Config.Validate().  Reconfiguring
	// an existing collection does not change its records, even if
	// the set of known fields shrinks; fields outside KnownFields
	// simply stop being addressable in queries.  On success
	// returns the created (or modified) Collection object.
	SetCollection(name string, config Config) (Collection, error)

	// CollectionNames returns the names of all of the collections
	// in this catalog.  This may be an empty slice if there are
	// no collections.  Unless one of the collections is
	// destroyed, calling Collection() on one of these names will
	// retrieve the corresponding Collection object.
	CollectionNames() ([]string, error)

	// DestroyCollection irretrievably destroys a collection and
	// all records in it.  If the named collection does not exist,
	// returns an instance of ErrNoSuchCollection.
	DestroyCollection(name string) error
}

// Config holds the per-collection settings that drive query
// validation.  The query package consumes this when parsing query
// strings.
type Config struct {
	// DefaultPageSize is the page size used when a query does not
	// name one.  It must be at least 1 and at most MaxPageSize.
	DefaultPageSize int `json:"default_page_size" mapstructure:"default_page_size" yaml:"default_page_size"`

	// MaxPageSize is the largest page size a query may request.
	// Requests beyond it are rejected, never clamped.
	MaxPageSize int `json:"max_page_size" mapstructure:"max_page_size" yaml:"max_page_size"`

	// KnownFields lists the record fields that may appear in
	// filters, sort keys, field projections, and search field
	// lists.  Parameters outside this list (and the fixed
	// pagination parameters) are rejected.
	KnownFields []string `json:"known_fields" mapstructure:"known_fields" yaml:"known_fields"`
}

// Validate checks a configuration for internal consistency.  It
// returns ErrBadConfig describing the first problem found, or nil.
func (cfg Config) Validate() error {
	if cfg.DefaultPageSize < 1 {
		return ErrBadConfig{Reason: "default_page_size must be positive"}
	}
	if cfg.MaxPageSize < 1 {
		return ErrBadConfig{Reason: "max_page_size must be positive"}
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		return ErrBadConfig{Reason: "default_page_size exceeds max_page_size"}
	}
	return nil
}

// HasField reports whether name is one of the configured known
// fields.
func (cfg Config) HasField(name string) bool {
	for _, field := range cfg.KnownFields {
		if field == name {
			return true
		}
	}
	return false
}

// Record is a single stored item.  Keys are snake_case field names;
// values are whatever the JSON decoding of the record produced,
// typically strings, float64 numbers, and booleans.
type Record map[string]interface{}

// Project returns a copy of the record restricted to the named
// fields.  Fields absent from the record are omitted from the result
// rather than appearing with null values.  If fields is empty the
// record is returned unchanged.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return r
	}
	out := make(Record, len(fields))
	for _, field := range fields {
		if value, present := r[field]; present {
			out[field] = value
		}
	}
	return out
}

// Selection chooses a subset of the records in a collection.  Its
// zero value selects all records.
type Selection struct {
	// Filters maps field names to required values.  A record is
	// selected only if, for every entry, its field's value
	// (rendered as a string) equals the filter value exactly.
	Filters map[string]string

	// SearchTerm, if non-empty, further restricts the selection
	// to records where the term appears as a case-insensitive
	// substring of at least one searched field.
	SearchTerm string

	// SearchFields names the fields examined by SearchTerm.  If
	// empty, every field of each record is searched.  It has no
	// effect when SearchTerm is empty.
	SearchFields []string
}

// IsEmpty reports whether the selection selects all records.
func (s Selection) IsEmpty() bool {
	return len(s.Filters) == 0 && s.SearchTerm == ""
}

// SortKey is one element of a sort order.
type SortKey struct {
	// Field names the record field to order by.
	Field string

	// Descending inverts the order for this key.
	Descending bool
}

// Source is the read-only capability the query processor consumes.
// Both methods must observe the same records for the same selection
// within a single query, to the extent the backing store allows;
// the exact consistency level is a property of the implementation.
// Implementations must be safe for concurrent use and must honor
// cancellation of the supplied context.
type Source interface {
	// Count returns the number of records matching the selection,
	// independent of any pagination.
	Count(ctx context.Context, sel Selection) (int, error)

	// Fetch returns a window of the records matching the
	// selection, ordered by the sort keys (ties keep a
	// deterministic, implementation-defined order), skipping
	// offset records and returning at most limit.
	Fetch(ctx context.Context, sel Selection, sort []SortKey, offset, limit int) ([]Record, error)
}

// Collection is a single named, queryable set of records.  It
// includes the Source capability plus mutation operations.
type Collection interface {
	Source

	// Name returns the name of this collection.
	Name() string

	// Config returns the current configuration of this collection.
	Config() (Config, error)

	// AddRecord stores one record.  Records have no identity
	// beyond their field values; adding the same record twice
	// stores it twice.
	AddRecord(ctx context.Context, rec Record) error

	// DeleteRecords deletes the records matching a selection.  A
	// zero Selection deletes every record in the collection.  On
	// success it returns the number of records actually deleted.
	DeleteRecords(ctx context.Context, sel Selection) (int, error)
}
