// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package collection

import (
	"errors"
	"fmt"
)

// ErrGone is returned from operations on a Collection object whose
// underlying collection has been destroyed.
var ErrGone = errors.New("Collection no longer exists")

// ErrWrongBackend is returned from functions that take two different
// collection objects and combine them if the two objects come from
// different backends.  This is impossible in ordinary usage.
var ErrWrongBackend = errors.New("Cannot combine collection objects from different backends")

// ErrNoSuchCollection is returned by Catalog.Collection() and similar
// functions that want to look up a collection, but cannot find it.
type ErrNoSuchCollection struct {
	Name string
}

func (err ErrNoSuchCollection) Error() string {
	return fmt.Sprintf("No such collection %v", err.Name)
}

// ErrBadConfig is returned by Catalog.SetCollection() if the provided
// configuration fails validation.
type ErrBadConfig struct {
	Reason string
}

func (err ErrBadConfig) Error() string {
	return "Invalid collection configuration: " + err.Reason
}

// ErrorKind identifies one of the fixed query validation failure
// modes.  Its text form is the snake_case code that appears on the
// wire.
type ErrorKind int

const (
	// UnknownParameter flags a query key that is neither a
	// recognized parameter nor a known field.
	UnknownParameter ErrorKind = iota

	// InvalidSortField flags a sort token naming a field outside
	// the known fields.
	InvalidSortField

	// PageSizeTooLarge flags a page_size beyond the configured
	// maximum.  Oversized requests fail rather than clamping so
	// that clients never silently receive fewer records than they
	// asked for.
	PageSizeTooLarge

	// UnknownField flags a fields or q_fields entry naming a
	// field outside the known fields.
	UnknownField

	// InvalidPageValue flags a page or page_size value that is
	// not a positive integer.
	InvalidPageValue
)

// ValidationError reports that a query string failed validation.  It
// is terminal for the request: no part of a query that produces a
// ValidationError is ever applied to a data source.
type ValidationError struct {
	// Kind identifies which rule was violated.
	Kind ErrorKind

	// Target names the offending parameter, field, or sort token.
	Target string
}

func (err ValidationError) Error() string {
	switch err.Kind {
	case UnknownParameter:
		return fmt.Sprintf("Unknown query parameter %q", err.Target)
	case InvalidSortField:
		return fmt.Sprintf("Cannot sort by unknown field %q", err.Target)
	case PageSizeTooLarge:
		return fmt.Sprintf("Requested page_size %v exceeds the maximum", err.Target)
	case UnknownField:
		return fmt.Sprintf("Unknown field %q", err.Target)
	case InvalidPageValue:
		return fmt.Sprintf("Parameter %q must be a positive integer", err.Target)
	}
	return fmt.Sprintf("Invalid query (%v)", err.Target)
}
