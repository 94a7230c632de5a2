// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a collection
// catalog based on command-line flags.
package backend

import (
	"errors"
	"strings"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/memory"
	"github.com/diffeo/go-collection/postgres"
	"github.com/diffeo/go-collection/restclient"
)

// Backend describes user-visible parameters to store collection data.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl:address of collection storage")
//         flag.Parse()
//         catalog, err := backend.Catalog()
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

// Catalog creates a new collection catalog.  This generally should be
// only called once.  If the backend has in-process state, such as a
// database connection pool or an in-memory store, calling this
// multiple times will create multiple copies of that state.  In
// particular, if b.Implementation is "memory", multiple calls to this
// will create multiple independent collection "worlds".
//
// Set() validates the implementation name, so if it accepted a
// string, the only errors out of this come from actually setting up
// the chosen backend, for instance a malformed database connection
// string.
func (b *Backend) Catalog() (collection.Catalog, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(b.Address)
	case "http", "https":
		return restclient.New(b.Implementation + ":" + b.Address)
	default:
		return nil, errors.New("unknown collection backend " + b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither this
// nor Catalog() attempts to validate the b.Address part of the string
// or attempts to actually make a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	impl := parts[0]
	switch impl {
	case "memory", "postgres", "http", "https":
	default:
		return errors.New("unknown collection backend " + impl)
	}
	b.Implementation = impl
	if len(parts) > 1 {
		b.Address = parts[1]
	} else {
		b.Address = ""
	}
	return nil
}
