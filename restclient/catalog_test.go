// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

//go:generate cptest --output sourcetest_test.go --package restclient_test github.com/diffeo/go-collection/collection/sourcetest

import (
	"net/http/httptest"
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/collection/sourcetest"
	"github.com/diffeo/go-collection/memory"
	"github.com/diffeo/go-collection/restclient"
	"github.com/diffeo/go-collection/restserver"
)

// testBackend is the shared client-side catalog for this package's
// tests.
var testBackend collection.Catalog

func init() {
	// This sets up an object stack where the REST client code talks
	// to the REST server code, which points at an in-memory backend.
	memBackend := memory.New()
	router := restserver.NewRouter(memBackend)
	server := httptest.NewServer(router)
	backend, err := restclient.New(server.URL)
	if err != nil {
		panic(err)
	}
	testBackend = backend
	sourcetest.Catalog = backend
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New("")
	if err == nil {
		t.Fatal("Expected error when given empty URL.")
	}
}
