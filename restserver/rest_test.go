// Regression tests for rest.go and the collection routes.
//
// Main tests are really by running the end-to-end path, using the
// sourcetest tests driven from restclient.  This only contains
// special-case bug tests.
//
// Copyright 2016-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/memory"
	"github.com/diffeo/go-collection/restdata"
	"github.com/stretchr/testify/assert"
)

func makeBackend(t *testing.T) collection.Catalog {
	backend := memory.New()
	coll, err := backend.SetCollection("tickets", collection.Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		KnownFields:     []string{"state", "name"},
	})
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	for _, state := range []string{"open", "open", "closed"} {
		err = coll.AddRecord(context.Background(),
			collection.Record{"state": state})
		if !assert.NoError(t, err) {
			t.FailNow()
		}
	}
	return backend
}

func doRequest(t *testing.T, handler http.Handler, method, target string) (*http.Response, restdata.ErrorResponse) {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	resp := w.Result()

	var errResp restdata.ErrorResponse
	if resp.StatusCode >= 400 {
		err := restdata.Decode(resp.Header.Get("Content-Type"),
			resp.Body, &errResp)
		assert.NoError(t, err)
	}
	return resp, errResp
}

func TestQueryPage(t *testing.T) {
	router := NewRouter(makeBackend(t))
	req := httptest.NewRequest("GET", "/collection/tickets/record?state=open", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, restdata.V1JSONMediaType,
		resp.Header.Get("Content-Type"))

	var page restdata.PageResponse
	err := restdata.Decode(resp.Header.Get("Content-Type"), resp.Body, &page)
	if assert.NoError(t, err) {
		assert.Equal(t, 2, page.Pagination.TotalItems)
		assert.Equal(t, 2, page.Pagination.PageCount)
		assert.Equal(t, 1, page.Pagination.Page)
		assert.Equal(t, 10, page.Pagination.PageSize)
		assert.Nil(t, page.Pagination.Next)
		assert.Nil(t, page.Pagination.Previous)
		assert.Len(t, page.Items, 2)
	}
}

func TestValidationStatus(t *testing.T) {
	router := NewRouter(makeBackend(t))
	resp, errResp := doRequest(t, router, "GET",
		"/collection/tickets/record?foo=1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unknown_parameter", errResp.Error.Code)
	if assert.Len(t, errResp.Error.Details, 1) {
		assert.Equal(t, "unknown_parameter", errResp.Error.Details[0].Code)
		assert.Equal(t, "foo", errResp.Error.Details[0].Target)
	}
	assert.NotEmpty(t, errResp.Error.EventID)
	assert.Equal(t, "GET|/collection/tickets/record?foo=1",
		errResp.Error.Target)
}

func TestOversizePageStatus(t *testing.T) {
	router := NewRouter(makeBackend(t))
	resp, errResp := doRequest(t, router, "GET",
		"/collection/tickets/record?page_size=500")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "page_size_too_large", errResp.Error.Code)
	if assert.Len(t, errResp.Error.Details, 1) {
		assert.Equal(t, "page_size_too_large",
			errResp.Error.Details[0].Code)
	}
}

func TestMissingCollectionStatus(t *testing.T) {
	router := NewRouter(makeBackend(t))
	resp, errResp := doRequest(t, router, "GET", "/collection/nope/record")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no_such_collection", errResp.Error.Code)
}

func TestUnsupportedMediaType(t *testing.T) {
	router := NewRouter(makeBackend(t))
	req := httptest.NewRequest("POST", "/collection/tickets/record",
		nil)
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Result().StatusCode)
}

type failResponseWriter struct {
	Headers    http.Header
	StatusCode int
}

func (rw *failResponseWriter) Header() http.Header {
	if rw.Headers == nil {
		rw.Headers = make(http.Header)
	}
	return rw.Headers
}

func (rw *failResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("foo")
}

func (rw *failResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
}

// TestDoubleFault checks that, if there is an error serializing a JSON
// response, it doesn't actually panic the process.
func TestDoubleFault(t *testing.T) {
	router := NewRouter(makeBackend(t))
	req := &http.Request{
		Method: http.MethodGet,
		URL: &url.URL{
			Path: "/collection/tickets",
		},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Close:      true,
		Host:       "localhost",
	}
	resp := &failResponseWriter{}
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
