// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/restdata"
	"github.com/gorilla/mux"
)

// errUnmarshal is returned if the put/post contract is violated and
// a handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// reqContext holds all of the information and objects that can be
// extracted from a single request.
type reqContext struct {
	// Ctx is the request's own context, passed through to the
	// backend so that abandoned requests stop their queries.
	Ctx context.Context

	// CollectionName is the decoded collection name from the URL,
	// if the route has one.
	CollectionName string

	// Collection is the named collection, if the route has a
	// collection name and it exists.
	Collection collection.Collection

	// RawQuery is the undecoded query string of the request.
	RawQuery string
}

func (api *restAPI) Context(req *http.Request) (ctx *reqContext, err error) {
	ctx = &reqContext{
		Ctx:      req.Context(),
		RawQuery: req.URL.RawQuery,
	}
	vars := mux.Vars(req)

	if name, present := vars["collection"]; present {
		ctx.CollectionName, err = restdata.MaybeDecodeName(name)
		if err != nil {
			return ctx, restdata.ErrBadRequest{Err: err}
		}
		ctx.Collection, err = api.Catalog.Collection(ctx.CollectionName)
		if _, missing := err.(collection.ErrNoSuchCollection); missing {
			if req.Method == "PUT" {
				// PUT creates the collection; the
				// handler only needs the name
				err = nil
			} else {
				err = restdata.ErrNotFound{Err: err}
			}
		}
	}

	return
}

// Config returns the configuration of the context's collection.
func (ctx *reqContext) Config() (collection.Config, error) {
	cfg, err := ctx.Collection.Config()
	if err == collection.ErrGone {
		// The collection disappeared between the route lookup
		// and now
		err = restdata.ErrNotFound{
			Err: collection.ErrNoSuchCollection{Name: ctx.CollectionName},
		}
	}
	return cfg, err
}
