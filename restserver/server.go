// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/restdata"
	"github.com/gorilla/mux"
)

// NewRouter creates a new HTTP handler that processes all collection
// requests.  All collection resources are under the URL path root,
// e.g. /collection/tickets.  For more control over this setup,
// create a mux.Router and call PopulateRouter instead.
func NewRouter(cat collection.Catalog) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, cat)
	return r
}

// PopulateRouter adds collection routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the collection interface under a subpath:
//
//     import "github.com/diffeo/go-collection/memory"
//     import "github.com/gorilla/mux"
//     r := mux.NewRouter()
//     s := r.PathPrefix("/api").Subrouter()
//     cat := memory.New()
//     PopulateRouter(s, cat)
func PopulateRouter(r *mux.Router, cat collection.Catalog) {
	api := &restAPI{Catalog: cat, Router: r}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the collection REST API.
type restAPI struct {
	Catalog collection.Catalog
	Router  *mux.Router
}

// PopulateRouter adds all collection URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	api.PopulateCollection(r)
	r.Path("/").Name("root").Handler(&resourceHandler{
		Representation: restdata.RootData{},
		Context:        api.Context,
		Get:            api.RootDocument,
	})
}

func (api *restAPI) RootDocument(ctx *reqContext) (interface{}, error) {
	resp := restdata.RootData{}
	err := buildURLs(api.Router).
		URL(&resp.CollectionsURL, "collections").
		Template(&resp.CollectionURL, "collection", "collection").
		Error
	return resp, err
}
