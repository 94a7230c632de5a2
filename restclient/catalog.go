// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides a collection-compatible HTTP REST
// client that talks to the matching server in the "restserver"
// package.
//
// The server in github.com/diffeo/go-collection/cmd/collectiond can
// run a compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//     cat, err := restclient.New("http://localhost:5980/")
package restclient

import (
	"net/url"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/restdata"
)

// New creates a new collection catalog that speaks to an external
// REST server.
func New(baseURL string) (collection.Catalog, error) {
	var (
		err error
		url *url.URL
		cat *restCatalog
	)
	url, err = url.Parse(baseURL)
	if err == nil {
		cat = &restCatalog{
			resource: resource{URL: url},
		}
		err = cat.Refresh()
	}

	if err != nil {
		return nil, err
	}
	return cat, nil
}

type restCatalog struct {
	resource
	Representation restdata.RootData
}

func (cat *restCatalog) Refresh() error {
	cat.Representation = restdata.RootData{}
	return cat.Get(&cat.Representation)
}

func (cat *restCatalog) makeCollection(name string) (coll *restCollection, err error) {
	coll = &restCollection{name: name}
	coll.URL, err = cat.Template(cat.Representation.CollectionURL,
		map[string]interface{}{"collection": name})
	return
}

func (cat *restCatalog) Collection(name string) (collection.Collection, error) {
	coll, err := cat.makeCollection(name)
	if err == nil {
		err = coll.Refresh()
	}
	if err != nil {
		return nil, err
	}
	return coll, nil
}

func (cat *restCatalog) SetCollection(name string, config collection.Config) (collection.Collection, error) {
	coll, err := cat.makeCollection(name)
	if err == nil {
		in := restdata.CollectionRepr{Config: config}
		coll.Representation = restdata.CollectionRepr{}
		err = coll.Put(in, &coll.Representation)
	}
	if err != nil {
		return nil, err
	}
	return coll, nil
}

func (cat *restCatalog) CollectionNames() ([]string, error) {
	resp := restdata.CollectionList{}
	err := cat.GetFrom(cat.Representation.CollectionsURL,
		map[string]interface{}{}, &resp)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(resp.Collections))
	for i, short := range resp.Collections {
		names[i] = short.Name
	}
	return names, nil
}

func (cat *restCatalog) DestroyCollection(name string) error {
	coll, err := cat.makeCollection(name)
	if err == nil {
		err = coll.Delete()
	}
	return err
}
