// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/query"
	"github.com/diffeo/go-collection/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) fillCollectionShort(name string, summary *restdata.CollectionShort) error {
	summary.Name = name
	return buildURLs(api.Router, "collection", name).
		URL(&summary.URL, "collection").
		Error
}

func (api *restAPI) fillCollection(coll collection.Collection, result *restdata.CollectionRepr) error {
	err := api.fillCollectionShort(coll.Name(), &result.CollectionShort)
	if err == nil {
		result.Config, err = coll.Config()
	}
	if err == nil {
		err = buildURLs(api.Router, "collection", coll.Name()).
			URL(&result.RecordsURL, "records").
			Error
	}
	return err
}

// CollectionList gets a list of all collections known in the system.
func (api *restAPI) CollectionList(ctx *reqContext) (interface{}, error) {
	names, err := api.Catalog.CollectionNames()
	if err != nil {
		return nil, err
	}
	result := restdata.CollectionList{}
	for _, name := range names {
		summary := restdata.CollectionShort{}
		err = api.fillCollectionShort(name, &summary)
		if err != nil {
			return nil, err
		}
		result.Collections = append(result.Collections, summary)
	}
	return result, nil
}

// CollectionPost creates a new collection (or reconfigures an
// existing one) from a posted representation.
func (api *restAPI) CollectionPost(ctx *reqContext, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.CollectionRepr)
	if !valid {
		return nil, errUnmarshal
	}
	coll, err := api.Catalog.SetCollection(req.Name, req.Config)
	if err != nil {
		return nil, badConfigIsBadRequest(err)
	}
	result := restdata.CollectionRepr{}
	err = api.fillCollection(coll, &result)
	if err != nil {
		return nil, err
	}
	return responseCreated{
		Location: result.URL,
		Body:     result,
	}, nil
}

// CollectionGet retrieves an existing collection.
func (api *restAPI) CollectionGet(ctx *reqContext) (interface{}, error) {
	result := restdata.CollectionRepr{}
	err := api.fillCollection(ctx.Collection, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CollectionPut creates or reconfigures the collection named in the
// URL.  A name in the body, if there is one, is ignored.
func (api *restAPI) CollectionPut(ctx *reqContext, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.CollectionRepr)
	if !valid {
		return nil, errUnmarshal
	}
	coll, err := api.Catalog.SetCollection(ctx.CollectionName, req.Config)
	if err != nil {
		return nil, badConfigIsBadRequest(err)
	}
	result := restdata.CollectionRepr{}
	err = api.fillCollection(coll, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CollectionDelete destroys an existing collection.
func (api *restAPI) CollectionDelete(ctx *reqContext) (interface{}, error) {
	return nil, api.Catalog.DestroyCollection(ctx.CollectionName)
}

// RecordQuery runs the request's query string against the
// collection's records and returns one page of results.
func (api *restAPI) RecordQuery(ctx *reqContext) (interface{}, error) {
	cfg, err := ctx.Config()
	if err != nil {
		return nil, err
	}
	descriptor, err := query.Parse(ctx.RawQuery, cfg)
	if err != nil {
		return nil, validationIsBadRequest(err)
	}
	page, err := query.Apply(ctx.Ctx, descriptor, ctx.Collection)
	if err != nil {
		return nil, err
	}
	return restdata.PageResponse{
		Items: page.Items,
		Pagination: restdata.PaginationMetadata{
			TotalItems: page.TotalItems,
			PageSize:   page.PageSize,
			PageCount:  page.PageCount,
			Page:       page.Page,
			Next:       restdata.OptionalString(page.Next),
			Previous:   restdata.OptionalString(page.Previous),
		},
	}, nil
}

// RecordPost adds a single record to the collection.
func (api *restAPI) RecordPost(ctx *reqContext, in interface{}) (interface{}, error) {
	rec, valid := in.(collection.Record)
	if !valid {
		return nil, errUnmarshal
	}
	return nil, ctx.Collection.AddRecord(ctx.Ctx, rec)
}

// RecordDelete bulk-deletes the records matching the request's query
// string.  Pagination parameters are accepted and validated but have
// no effect on what is deleted.
func (api *restAPI) RecordDelete(ctx *reqContext) (interface{}, error) {
	cfg, err := ctx.Config()
	if err != nil {
		return nil, err
	}
	descriptor, err := query.Parse(ctx.RawQuery, cfg)
	if err != nil {
		return nil, validationIsBadRequest(err)
	}
	deleted, err := ctx.Collection.DeleteRecords(ctx.Ctx, descriptor.Selection())
	if err != nil {
		return nil, err
	}
	return restdata.DeletedResponse{Deleted: deleted}, nil
}

// validationIsBadRequest wraps query validation failures so they map
// to a 400 status.
func validationIsBadRequest(err error) error {
	if verr, isValidation := err.(collection.ValidationError); isValidation {
		observeValidation(verr)
		return restdata.ErrBadRequest{Err: err}
	}
	return err
}

// badConfigIsBadRequest wraps configuration validation failures so
// they map to a 400 status.
func badConfigIsBadRequest(err error) error {
	if _, isBadConfig := err.(collection.ErrBadConfig); isBadConfig {
		return restdata.ErrBadRequest{Err: err}
	}
	return err
}

// PopulateCollection adds collection-specific routes to a router.
// r should be rooted at the root of the collection URL tree, e.g. "/".
func (api *restAPI) PopulateCollection(r *mux.Router) {
	r.Path("/collection").Name("collections").Handler(&resourceHandler{
		Representation: restdata.CollectionRepr{},
		Context:        api.Context,
		Get:            api.CollectionList,
		Post:           api.CollectionPost,
	})
	r.Path("/collection/{collection}").Name("collection").Handler(&resourceHandler{
		Representation: restdata.CollectionRepr{},
		Context:        api.Context,
		Get:            api.CollectionGet,
		Put:            api.CollectionPut,
		Delete:         api.CollectionDelete,
	})
	r.Path("/collection/{collection}/record").Name("records").Handler(&resourceHandler{
		Representation: collection.Record{},
		Context:        api.Context,
		Get:            api.RecordQuery,
		Post:           api.RecordPost,
		Delete:         api.RecordDelete,
	})
}
