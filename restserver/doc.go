// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a collection catalog as a REST
// service.  The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.  In
// particular, note that the URLs described here are not actually part
// of the API.
//
// HTTP Considerations
//
// Clients should use the standard HTTP Accept: header to request a
// specific format; currently only the JSON representations are
// available.  See "MIME Types" below.
//
// This interface does not (currently) support HTTP caching or
// authentication headers.
//
// Code will generally follow conventions for the Github API as an
// established example; see https://developer.github.com/v3/ for
// details.
//
// MIME Types
//
// This interface understands MIME types as follows:
//
//     application/vnd.diffeo.collection.v1+json
//
// JSON representation of version 1 of this interface.
//
//     application/vnd.diffeo.collection+json
//     application/json
//     text/json
//
// JSON representation of latest version of this interface.
//
// URL Scheme
//
// Collections are addressed by name.  If the name is not URL-safe
// printable ASCII, it must be base64 encoded using the URL-safe
// alphabet (RFC 4648 section 5), with no padding, and adding an
// additional - at the front of the name: /collection/-Zm9v is the
// collection named "foo".  Correspondingly, a single - means
// "empty", and a name that begins with - must be base64 encoded.
//
// The following URLs are defined:
//
//     /
//     /collection
//     /collection/{collection}
//     /collection/{collection}/record
//
// The record endpoint accepts the query parameters of the query
// package on GET, returning one page of matching records; a record
// representation on POST; and filter parameters on DELETE, removing
// every matching record.
package restserver
