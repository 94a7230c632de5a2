// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"time"

	"github.com/diffeo/go-collection/collection"
	"github.com/diffeo/go-collection/restserver"
	"github.com/google/go-cloud/health"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// ServeHTTP runs the REST API on the specified local address.  This
// serves connections forever.  If reqLogger is not nil, every request
// is logged to it at debug level.
func ServeHTTP(catalog collection.Catalog, laddr string, reqLogger *logrus.Logger) {
	r := mux.NewRouter()
	restserver.PopulateRouter(r, catalog)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/healthz", healthHandler(catalog))

	n := negroni.New(negroni.NewRecovery())
	if reqLogger != nil {
		n.Use(requestLogger(reqLogger))
	}
	n.UseHandler(r)
	http.ListenAndServe(laddr, n)
}

// catalogChecker reports the backend healthy if it can list
// collection names.
type catalogChecker struct {
	catalog collection.Catalog
}

func (c catalogChecker) CheckHealth() error {
	_, err := c.catalog.CollectionNames()
	return err
}

func healthHandler(catalog collection.Catalog) http.Handler {
	handler := new(health.Handler)
	handler.Add(catalogChecker{catalog: catalog})
	return handler
}

func requestLogger(logger *logrus.Logger) negroni.Handler {
	return negroni.HandlerFunc(func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, r)
		res := rw.(negroni.ResponseWriter)
		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"url":      r.URL.String(),
			"status":   res.Status(),
			"size":     res.Size(),
			"duration": time.Since(start),
		}).Debug("Handled HTTP request")
	})
}
