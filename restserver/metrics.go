// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-collection/collection"
	"github.com/prometheus/client_golang/prometheus"
)

var validationFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "diffeo",
		Subsystem: "collection",
		Name:      "validation_failures",
		Help:      "Rejected queries by validation failure kind",
	},
	[]string{
		"kind",
	},
)

func init() {
	prometheus.MustRegister(validationFailures)
}

// observeValidation counts a query validation failure.
func observeValidation(verr collection.ValidationError) {
	kind, err := verr.Kind.MarshalText()
	if err != nil {
		kind = []byte("unknown")
	}
	validationFailures.With(prometheus.Labels{
		"kind": string(kind),
	}).Inc()
}
