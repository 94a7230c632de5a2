// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"time"

	"github.com/diffeo/go-collection/collection"
	"github.com/prometheus/client_golang/prometheus"
)

var collectionRecords = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "diffeo",
		Subsystem: "collection",
		Name:      "records",
		Help:      "Number of records per collection",
	},
	[]string{
		"collection",
	},
)

func init() {
	prometheus.MustRegister(collectionRecords)
}

func observe(catalog collection.Catalog) {
	for {
		var summary collection.Summary
		if s, ok := catalog.(collection.Summarizable); ok {
			summary, _ = s.Summarize()
		} else {
			summary, _ = collection.Summarize(catalog)
		}
		for _, record := range summary {
			collectionRecords.With(prometheus.Labels{
				"collection": record.Collection,
			}).Set(float64(record.Count))
		}
		time.Sleep(15 * time.Second)
	}
}
