// Statistics for collection objects.
//
// Copyright 2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package collection

import (
	"context"
	"sort"
)

// SummaryRecord is a single piece of summary data, recording how many
// records were in some collection.
type SummaryRecord struct {
	Collection string
	Count      int
}

// Summary is a summary of record counts for some part of the system.
// The records are in no particular order.
type Summary []SummaryRecord

// Sort sorts the records of a summary in place.
func (s Summary) Sort() {
	less := func(i, j int) bool {
		return s[i].Collection < s[j].Collection
	}
	sort.Slice(s, less)
}

// Summarizable describes catalogs that can be summarized.  The
// summary is not required to have exact counts of records; counts may
// be rounded, delayed, served from cache, and so on.
type Summarizable interface {
	Summarize() (Summary, error)
}

// Summarize builds a summary for any catalog by counting each of its
// collections in turn.  Backends with a cheaper way to produce the
// same numbers should implement Summarizable directly.
func Summarize(cat Catalog) (Summary, error) {
	names, err := cat.CollectionNames()
	if err != nil {
		return nil, err
	}
	summary := make(Summary, 0, len(names))
	for _, name := range names {
		coll, err := cat.Collection(name)
		if err != nil {
			if _, gone := err.(ErrNoSuchCollection); gone {
				continue
			}
			return nil, err
		}
		count, err := coll.Count(context.Background(), Selection{})
		if err != nil {
			return nil, err
		}
		summary = append(summary, SummaryRecord{Collection: name, Count: count})
	}
	return summary, nil
}
