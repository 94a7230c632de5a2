// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"github.com/diffeo/go-collection/collection"
	"sort"
	"strings"
)

type memCollection struct {
	catalog *memCatalog
	name    string
	config  collection.Config
	records []collection.Record
	deleted bool
}

func (c *memCollection) Catalog() *memCatalog {
	return c.catalog
}

func (c *memCollection) Name() string {
	return c.name
}

func (c *memCollection) Config() (collection.Config, error) {
	globalLock(c)
	defer globalUnlock(c)

	if c.deleted {
		return collection.Config{}, collection.ErrGone
	}
	return c.config, nil
}

func (c *memCollection) AddRecord(ctx context.Context, rec collection.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	globalLock(c)
	defer globalUnlock(c)

	if c.deleted {
		return collection.ErrGone
	}
	// Copy the record so later caller mutation cannot reach into
	// the store.
	stored := make(collection.Record, len(rec))
	for field, value := range rec {
		stored[field] = value
	}
	c.records = append(c.records, stored)
	return nil
}

func (c *memCollection) DeleteRecords(ctx context.Context, sel collection.Selection) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	globalLock(c)
	defer globalUnlock(c)

	if c.deleted {
		return 0, collection.ErrGone
	}
	kept := c.records[:0]
	deleted := 0
	for _, rec := range c.records {
		if sel.Match(rec) {
			deleted++
		} else {
			kept = append(kept, rec)
		}
	}
	c.records = kept
	return deleted, nil
}

func (c *memCollection) Count(ctx context.Context, sel collection.Selection) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	globalLock(c)
	defer globalUnlock(c)

	if c.deleted {
		return 0, collection.ErrGone
	}
	count := 0
	for _, rec := range c.records {
		if sel.Match(rec) {
			count++
		}
	}
	return count, nil
}

func (c *memCollection) Fetch(ctx context.Context, sel collection.Selection, keys []collection.SortKey, offset, limit int) ([]collection.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	globalLock(c)
	defer globalUnlock(c)

	if c.deleted {
		return nil, collection.ErrGone
	}

	matched := make([]collection.Record, 0, len(c.records))
	for _, rec := range c.records {
		if sel.Match(rec) {
			matched = append(matched, rec)
		}
	}

	// Stable sort so that ties keep insertion order; this is what
	// makes repeated fetches of adjacent pages consistent.
	sort.SliceStable(matched, func(i, j int) bool {
		return recordLess(matched[i], matched[j], keys)
	})

	if offset >= len(matched) {
		return []collection.Record{}, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	// Copy the records themselves, not just the slice, so caller
	// mutation cannot reach back into the store.  Mirrors the copy
	// AddRecord makes on the way in.
	out := make([]collection.Record, len(matched))
	for i, rec := range matched {
		dup := make(collection.Record, len(rec))
		for field, value := range rec {
			dup[field] = value
		}
		out[i] = dup
	}
	return out, nil
}

// recordLess orders two records by a sequence of sort keys.  A record
// missing the field sorts after one that has it, regardless of
// direction; two numeric values compare numerically, anything else
// compares on its string form, case-insensitively.
func recordLess(a, b collection.Record, keys []collection.SortKey) bool {
	for _, key := range keys {
		av := a[key.Field]
		bv := b[key.Field]
		if (av == nil) != (bv == nil) {
			// Missing fields sort last, regardless of
			// direction.
			return bv == nil
		}
		cmp := compareField(av, bv)
		if cmp == 0 {
			continue
		}
		if key.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func compareField(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}

	if na, aIsNumber := asNumber(a); aIsNumber {
		if nb, bIsNumber := asNumber(b); bIsNumber {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}

	sa := strings.ToLower(collection.FieldString(a))
	sb := strings.ToLower(collection.FieldString(b))
	return strings.Compare(sa, sb)
}

func asNumber(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
