// Copyright 2016-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diffeo/go-collection/collection"
)

// cachedCollection wraps a backend collection with a per-collection
// result cache.  The wrapper itself is cached by name, so its result
// cache survives repeated Catalog.Collection() lookups.
type cachedCollection struct {
	cache   *cache
	name    string
	lock    sync.RWMutex
	backend collection.Collection
	results *lru
}

// result is a cached Count or Fetch outcome together with its expiry.
type result struct {
	value   interface{}
	expires time.Time
}

// update swaps in a fresh backend collection object after a new
// catalog lookup.
func (c *cachedCollection) update(coll collection.Collection) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.backend = coll
}

func (c *cachedCollection) underlying() collection.Collection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.backend
}

func (c *cachedCollection) Name() string {
	return c.name
}

func (c *cachedCollection) Config() (collection.Config, error) {
	return c.underlying().Config()
}

func (c *cachedCollection) AddRecord(ctx context.Context, rec collection.Record) error {
	err := c.underlying().AddRecord(ctx, rec)
	if err == nil {
		c.results.Purge()
	}
	return err
}

func (c *cachedCollection) DeleteRecords(ctx context.Context, sel collection.Selection) (int, error) {
	deleted, err := c.underlying().DeleteRecords(ctx, sel)
	if err == nil {
		c.results.Purge()
	}
	return deleted, err
}

func (c *cachedCollection) Count(ctx context.Context, sel collection.Selection) (int, error) {
	key := "count\x00" + signature(sel, nil, 0, 0)
	if value, ok := c.lookup(key); ok {
		return value.(int), nil
	}
	count, err := c.underlying().Count(ctx, sel)
	if err != nil {
		return 0, err
	}
	c.store(key, count)
	return count, nil
}

func (c *cachedCollection) Fetch(ctx context.Context, sel collection.Selection, keys []collection.SortKey, offset, limit int) ([]collection.Record, error) {
	key := "fetch\x00" + signature(sel, keys, offset, limit)
	if value, ok := c.lookup(key); ok {
		return value.([]collection.Record), nil
	}
	records, err := c.underlying().Fetch(ctx, sel, keys, offset, limit)
	if err != nil {
		return nil, err
	}
	c.store(key, records)
	return records, nil
}

// lookup finds a live cached result, dropping it if it has expired.
func (c *cachedCollection) lookup(key string) (interface{}, bool) {
	cached, present := c.results.Get(key)
	if !present {
		return nil, false
	}
	r := cached.(result)
	if !c.cache.clock.Now().Before(r.expires) {
		c.results.Remove(key)
		return nil, false
	}
	return r.value, true
}

func (c *cachedCollection) store(key string, value interface{}) {
	c.results.Put(key, result{
		value:   value,
		expires: c.cache.clock.Now().Add(c.cache.ttl),
	})
}

// signature builds a deterministic cache key for a query.  Filter
// fields are sorted so that equal selections built in different map
// orders share an entry.
func signature(sel collection.Selection, keys []collection.SortKey, offset, limit int) string {
	var b strings.Builder

	fields := make([]string, 0, len(sel.Filters))
	for field := range sel.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(&b, "f:%q=%q;", field, sel.Filters[field])
	}

	if sel.SearchTerm != "" {
		fmt.Fprintf(&b, "q:%q;", sel.SearchTerm)
		for _, field := range sel.SearchFields {
			fmt.Fprintf(&b, "qf:%q;", field)
		}
	}

	for _, key := range keys {
		fmt.Fprintf(&b, "s:%q;", key.String())
	}
	fmt.Fprintf(&b, "w:%d,%d", offset, limit)
	return b.String()
}
