// Copyright 2016-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides a read-through result cache for collection
// catalogs.  The cache wraps some other Catalog backend.  Catalog
// operations and record writes pass through to the underlying
// objects, but Count and Fetch results are remembered for a bounded
// time and served from memory on repeated queries.
//
// Writes made through the wrapper invalidate the affected
// collection's cached results immediately.  Writes made behind the
// wrapper's back (for instance, another process sharing the same
// database) are only picked up when entries expire, so the TTL bounds
// the staleness a client can observe.  Collections whose records
// change on every request gain nothing from this package; collection
// endpoints that are read-mostly, which is the common case, avoid
// repeating identical count and fetch work on every page request.
//
// The cache holds no locks while talking to the backend, so a slow
// database query does not serialize unrelated requests.
package cache

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-collection/collection"
)

// DefaultTTL is the result lifetime used by New.
const DefaultTTL = 30 * time.Second

// resultCacheSize bounds the number of distinct queries remembered
// per collection; collectionCacheSize bounds the number of
// collections with live caches.
const (
	resultCacheSize     = 128
	collectionCacheSize = 32
)

type cache struct {
	backend     collection.Catalog
	clock       clock.Clock
	ttl         time.Duration
	collections *lru
}

// New creates a new caching catalog, wrapping some other backend,
// with the default TTL and a real-time clock.
func New(backend collection.Catalog) collection.Catalog {
	return NewWithClock(backend, DefaultTTL, clock.New())
}

// NewWithClock creates a new caching catalog with an explicit result
// lifetime and time source.  Most application code should call New();
// this entry point is intended for tests that need to inject a mock
// clock.
func NewWithClock(backend collection.Catalog, ttl time.Duration, clk clock.Clock) collection.Catalog {
	return &cache{
		backend:     backend,
		clock:       clk,
		ttl:         ttl,
		collections: newLRU(collectionCacheSize),
	}
}

func (c *cache) Collection(name string) (collection.Collection, error) {
	// Always consult the backend, so that destroyed collections
	// fail here the same way they would without the cache; only
	// the result cache itself is reused across lookups.
	coll, err := c.backend.Collection(name)
	if err != nil {
		return nil, err
	}
	return c.wrap(name, coll), nil
}

func (c *cache) SetCollection(name string, config collection.Config) (collection.Collection, error) {
	coll, err := c.backend.SetCollection(name, config)
	if err != nil {
		return nil, err
	}
	c.invalidate(name)
	return c.wrap(name, coll), nil
}

func (c *cache) CollectionNames() ([]string, error) {
	return c.backend.CollectionNames()
}

func (c *cache) DestroyCollection(name string) error {
	err := c.backend.DestroyCollection(name)
	if err == nil {
		c.invalidate(name)
	}
	return err
}

// Summarize passes through to the backend if it can summarize
// itself, and otherwise counts each collection, which may itself be
// served from cached results.
func (c *cache) Summarize() (collection.Summary, error) {
	if s, ok := c.backend.(collection.Summarizable); ok {
		return s.Summarize()
	}
	return collection.Summarize(c)
}

// wrap pairs a backend collection with the (possibly pre-existing)
// result cache for its name.
func (c *cache) wrap(name string, coll collection.Collection) *cachedCollection {
	if cached, present := c.collections.Get(name); present {
		wrapper := cached.(*cachedCollection)
		wrapper.update(coll)
		return wrapper
	}
	wrapper := &cachedCollection{
		cache:   c,
		name:    name,
		backend: coll,
		results: newLRU(resultCacheSize),
	}
	c.collections.Put(name, wrapper)
	return wrapper
}

// invalidate drops every cached result for a collection.
func (c *cache) invalidate(name string) {
	if cached, present := c.collections.Peek(name); present {
		cached.(*cachedCollection).results.Purge()
	}
}
