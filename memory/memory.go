// Copyright 2017-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// the collection API.  There is no persistence in this backend, nor
// is there any sharing between processes.  The entire catalog is
// behind a single global semaphore to protect against concurrent
// updates; in some cases this can limit performance in the name of
// correctness.
//
// This is mostly intended as a simple reference implementation that
// can be used for testing, including in-process testing of
// higher-level components.  It is generally tuned for correctness,
// not performance or scalability.
package memory

import (
	"github.com/diffeo/go-collection/collection"
	"sync"
)

// New creates a new collection catalog that operates purely in
// memory.
func New() collection.Catalog {
	c := new(memCatalog)
	c.collections = make(map[string]*memCollection)
	return c
}

// lockable is a common interface for objects that need to take the
// global lock on the catalog state.
type lockable interface {
	// Catalog returns a pointer to the catalog object at the root
	// of this object tree.
	Catalog() *memCatalog
}

// globalLock locks the catalog object at the root of the object
// tree.  Pair this with globalUnlock, as
//
//     globalLock(self)
//     defer globalUnlock(self)
func globalLock(l lockable) {
	l.Catalog().sem.Lock()
}

// globalUnlock unlocks the catalog object at the root of the object
// tree.
func globalUnlock(l lockable) {
	l.Catalog().sem.Unlock()
}

// Catalog wrapper type:

type memCatalog struct {
	collections map[string]*memCollection
	sem         sync.Mutex
}

func (c *memCatalog) Catalog() *memCatalog {
	return c
}

func (c *memCatalog) Collection(name string) (collection.Collection, error) {
	globalLock(c)
	defer globalUnlock(c)

	coll := c.collections[name]
	if coll == nil {
		return nil, collection.ErrNoSuchCollection{Name: name}
	}
	return coll, nil
}

func (c *memCatalog) SetCollection(name string, config collection.Config) (collection.Collection, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	globalLock(c)
	defer globalUnlock(c)

	coll := c.collections[name]
	if coll == nil {
		coll = &memCollection{catalog: c, name: name}
		c.collections[name] = coll
	}
	coll.config = config
	return coll, nil
}

func (c *memCatalog) CollectionNames() ([]string, error) {
	globalLock(c)
	defer globalUnlock(c)

	names := make([]string, 0, len(c.collections))
	for name := range c.collections {
		names = append(names, name)
	}
	return names, nil
}

func (c *memCatalog) DestroyCollection(name string) error {
	globalLock(c)
	defer globalUnlock(c)

	coll := c.collections[name]
	if coll == nil {
		return collection.ErrNoSuchCollection{Name: name}
	}
	coll.deleted = true
	delete(c.collections, name)
	return nil
}

// Summarize counts the records in every collection.
func (c *memCatalog) Summarize() (collection.Summary, error) {
	globalLock(c)
	defer globalUnlock(c)

	summary := make(collection.Summary, 0, len(c.collections))
	for name, coll := range c.collections {
		summary = append(summary, collection.SummaryRecord{
			Collection: name,
			Count:      len(coll.records),
		})
	}
	return summary, nil
}
