// Copyright 2016-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache.  I know of at least two
// other implementations, though it is a pretty simple concept; I'm
// dissatisfied with the ones I've looked at in several small ways.
// Storing plain string keys with opaque values, and letting the
// caller decide what staleness means, keeps this one small.

import (
	"container/list"
	"sync"
)

// lruEntry is what actually lives in the eviction list.
type lruEntry struct {
	key   string
	value interface{}
}

// lru is a least-recently-used cache with a fixed capacity.  The
// cache can be safely accessed from multiple goroutines.
type lru struct {
	size      int
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int) *lru {
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an item from the cache, marking it recently used.
func (lru *lru) Get(key string) (interface{}, bool) {
	// This sadly happens under a writer lock, since we need to
	// move the item to the back of the list if it is present
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(lruEntry).value, true
	}
	return nil, false
}

// Peek looks for an item in the cache and returns it if present.
// This runs under a reader lock, and so can run concurrently with
// itself but not with calls to Put or Get.  This does not affect the
// recency of the item.
func (lru *lru) Peek(key string) (interface{}, bool) {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[key]; present {
		return element.Value.(lruEntry).value, true
	}
	return nil, false
}

// Put adds an item to the LRU cache, possibly evicting something.
func (lru *lru) Put(key string, value interface{}) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Are we just updating an existing item?
	if element, present := lru.index[key]; present {
		element.Value = lruEntry{key: key, value: value}
		lru.evictList.MoveToBack(element)
		return
	}

	element := lru.evictList.PushBack(lruEntry{key: key, value: value})
	lru.index[key] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		entry := head.Value.(lruEntry)
		delete(lru.index, entry.key)
		lru.evictList.Remove(head)
	}
}

// Remove takes an item out of the cache.  It does nothing if that
// key does not exist.
func (lru *lru) Remove(key string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		delete(lru.index, key)
		lru.evictList.Remove(element)
	}
}

// Purge empties the cache entirely.
func (lru *lru) Purge() {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	lru.evictList.Init()
	lru.index = make(map[string]*list.Element)
}

// Len returns the number of items currently cached.
func (lru *lru) Len() int {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	return len(lru.index)
}
