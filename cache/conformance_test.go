// Copyright 2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache_test

//go:generate cptest --output sourcetest_test.go --package cache_test github.com/diffeo/go-collection/collection/sourcetest

import (
	"github.com/diffeo/go-collection/cache"
	"github.com/diffeo/go-collection/collection/sourcetest"
	"github.com/diffeo/go-collection/memory"
)

func init() {
	sourcetest.Catalog = cache.New(memory.New())
}
