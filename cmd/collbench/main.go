// Copyright 2016-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package collbench provides a load-generation tool for the
// collection query service.
package main

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/diffeo/go-collection/backend"
	"github.com/diffeo/go-collection/collection"
	"github.com/satori/go.uuid"
	"github.com/urfave/cli"
)

type benchWork struct {
	Catalog     collection.Catalog
	Collection  collection.Collection
	Concurrency int
}

func (bench *benchWork) Run(runner func()) {
	wg := sync.WaitGroup{}
	wg.Add(bench.Concurrency)
	for i := 0; i < bench.Concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
}

var bench benchWork

var addRecords = cli.Command{
	Name:  "add",
	Usage: "create many records",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of records to create",
		},
	},
	Action: func(c *cli.Context) {
		count := c.Int("count")
		numbers := make(chan int)
		go func() {
			for i := 1; i <= count; i++ {
				numbers <- i
			}
			close(numbers)
		}()
		states := []string{"open", "closed", "pending"}
		bench.Run(func() {
			ctx := context.Background()
			for i := <-numbers; i != 0; i = <-numbers {
				bench.Collection.AddRecord(ctx, collection.Record{
					"name":     uuid.NewV4().String(),
					"state":    states[i%len(states)],
					"priority": i % 5,
				})
			}
		})
	},
}

var runQueries = cli.Command{
	Name:  "query",
	Usage: "run many filtered, sorted queries",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of queries per worker",
		},
		cli.IntFlag{
			Name:  "page-size",
			Value: 25,
			Usage: "fetch this many records per query",
		},
	},
	Action: func(c *cli.Context) {
		count := c.Int("count")
		pageSize := c.Int("page-size")
		sel := collection.Selection{
			Filters: map[string]string{"state": "open"},
		}
		byName := []collection.SortKey{{Field: "name"}}
		bench.Run(func() {
			ctx := context.Background()
			for i := 0; i < count; i++ {
				total, err := bench.Collection.Count(ctx, sel)
				if err != nil {
					break
				}
				offset := 0
				if total > pageSize {
					offset = (i % (total / pageSize)) * pageSize
				}
				_, err = bench.Collection.Fetch(ctx, sel, byName, offset, pageSize)
				if err != nil {
					break
				}
			}
		})
	},
}

var clear = cli.Command{
	Name:  "clear",
	Usage: "delete all of the records",
	Action: func(c *cli.Context) {
		deleted, err := bench.Collection.DeleteRecords(context.Background(), collection.Selection{})
		if err == nil {
			fmt.Printf("deleted %v records\n", deleted)
		}
	},
}

func main() {
	backend := backend.Backend{Implementation: "memory"}
	app := cli.NewApp()
	app.Usage = "benchmark the collection query service"
	app.Flags = []cli.Flag{
		cli.GenericFlag{
			Name:  "backend",
			Value: &backend,
			Usage: "impl:[address] of collection backend",
		},
		cli.StringFlag{
			Name:  "collection",
			Value: "bench",
			Usage: "collection name to benchmark in",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many jobs in parallel",
		},
	}
	app.Commands = []cli.Command{
		addRecords,
		runQueries,
		clear,
	}
	app.Before = func(c *cli.Context) (err error) {
		bench.Catalog, err = backend.Catalog()
		if err != nil {
			return
		}

		bench.Collection, err = bench.Catalog.SetCollection(c.String("collection"), collection.Config{
			DefaultPageSize: 25,
			MaxPageSize:     500,
			KnownFields:     []string{"name", "state", "priority"},
		})
		if err != nil {
			return
		}

		bench.Concurrency = c.Int("concurrency")

		return
	}
	app.RunAndExitOnError()
}
