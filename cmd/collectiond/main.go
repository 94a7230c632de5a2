// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package collectiond provides the collection query daemon.  It
// serves the REST collection API over any of the storage backends,
// plus Prometheus metrics and a health check endpoint.  A YAML
// configuration file can declare collections to create at startup.
package main

import (
	"flag"
	"io/ioutil"

	"github.com/diffeo/go-collection/backend"
	"github.com/diffeo/go-collection/cache"
	"github.com/diffeo/go-collection/collection"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

func main() {
	var err error

	httpBind := flag.String("http", ":5980",
		"[ip]:port for HTTP REST interface")
	backend := backend.Backend{Implementation: "memory", Address: ""}
	flag.Var(&backend, "backend", "impl[:address] of the storage backend")
	config := flag.String("config", "", "collection configuration YAML file")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	flag.Parse()

	var gConfig configFile
	if *config != "" {
		gConfig, err = loadConfigYaml(*config)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("Could not load YAML configuration")
			return
		}
	}

	catalog, err := backend.Catalog()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create collection backend")
		return
	}
	catalog = cache.New(catalog)

	err = setupCollections(catalog, gConfig)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create configured collections")
		return
	}

	var reqLogger *logrus.Logger
	if *logRequests {
		stdlog := logrus.StandardLogger()
		reqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	go observe(catalog)
	ServeHTTP(catalog, *httpBind, reqLogger)
}

// configFile is the root of the daemon configuration file.  Each key
// under "collections" names a collection to create (or reconfigure)
// at startup; the values use the wire-format configuration keys.
type configFile struct {
	Collections map[string]map[string]interface{} `yaml:"collections"`
}

func loadConfigYaml(filename string) (configFile, error) {
	var result configFile
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}

func setupCollections(catalog collection.Catalog, gConfig configFile) error {
	for name, dict := range gConfig.Collections {
		cfg, err := collection.DecodeConfig(dict)
		if err != nil {
			return err
		}
		_, err = catalog.SetCollection(name, cfg)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"collection": name,
		}).Info("Configured collection")
	}
	return nil
}
