// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command bsonvalidate checks files (or stdin) containing a stream of BSON
// documents, or a single BSON column buffer, and reports what it found.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io/ioutil"
	"os"
	"runtime"

	"github.com/golang/snappy"
	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/ikmak/bson-validate/bson"
	"github.com/ikmak/bson-validate/internal/benchmark"
)

var log = logrus.New()

type config struct {
	MaxDepth    uint32 `toml:"max_depth"`
	Concurrency int    `toml:"concurrency"`
}

type fileReport struct {
	File      string `json:"file"`
	Documents int    `json:"documents,omitempty"`
	Bytes     int    `json:"bytes"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
}

func main() {
	err := mainReal()
	if err != nil {
		os.Stderr.Write([]byte(err.Error() + "\n"))
		os.Exit(-1)
	}
}

func mainReal() error {
	var (
		column     = flag.Bool("column", false, "validate inputs as BSON column buffers instead of document streams")
		compressed = flag.Bool("snappy", false, "snappy-decompress inputs before validating")
		jsonOut    = flag.Bool("json", false, "write a JSON report to stdout")
		bench      = flag.Bool("bench", false, "run the validation benchmark suite and exit")
		configPath = flag.String("config", "", "TOML config file (max_depth, concurrency)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.MaxDepth > 0 {
		bson.SetMaxNestingDepth(cfg.MaxDepth)
	}

	if *bench {
		return runBench(*jsonOut)
	}

	files := flag.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	reports := make([]fileReport, len(files))
	sem := make(chan struct{}, cfg.Concurrency)
	g, _ := errgroup.WithContext(context.Background())
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			rep, err := validateInput(name, *column, *compressed)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	invalid := 0
	for _, r := range reports {
		if !r.Valid {
			invalid++
		}
	}

	if *jsonOut {
		buf, err := json.Marshal(reports)
		if err != nil {
			return errors.Wrap(err, "encoding report")
		}
		if _, err := os.Stdout.Write(pretty.Pretty(buf)); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			entry := log.WithFields(logrus.Fields{
				"file":      r.File,
				"documents": r.Documents,
				"bytes":     r.Bytes,
			})
			if r.Valid {
				entry.Info("valid")
			} else {
				entry.WithField("error", r.Error).Error("invalid")
			}
		}
	}

	if invalid > 0 {
		return errors.Errorf("%d of %d inputs failed validation", invalid, len(files))
	}
	return nil
}

func loadConfig(path string) (config, error) {
	cfg := config{Concurrency: runtime.NumCPU()}
	if path == "" {
		return cfg, nil
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing config")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg, nil
}

// validateInput reads one input and validates it. The returned error covers
// I/O failures only; validation failures are recorded in the report.
func validateInput(name string, column, compressed bool) (fileReport, error) {
	data, err := readInput(name, compressed)
	if err != nil {
		return fileReport{}, err
	}

	rep := fileReport{File: name, Bytes: len(data)}
	if column {
		err = bson.Reader(data).ValidateColumn()
	} else {
		rep.Documents, err = validateStream(data)
	}
	if err != nil {
		rep.Error = err.Error()
		return rep, nil
	}
	rep.Valid = true
	return rep, nil
}

func readInput(name string, compressed bool) ([]byte, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = ioutil.ReadAll(os.Stdin)
	} else {
		data, err = ioutil.ReadFile(name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}

	if compressed {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, errors.Wrapf(err, "decompressing %s", name)
		}
	}
	return data, nil
}

func validateStream(data []byte) (int, error) {
	docs := 0
	for off := 0; off < len(data); {
		n, err := bson.Reader(data[off:]).Validate()
		if err != nil {
			return docs, errors.Wrapf(err, "document %d at offset %d", docs, off)
		}
		off += int(n)
		docs++
	}
	return docs, nil
}

func runBench(jsonOut bool) error {
	type caseReport struct {
		Name    string             `json:"name"`
		Metrics []benchmark.Metric `json:"metrics"`
	}

	ctx := context.Background()
	var reports []caseReport
	for _, c := range benchmark.AllCases() {
		log.WithField("case", c.Name()).Info("running benchmark case")
		res := c.Run(ctx)
		if res.HasErrors() {
			return errors.Errorf("benchmark case %s failed: %v", res.Name, res.ErrReport())
		}
		metrics, err := res.Report()
		if err != nil {
			return errors.Wrapf(err, "reporting case %s", res.Name)
		}
		reports = append(reports, caseReport{Name: res.Name, Metrics: metrics})
	}

	if jsonOut {
		buf, err := json.Marshal(reports)
		if err != nil {
			return errors.Wrap(err, "encoding report")
		}
		_, err = os.Stdout.Write(pretty.Pretty(buf))
		return err
	}

	for _, c := range reports {
		entry := log.WithField("case", c.Name)
		for _, m := range c.Metrics {
			entry = entry.WithField(m.Name, m.Value)
		}
		entry.Info("benchmark case complete")
	}
	return nil
}
