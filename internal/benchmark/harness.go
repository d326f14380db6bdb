// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package benchmark provides a small harness for timing the validators
// against synthetic workloads and summarizing the results.
package benchmark

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// BenchCase runs iters validations and returns the first error encountered.
type BenchCase func(ctx context.Context, iters int) error

// CaseDefinition couples a case with its iteration count, the total data
// size it covers per run (for throughput reporting) and its target runtime.
type CaseDefinition struct {
	Bench   BenchCase
	Count   int
	Size    int
	Runtime time.Duration

	startAt time.Time
}

// Run executes the case repeatedly until its target runtime and minimum
// trial count are both satisfied, collecting per-trial timings.
func (c *CaseDefinition) Run(ctx context.Context) *BenchResult {
	out := &BenchResult{
		Trials:     1,
		DataSize:   c.Size,
		Name:       c.Name(),
		Operations: c.Count,
	}
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, ExecutionTimeout)
	defer cancel()

	c.startAt = time.Now()
	for {
		if time.Since(c.startAt) > c.Runtime {
			if out.Trials >= MinIterations {
				break
			} else if ctx.Err() != nil {
				break
			}
		}

		res := Result{
			Iterations: c.Count,
		}
		runStartAt := time.Now()
		res.Error = c.Bench(ctx, c.Count)
		res.Duration = time.Since(runStartAt)

		if res.Error == context.Canceled {
			break
		}

		out.Trials++
		out.Raw = append(out.Raw, res)
	}
	out.Duration = time.Since(c.startAt)

	return out
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("name=%s, count=%d, runtime=%s timeout=%s",
		c.Name(), c.Count, c.Runtime, ExecutionTimeout)
}

func (c *CaseDefinition) Name() string { return getName(c.Bench) }

func getName(i interface{}) string {
	n := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	parts := strings.Split(n, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return n
}

// AllCases returns the standard set of validation benchmark cases.
func AllCases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   ValidateFlatDocument,
			Count:   tenThousand,
			Size:    len(flatDocument) * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ValidateDeepDocument,
			Count:   tenThousand,
			Size:    len(deepDocument) * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ValidateLargeBinary,
			Count:   thousand,
			Size:    len(largeBinary) * thousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ValidateColumnBuffer,
			Count:   tenThousand,
			Size:    len(columnBuffer) * tenThousand,
			Runtime: MinimumRuntime,
		},
	}
}
