// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parallel implements the multi-file parallel reducer
// (component I): a thread pool sized to the input path count fans a
// per-file worker out across paths, each producing a partial result
// that merges into one shared, mutex-guarded accumulator (§4.I).
package parallel

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// hashLogger is satisfied by an Accumulator that can report a
// structural hash per tracked key (e.g. aggregation.GroupKey.Hash()
// via Grouped.KeyHashes()), so the driver can correlate a file's
// merged groups in its log line without the caller threading any
// extra plumbing through FileFunc.
type hashLogger interface {
	KeyHashes() []uint64
}

// Accumulator is a partial per-file result that knows how to fold
// another instance of itself into its own state. Aggregation plans,
// stats tables and frequency counters all satisfy this (their own
// Merge methods are associative-commutative, as §4.E/F/G require).
type Accumulator interface {
	Merge(other Accumulator)
}

// FileFunc processes one input path end to end and returns its
// partial result.
type FileFunc func(ctx context.Context, path string) (Accumulator, error)

// Driver runs FileFunc across a list of paths with a bounded worker
// pool, merging every partial result into one shared accumulator
// behind a single mutex, touched only once per file to minimize
// contention (§5: "Shared-resource policy").
type Driver struct {
	log *logrus.Entry
}

// New returns a driver that logs through log (or a default logger
// when log is nil).
func New(log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.New()
	}
	return &Driver{log: log.WithField("system", "parallel")}
}

// Run processes paths with up to threads concurrent workers, merging
// every partial result into initial (which Run mutates and returns).
// On the first worker error, remaining work is canceled and that
// error is returned; initial's state at that point is the merge of
// whichever files completed first (§5: "On first error, the parallel
// driver returns it").
func (d *Driver) Run(ctx context.Context, paths []string, threads int, initial Accumulator, fn FileFunc) (Accumulator, error) {
	if threads < 1 {
		threads = 1
	}
	if threads > len(paths) {
		threads = len(paths)
	}
	if threads < 1 {
		threads = 1
	}

	runID := "unknown"
	if id, err := uuid.NewV4(); err == nil {
		runID = id.String()
	}
	log := d.log.WithFields(logrus.Fields{"run_id": runID, "paths": len(paths), "threads": threads})
	log.Info("starting parallel run")

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, threads)
	var mu sync.Mutex

	for _, p := range paths {
		path := p
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			span := opentracing.StartSpan("parallel.file")
			span.SetTag("path", path)
			span.SetTag("run_id", runID)
			defer span.Finish()

			partial, err := fn(gctx, path)
			if err != nil {
				log.WithFields(logrus.Fields{"path": path, "err": err}).Error("file processing failed")
				return err
			}

			mu.Lock()
			initial.Merge(partial)
			mu.Unlock()

			if hl, ok := partial.(hashLogger); ok {
				if hashes := hl.KeyHashes(); len(hashes) > 0 {
					log.WithFields(logrus.Fields{"path": path, "group_key_hashes": hashes}).Debug("merged grouped aggregation partial")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return initial, err
	}
	log.Info("parallel run complete")
	return initial, nil
}
