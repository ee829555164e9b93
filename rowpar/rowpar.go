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

// Package rowpar implements the row-parallel mapper (component L): a
// bounded-order parallel map over (index, record) pairs whose reorder
// buffer emits outputs strictly in input order, used by filter and
// search (§4.K). Backpressure comes from the channels'
// fixed capacity; cancellation propagates on the first worker error
// via golang.org/x/sync/errgroup, the way the teacher's driver package
// fans work out across goroutines and waits on the first error.
package rowpar

import (
	"context"
	"fmt"

	"github.com/pilosa/pilosa/roaring"
	"golang.org/x/sync/errgroup"
)

// Item is one input record paired with its position in the stream.
type Item struct {
	Index  int
	Record [][]byte
}

// Result is one worker's output, still tagged with its input index so
// the reorder buffer knows where it belongs.
type Result struct {
	Index  int
	Output interface{}
}

// Func computes one item's output; workers invoke it concurrently, so
// it must not mutate shared state outside what it returns.
type Func func(ctx context.Context, item Item) (interface{}, error)

// Map runs fn over every item read from in using workerCount
// goroutines, and returns their outputs on the returned channel in
// strict input order. The returned channel is closed after every
// input has been emitted, or early if ctx is canceled or a worker
// returns an error (surfaced via the returned error, after Map's
// internal errgroup.Wait()). bufSize is the capacity of the workers'
// result channel and of the returned channel, which is where
// backpressure comes from: a slow consumer stalls workers once both
// channels are full. Results that arrive ahead of a missing earlier
// index wait in the reorder buffer's pending map, which has no size
// bound.
func Map(ctx context.Context, in <-chan Item, workerCount, bufSize int, fn Func) (<-chan Result, func() error) {
	if workerCount < 1 {
		workerCount = 1
	}
	if bufSize < 1 {
		bufSize = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	rawOut := make(chan Result, bufSize)
	out := make(chan Result, bufSize)

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case item, ok := <-in:
					if !ok {
						return nil
					}
					output, err := fn(gctx, item)
					if err != nil {
						return err
					}
					select {
					case rawOut <- Result{Index: item.Index, Output: output}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(rawOut)
	}()

	go reorder(rawOut, out)

	wait := func() error { return g.Wait() }
	return out, wait
}

// reorder buffers out-of-order results in a pending map and emits them
// in strictly ascending index order, the way a single-threaded
// pipeline's output would read. emitted tracks which indices have
// already been forwarded downstream as a roaring bitmap: an
// over-capacity int-indexed structure would work identically, but the
// bitmap is the idiomatic compact representation for a monotonically
// growing set of small integers and gives a cheap assertion surface
// (emitted.Contains(idx) must be false before Add(idx)).
func reorder(in <-chan Result, out chan<- Result) {
	defer close(out)

	pending := make(map[int]Result)
	emitted := roaring.NewBitmap()
	next := 0

	for r := range in {
		pending[r.Index] = r
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			if emitted.Contains(uint64(next)) {
				panic(fmt.Sprintf("rowpar: index %d emitted twice", next))
			}
			delete(pending, next)
			emitted.Add(uint64(next))
			out <- ready
			next++
		}
	}
}
