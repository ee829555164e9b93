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

// Package counter implements the exact and approximate frequency
// counters (component G): an exact hash-map counter with a dual-path
// top-k (heap-top for small k, sort-and-truncate otherwise) and a
// space-saving sketch for bounded-memory approximate counting (§4.G).
package counter

import (
	"container/heap"
	"sort"
)

// Entry is one counted key with its (exact or estimated) count.
type Entry struct {
	Key   string
	Count uint64
}

// ExactCounter is a hash-map key -> count, merge-able and capable of
// extracting the k largest entries deterministically regardless of
// insertion order.
type ExactCounter struct {
	counts map[string]uint64
	total  uint64
}

// NewExact returns an empty exact counter.
func NewExact() *ExactCounter {
	return &ExactCounter{counts: make(map[string]uint64)}
}

// Inc increments key's count by one.
func (c *ExactCounter) Inc(key string) { c.Add(key, 1) }

// Add increments key's count by n.
func (c *ExactCounter) Add(key string, n uint64) {
	c.counts[key] += n
	c.total += n
}

// Total returns the sum of every key's count.
func (c *ExactCounter) Total() uint64 { return c.total }

// Cardinality returns the number of distinct keys seen.
func (c *ExactCounter) Cardinality() int { return len(c.counts) }

// Count returns key's current count.
func (c *ExactCounter) Count(key string) uint64 { return c.counts[key] }

// Merge folds other's counts into c, key-wise; associative and
// commutative, so file-parallel partial counters can merge in any
// order (§4.I).
func (c *ExactCounter) Merge(other *ExactCounter) {
	for k, n := range other.counts {
		c.counts[k] += n
	}
	c.total += other.total
}

// less orders entries by count descending, tied keys by descending
// byte order — this tie-break is part of the contract so that
// parallel frequency outputs are deterministic regardless of which
// file's rows arrived first (§4.G).
func less(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Key > b.Key
}

// entryHeap is a min-heap ordered by `less` reversed, so the root is
// always the current weakest of the top-k candidates retained so far.
type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return less(h[j], h[i]) } // reversed: min-heap on `less`
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// IntoTotalAndTopK returns the counter's total and its k largest
// entries, most frequent first. When k is small relative to the
// number of distinct keys (k < n/2) it heap-tops in O(n log k);
// otherwise it sorts every entry and truncates, since a full sort is
// cheaper than maintaining a large heap (§4.G).
func (c *ExactCounter) IntoTotalAndTopK(k int) (uint64, []Entry) {
	n := len(c.counts)
	if k <= 0 || k > n {
		k = n
	}
	if k == 0 {
		return c.total, nil
	}

	if k < n/2 {
		h := make(entryHeap, 0, k)
		heap.Init(&h)
		for key, count := range c.counts {
			e := Entry{Key: key, Count: count}
			if h.Len() < k {
				heap.Push(&h, e)
				continue
			}
			if less(e, h[0]) {
				heap.Pop(&h)
				heap.Push(&h, e)
			}
		}
		out := make([]Entry, h.Len())
		for i := len(out) - 1; i >= 0; i-- {
			out[i] = heap.Pop(&h).(Entry)
		}
		return c.total, out
	}

	all := make([]Entry, 0, n)
	for key, count := range c.counts {
		all = append(all, Entry{Key: key, Count: count})
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	if k < len(all) {
		all = all[:k]
	}
	return c.total, all
}
