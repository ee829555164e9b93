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

package counter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExactCounterTopKHeapPath(t *testing.T) {
	c := NewExact()
	for key, n := range map[string]uint64{"a": 5, "b": 5, "c": 3, "d": 1, "e": 9, "f": 2} {
		c.Add(key, n)
	}
	total, top := c.IntoTotalAndTopK(2)
	require.Equal(t, uint64(25), total)
	require.Equal(t, []Entry{{Key: "e", Count: 9}, {Key: "b", Count: 5}}, top)
}

func TestExactCounterTopKSortPath(t *testing.T) {
	c := NewExact()
	c.Inc("x")
	c.Inc("x")
	c.Inc("y")
	_, top := c.IntoTotalAndTopK(10)
	require.Equal(t, []Entry{{Key: "x", Count: 2}, {Key: "y", Count: 1}}, top)
}

func TestExactCounterTieBreakByDescendingKey(t *testing.T) {
	c := NewExact()
	c.Inc("alpha")
	c.Inc("beta")
	c.Inc("gamma")
	_, top := c.IntoTotalAndTopK(3)
	require.Equal(t, []string{"gamma", "beta", "alpha"}, []string{top[0].Key, top[1].Key, top[2].Key})
}

func TestExactCounterTopKZeroMeansUnbounded(t *testing.T) {
	c := NewExact()
	c.Inc("a")
	c.Inc("a")
	c.Inc("b")
	_, top := c.IntoTotalAndTopK(0)
	require.Equal(t, []Entry{{Key: "a", Count: 2}, {Key: "b", Count: 1}}, top)
}

func TestExactCounterMergeIsAssociative(t *testing.T) {
	a := NewExact()
	a.Inc("x")
	b := NewExact()
	b.Add("x", 2)
	b.Inc("y")
	a.Merge(b)
	require.Equal(t, uint64(3), a.Count("x"))
	require.Equal(t, uint64(1), a.Count("y"))
	require.Equal(t, uint64(4), a.Total())
}

func TestApproxCounterEvictsMinimum(t *testing.T) {
	a := NewApprox(2)
	a.Insert("a")
	a.Insert("a")
	a.Insert("b")
	// capacity 2: "c" evicts "b" (count 1) and inherits its count, so "c"
	// estimates 2 and ties with "a"; the descending-key tie-break puts "c" first
	a.Insert("c")
	top := a.IntoTopK()
	require.Len(t, top, 2)
	require.Equal(t, "c", top[0].Key)
	require.Equal(t, uint64(2), top[0].Count)
}

func TestApproxCounterMerge(t *testing.T) {
	a := NewApprox(3)
	a.Insert("x")
	a.Insert("x")
	b := NewApprox(3)
	b.Insert("x")
	b.Insert("y")
	a.Merge(b)
	top := a.IntoTopK()
	require.Equal(t, "x", top[0].Key)
	require.Equal(t, uint64(3), top[0].Count)
}
