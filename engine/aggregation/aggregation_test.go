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

package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-tabular-engine/engine/function"
	"github.com/dolthub/go-tabular-engine/engine/plan"
)

func intRows(values ...int64) []function.Record {
	rows := make([]function.Record, len(values))
	for i, v := range values {
		rows[i] = function.Record{[]byte(itoa(v))}
	}
	return rows
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func TestPlanSumMeanShareState(t *testing.T) {
	header := plan.Header{"x"}
	registry := function.NewRegistry()

	p, err := Compile("sum(x) as total, mean(x) as avg, count(x) as n", header, []string{"index"}, registry)
	require.NoError(t, err)
	require.Len(t, p.steps, 2) // sum/mean share one moment step; count is separate

	for _, row := range intRows(1, 2, 3, 4) {
		require.NoError(t, p.Update(row, nil))
	}

	vals := p.Finalize(false)
	require.Equal(t, []string{"total", "avg", "n"}, p.Names())
	require.Equal(t, float64(10), vals[0].Float())
	require.Equal(t, float64(2.5), vals[1].Float())
	require.Equal(t, int64(4), vals[2].Int())
}

func TestPlanMergeAssociative(t *testing.T) {
	header := plan.Header{"x"}
	registry := function.NewRegistry()

	tmpl, err := Compile("sum(x) as total, min(x) as lo, max(x) as hi", header, nil, registry)
	require.NoError(t, err)

	a := tmpl.Fresh()
	b := tmpl.Fresh()
	for _, row := range intRows(1, 2, 3) {
		require.NoError(t, a.Update(row, nil))
	}
	for _, row := range intRows(10, 20) {
		require.NoError(t, b.Update(row, nil))
	}
	a.Merge(b)

	vals := a.Finalize(true)
	require.Equal(t, float64(36), vals[0].Float())
	require.Equal(t, int64(1), vals[1].Int())
	require.Equal(t, int64(20), vals[2].Int())
}

func TestGroupedPreservesFirstInsertionOrder(t *testing.T) {
	header := plan.Header{"x"}
	registry := function.NewRegistry()
	tmpl, err := Compile("count(x) as n", header, nil, registry)
	require.NoError(t, err)

	g := NewGrouped(tmpl)
	rows := []struct {
		key string
		val int64
	}{
		{"b", 1}, {"a", 2}, {"b", 3}, {"c", 4},
	}
	for _, r := range rows {
		require.NoError(t, g.Update([][]byte{[]byte(r.key)}, intRows(r.val)[0], nil))
	}

	out := g.Finalize(false)
	require.Len(t, out, 3)
	require.Equal(t, "b", string(out[0].Key[0]))
	require.Equal(t, "a", string(out[1].Key[0]))
	require.Equal(t, "c", string(out[2].Key[0]))
	require.Equal(t, int64(2), out[0].Values[0].Int())
}

func TestClearResetsWithoutReallocatingSteps(t *testing.T) {
	header := plan.Header{"x"}
	registry := function.NewRegistry()
	p, err := Compile("sum(x) as total", header, nil, registry)
	require.NoError(t, err)

	for _, row := range intRows(1, 2, 3) {
		require.NoError(t, p.Update(row, nil))
	}
	steps := p.steps
	p.Clear()
	require.Same(t, &steps[0], &p.steps[0])
	vals := p.Finalize(false)
	require.True(t, vals[0].IsNone())
}

func TestGroupKeyHashStableAndOrderSensitive(t *testing.T) {
	a := GroupKey{[]byte("x"), []byte("y")}
	b := GroupKey{[]byte("x"), []byte("y")}
	c := GroupKey{[]byte("y"), []byte("x")}
	require.Equal(t, a.Hash(), b.Hash())
	require.NotEqual(t, a.Hash(), c.Hash())
}

func TestGroupedKeyHashesMatchInsertionOrder(t *testing.T) {
	header := plan.Header{"x"}
	registry := function.NewRegistry()
	tmpl, err := Compile("count(x) as n", header, nil, registry)
	require.NoError(t, err)

	g := NewGrouped(tmpl)
	require.NoError(t, g.Update([][]byte{[]byte("b")}, intRows(1)[0], nil))
	require.NoError(t, g.Update([][]byte{[]byte("a")}, intRows(2)[0], nil))

	hashes := g.KeyHashes()
	require.Len(t, hashes, 2)
	require.Equal(t, GroupKey{[]byte("b")}.Hash(), hashes[0])
	require.Equal(t, GroupKey{[]byte("a")}.Hash(), hashes[1])
}
