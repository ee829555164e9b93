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

package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnBasicNumeric(t *testing.T) {
	c := NewColumn("x", Options{Numbers: true, Frequencies: true})
	for _, v := range []string{"1", "2", "3", "4", ""} {
		c.Update(v)
	}
	row := c.Finalize()
	require.Equal(t, int64(4), row.Count)
	require.Equal(t, int64(1), row.CountEmpty)
	require.Equal(t, typeInteger, row.Type)
	require.Equal(t, float64(10), row.Sum.Float())
	require.Equal(t, float64(2.5), row.Mean.Float())
	require.Equal(t, float64(2.5), row.Median.Float())
	require.Equal(t, int64(4), row.Cardinality.Int())
}

func TestColumnMixedTypesReportsWidestRank(t *testing.T) {
	c := NewColumn("x", Options{})
	c.Update("1")
	c.Update("1.5")
	c.Update("abc")
	row := c.Finalize()
	require.Equal(t, typeString, row.Type)
	require.ElementsMatch(t, []string{typeInteger, typeFloat, typeString}, row.Types)
}

func TestColumnUnrequestedOptionsStayEmpty(t *testing.T) {
	c := NewColumn("x", Options{})
	c.Update("1")
	c.Update("2")
	row := c.Finalize()
	require.True(t, row.Cardinality.IsNone())
	require.True(t, row.Q1.IsNone())
	require.True(t, row.Mode.IsNone())
}

func TestColumnMergeMatchesSerialAccumulation(t *testing.T) {
	serial := NewColumn("x", Options{})
	for _, v := range []string{"1", "2", "3", "4", "5"} {
		serial.Update(v)
	}

	a := NewColumn("x", Options{})
	for _, v := range []string{"1", "2"} {
		a.Update(v)
	}
	b := NewColumn("x", Options{})
	for _, v := range []string{"3", "4", "5"} {
		b.Update(v)
	}
	a.Merge(b)

	rs, ra := serial.Finalize(), a.Finalize()
	require.Equal(t, rs.Sum.Float(), ra.Sum.Float())
	require.InDelta(t, rs.Variance.Float(), ra.Variance.Float(), 1e-9)
	require.Equal(t, rs.Min.Int(), ra.Min.Int())
	require.Equal(t, rs.Max.Int(), ra.Max.Int())
}

func TestColumnLexAndLengthExtremes(t *testing.T) {
	c := NewColumn("x", Options{})
	c.Update("banana")
	c.Update("apple")
	c.Update("cherry")
	row := c.Finalize()
	require.Equal(t, "apple", row.LexFirst)
	require.Equal(t, "cherry", row.LexLast)
	require.Equal(t, 5, row.MinLength)
	require.Equal(t, 6, row.MaxLength)
}
