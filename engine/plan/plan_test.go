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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-tabular-engine/engine/lang"
)

func TestHeaderIndexOfAndNth(t *testing.T) {
	h := Header{"a", "b", "a"}
	require.Equal(t, 0, h.IndexOf("a"))
	require.Equal(t, 1, h.IndexOf("b"))
	require.Equal(t, -1, h.IndexOf("z"))
	require.Equal(t, 0, h.IndexOfNth("a", 0))
	require.Equal(t, 2, h.IndexOfNth("a", 1))
	require.Equal(t, -1, h.IndexOfNth("a", 2))
}

func TestBindResolvesBareColumnName(t *testing.T) {
	p, err := lang.Parse(`name`)
	require.NoError(t, err)
	bound, err := Bind(p, Header{"id", "name"}, nil)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	col, ok := bound[0].(ArgColumn)
	require.True(t, ok)
	require.Equal(t, 1, col.Pos)
}

func TestBindTreatsReservedNameAsVariable(t *testing.T) {
	p, err := lang.Parse(`index`)
	require.NoError(t, err)
	bound, err := Bind(p, Header{"index"}, []string{"index"})
	require.NoError(t, err)
	v, ok := bound[0].(ArgVariable)
	require.True(t, ok)
	require.Equal(t, "index", v.Name)
}

func TestBindUnknownColumnFails(t *testing.T) {
	p, err := lang.Parse(`missing`)
	require.NoError(t, err)
	_, err = Bind(p, Header{"a"}, nil)
	require.Error(t, err)
}

func TestBindColumnByPositionOutOfRangeFails(t *testing.T) {
	p, err := lang.Parse(`col(5)`)
	require.NoError(t, err)
	_, err = Bind(p, Header{"a"}, nil)
	require.Error(t, err)
}

func TestBindNestedCallArguments(t *testing.T) {
	p, err := lang.Parse(`len(col("name"))`)
	require.NoError(t, err)
	bound, err := Bind(p, Header{"name"}, nil)
	require.NoError(t, err)
	call, ok := bound[0].(ArgCall)
	require.True(t, ok)
	require.Equal(t, "len", call.Call.Name)
	inner, ok := call.Call.Args[0].(ArgColumn)
	require.True(t, ok)
	require.Equal(t, 0, inner.Pos)
}
