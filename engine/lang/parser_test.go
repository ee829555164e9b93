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

package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleCall(t *testing.T) {
	p, err := Parse(`len(col("name"))`)
	require.NoError(t, err)
	require.Len(t, p, 1)
	call, ok := p[0].(*Call)
	require.True(t, ok)
	require.Equal(t, "len", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParsePipeThreadsUnderscore(t *testing.T) {
	p, err := Parse(`col("x") | trim(_) | upper(_)`)
	require.NoError(t, err)
	require.Len(t, p, 3)
	last, ok := p[2].(*Call)
	require.True(t, ok)
	require.Equal(t, "upper", last.Name)
	_, ok = last.Args[0].(Underscore)
	require.True(t, ok)
}

func TestParseInfixComparisonDesugarsToCall(t *testing.T) {
	p, err := Parse(`a > 1`)
	require.NoError(t, err)
	call, ok := p[0].(*Call)
	require.True(t, ok)
	require.Equal(t, "gt", call.Name)
	ident, ok := call.Args[0].(Identifier)
	require.True(t, ok)
	require.Equal(t, "a", ident.Name)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	p, err := Parse(`1 + 2 * 3`)
	require.NoError(t, err)
	call := p[0].(*Call)
	require.Equal(t, "add", call.Name)
	rhs, ok := call.Args[1].(*Call)
	require.True(t, ok)
	require.Equal(t, "mul", rhs.Name)
}

func TestParseColByPositionAndByNth(t *testing.T) {
	p, err := Parse(`col(0)`)
	require.NoError(t, err)
	call := p[0].(*Call)
	ind := call.Args[0].(Indexation)
	require.Equal(t, ByPos, ind.Of.By)
	require.Equal(t, 0, ind.Of.Pos)

	p, err = Parse(`col("dup", 1)`)
	require.NoError(t, err)
	call = p[0].(*Call)
	ind = call.Args[0].(Indexation)
	require.Equal(t, ByNameAndNth, ind.Of.By)
	require.Equal(t, "dup", ind.Of.Name)
	require.Equal(t, 1, ind.Of.Nth)
}

func TestParseUnaryNotAndNeg(t *testing.T) {
	p, err := Parse(`!true`)
	require.NoError(t, err)
	require.Equal(t, "not", p[0].(*Call).Name)

	p, err = Parse(`-5`)
	require.NoError(t, err)
	require.Equal(t, "neg", p[0].(*Call).Name)
}

func TestParseRejectsUnbalancedParens(t *testing.T) {
	_, err := Parse(`len(col("x")`)
	require.Error(t, err)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse(`1 2`)
	require.Error(t, err)
}
