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

package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-tabular-engine/engine/lang"
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/value"
)

func mustCompile(t *testing.T, src string, header plan.Header, reserved []string) Compiled {
	t.Helper()
	parsed, err := lang.Parse(src)
	require.NoError(t, err)
	bound, err := plan.Bind(parsed, header, reserved)
	require.NoError(t, err)
	compiled, err := Compile(bound, NewRegistry())
	require.NoError(t, err)
	return compiled
}

func TestEvaluatePipelineThreadsUnderscore(t *testing.T) {
	compiled := mustCompile(t, `col("name") | trim(_) | upper(_)`, plan.Header{"name"}, nil)
	v, err := Evaluate(compiled, Record{[]byte("  bob  ")}, nil)
	require.NoError(t, err)
	require.Equal(t, "BOB", v.Str())
}

func TestEvaluateIfBranching(t *testing.T) {
	compiled := mustCompile(t, `if(gt(col("n"), 0), "pos", "nonpos")`, plan.Header{"n"}, nil)
	v, err := Evaluate(compiled, Record{[]byte("5")}, nil)
	require.NoError(t, err)
	require.Equal(t, "pos", v.Str())
}

func TestEvaluateIfTwoArityReturnsNoneOnFalse(t *testing.T) {
	parsed, err := lang.Parse(`if(false, "x")`)
	require.NoError(t, err)
	bound, err := plan.Bind(parsed, plan.Header{}, nil)
	require.NoError(t, err)
	compiled, err := Compile(bound, NewRegistry())
	require.NoError(t, err)
	v, err := Evaluate(compiled, Record{}, nil)
	require.NoError(t, err)
	require.True(t, v.IsNone())
}

func TestEvaluateUnknownFunctionFailsAtCompile(t *testing.T) {
	parsed, err := lang.Parse(`bogus(1)`)
	require.NoError(t, err)
	bound, err := plan.Bind(parsed, plan.Header{}, nil)
	require.NoError(t, err)
	_, err = Compile(bound, NewRegistry())
	require.Error(t, err)
}

func TestEvaluateArityMismatchFailsAtCompile(t *testing.T) {
	parsed, err := lang.Parse(`trim(1, 2)`)
	require.NoError(t, err)
	bound, err := plan.Bind(parsed, plan.Header{}, nil)
	require.NoError(t, err)
	_, err = Compile(bound, NewRegistry())
	require.Error(t, err)
}

func TestEvaluateVariableBinding(t *testing.T) {
	compiled := mustCompile(t, `index`, plan.Header{}, []string{"index"})
	v, err := Evaluate(compiled, Record{}, Variables{"index": value.Int(7)})
	require.NoError(t, err)
	require.Equal(t, int64(7), v.Int())
}

func TestEvaluateDivisionByZero(t *testing.T) {
	compiled := mustCompile(t, `div(1, 0)`, plan.Header{}, nil)
	_, err := Evaluate(compiled, Record{}, nil)
	require.Error(t, err)
}

func TestEvaluateConcatVariadic(t *testing.T) {
	compiled := mustCompile(t, `concat("a", "b", "c")`, plan.Header{}, nil)
	v, err := Evaluate(compiled, Record{}, nil)
	require.NoError(t, err)
	require.Equal(t, "abc", v.Str())
}

func TestEvaluateColumnOutOfRange(t *testing.T) {
	compiled := mustCompile(t, `col(2)`, plan.Header{"a", "b", "c"}, nil)
	_, err := Evaluate(compiled, Record{[]byte("1"), []byte("2")}, nil)
	require.Error(t, err)
}
