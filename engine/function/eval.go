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
	"unicode/utf8"

	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// Record is a single CSV/TSV byte record: one raw byte slice per
// column, as produced by csvio. UTF-8 decoding happens lazily, only
// when a column reference is actually evaluated (§3).
type Record [][]byte

// MaxRecursionDepth bounds evaluator recursion so a pathological
// expression surfaces ErrRecursionDepth instead of overflowing the
// goroutine stack (§9).
const MaxRecursionDepth = 512

// Variables binds reserved variable names (e.g. "index") to their
// per-row values. "cell" (agg --cols's per-selected-column value) is
// not one of these: it is bound as an ordinary column reference
// against a synthetic one-column "cell" header instead, the way the
// real cmd/agg.rs treats it as a working_record field rather than an
// interpreter variable.
type Variables map[string]value.Value

// Evaluate runs compiled against record and vars, threading the
// implicit previous-result value through each step the way
// xan::interpreter::eval does: starting from None, each step's result
// becomes the next step's underscore binding, and the pipeline's
// value is its last step's result.
func Evaluate(compiled Compiled, record Record, vars Variables) (value.Value, error) {
	last := value.None
	for _, step := range compiled {
		result, err := evalArg(step, record, last, vars, 0)
		if err != nil {
			return value.Value{}, err
		}
		last = result
	}
	return last, nil
}

func evalArg(c CArg, record Record, last value.Value, vars Variables, depth int) (value.Value, error) {
	if depth > MaxRecursionDepth {
		return value.Value{}, xerrors.ErrRecursionDepth.New(MaxRecursionDepth)
	}

	switch v := c.(type) {
	case cLiteral:
		return v.v, nil
	case cUnderscore:
		return last, nil
	case cVariable:
		val, ok := vars[v.name]
		if !ok {
			return value.Value{}, xerrors.ErrUnknownVariable.New(v.name)
		}
		return val, nil
	case cColumn:
		if v.pos < 0 || v.pos >= len(record) {
			return value.Value{}, xerrors.ErrColumnOutOfRange.New(v.pos)
		}
		cell := record[v.pos]
		if !utf8.Valid(cell) {
			return value.Value{}, xerrors.ErrUnicodeDecode.New()
		}
		return value.String(string(cell)), nil
	case cIf:
		return evalIf(v, record, last, vars, depth)
	case cCall:
		return evalCall(v, record, last, vars, depth)
	default:
		return value.Value{}, xerrors.ErrParse.New("unknown compiled node")
	}
}

func evalIf(c cIf, record Record, last value.Value, vars Variables, depth int) (value.Value, error) {
	cond, err := evalArg(c.cond, record, last, vars, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	if cond.Truthy() {
		return evalArg(c.then, record, last, vars, depth+1)
	}
	if c.els == nil {
		return value.None, nil
	}
	return evalArg(c.els, record, last, vars, depth+1)
}

func evalCall(c cCall, record Record, last value.Value, vars Variables, depth int) (value.Value, error) {
	args := make([]value.Value, len(c.args))
	for i, a := range c.args {
		v, err := evalArg(a, record, last, vars, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	return c.spec.Impl(args)
}
