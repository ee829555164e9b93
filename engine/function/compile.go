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
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// CArg is a compiled, executable argument or pipeline step. Compiling
// ahead of the first row means every call already carries a direct
// *Spec pointer and a pre-validated arity, so per-row evaluation never
// touches the registry's name map (§9, "Dynamic dispatch").
type CArg interface {
	carg()
}

type cLiteral struct{ v value.Value }
type cVariable struct{ name string }
type cColumn struct{ pos int }
type cUnderscore struct{}
type cCall struct {
	spec *Spec
	args []CArg
}
type cIf struct {
	cond CArg
	then CArg
	els  CArg // nil when the 2-arity form was used
}

func (cLiteral) carg()   {}
func (cVariable) carg()  {}
func (cColumn) carg()    {}
func (cUnderscore) carg() {}
func (cCall) carg()      {}
func (cIf) carg()        {}

// Compiled is the executable form of a plan.Plan: an ordered sequence
// of steps, threaded by the implicit previous-result value.
type Compiled []CArg

// Compile resolves every call in p against r, validating arity and
// function existence once, before any row is read. This is a
// compilation error as far as §7's propagation policy is concerned
// even though ErrUnknownFunction is tagged as an Evaluation-category
// error kind in the taxonomy: the error *kind* and the *timing* of its
// detection are independent, and detecting it here is strictly
// stronger than waiting for a matching row.
func Compile(p plan.Plan, r *Registry) (Compiled, error) {
	out := make(Compiled, 0, len(p))
	for _, step := range p {
		c, err := compileArg(step, r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func compileArg(a plan.Arg, r *Registry) (CArg, error) {
	switch v := a.(type) {
	case plan.ArgLiteral:
		return cLiteral{v: v.Value}, nil
	case plan.ArgVariable:
		return cVariable{name: v.Name}, nil
	case plan.ArgColumn:
		return cColumn{pos: v.Pos}, nil
	case plan.ArgUnderscore:
		return cUnderscore{}, nil
	case plan.ArgCall:
		return compileCall(v.Call, r)
	default:
		return nil, xerrors.ErrParse.New("unknown bound argument node")
	}
}

func compileCall(call *plan.Call, r *Registry) (CArg, error) {
	if call.Name == "if" {
		arity := len(call.Args)
		if arity < 2 || arity > 3 {
			return nil, xerrors.ErrRangeArity.New("if", 2, 3, arity)
		}
		cond, err := compileArg(call.Args[0], r)
		if err != nil {
			return nil, err
		}
		then, err := compileArg(call.Args[1], r)
		if err != nil {
			return nil, err
		}
		var els CArg
		if arity == 3 {
			els, err = compileArg(call.Args[2], r)
			if err != nil {
				return nil, err
			}
		}
		return cIf{cond: cond, then: then, els: els}, nil
	}

	spec, ok := r.Lookup(call.Name)
	if !ok {
		return nil, xerrors.ErrUnknownFunction.New(call.Name)
	}
	if err := spec.checkArity(len(call.Args)); err != nil {
		return nil, err
	}

	args := make([]CArg, 0, len(call.Args))
	for _, a := range call.Args {
		c, err := compileArg(a, r)
		if err != nil {
			return nil, err
		}
		args = append(args, c)
	}
	return cCall{spec: spec, args: args}, nil
}
