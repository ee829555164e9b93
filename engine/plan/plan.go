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

// Package plan implements the binder/concretizer (component B): it
// resolves every Identifier in a parsed lang.Pipeline against a
// header schema and a list of reserved variable names, producing an
// executable Plan with every reference already a concrete column
// position or a variable name. Binding failures (ColumnNotFound) are
// surfaced immediately, before a single row is evaluated, the way
// engine_test.go's compile-time-error cases expect analysis failures
// ahead of execution in the teacher.
package plan

import (
	"github.com/dolthub/go-tabular-engine/engine/lang"
	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// Header is the ordered, possibly-duplicate-name column schema a
// pipeline is bound against.
type Header []string

// IndexOf resolves the first occurrence of name, or -1.
func (h Header) IndexOf(name string) int {
	for i, n := range h {
		if n == name {
			return i
		}
	}
	return -1
}

// IndexOfNth resolves the nth (0-indexed) occurrence of name, or -1.
func (h Header) IndexOfNth(name string, nth int) int {
	for i, n := range h {
		if n == name {
			if nth == 0 {
				return i
			}
			nth--
		}
	}
	return -1
}

// Arg is a bound, executable argument: either a literal, a variable
// reference, a column position, or a nested call.
type Arg interface {
	arg()
}

type ArgLiteral struct{ Value value.Value }
type ArgVariable struct{ Name string }
type ArgColumn struct{ Pos int }
type ArgUnderscore struct{}
type ArgCall struct{ Call *Call }

func (ArgLiteral) arg()    {}
func (ArgVariable) arg()   {}
func (ArgColumn) arg()     {}
func (ArgUnderscore) arg() {}
func (ArgCall) arg()       {}

// Call is a bound function call ready for evaluation.
type Call struct {
	Name string
	Args []Arg
}

// Plan is the bound, executable form of a lang.Pipeline: an ordered
// list of steps, each either a literal/variable/column reference or a
// call, with the previous step's result available as ArgUnderscore.
type Plan []Arg

// Bind resolves pipeline against header, treating any identifier in
// reserved as a variable rather than a column reference. Column
// references (bare identifiers and col(...) indexations) resolve to
// the first occurrence of their name unless a NameAndNth form names
// an occurrence index.
func Bind(pipeline lang.Pipeline, header Header, reserved []string) (Plan, error) {
	reservedSet := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		reservedSet[r] = true
	}

	out := make(Plan, 0, len(pipeline))
	for _, step := range pipeline {
		bound, err := bindArgument(step, header, reservedSet)
		if err != nil {
			return nil, err
		}
		out = append(out, bound)
	}
	return out, nil
}

func bindCall(call *lang.Call, header Header, reserved map[string]bool) (*Call, error) {
	args := make([]Arg, 0, len(call.Args))
	for _, a := range call.Args {
		bound, err := bindArgument(a, header, reserved)
		if err != nil {
			return nil, err
		}
		args = append(args, bound)
	}
	return &Call{Name: call.Name, Args: args}, nil
}

func bindArgument(a lang.Argument, header Header, reserved map[string]bool) (Arg, error) {
	switch v := a.(type) {
	case lang.Underscore:
		return ArgUnderscore{}, nil
	case lang.NullLiteral:
		return ArgLiteral{Value: value.None}, nil
	case lang.BoolLiteral:
		return ArgLiteral{Value: value.Bool(v.Value)}, nil
	case lang.IntLiteral:
		return ArgLiteral{Value: value.Int(v.Value)}, nil
	case lang.FloatLiteral:
		return ArgLiteral{Value: value.Float(v.Value)}, nil
	case lang.StringLiteral:
		return ArgLiteral{Value: value.String(v.Value)}, nil
	case lang.Identifier:
		if reserved[v.Name] {
			return ArgVariable{Name: v.Name}, nil
		}
		return bindColumnIndexation(lang.ColumnIndexation{By: lang.ByName, Name: v.Name}, header)
	case lang.Indexation:
		return bindColumnIndexation(v.Of, header)
	case *lang.Call:
		if v.Name == "col" && len(v.Args) == 1 {
			if ind, ok := v.Args[0].(lang.Indexation); ok {
				return bindColumnIndexation(ind.Of, header)
			}
		}
		bound, err := bindCall(v, header, reserved)
		if err != nil {
			return nil, err
		}
		return ArgCall{Call: bound}, nil
	default:
		return nil, xerrors.ErrParse.New("unknown argument node")
	}
}

func bindColumnIndexation(ind lang.ColumnIndexation, header Header) (Arg, error) {
	var idx int
	switch ind.By {
	case lang.ByPos:
		if ind.Pos < 0 || ind.Pos >= len(header) {
			return nil, xerrors.ErrColumnNotFound.New(ind.String())
		}
		idx = ind.Pos
	case lang.ByNameAndNth:
		idx = header.IndexOfNth(ind.Name, ind.Nth)
	default:
		idx = header.IndexOf(ind.Name)
	}
	if idx < 0 {
		return nil, xerrors.ErrColumnNotFound.New(ind.String())
	}
	return ArgColumn{Pos: idx}, nil
}
