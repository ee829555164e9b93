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

// Package function implements the function registry and evaluator
// (component D): name dispatch, arity validation, the `if` branching
// special form, and pipeline threading of the implicit previous
// result. Registration mirrors the teacher's FunctionRegistry
// (sql/functionregistry_test.go): a name maps to a spec carrying its
// arity bounds and its Go implementation.
package function

import (
	"github.com/dolthub/go-tabular-engine/engine/value"
)

// MaxArity marks a function's maximum arity as unbounded.
const MaxArity = -1

// Fn is a registered function's native implementation: it receives
// already-evaluated, owned argument values and returns an owned
// result.
type Fn func(args []value.Value) (value.Value, error)

// Spec describes one registered function: its name (for error
// messages), its arity bounds, and its implementation. A Call node
// compiled against a Spec stores a direct pointer to it, so repeated
// evaluation across rows never re-does a name lookup (§9,
// "Dynamic dispatch").
type Spec struct {
	Name     string
	MinArity int
	MaxArity int // MaxArity constant for unbounded
	Impl     Fn
}

func (s *Spec) checkArity(got int) error {
	switch {
	case s.MinArity == s.MaxArity:
		if got != s.MinArity {
			return arityStrictError(s.Name, s.MinArity, got)
		}
	case s.MaxArity == MaxArity:
		if got < s.MinArity {
			return arityMinError(s.Name, s.MinArity, got)
		}
	default:
		if got < s.MinArity || got > s.MaxArity {
			return arityRangeError(s.Name, s.MinArity, s.MaxArity, got)
		}
	}
	return nil
}

// Registry is a name -> Spec table. The zero value is not usable;
// construct with NewRegistry.
type Registry struct {
	entries map[string]*Spec
}

// NewRegistry returns a registry pre-populated with the builtin
// function set (see builtins.go).
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]*Spec)}
	registerBuiltins(r)
	return r
}

// Register adds or overwrites a function spec.
func (r *Registry) Register(spec *Spec) {
	r.entries[spec.Name] = spec
}

// Lookup returns the spec registered under name, if any.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	spec, ok := r.entries[name]
	return spec, ok
}
