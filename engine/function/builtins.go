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
	"strings"

	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// registerBuiltins installs the core scalar function set: arithmetic,
// comparison, logic, and a handful of string/type helpers. Comparison
// and arithmetic operators (gt, add, ...) back the infix sugar the
// parser desugars "a > 1" into (lang.binaryOps); they are plain
// registry entries like any other function, so there is no special
// evaluator code path for operators.
func registerBuiltins(r *Registry) {
	num2 := func(name string, op func(a, b value.Number) (value.Number, error)) *Spec {
		return &Spec{Name: name, MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
			a, err := args[0].TryAsNumber()
			if err != nil {
				return value.Value{}, err
			}
			b, err := args[1].TryAsNumber()
			if err != nil {
				return value.Value{}, err
			}
			res, err := op(a, b)
			if err != nil {
				return value.Value{}, err
			}
			return res.ToValue(), nil
		}}
	}

	cmp2 := func(name string, op func(c int) bool) *Spec {
		return &Spec{Name: name, MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
			a, err := args[0].TryAsNumber()
			if err != nil {
				return value.Value{}, err
			}
			b, err := args[1].TryAsNumber()
			if err != nil {
				return value.Value{}, err
			}
			return value.Bool(op(a.Compare(b))), nil
		}}
	}

	r.Register(num2("add", value.Add))
	r.Register(num2("sub", value.Sub))
	r.Register(num2("mul", value.Mul))
	r.Register(&Spec{Name: "div", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		a, err := args[0].TryAsNumber()
		if err != nil {
			return value.Value{}, err
		}
		b, err := args[1].TryAsNumber()
		if err != nil {
			return value.Value{}, err
		}
		if b.AsFloat() == 0 {
			return value.Value{}, xerrors.ErrDivisionByZero.New()
		}
		return value.Float(a.AsFloat() / b.AsFloat()), nil
	}})
	r.Register(&Spec{Name: "mod", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		a, err := args[0].TryAsNumber()
		if err != nil {
			return value.Value{}, err
		}
		b, err := args[1].TryAsNumber()
		if err != nil {
			return value.Value{}, err
		}
		if b.AsInt() == 0 {
			return value.Value{}, xerrors.ErrDivisionByZero.New()
		}
		if !a.IsFloat() && !b.IsFloat() {
			return value.Int(a.AsInt() % b.AsInt()), nil
		}
		af, bf := a.AsFloat(), b.AsFloat()
		return value.Float(af - bf*float64(int64(af/bf))), nil
	}})

	r.Register(cmp2("gt", func(c int) bool { return c > 0 }))
	r.Register(cmp2("lt", func(c int) bool { return c < 0 }))
	r.Register(cmp2("gte", func(c int) bool { return c >= 0 }))
	r.Register(cmp2("lte", func(c int) bool { return c <= 0 }))

	r.Register(&Spec{Name: "eq", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Equal(args[1])), nil
	}})
	r.Register(&Spec{Name: "neq", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		return value.Bool(!args[0].Equal(args[1])), nil
	}})

	r.Register(&Spec{Name: "and", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Truthy() && args[1].Truthy()), nil
	}})
	r.Register(&Spec{Name: "or", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Truthy() || args[1].Truthy()), nil
	}})
	r.Register(&Spec{Name: "not", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		return value.Bool(!args[0].Truthy()), nil
	}})
	r.Register(&Spec{Name: "neg", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		n, err := args[0].TryAsNumber()
		if err != nil {
			return value.Value{}, err
		}
		zero := value.NumberFromInt(0)
		res, err := value.Sub(zero, n)
		if err != nil {
			return value.Value{}, err
		}
		return res.ToValue(), nil
	}})

	r.Register(&Spec{Name: "typeof", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		return value.String(args[0].TypeName()), nil
	}})
	r.Register(&Spec{Name: "len", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		switch args[0].Kind() {
		case value.KindList:
			return value.Int(int64(len(args[0].List()))), nil
		default:
			s, err := args[0].TryAsString()
			if err != nil {
				return value.Value{}, err
			}
			return value.Int(int64(len([]rune(s)))), nil
		}
	}})
	r.Register(&Spec{Name: "lower", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		s, err := args[0].TryAsString()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.ToLower(s)), nil
	}})
	r.Register(&Spec{Name: "upper", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		s, err := args[0].TryAsString()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.ToUpper(s)), nil
	}})
	r.Register(&Spec{Name: "trim", MinArity: 1, MaxArity: 1, Impl: func(args []value.Value) (value.Value, error) {
		s, err := args[0].TryAsString()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.TrimSpace(s)), nil
	}})
	r.Register(&Spec{Name: "concat", MinArity: 1, MaxArity: MaxArity, Impl: func(args []value.Value) (value.Value, error) {
		var b strings.Builder
		for _, a := range args {
			s, err := a.TryAsString()
			if err != nil {
				return value.Value{}, err
			}
			b.WriteString(s)
		}
		return value.String(b.String()), nil
	}})
	r.Register(&Spec{Name: "coalesce", MinArity: 1, MaxArity: MaxArity, Impl: func(args []value.Value) (value.Value, error) {
		for _, a := range args {
			if !a.IsNone() {
				return a, nil
			}
		}
		return value.None, nil
	}})
	r.Register(&Spec{Name: "contains", MinArity: 2, MaxArity: 2, Impl: func(args []value.Value) (value.Value, error) {
		s, err := args[0].TryAsString()
		if err != nil {
			return value.Value{}, err
		}
		sub, err := args[1].TryAsString()
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(strings.Contains(s, sub)), nil
	}})
}
