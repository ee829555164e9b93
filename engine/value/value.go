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

// Package value implements the engine's dynamic value model: a tagged
// variant of None, Bool, Integer, Float, String and List, with the
// numeric coercion and truthiness rules the expression language
// depends on. Values crossing a pipeline step boundary are always
// owned (see the "Ownership" note in SPEC_FULL.md);
// there is no borrowed variant here the way the Rust original has
// Cow<DynamicValue>, because Go values are already owned once copied
// out of the []byte record.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is the dynamic value threaded through a pipeline evaluation
// and bound into aggregation/stats/matcher updates.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
}

// None is the shared representation of the null literal.
var None = Value{kind: KindNone}

func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func List(vs []Value) Value    { return Value{kind: KindList, list: vs} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int() int64       { return v.i }
func (v Value) Float() float64   { return v.f }
func (v Value) Str() string      { return v.s }
func (v Value) List() []Value    { return v.list }

// TypeName returns the value's runtime type name, as surfaced by the
// `typeof` function and the statistics kernel's type inference.
func (v Value) TypeName() string { return v.kind.String() }

// Number is the lifted numeric representation used for arithmetic and
// cross-type comparison: an Int side and a Float side, never both.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

func NumberFromInt(i int64) Number     { return Number{i: i} }
func NumberFromFloat(f float64) Number { return Number{isFloat: true, f: f} }

func (n Number) IsFloat() bool { return n.isFloat }
func (n Number) AsFloat() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}
func (n Number) AsInt() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// ToValue converts a Number back into a Value, preserving the Int/Float
// distinction, the way xan::types::DynamicNumber -> DynamicValue does.
func (n Number) ToValue() Value {
	if n.isFloat {
		return Float(n.f)
	}
	return Int(n.i)
}

// Compare orders two numbers, lifting the Int side to Float whenever
// the other side is Float; Int vs Int and Float vs Float use native
// comparison (§4.C).
func (n Number) Compare(o Number) int {
	if !n.isFloat && !o.isFloat {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		default:
			return 0
		}
	}
	a, b := n.AsFloat(), o.AsFloat()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (n Number) Equal(o Number) bool { return n.Compare(o) == 0 }

func numAdd(a, b Number) Number {
	if !a.isFloat && !b.isFloat {
		return NumberFromInt(a.i + b.i)
	}
	return NumberFromFloat(a.AsFloat() + b.AsFloat())
}

func numSub(a, b Number) Number {
	if !a.isFloat && !b.isFloat {
		return NumberFromInt(a.i - b.i)
	}
	return NumberFromFloat(a.AsFloat() - b.AsFloat())
}

func numMul(a, b Number) Number {
	if !a.isFloat && !b.isFloat {
		return NumberFromInt(a.i * b.i)
	}
	return NumberFromFloat(a.AsFloat() * b.AsFloat())
}

// Add, Sub and Mul implement §4.C's arithmetic contract: Int op Int
// stays Int (overflow is an evaluation error, not silent wraparound);
// any Float operand promotes the result to Float.
func Add(a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		sum := a.i + b.i
		if (sum-b.i != a.i) || ((a.i > 0 && b.i > 0 && sum < 0) || (a.i < 0 && b.i < 0 && sum > 0)) {
			return Number{}, xerrors.ErrNumericOverflow.New("+")
		}
	}
	return numAdd(a, b), nil
}

func Sub(a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		diff := a.i - b.i
		if (a.i > 0 && b.i < 0 && diff < 0) || (a.i < 0 && b.i > 0 && diff > 0) {
			return Number{}, xerrors.ErrNumericOverflow.New("-")
		}
	}
	return numSub(a, b), nil
}

func Mul(a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if a.i != 0 && b.i != 0 {
			p := a.i * b.i
			if p/a.i != b.i {
				return Number{}, xerrors.ErrNumericOverflow.New("*")
			}
		}
	}
	return numMul(a, b), nil
}

// TryAsNumber parses integer then float when v is a String (§4.C);
// Booleans lift to 0/1; Int/Float pass through. Anything else, and an
// empty string, is a cast error. Integer/float parsing is delegated to
// spf13/cast the way the rest of the corpus leans on it for loose
// coercion, with the int-then-float ordering the expression language
// requires layered on top.
func (v Value) TryAsNumber() (Number, error) {
	switch v.kind {
	case KindInt:
		return NumberFromInt(v.i), nil
	case KindFloat:
		return NumberFromFloat(v.f), nil
	case KindBool:
		if v.b {
			return NumberFromInt(1), nil
		}
		return NumberFromInt(0), nil
	case KindString:
		if v.s == "" {
			return Number{}, xerrors.ErrCast.New("string", "number")
		}
		if i, err := cast.ToInt64E(v.s); err == nil {
			return NumberFromInt(i), nil
		}
		if f, err := cast.ToFloat64E(v.s); err == nil {
			return NumberFromFloat(f), nil
		}
		return Number{}, xerrors.ErrCast.New("string", "number")
	default:
		return Number{}, xerrors.ErrCast.New(v.kind.String(), "number")
	}
}

// TryAsUsize succeeds when v denotes a non-negative integral value
// representable as a non-negative int (§4.C): an Integer >= 0, a
// Float that is integral and non-negative, a Boolean, or a parseable
// string.
func (v Value) TryAsUsize() (int, error) {
	switch v.kind {
	case KindInt:
		if v.i < 0 {
			return 0, xerrors.ErrCast.New("integer", "usize")
		}
		return int(v.i), nil
	case KindFloat:
		if v.f != float64(int64(v.f)) || v.f < 0 {
			return 0, xerrors.ErrCast.New("float", "usize")
		}
		return int(v.f), nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindString:
		n, err := cast.ToUintE(v.s)
		if err != nil {
			return 0, xerrors.ErrCast.New("string", "usize")
		}
		return int(n), nil
	default:
		return 0, xerrors.ErrCast.New(v.kind.String(), "usize")
	}
}

// TryAsString renders v as a string; this is the "display" coercion
// used by string-taking functions, distinct from the stricter
// TryAsNumber cast chain.
func (v Value) TryAsString() (string, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), nil
	case KindBool:
		if v.b {
			return "true", nil
		}
		return "false", nil
	case KindNone:
		return "", nil
	default:
		return "", xerrors.ErrCast.New("list", "string")
	}
}

// TryAsList returns the backing slice of a List value, or a cast error.
func (v Value) TryAsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, xerrors.ErrCast.New(v.kind.String(), "list")
	}
	return v.list, nil
}

// Truthy implements §4.C's truthiness rule: empty list/string, 0/0.0
// and None are false; everything else is true. Float truthiness is
// the corrected rule noted in DESIGN.md's Open Question decisions:
// 0.0 is false, any non-zero float is true (the original Rust source
// has this inverted; that is a bug in the original, not a contract).
func (v Value) Truthy() bool {
	switch v.kind {
	case KindList:
		return len(v.list) > 0
	case KindString:
		return v.s != ""
	case KindFloat:
		return v.f != 0.0
	case KindInt:
		return v.i != 0
	case KindBool:
		return v.b
	default:
		return false
	}
}

// Equal implements cross-type equality: numeric Kinds compare via the
// lifted-to-float Number rule; strings compare by bytes; everything
// else compares structurally.
func (v Value) Equal(o Value) bool {
	if isNumericKind(v.kind) && isNumericKind(o.kind) {
		an, _ := v.TryAsNumber()
		bn, _ := o.TryAsNumber()
		return an.Equal(bn)
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumericKind(k Kind) bool { return k == KindInt || k == KindFloat || k == KindBool }

// DefaultListSeparator is the default byte separator joining list
// elements on serialization (§3, §6).
const DefaultListSeparator = "|"

// SerializeString renders v the way the output writer needs to: lists
// join element serializations with sep (default "|"); None serializes
// as the empty string; Bool as true/false; numbers in canonical
// decimal form.
func (v Value) SerializeString(sep string) string {
	switch v.kind {
	case KindNone:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.SerializeString(sep)
		}
		return strings.Join(parts, sep)
	default:
		return ""
	}
}

// Serialize renders v as the raw bytes written to a CSV cell.
func (v Value) Serialize(sep string) []byte {
	if sep == "" {
		sep = DefaultListSeparator
	}
	return []byte(v.SerializeString(sep))
}

// GoString supports %#v-style debugging without leaking internal
// fields, and error message formatting in evaluator diagnostics.
func (v Value) GoString() string {
	return fmt.Sprintf("Value{%s: %s}", v.kind, v.SerializeString(DefaultListSeparator))
}

// SortStrings sorts a slice of strings lexically by byte order.
func SortStrings(ss []string) {
	sort.Slice(ss, func(i, j int) bool { return ss[i] < ss[j] })
}
