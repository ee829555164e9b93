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

// Package xerrors defines the error taxonomy shared by every engine
// component: parse, binding, arity, evaluation, I/O, schema-merge and
// usage errors. Every member is a *errors.Kind, created once and
// instantiated per occurrence, the way auth.ErrNotAuthorized is built
// in the teacher repo.
package xerrors

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrParse is returned when an expression could not be tokenized
	// or parsed. Carries the offending source text.
	ErrParse = goerrors.NewKind("could not parse expression: %s")

	// ErrColumnNotFound is returned by the binder when an identifier
	// or indexation does not resolve against the header schema.
	ErrColumnNotFound = goerrors.NewKind("column not found: %s")

	// ErrStrictArity is returned when a function is called with
	// exactly the wrong number of arguments.
	ErrStrictArity = goerrors.NewKind("%s: expected %d argument(s), got %d")

	// ErrMinArity is returned when a function receives fewer
	// arguments than its minimum.
	ErrMinArity = goerrors.NewKind("%s: expected at least %d argument(s), got %d")

	// ErrRangeArity is returned when a function receives a number of
	// arguments outside an inclusive [min, max] range.
	ErrRangeArity = goerrors.NewKind("%s: expected between %d and %d argument(s), got %d")

	// ErrUnknownFunction is returned when a call references a name
	// absent from the function registry.
	ErrUnknownFunction = goerrors.NewKind("unknown function: %s")

	// ErrUnknownVariable is an evaluation-time error: a reserved
	// variable has no value in the row's variable bindings. An
	// identifier that is neither a reserved variable nor a column fails
	// binding with ErrColumnNotFound instead.
	ErrUnknownVariable = goerrors.NewKind("unknown variable: %s")

	// ErrColumnOutOfRange is an evaluation-time error: a concrete
	// column position fell outside the current record's bounds.
	ErrColumnOutOfRange = goerrors.NewKind("column index %d out of range")

	// ErrUnicodeDecode is returned decoding a cell's bytes as UTF-8
	// when an operator required a string.
	ErrUnicodeDecode = goerrors.NewKind("cell is not valid UTF-8")

	// ErrCast is returned when a dynamic value cannot be coerced to
	// the type an operator requires.
	ErrCast = goerrors.NewKind("cannot cast %s to %s")

	// ErrDivisionByZero is an evaluation-time arithmetic error.
	ErrDivisionByZero = goerrors.NewKind("division by zero")

	// ErrNumericOverflow is returned when integer arithmetic would
	// wrap; the engine treats this as an error rather than wrapping.
	ErrNumericOverflow = goerrors.NewKind("numeric overflow evaluating %s")

	// ErrRecursionDepth bounds evaluator recursion so a pathological
	// expression surfaces an error instead of overflowing the stack.
	ErrRecursionDepth = goerrors.NewKind("expression nesting exceeds maximum depth of %d")

	// ErrIO covers open/read/write/seek/gzip/subprocess failures.
	ErrIO = goerrors.NewKind("i/o error: %s")

	// ErrSchemaMerge is returned when parallel freq/stats merge finds
	// inconsistent column selections or header sets across files.
	ErrSchemaMerge = goerrors.NewKind("schema mismatch across inputs: %s")

	// ErrUsage covers mutually exclusive flags and unsupported
	// combinations (e.g. replace on a set-typed matcher).
	ErrUsage = goerrors.NewKind("usage error: %s")
)
