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

// Package selection implements the column selection model (component
// J): an ordered, possibly empty sequence of column positions into a
// header schema, with set difference and materialized-header-based
// equality for cross-file merge checks (§4.J, §4.I).
package selection

import "github.com/dolthub/go-tabular-engine/engine/xerrors"

// Selection is an ordered vector of column indices into a schema.
type Selection []int

// FromNames resolves an ordered list of column names against header,
// in the given order (which need not match header's own order, and
// may repeat a name), for commands taking an explicit "-s/--select"
// column list (e.g. freq, agg --cols).
func FromNames(names []string, header []string) (Selection, error) {
	out := make(Selection, len(names))
	for i, name := range names {
		idx := -1
		for j, h := range header {
			if h == name {
				idx = j
				break
			}
		}
		if idx < 0 {
			return nil, xerrors.ErrColumnNotFound.New(name)
		}
		out[i] = idx
	}
	return out, nil
}

// Select returns the cells of record at the selection's positions, in
// selection order.
func (s Selection) Select(record [][]byte) [][]byte {
	out := make([][]byte, len(s))
	for i, pos := range s {
		if pos < len(record) {
			out[i] = record[pos]
		}
	}
	return out
}

// Collect materializes the header bytes named by the selection, in
// selection order; two selections from different files are considered
// the same shape when their Collect output is byte-identical (§4.J).
func (s Selection) Collect(headers [][]byte) [][]byte {
	out := make([][]byte, len(s))
	for i, pos := range s {
		if pos < len(headers) {
			dup := make([]byte, len(headers[pos]))
			copy(dup, headers[pos])
			out[i] = dup
		}
	}
	return out
}

// Subtract removes any index in s that is also present in other,
// preserving the relative order of what remains.
func (s Selection) Subtract(other Selection) Selection {
	exclude := make(map[int]bool, len(other))
	for _, i := range other {
		exclude[i] = true
	}
	out := make(Selection, 0, len(s))
	for _, i := range s {
		if !exclude[i] {
			out = append(out, i)
		}
	}
	return out
}

// IsEmpty reports whether the selection names no columns.
func (s Selection) IsEmpty() bool { return len(s) == 0 }

// Len returns the number of columns named by the selection.
func (s Selection) Len() int { return len(s) }

// All returns a Selection naming every column of a header of length n,
// in order — the default selection when no explicit subset is given.
func All(n int) Selection {
	s := make(Selection, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// SameShape reports whether two materialized header selections
// (as returned by Collect) name the same columns in the same order;
// used to detect schema drift across files before a parallel
// freq/stats merge (§4.I: "Merge invariants").
func SameShape(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if string(a[i]) != string(b[i]) {
			return false
		}
	}
	return true
}
