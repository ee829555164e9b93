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

package aggregation

import (
	"bytes"

	"github.com/mitchellh/hashstructure"

	"github.com/dolthub/go-tabular-engine/engine/function"
	"github.com/dolthub/go-tabular-engine/engine/value"
)

// GroupKey is a grouped aggregation's key cells, with a structural hash
// available for log correlation and metrics without re-walking the
// byte slices on every merge (§4.I diagnostics): the hash is never used
// to decide group identity, only to label one in a log line.
type GroupKey [][]byte

// Hash returns a stable structural hash of the key's cells. Collisions
// are acceptable here since the hash never drives equality decisions;
// group identity is still decided by exact byte comparison in Grouped.
func (k GroupKey) Hash() uint64 {
	h, err := hashstructure.Hash([][]byte(k), nil)
	if err != nil {
		return 0
	}
	return h
}

// Grouped is a mapping from group key (the ordered materialized byte
// vector of a row's selected group-by cells) to its own Plan instance,
// preserving the order in which each key was first seen so output can
// walk groups in first-insertion order (§4.E: "Grouped aggregation").
type Grouped struct {
	template *Plan
	index    map[string]int
	keys     []GroupKey
	plans    []*Plan
}

// NewGrouped returns a grouped aggregation driven by template: every
// new group key gets its own Fresh() copy of template, so groups never
// share reducer state.
func NewGrouped(template *Plan) *Grouped {
	return &Grouped{template: template, index: make(map[string]int)}
}

func groupKeyString(key [][]byte) string {
	var b bytes.Buffer
	for _, part := range key {
		b.Write(part)
		b.WriteByte(0)
	}
	return b.String()
}

// Update routes record into the plan for key, creating and recording a
// fresh plan instance the first time key is seen.
func (g *Grouped) Update(key [][]byte, record function.Record, vars function.Variables) error {
	k := groupKeyString(key)
	idx, ok := g.index[k]
	if !ok {
		idx = len(g.plans)
		g.index[k] = idx
		g.keys = append(g.keys, GroupKey(key))
		g.plans = append(g.plans, g.template.Fresh())
	}
	return g.plans[idx].Update(record, vars)
}

// Len returns the number of distinct groups seen so far.
func (g *Grouped) Len() int { return len(g.plans) }

// Merge folds other's groups into g, in other's insertion order;
// groups absent from g are added as new entries, preserving g's own
// prior insertion order ahead of them (used when merging partial
// per-file grouped results in the parallel multi-file driver, §4.I).
func (g *Grouped) Merge(other *Grouped) {
	for i, key := range other.keys {
		k := groupKeyString(key)
		idx, ok := g.index[k]
		if !ok {
			idx = len(g.plans)
			g.index[k] = idx
			g.keys = append(g.keys, key)
			g.plans = append(g.plans, g.template.Fresh())
		}
		g.plans[idx].Merge(other.plans[i])
	}
}

// KeyHashes returns the structural hash of every group key, in
// first-insertion order, for log correlation across a multi-file merge
// (§4.I diagnostics) without re-walking every group's byte cells.
func (g *Grouped) KeyHashes() []uint64 {
	out := make([]uint64, len(g.keys))
	for i, k := range g.keys {
		out[i] = k.Hash()
	}
	return out
}

// Row is one finalized group: its group-key cells followed by the
// aggregation plan's output values, in first-insertion order.
type Row struct {
	Key    [][]byte
	Values []value.Value
}

// Finalize walks every group in first-insertion order and finalizes
// its plan instance.
func (g *Grouped) Finalize(parallel bool) []Row {
	rows := make([]Row, len(g.plans))
	for i, p := range g.plans {
		rows[i] = Row{Key: g.keys[i], Values: p.Finalize(parallel)}
	}
	return rows
}

// Names returns the aggregation output columns (not including the
// group-key columns, which the caller supplies from its own selection
// header).
func (g *Grouped) Names() []string { return g.template.Names() }
