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

package commands

import (
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dolthub/go-tabular-engine/csvio"
	"github.com/dolthub/go-tabular-engine/engine/counter"
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/selection"
	"github.com/dolthub/go-tabular-engine/parallel"
)

func freqCmd() *cobra.Command {
	var selectArg, groupBy string
	var limit int
	var noExtra bool
	var approx bool
	var sketchSize int
	cmd := &cobra.Command{
		Use:   "freq <path>...",
		Short: "Per-column value frequencies, merged across every input file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFreq(args, selectArg, groupBy, limit, noExtra, approx, sketchSize)
		},
	}
	cmd.Flags().StringVarP(&selectArg, "select", "s", "", "comma-separated column names to report frequencies for (default: every column except the -g/--groupby column)")
	cmd.Flags().StringVarP(&groupBy, "groupby", "g", "", "column name to group rows by")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "number of top entries to report per field (0 = unbounded)")
	cmd.Flags().BoolVarP(&noExtra, "no-extra", "N", false, "do not synthesize a <rest> row summarizing truncated entries")
	cmd.Flags().BoolVar(&approx, "approx", false, "use a bounded-memory approximate counter")
	cmd.Flags().IntVar(&sketchSize, "sketch-size", 1024, "approximate counter capacity")
	return cmd
}

// fieldCounter wraps either exact or approximate counting for one
// selected field, the way freqAccumulator used to wrap a single
// column's counter before --select made "one or more fields per run"
// the common case (§4.G).
type fieldCounter struct {
	exact  *counter.ExactCounter
	approx *counter.ApproxCounter
}

func newFieldCounter(approx bool, sketchSize int) *fieldCounter {
	if approx {
		return &fieldCounter{approx: counter.NewApprox(sketchSize)}
	}
	return &fieldCounter{exact: counter.NewExact()}
}

func (f *fieldCounter) insert(key string) {
	if f.exact != nil {
		f.exact.Inc(key)
	} else {
		f.approx.Insert(key)
	}
}

func (f *fieldCounter) merge(o *fieldCounter) {
	if f.exact != nil {
		f.exact.Merge(o.exact)
	} else {
		f.approx.Merge(o.approx)
	}
}

// topKWithRest returns the field's top-k entries and, for an exact
// counter whose --limit truncated some distinct values, a final
// synthesized "<rest>" entry summing what was cut (unless includeRest
// is false, i.e. --no-extra). An approximate counter's sketch is
// already lossy at its capacity boundary, so it never carries a total
// to diff against and never synthesizes a <rest> row.
func (f *fieldCounter) topKWithRest(k int, includeRest bool) []counter.Entry {
	if f.exact != nil {
		total, top := f.exact.IntoTotalAndTopK(k)
		if includeRest {
			var shown uint64
			for _, e := range top {
				shown += e.Count
			}
			if rest := total - shown; rest > 0 {
				top = append(top, counter.Entry{Key: "<rest>", Count: rest})
			}
		}
		return top
	}
	top := f.approx.IntoTopK()
	if k > 0 && k < len(top) {
		top = top[:k]
	}
	return top
}

// freqGroupEntry is one group-by key's per-field counters, plus the
// group's total row count used to order output groups by descending
// size (per test_frequency.rs's frequency_groubby fixture, a group
// with more rows prints before one with fewer, regardless of which
// appeared first in the input).
type freqGroupEntry struct {
	value  []byte
	fields map[string]*fieldCounter
	rows   uint64
}

// freqAccumulator wraps either a flat (one set of counters per
// selected field) or grouped (one such set per distinct group key)
// frequency table to satisfy parallel.Accumulator, so freq can merge
// partial per-file tables through the same multi-file driver stats and
// agg use (§4.G, §4.I).
type freqAccumulator struct {
	approx     bool
	sketchSize int
	fields     []string
	groupBy    string

	flat map[string]*fieldCounter

	groups     map[string]*freqGroupEntry
	groupOrder []string
}

func newFreqAccumulator(fields []string, groupBy string, approx bool, sketchSize int) *freqAccumulator {
	a := &freqAccumulator{approx: approx, sketchSize: sketchSize, fields: fields, groupBy: groupBy}
	if groupBy == "" {
		a.flat = make(map[string]*fieldCounter, len(fields))
		for _, f := range fields {
			a.flat[f] = newFieldCounter(approx, sketchSize)
		}
	} else {
		a.groups = make(map[string]*freqGroupEntry)
	}
	return a
}

func (a *freqAccumulator) newGroupEntry(groupKey []byte) *freqGroupEntry {
	g := &freqGroupEntry{value: append([]byte{}, groupKey...), fields: make(map[string]*fieldCounter, len(a.fields))}
	for _, f := range a.fields {
		g.fields[f] = newFieldCounter(a.approx, a.sketchSize)
	}
	return g
}

// insertRow feeds one row's selected cells (keyed by field name) into
// the accumulator, grouped by groupKey when the run is grouped.
func (a *freqAccumulator) insertRow(groupKey []byte, cells map[string][]byte) {
	if a.groupBy == "" {
		for f, cell := range cells {
			a.flat[f].insert(string(cell))
		}
		return
	}
	gk := string(groupKey)
	g, ok := a.groups[gk]
	if !ok {
		g = a.newGroupEntry(groupKey)
		a.groups[gk] = g
		a.groupOrder = append(a.groupOrder, gk)
	}
	g.rows++
	for f, cell := range cells {
		g.fields[f].insert(string(cell))
	}
}

func (a *freqAccumulator) Merge(other parallel.Accumulator) {
	o := other.(*freqAccumulator)
	if a.groupBy == "" {
		for f, fc := range a.flat {
			fc.merge(o.flat[f])
		}
		return
	}
	for _, gk := range o.groupOrder {
		og := o.groups[gk]
		g, ok := a.groups[gk]
		if !ok {
			g = a.newGroupEntry(og.value)
			a.groups[gk] = g
			a.groupOrder = append(a.groupOrder, gk)
		}
		g.rows += og.rows
		for f, fc := range g.fields {
			fc.merge(og.fields[f])
		}
	}
}

// removeName returns names with every occurrence of drop removed,
// preserving order — used to exclude the group-by column from the
// default "every column" field selection.
func removeName(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func runFreq(paths []string, selectArg, groupBy string, limit int, noExtra, approx bool, sketchSize int) error {
	cfg := currentConfig()

	first, err := csvio.Open(paths[0], cfg.DelimiterRune(), !flagNoHeader)
	if err != nil {
		return err
	}
	expectedHeader := first.Header
	first.Close()

	names, err := splitColumnList(selectArg)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = removeName(append([]string{}, expectedHeader...), groupBy)
	}

	groupIdx := -1
	if groupBy != "" {
		groupIdx = plan.Header(expectedHeader).IndexOf(groupBy)
	}

	initial := newFreqAccumulator(names, groupBy, approx, sketchSize)
	result, err := runAcrossFiles(paths, cfg.ResolveThreads(len(paths)), flagNoHeader, cfg.DelimiterRune(), initial, expectedHeader,
		func(reader *csvio.Reader) (parallel.Accumulator, error) {
			header := reader.Header
			if header == nil {
				header = expectedHeader
			}
			sel, err := selection.FromNames(names, header)
			if err != nil {
				return nil, err
			}
			partial := newFreqAccumulator(names, groupBy, approx, sketchSize)
			for {
				rec, err := reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					return nil, err
				}
				cells := make(map[string][]byte, len(names))
				for i, name := range names {
					pos := sel[i]
					if pos < len(rec) {
						cells[name] = rec[pos]
					}
				}
				var groupKey []byte
				if groupIdx >= 0 && groupIdx < len(rec) {
					groupKey = rec[groupIdx]
				}
				partial.insertRow(groupKey, cells)
			}
			return partial, nil
		})
	if err != nil {
		return err
	}
	acc := result.(*freqAccumulator)

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()

	outHeader := []string{"field"}
	if groupBy != "" {
		outHeader = append(outHeader, groupBy)
	}
	outHeader = append(outHeader, "value", "count")
	if err := writer.WriteHeader(outHeader); err != nil {
		return err
	}

	includeRest := !noExtra && !approx

	writeField := func(groupVal []byte, field string, fc *fieldCounter) error {
		for _, e := range fc.topKWithRest(limit, includeRest) {
			val := e.Key
			if val == "" {
				val = "<empty>"
			}
			rec := [][]byte{[]byte(field)}
			if groupBy != "" {
				rec = append(rec, groupVal)
			}
			rec = append(rec, []byte(val), []byte(strconv.FormatUint(e.Count, 10)))
			if err := writer.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}

	if groupBy == "" {
		for _, name := range names {
			if err := writeField(nil, name, acc.flat[name]); err != nil {
				return err
			}
		}
		return nil
	}

	order := append([]string{}, acc.groupOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		return acc.groups[order[i]].rows > acc.groups[order[j]].rows
	})
	for _, gk := range order {
		g := acc.groups[gk]
		for _, name := range names {
			if err := writeField(g.value, name, g.fields[name]); err != nil {
				return err
			}
		}
	}
	return nil
}
