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

	"github.com/spf13/cobra"

	"github.com/dolthub/go-tabular-engine/csvio"
	"github.com/dolthub/go-tabular-engine/engine/aggregation"
	"github.com/dolthub/go-tabular-engine/engine/function"
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/selection"
	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
	"github.com/dolthub/go-tabular-engine/parallel"
)

func aggCmd() *cobra.Command {
	var groupBy, cols string
	cmd := &cobra.Command{
		Use:   "agg <exprs> <path>...",
		Short: "Evaluate a comma-separated list of aggregation expressions, merged across every input file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cols != "" && groupBy != "" {
				return xerrors.ErrUsage.New("--cols does not work with -g/--groupby")
			}
			if cols != "" {
				return runAggPerCols(args[0], args[1:], cols)
			}
			return runAgg(args[0], args[1:], groupBy)
		},
	}
	cmd.Flags().StringVarP(&groupBy, "groupby", "g", "", "column name to group rows by")
	cmd.Flags().StringVar(&cols, "cols", "", "comma-separated column names to reduce across, within each row (one output row per input row)")
	return cmd
}

// runAggPerCols implements the per-row reduction mode ("agg 'sum(cell)
// as sum' --cols a,b"): each selected column's value is fed, one cell
// at a time, into a template compiled against a synthetic one-column
// "cell" header, and the row's original columns are followed by the
// template's finalized outputs — one output row per input row, per
// the real cmd/agg.rs's --cols handling (working_record with a single
// "cell" field, program.clear() per row, one run_with_record per
// selected cell).
func runAggPerCols(exprs string, paths []string, colsArg string) error {
	if len(paths) != 1 {
		return xerrors.ErrUsage.New("--cols only works with a single input file")
	}
	cfg := currentConfig()

	reader, err := csvio.Open(paths[0], cfg.DelimiterRune(), !flagNoHeader)
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header
	names, err := splitColumnList(colsArg)
	if err != nil {
		return err
	}
	sel, err := selection.FromNames(names, header)
	if err != nil {
		return err
	}

	cellHeader := plan.Header{"cell"}
	registry := function.NewRegistry()
	tmpl, err := aggregation.Compile(exprs, cellHeader, []string{"index"}, registry)
	if err != nil {
		return err
	}

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()

	if header != nil {
		if err := writer.WriteHeader(append(append([]string{}, header...), tmpl.Names()...)); err != nil {
			return err
		}
	}

	idx := 0
	for {
		rec, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		tmpl.Clear()
		for _, cell := range sel.Select(rec) {
			vars := function.Variables{"index": value.Int(int64(idx))}
			if err := tmpl.Update(function.Record{cell}, vars); err != nil {
				return err
			}
		}
		out := append(append([][]byte{}, rec...), serializeValues(tmpl.Finalize(false), "")...)
		if err := writer.Write(out); err != nil {
			return err
		}
		idx++
	}
	return nil
}

// aggAccumulator wraps either a flat Plan or a Grouped plan so
// parallel.Driver can fold per-file partial aggregation state into one
// run-wide result the same way it does for stats/freq (§4.E, §4.I).
// A plan on its own is not associative-mergeable across differently
// shaped inputs, so both paths carry the plan/grouped instance rather
// than re-deriving it per file.
type aggAccumulator struct {
	flat    *aggregation.Plan
	grouped *aggregation.Grouped
}

func (a *aggAccumulator) Merge(other parallel.Accumulator) {
	o := other.(*aggAccumulator)
	if a.flat != nil {
		a.flat.Merge(o.flat)
	} else {
		a.grouped.Merge(o.grouped)
	}
}

// KeyHashes satisfies parallel's hashLogger so a grouped multi-file
// agg run logs its group-key correlation hashes per merged file;
// flat (whole-file) runs have no group keys and report none.
func (a *aggAccumulator) KeyHashes() []uint64 {
	if a.grouped == nil {
		return nil
	}
	return a.grouped.KeyHashes()
}

func runAgg(exprs string, paths []string, groupByCol string) error {
	cfg := currentConfig()

	first, err := csvio.Open(paths[0], cfg.DelimiterRune(), !flagNoHeader)
	if err != nil {
		return err
	}
	expectedHeader := first.Header
	first.Close()

	header := plan.Header(expectedHeader)
	registry := function.NewRegistry()
	tmpl, err := aggregation.Compile(exprs, header, []string{"index"}, registry)
	if err != nil {
		return err
	}

	groupIdx := -1
	if groupByCol != "" {
		groupIdx = header.IndexOf(groupByCol)
	}

	newAccumulator := func() *aggAccumulator {
		if groupByCol == "" {
			return &aggAccumulator{flat: tmpl.Fresh()}
		}
		return &aggAccumulator{grouped: aggregation.NewGrouped(tmpl)}
	}

	initial := newAccumulator()
	result, err := runAcrossFiles(paths, cfg.ResolveThreads(len(paths)), flagNoHeader, cfg.DelimiterRune(), initial, expectedHeader,
		func(reader *csvio.Reader) (parallel.Accumulator, error) {
			partial := newAccumulator()
			idx := 0
			for {
				rec, err := reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					return nil, err
				}
				vars := function.Variables{"index": value.Int(int64(idx))}
				if partial.flat != nil {
					if err := partial.flat.Update(function.Record(rec), vars); err != nil {
						return nil, err
					}
				} else {
					key := [][]byte{rec[groupIdx]}
					if err := partial.grouped.Update(key, function.Record(rec), vars); err != nil {
						return nil, err
					}
				}
				idx++
			}
			return partial, nil
		})
	if err != nil {
		return err
	}
	acc := result.(*aggAccumulator)

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()

	if acc.flat != nil {
		if err := writer.WriteHeader(acc.flat.Names()); err != nil {
			return err
		}
		vals := acc.flat.Finalize(len(paths) > 1)
		return writer.Write(serializeValues(vals, ""))
	}

	outHeader := append([]string{groupByCol}, acc.grouped.Names()...)
	if err := writer.WriteHeader(outHeader); err != nil {
		return err
	}
	for _, row := range acc.grouped.Finalize(len(paths) > 1) {
		rec := append(append([][]byte(nil), row.Key...), serializeValues(row.Values, "")...)
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func serializeValues(vals []value.Value, sep string) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = v.Serialize(sep)
	}
	return out
}
