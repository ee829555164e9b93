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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dolthub/go-tabular-engine/csvio"
	"github.com/dolthub/go-tabular-engine/engine/stats"
	"github.com/dolthub/go-tabular-engine/parallel"
)

func statsCmd() *cobra.Command {
	var frequencies, quartiles bool
	cmd := &cobra.Command{
		Use:   "stats <path>...",
		Short: "Per-column streaming statistics, merged across every input file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args, frequencies, quartiles)
		},
	}
	cmd.Flags().BoolVar(&frequencies, "frequencies", false, "track cardinality/mode/tied_for_mode")
	cmd.Flags().BoolVar(&quartiles, "quartiles", false, "track q1/median/q3")
	return cmd
}

var statsOutputColumns = []string{
	"field", "count", "count_empty", "type", "types", "sum", "mean",
	"q1", "median", "q3", "variance", "stddev", "min", "max",
	"cardinality", "mode", "tied_for_mode", "lex_first", "lex_last",
	"min_length", "max_length",
}

// statsAccumulator is one run's per-column statistics table, wrapped to
// satisfy parallel.Accumulator so the multi-file driver can fold every
// file's partial table into a single shared result (§4.I, §4.F).
type statsAccumulator struct {
	header  []string
	columns []*stats.Column
}

func newStatsAccumulator(header []string, opts stats.Options) *statsAccumulator {
	columns := make([]*stats.Column, len(header))
	for i, field := range header {
		columns[i] = stats.NewColumn(field, opts)
	}
	return &statsAccumulator{header: header, columns: columns}
}

func (a *statsAccumulator) Merge(other parallel.Accumulator) {
	o := other.(*statsAccumulator)
	for i := range a.columns {
		if i < len(o.columns) {
			a.columns[i].Merge(o.columns[i])
		}
	}
}

func runStats(paths []string, frequencies, quartiles bool) error {
	cfg := currentConfig()
	opts := stats.Options{Frequencies: frequencies, Numbers: quartiles}

	first, err := csvio.Open(paths[0], cfg.DelimiterRune(), !flagNoHeader)
	if err != nil {
		return err
	}
	expectedHeader := first.Header
	if expectedHeader == nil {
		rec, err := first.Read()
		if err != nil {
			first.Close()
			return err
		}
		expectedHeader = syntheticHeader(len(rec))
	}
	first.Close()

	initial := newStatsAccumulator(expectedHeader, opts)
	result, err := runAcrossFiles(paths, cfg.ResolveThreads(len(paths)), flagNoHeader, cfg.DelimiterRune(), initial, expectedHeader,
		func(reader *csvio.Reader) (parallel.Accumulator, error) {
			header := reader.Header
			if header == nil {
				header = expectedHeader
			}
			partial := newStatsAccumulator(header, opts)
			for {
				rec, err := reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					return nil, err
				}
				for i, cell := range rec {
					if i < len(partial.columns) {
						partial.columns[i].Update(string(cell))
					}
				}
			}
			return partial, nil
		})
	if err != nil {
		return err
	}
	acc := result.(*statsAccumulator)

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()
	if err := writer.WriteHeader(statsOutputColumns); err != nil {
		return err
	}

	for _, c := range acc.columns {
		row := c.Finalize()
		rec := [][]byte{
			[]byte(row.Field),
			[]byte(strconv.FormatInt(row.Count, 10)),
			[]byte(strconv.FormatInt(row.CountEmpty, 10)),
			[]byte(row.Type),
			[]byte(joinTypes(row.Types)),
			row.Sum.Serialize(""),
			row.Mean.Serialize(""),
			row.Q1.Serialize(""),
			row.Median.Serialize(""),
			row.Q3.Serialize(""),
			row.Variance.Serialize(""),
			row.Stddev.Serialize(""),
			row.Min.Serialize(""),
			row.Max.Serialize(""),
			row.Cardinality.Serialize(""),
			row.Mode.Serialize(""),
			row.TiedForMode.Serialize(""),
			[]byte(row.LexFirst),
			[]byte(row.LexLast),
			[]byte(strconv.Itoa(row.MinLength)),
			[]byte(strconv.Itoa(row.MaxLength)),
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// syntheticHeader names n columns "0".."n-1" when a run has no header
// row to name them from (--no-header), so the stats table can still
// report one row per column.
func syntheticHeader(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += "|"
		}
		out += t
	}
	return out
}
