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
	"context"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dolthub/go-tabular-engine/csvio"
	"github.com/dolthub/go-tabular-engine/engine/matcher"
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
	"github.com/dolthub/go-tabular-engine/rowpar"
)

func searchCmd() *cobra.Command {
	var column string
	var regex, invert, overlapping bool
	var countColumn string
	cmd := &cobra.Command{
		Use:   "search <pattern> <path>",
		Short: "Keep rows where a column matches pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if countColumn != "" && invert {
				return xerrors.ErrUsage.New("-c/--count does not work with -v/--invert")
			}
			if overlapping && countColumn == "" {
				return xerrors.ErrUsage.New("--overlapping only works with -c/--count")
			}
			return runSearch(args[0], args[1], column, regex, invert, countColumn, overlapping)
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "column name to match against (default: every column)")
	cmd.Flags().BoolVar(&regex, "regex", false, "treat pattern as a regular expression")
	cmd.Flags().BoolVarP(&invert, "invert", "v", false, "keep rows that do NOT match instead")
	cmd.Flags().StringVarP(&countColumn, "count", "c", "", "do not filter rows; instead append a column with this name counting matches per row")
	cmd.Flags().BoolVar(&overlapping, "overlapping", false, "with -c/--count, count overlapping matches instead of non-overlapping ones")
	return cmd
}

func runSearch(pattern, path, column string, regex, invert bool, countColumn string, overlapping bool) error {
	cfg := currentConfig()
	reader, err := csvio.Open(path, cfg.DelimiterRune(), !flagNoHeader)
	if err != nil {
		return err
	}
	defer reader.Close()

	var m *matcher.Matcher
	if regex {
		m, err = matcher.NewRegex(pattern, cfg.CaseFold)
	} else {
		m, err = matcher.NewSubstring([]string{pattern}, cfg.CaseFold)
	}
	if err != nil {
		return err
	}

	colIdx := -1
	if column != "" {
		colIdx = plan.Header(reader.Header).IndexOf(column)
	}

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()
	if reader.Header != nil {
		header := reader.Header
		if countColumn != "" {
			header = append(append([]string{}, header...), countColumn)
		}
		if err := writer.WriteHeader(header); err != nil {
			return err
		}
	}

	in := make(chan rowpar.Item, cfg.ResolveThreads(1)*2)
	var readErr error
	go func() {
		defer close(in)
		idx := 0
		for {
			rec, err := reader.Read()
			if err != nil {
				if err != io.EOF {
					readErr = err
				}
				return
			}
			in <- rowpar.Item{Index: idx, Record: rec}
			idx++
		}
	}()

	out, wait := rowpar.Map(context.Background(), in, cfg.ResolveThreads(1), cfg.ResolveThreads(1)*2,
		func(_ context.Context, item rowpar.Item) (interface{}, error) {
			if countColumn != "" {
				n := countMatches(m, item.Record, colIdx, overlapping)
				rec := append(append([][]byte{}, item.Record...), []byte(strconv.Itoa(n)))
				return rec, nil
			}
			matched := rowMatches(m, item.Record, colIdx)
			if invert {
				matched = !matched
			}
			if !matched {
				return nil, nil
			}
			return item.Record, nil
		})

	for r := range out {
		if r.Output == nil {
			continue
		}
		if err := writer.Write(r.Output.([][]byte)); err != nil {
			return err
		}
	}
	if err := wait(); err != nil {
		return err
	}
	return readErr
}

// countMatches sums the pattern match count across the selected
// cells of record (every cell, when colIdx is -1), the way -c/--count
// reports per-row match totals without filtering any rows (§7,
// §8: "Idempotence: running search -c twice ... yields the same
// counts").
func countMatches(m *matcher.Matcher, record [][]byte, colIdx int, overlapping bool) int {
	if colIdx >= 0 {
		if colIdx >= len(record) {
			return 0
		}
		return m.Count(string(record[colIdx]), overlapping)
	}
	total := 0
	for _, cell := range record {
		total += m.Count(string(cell), overlapping)
	}
	return total
}

func rowMatches(m *matcher.Matcher, record [][]byte, colIdx int) bool {
	if colIdx >= 0 {
		if colIdx >= len(record) {
			return false
		}
		return m.IsMatch(string(record[colIdx]))
	}
	for _, cell := range record {
		if m.IsMatch(string(cell)) {
			return true
		}
	}
	return false
}
