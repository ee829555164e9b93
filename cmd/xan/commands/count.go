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
	"github.com/dolthub/go-tabular-engine/parallel"
)

func countCmd() *cobra.Command {
	var sourceColumn string
	cmd := &cobra.Command{
		Use:   "count <path>...",
		Short: "Count data rows across every input file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(args, sourceColumn)
		},
	}
	cmd.Flags().StringVarP(&sourceColumn, "source-column", "S", "", "emit one row per file, with this column naming its path, instead of a single summed total")
	return cmd
}

// countRow is one file's row count, reported only when --source-column
// is set.
type countRow struct {
	path  string
	count int64
}

// countAccumulator wraps either a running sum across every file or a
// per-file list of counts to satisfy parallel.Accumulator, depending
// on whether --source-column asked for per-file rows instead of one
// total (§4.I, the "parallel count" scenario).
type countAccumulator struct {
	total   int64
	perFile []countRow
}

func (a *countAccumulator) Merge(other parallel.Accumulator) {
	o := other.(*countAccumulator)
	a.total += o.total
	a.perFile = append(a.perFile, o.perFile...)
}

func runCount(paths []string, sourceColumn string) error {
	cfg := currentConfig()

	driver := parallel.New(nil)
	result, err := driver.Run(context.Background(), paths, cfg.ResolveThreads(len(paths)), &countAccumulator{},
		func(_ context.Context, path string) (parallel.Accumulator, error) {
			reader, err := csvio.Open(path, cfg.DelimiterRune(), !flagNoHeader)
			if err != nil {
				return nil, err
			}
			defer reader.Close()

			var n int64
			for {
				_, err := reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					return nil, err
				}
				n++
			}
			if sourceColumn != "" {
				return &countAccumulator{perFile: []countRow{{path: path, count: n}}}, nil
			}
			return &countAccumulator{total: n}, nil
		})
	if err != nil {
		return err
	}
	acc := result.(*countAccumulator)

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()

	if sourceColumn == "" {
		return writer.Write([][]byte{[]byte(strconv.FormatInt(acc.total, 10))})
	}

	if err := writer.WriteHeader([]string{sourceColumn, "count"}); err != nil {
		return err
	}
	for _, r := range acc.perFile {
		rec := [][]byte{[]byte(r.path), []byte(strconv.FormatInt(r.count, 10))}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
