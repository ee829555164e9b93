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

	"github.com/spf13/cobra"

	"github.com/dolthub/go-tabular-engine/csvio"
	"github.com/dolthub/go-tabular-engine/parallel"
)

func catCmd() *cobra.Command {
	var sourceColumn string
	var bufferSize int
	cmd := &cobra.Command{
		Use:   "cat <path>...",
		Short: "Concatenate every input file's rows into one output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args, sourceColumn, bufferSize)
		},
	}
	cmd.Flags().StringVarP(&sourceColumn, "source-column", "S", "", "prepend a column with this name, naming which file each row came from")
	cmd.Flags().IntVarP(&bufferSize, "buffer-size", "B", 1024, "rows to buffer per file before flushing to the shared writer (0 or negative = flush once per file)")
	return cmd
}

// catAccumulator carries no state of its own: cat's output is written
// directly to the shared parallel.CatWriter as each file streams, not
// folded through a merge step, but parallel.Driver still requires an
// Accumulator to drive the per-file worker pool (§4.I).
type catAccumulator struct{}

func (catAccumulator) Merge(parallel.Accumulator) {}

func runCat(paths []string, sourceColumn string, bufferSize int) error {
	cfg := currentConfig()

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()

	writeHeader := writer.WriteHeader
	if sourceColumn != "" {
		writeHeader = func(header []string) error {
			return writer.WriteHeader(append([]string{sourceColumn}, header...))
		}
	}
	cat := parallel.NewCatWriter(writeHeader, writer.Write)

	driver := parallel.New(nil)
	_, err = driver.Run(context.Background(), paths, cfg.ResolveThreads(len(paths)), catAccumulator{},
		func(_ context.Context, path string) (parallel.Accumulator, error) {
			reader, err := csvio.Open(path, cfg.DelimiterRune(), !flagNoHeader)
			if err != nil {
				return nil, err
			}
			defer reader.Close()

			if reader.Header != nil {
				if err := cat.WriteHeader(reader.Header); err != nil {
					return nil, err
				}
			}

			buf := parallel.NewBufferedCat(cat, bufferSize)
			pathCell := []byte(path)
			for {
				rec, err := reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					return nil, err
				}
				if sourceColumn != "" {
					rec = append(append([][]byte{}, pathCell), rec...)
				}
				if err := buf.Write(rec); err != nil {
					return nil, err
				}
			}
			if err := buf.Close(); err != nil {
				return nil, err
			}
			return catAccumulator{}, nil
		})
	return err
}
