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
	"github.com/dolthub/go-tabular-engine/engine/function"
	"github.com/dolthub/go-tabular-engine/engine/lang"
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/rowpar"
)

func filterCmd() *cobra.Command {
	var invert bool
	cmd := &cobra.Command{
		Use:   "filter <expr> <path>",
		Short: "Keep rows whose expression evaluates truthy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(args[0], args[1], invert)
		},
	}
	cmd.Flags().BoolVarP(&invert, "invert", "v", false, "keep rows whose expression is falsy instead")
	return cmd
}

func runFilter(expr, path string, invert bool) error {
	cfg := currentConfig()
	reader, err := csvio.Open(path, cfg.DelimiterRune(), !flagNoHeader)
	if err != nil {
		return err
	}
	defer reader.Close()

	pipeline, err := lang.Parse(expr)
	if err != nil {
		return err
	}
	bound, err := plan.Bind(pipeline, plan.Header(reader.Header), []string{"index"})
	if err != nil {
		return err
	}
	registry := function.NewRegistry()
	compiled, err := function.Compile(bound, registry)
	if err != nil {
		return err
	}

	writer, err := csvio.Create(flagOutput, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()
	if reader.Header != nil {
		if err := writer.WriteHeader(reader.Header); err != nil {
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
			v, err := function.Evaluate(compiled, function.Record(item.Record), function.Variables{"index": value.Int(int64(item.Index))})
			if err != nil {
				return nil, err
			}
			keep := v.Truthy()
			if invert {
				keep = !keep
			}
			if !keep {
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
