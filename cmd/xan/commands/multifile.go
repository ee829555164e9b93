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
	"fmt"
	"strings"

	"github.com/dolthub/go-tabular-engine/csvio"
	"github.com/dolthub/go-tabular-engine/engine/selection"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
	"github.com/dolthub/go-tabular-engine/parallel"
)

// headerBytes converts a string header into the byte form
// selection.Collect materializes, so a file's header can be compared
// against the run's expected shape by identical selection semantics
// rather than a bespoke string comparison.
func headerBytes(header []string) [][]byte {
	out := make([][]byte, len(header))
	for i, h := range header {
		out[i] = []byte(h)
	}
	return out
}

// checkHeaderShape enforces the merge invariant every freq/stats/agg
// multi-file run requires: identical column selection order and names
// across files (§4.I, §4.J). A mismatch aborts the run with a
// schema-merge error rather than silently merging misaligned columns.
func checkHeaderShape(expected, got []string) error {
	all := selection.All(len(expected))
	a := all.Collect(headerBytes(expected))
	b := selection.All(len(got)).Collect(headerBytes(got))
	if !selection.SameShape(a, b) {
		return xerrors.ErrSchemaMerge.New(fmt.Sprintf("expected [%s], got [%s]",
			strings.Join(expected, ","), strings.Join(got, ",")))
	}
	return nil
}

// splitColumnList splits a comma-separated "-s/--select"/"--cols"
// flag value into trimmed column names, dropping empty entries so a
// trailing comma or repeated commas don't produce spurious "" names.
func splitColumnList(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// runAcrossFiles drives the multi-file parallel reducer (component I)
// over paths: opens each file, verifies its header against the shape
// of the first file opened, calls perFile to build that file's partial
// accumulator, and merges every partial result into initial via
// parallel.Driver.
func runAcrossFiles(
	paths []string,
	threads int,
	noHeader bool,
	delimiter rune,
	initial parallel.Accumulator,
	expectedHeader []string,
	perFile func(reader *csvio.Reader) (parallel.Accumulator, error),
) (parallel.Accumulator, error) {
	driver := parallel.New(nil)
	return driver.Run(context.Background(), paths, threads, initial, func(_ context.Context, path string) (parallel.Accumulator, error) {
		reader, err := csvio.Open(path, delimiter, !noHeader)
		if err != nil {
			return nil, err
		}
		defer reader.Close()

		if !noHeader {
			if err := checkHeaderShape(expectedHeader, reader.Header); err != nil {
				return nil, err
			}
		}
		return perFile(reader)
	})
}
