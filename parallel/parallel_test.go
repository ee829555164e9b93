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

package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type counterAcc struct{ n int64 }

func (c *counterAcc) Merge(other Accumulator) {
	o := other.(*counterAcc)
	atomic.AddInt64(&c.n, o.n)
}

func TestDriverMergesEveryFile(t *testing.T) {
	d := New(nil)
	paths := []string{"a", "b", "c", "d"}

	total, err := d.Run(context.Background(), paths, 2, &counterAcc{}, func(_ context.Context, path string) (Accumulator, error) {
		return &counterAcc{n: int64(len(path))}, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), total.(*counterAcc).n)
}

func TestDriverPropagatesFirstError(t *testing.T) {
	d := New(nil)
	boom := errors.New("boom")

	_, err := d.Run(context.Background(), []string{"x", "y"}, 2, &counterAcc{}, func(_ context.Context, path string) (Accumulator, error) {
		if path == "y" {
			return nil, boom
		}
		return &counterAcc{n: 1}, nil
	})
	require.Error(t, err)
}

func TestCatWriterHeaderWrittenOnce(t *testing.T) {
	var headerCalls int
	cw := NewCatWriter(
		func([]string) error { headerCalls++; return nil },
		func([][]byte) error { return nil },
	)
	require.NoError(t, cw.WriteHeader([]string{"a"}))
	require.NoError(t, cw.WriteHeader([]string{"a"}))
	require.Equal(t, 1, headerCalls)
}

func TestBufferedCatFlushesAtThreshold(t *testing.T) {
	var written [][][]byte
	cw := NewCatWriter(
		func([]string) error { return nil },
		func(r [][]byte) error { written = append(written, r); return nil },
	)
	b := NewBufferedCat(cw, 2)
	require.NoError(t, b.Write([][]byte{[]byte("1")}))
	require.Len(t, written, 0)
	require.NoError(t, b.Write([][]byte{[]byte("2")}))
	require.Len(t, written, 2)
	require.NoError(t, b.Close())
}

func TestBufferedCatZeroThresholdFlushesOnClose(t *testing.T) {
	var written [][][]byte
	cw := NewCatWriter(
		func([]string) error { return nil },
		func(r [][]byte) error { written = append(written, r); return nil },
	)
	b := NewBufferedCat(cw, 0)
	require.NoError(t, b.Write([][]byte{[]byte("1")}))
	require.NoError(t, b.Write([][]byte{[]byte("2")}))
	require.Len(t, written, 0)
	require.NoError(t, b.Close())
	require.Len(t, written, 2)
}
