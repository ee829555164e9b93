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

package rowpar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMapPreservesInputOrder(t *testing.T) {
	ctx := context.Background()
	in := make(chan Item, 100)
	for i := 0; i < 50; i++ {
		in <- Item{Index: i, Record: [][]byte{[]byte("x")}}
	}
	close(in)

	out, wait := Map(ctx, in, 8, 4, func(_ context.Context, item Item) (interface{}, error) {
		// Reverse-ish processing delay so completion order scrambles.
		time.Sleep(time.Duration(50-item.Index%7) * time.Microsecond)
		return item.Index * 2, nil
	})

	got := make([]int, 0, 50)
	for r := range out {
		got = append(got, r.Output.(int))
	}
	require.NoError(t, wait())
	require.Len(t, got, 50)
	for i, v := range got {
		require.Equal(t, i*2, v)
	}
}

func TestMapPropagatesFirstWorkerError(t *testing.T) {
	ctx := context.Background()
	in := make(chan Item, 10)
	for i := 0; i < 10; i++ {
		in <- Item{Index: i}
	}
	close(in)

	boom := errors.New("boom")
	out, wait := Map(ctx, in, 4, 2, func(_ context.Context, item Item) (interface{}, error) {
		if item.Index == 3 {
			return nil, boom
		}
		return item.Index, nil
	})

	for range out {
	}
	require.ErrorIs(t, wait(), boom)
}
