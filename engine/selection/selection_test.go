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

package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromNamesResolvesInGivenOrder(t *testing.T) {
	header := []string{"name", "count1", "count2"}

	sel, err := FromNames([]string{"count2", "count1"}, header)
	require.NoError(t, err)
	require.Equal(t, Selection{2, 1}, sel)

	record := [][]byte{[]byte("john"), []byte("3"), []byte("6")}
	require.Equal(t, [][]byte{[]byte("6"), []byte("3")}, sel.Select(record))
}

func TestFromNamesUnknownColumn(t *testing.T) {
	_, err := FromNames([]string{"missing"}, []string{"a", "b"})
	require.Error(t, err)
}

func TestFromNamesEmpty(t *testing.T) {
	sel, err := FromNames(nil, []string{"a", "b"})
	require.NoError(t, err)
	require.Empty(t, sel)
}
