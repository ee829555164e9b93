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

package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, None.Truthy())
	require.False(t, Bool(false).Truthy())
	require.True(t, Bool(true).Truthy())
	require.False(t, Int(0).Truthy())
	require.True(t, Int(1).Truthy())
	require.False(t, Float(0.0).Truthy())
	require.True(t, Float(0.1).Truthy())
	require.False(t, String("").Truthy())
	require.True(t, String("x").Truthy())
	require.False(t, List(nil).Truthy())
	require.True(t, List([]Value{Int(1)}).Truthy())
}

func TestTryAsNumberIntBeforeFloat(t *testing.T) {
	n, err := String("42").TryAsNumber()
	require.NoError(t, err)
	require.False(t, n.IsFloat())
	require.Equal(t, int64(42), n.AsInt())

	n, err = String("4.5").TryAsNumber()
	require.NoError(t, err)
	require.True(t, n.IsFloat())

	_, err = String("").TryAsNumber()
	require.Error(t, err)

	_, err = String("abc").TryAsNumber()
	require.Error(t, err)
}

func TestAddOverflowDetected(t *testing.T) {
	_, err := Add(NumberFromInt(9223372036854775807), NumberFromInt(1))
	require.Error(t, err)

	sum, err := Add(NumberFromInt(1), NumberFromFloat(1.5))
	require.NoError(t, err)
	require.True(t, sum.IsFloat())
	require.Equal(t, 2.5, sum.AsFloat())
}

func TestEqualCrossType(t *testing.T) {
	require.True(t, Int(1).Equal(Float(1.0)))
	require.True(t, Int(1).Equal(Bool(true)))
	require.False(t, Int(1).Equal(String("1")))
	require.True(t, String("a").Equal(String("a")))
}

func TestSerializeStringJoinsListsWithSeparator(t *testing.T) {
	v := List([]Value{Int(1), String("x"), None})
	require.Equal(t, "1|x|", v.SerializeString("|"))
	require.Equal(t, "1;x;", v.SerializeString(";"))
}

func TestTryAsUsize(t *testing.T) {
	n, err := Int(5).TryAsUsize()
	require.NoError(t, err)
	require.Equal(t, 5, n)

	_, err = Int(-1).TryAsUsize()
	require.Error(t, err)

	_, err = Float(1.5).TryAsUsize()
	require.Error(t, err)
}
