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

package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyAndNonEmpty(t *testing.T) {
	require.True(t, NewEmpty().IsMatch(""))
	require.False(t, NewEmpty().IsMatch("x"))
	require.True(t, NewNonEmpty().IsMatch("x"))
	require.False(t, NewNonEmpty().IsMatch(""))
}

func TestExactCaseFold(t *testing.T) {
	m := NewExact("Hello", true)
	require.True(t, m.IsMatch("hello"))
	require.True(t, m.IsMatch("HELLO"))
	require.False(t, m.IsMatch("hellox"))
}

func TestHashSet(t *testing.T) {
	m := NewHashSet([]string{"a", "b", "c"}, false)
	require.True(t, m.IsMatch("b"))
	require.False(t, m.IsMatch("d"))
}

func TestRegexOverlappingCount(t *testing.T) {
	m, err := NewRegex("a", false)
	require.NoError(t, err)
	require.Equal(t, 4, m.Count("aaaa", false))
	require.Equal(t, 4, m.Count("aaaa", true))
}

func TestRegexNonOverlappingZeroWidth(t *testing.T) {
	m, err := NewRegex("a*", false)
	require.NoError(t, err)
	// Non-overlapping: "aaa" is one match, then zero-width matches at
	// each subsequent position across "bbb".
	nonOverlap := m.Count("aaabbb", false)
	require.GreaterOrEqual(t, nonOverlap, 1)
}

func TestRegexReplace(t *testing.T) {
	m, err := NewRegex(`\d+`, false)
	require.NoError(t, err)
	out, err := m.Replace("a1b22c333", "#")
	require.NoError(t, err)
	require.Equal(t, "a#b#c#", string(out))
}

func TestRegexSetMatchesAnyAlternative(t *testing.T) {
	m, err := NewRegexSet([]string{"cat", "dog"}, false)
	require.NoError(t, err)
	require.True(t, m.IsMatch("my dog"))
	require.False(t, m.IsMatch("my fish"))
}

func TestSubstringMatcher(t *testing.T) {
	m, err := NewSubstring([]string{"foo", "bar"}, true)
	require.NoError(t, err)
	require.True(t, m.IsMatch("a FOO string"))
	require.False(t, m.IsMatch("nothing here"))
}

func TestUrlPrefixMatchesCanonicalTokens(t *testing.T) {
	m := NewUrlPrefix([]string{"com.example/blog"})
	require.True(t, m.IsMatch("https://www.example.com/blog/post-1"))
	require.False(t, m.IsMatch("https://www.other.com/blog/post-1"))
}

func TestUrlPrefixInvalidUTF8NoMatch(t *testing.T) {
	m := NewUrlPrefix([]string{"com.example"})
	require.False(t, m.IsMatch(string([]byte{0xff, 0xfe})))
}

func TestSetTypedMatchersRejectReplace(t *testing.T) {
	m := NewHashSet([]string{"a"}, false)
	_, err := m.Replace("a", "b")
	require.Error(t, err)
}
