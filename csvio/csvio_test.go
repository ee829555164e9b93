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

package csvio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w, err := Create(path, ',')
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader([]string{"a", "b"}))
	require.NoError(t, w.WriteHeader([]string{"x", "y"})) // no-op, header already written
	require.NoError(t, w.Write([][]byte{[]byte("1"), []byte("2")}))
	require.NoError(t, w.Close())

	r, err := Open(path, ',', true)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, []string{"a", "b"}, r.Header)

	rec, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("1"), []byte("2")}, rec)

	_, err = r.Read()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadDistinguishesEOFFromParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2,3\n"), 0o644))

	r, err := Open(path, ',', true)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)

	_, err = r.Read()
	require.ErrorIs(t, err, io.EOF)
}

func TestGzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv.gz")

	w, err := Create(path, ',')
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader([]string{"a"}))
	require.NoError(t, w.Write([][]byte{[]byte("hello")}))
	require.NoError(t, w.Close())

	r, err := Open(path, ',', true)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, []string{"a"}, r.Header)
	rec, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, "hello", string(rec[0]))
}

func TestCustomDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tsv")

	w, err := Create(path, '\t')
	require.NoError(t, err)
	require.NoError(t, w.Write([][]byte{[]byte("a"), []byte("b")}))
	require.NoError(t, w.Close())

	r, err := Open(path, '\t', false)
	require.NoError(t, err)
	defer r.Close()
	rec, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b")}, rec)
}
