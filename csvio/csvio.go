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

// Package csvio is the ambient byte-record reader/writer the engine
// reads from and writes to: delimited text, optional header row,
// transparent gzip for ".gz" paths. The Writer writes cells that are
// already serialized to bytes; it does no value formatting of its own.
package csvio

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// Reader streams byte records from a delimited file, decompressing
// gzip transparently when the source path ends ".gz".
type Reader struct {
	file   *os.File
	gzip   *gzip.Reader
	csv    *csv.Reader
	Header []string
}

// Open opens path (or stdin, when path is "-") for reading at the
// given single-byte delimiter, consuming the first record as the
// header when withHeader is set.
func Open(path string, delimiter rune, withHeader bool) (*Reader, error) {
	var f *os.File
	var err error
	if path == "-" {
		f = os.Stdin
	} else {
		f, err = os.Open(path)
		if err != nil {
			return nil, xerrors.ErrIO.New(err.Error())
		}
	}

	r := &Reader{file: f}
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			closeQuiet(f)
			return nil, xerrors.ErrIO.New(err.Error())
		}
		r.gzip = gz
		src = gz
	}

	cr := csv.NewReader(src)
	cr.Comma = delimiter
	cr.ReuseRecord = true
	cr.LazyQuotes = true
	r.csv = cr

	if withHeader {
		header, err := cr.Read()
		if err != nil {
			r.Close()
			return nil, xerrors.ErrIO.New(err.Error())
		}
		r.Header = append([]string(nil), header...)
	}
	return r, nil
}

// Read returns the next record's cells as owned byte slices (csv's
// ReuseRecord means the caller must not hold onto the string slice
// csv.Reader.Read returns past the next call, so Read here copies).
// End of file is reported as io.EOF, unwrapped, so callers can tell it
// apart from a genuine parse/read failure with a plain comparison;
// every other error is fatal and comes back wrapped in
// xerrors.ErrIO (§7: "I/O errors are always fatal").
func (r *Reader) Read() ([][]byte, error) {
	rec, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, xerrors.ErrIO.New(err.Error())
	}
	out := make([][]byte, len(rec))
	for i, cell := range rec {
		out[i] = []byte(cell)
	}
	return out, nil
}

// Close releases the reader's underlying file (and gzip stream, if
// any); guaranteed even when Open failed partway through, so a
// reorder-buffer's worker goroutines never leak file handles on error
// (§5: "CSV readers close file handles on drop").
func (r *Reader) Close() error {
	if r.gzip != nil {
		_ = r.gzip.Close()
	}
	if r.file != nil && r.file != os.Stdin {
		return r.file.Close()
	}
	return nil
}

func closeQuiet(f *os.File) {
	if f != os.Stdin {
		_ = f.Close()
	}
}

// Writer writes delimited byte records, with optional gzip
// compression and a once-only header row.
type Writer struct {
	file        *os.File
	gzip        *gzip.Writer
	csv         *csv.Writer
	wroteHeader bool
}

// Create opens path (or stdout, when path is "-") for writing at the
// given delimiter, gzip-compressing when the path ends ".gz".
func Create(path string, delimiter rune) (*Writer, error) {
	var f *os.File
	var err error
	if path == "-" {
		f = os.Stdout
	} else {
		f, err = os.Create(path)
		if err != nil {
			return nil, xerrors.ErrIO.New(err.Error())
		}
	}

	w := &Writer{file: f}
	var dst io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		w.gzip = gz
		dst = gz
	}

	cw := csv.NewWriter(dst)
	cw.Comma = delimiter
	w.csv = cw
	return w, nil
}

// WriteHeader writes header once; subsequent calls are no-ops, the
// way the multi-file driver writes one header across many merged
// files (§4.I: "Headers are written once").
func (w *Writer) WriteHeader(header []string) error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	return w.csv.Write(header)
}

// Write writes one record's cells.
func (w *Writer) Write(record [][]byte) error {
	cells := make([]string, len(record))
	for i, c := range record {
		cells[i] = string(c)
	}
	return w.csv.Write(cells)
}

// Flush flushes the csv writer's buffer to the underlying stream.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the writer, including the gzip stream.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.gzip != nil {
		if err := w.gzip.Close(); err != nil {
			return xerrors.ErrIO.New(err.Error())
		}
	}
	if w.file != os.Stdout {
		return w.file.Close()
	}
	return nil
}
