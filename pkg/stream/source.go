// Copyright 2025 The C2PA Bridge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stream presents host-owned byte sources as random-access readable
// streams. A ByteSource is either chunked (bytes are fetched by range and the
// fetch may fail) or contiguous (bytes are already resident). A Cursor wraps
// exactly one source and implements io.Reader and io.Seeker over it.
package stream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
)

// ByteSource is an immutable binary object of known length.
//
// Fetch returns the bytes in [start, end). Callers guarantee
// 0 <= start <= end <= Size(). Implementations must be pure functions of the
// range so one source can back several cursors.
type ByteSource interface {
	Size() int64
	Fetch(start, end int64) ([]byte, error)
}

// Fetcher is the host primitive behind a chunked source: a blob handle with a
// size and a range-slice operation.
type Fetcher interface {
	Size() int64
	Slice(start, end int64) ([]byte, error)
}

// FetchFunc adapts a plain range function of a known size into a Fetcher.
type FetchFunc struct {
	Length int64
	Fn     func(start, end int64) ([]byte, error)
}

// Size returns the declared length.
func (f FetchFunc) Size() int64 { return f.Length }

// Slice calls Fn.
func (f FetchFunc) Slice(start, end int64) ([]byte, error) { return f.Fn(start, end) }

// Chunked is a ByteSource whose bytes are fetched from the host on demand.
// It holds no cache; every Fetch goes to the Fetcher.
type Chunked struct {
	fetcher Fetcher
}

var _ ByteSource = (*Chunked)(nil)

// NewChunked wraps a host fetcher.
func NewChunked(f Fetcher) *Chunked {
	return &Chunked{fetcher: f}
}

// Size returns the total length reported by the host.
func (c *Chunked) Size() int64 {
	return c.fetcher.Size()
}

// Fetch slices [start, end) from the host. Host failures are reported as
// SourceFetchFailed.
func (c *Chunked) Fetch(start, end int64) ([]byte, error) {
	data, err := c.fetcher.Slice(start, end)
	if err != nil {
		return nil, &fault.Error{
			Kind:    fault.KindSourceFetchFailed,
			Field:   "fetch",
			Index:   fault.NoIndex,
			Message: fmt.Sprintf("failed to read range [%d, %d)", start, end),
			Cause:   err,
		}
	}
	return data, nil
}

// Contiguous is a ByteSource over an in-memory buffer. Fetch returns a view
// into the buffer without copying.
type Contiguous struct {
	buf []byte
}

var _ ByteSource = (*Contiguous)(nil)

// NewContiguous wraps buf. The caller must not modify buf while cursors over
// it are in use.
func NewContiguous(buf []byte) *Contiguous {
	return &Contiguous{buf: buf}
}

// Size returns len(buf).
func (c *Contiguous) Size() int64 {
	return int64(len(c.buf))
}

// Fetch returns buf[start:end]. It never fails.
func (c *Contiguous) Fetch(start, end int64) ([]byte, error) {
	return c.buf[start:end], nil
}

// readerAtFetcher serves ranges from an io.ReaderAt.
type readerAtFetcher struct {
	r    io.ReaderAt
	size int64
}

func (f *readerAtFetcher) Size() int64 { return f.size }

func (f *readerAtFetcher) Slice(start, end int64) ([]byte, error) {
	buf := make([]byte, end-start)
	n, err := f.r.ReadAt(buf, start)
	if n == len(buf) {
		// ReadAt may report io.EOF together with a full read at the tail.
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

// NewReaderAt returns a chunked source that reads ranges from r.
func NewReaderAt(r io.ReaderAt, size int64) *Chunked {
	return NewChunked(&readerAtFetcher{r: r, size: size})
}

// File is a chunked source backed by an open file.
type File struct {
	*Chunked
	f *os.File
}

// OpenFile opens path and sizes it once. The file must not change while the
// source is in use.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat source file: %w", err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("source %s is not a regular file", path)
	}

	return &File{Chunked: NewReaderAt(f, info.Size()), f: f}, nil
}

// Close releases the underlying file.
func (s *File) Close() error {
	return s.f.Close()
}
