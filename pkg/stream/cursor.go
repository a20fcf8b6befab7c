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

package stream

import (
	"fmt"
	"io"
	"math"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
)

// Cursor is a read/seek position over one ByteSource.
//
// A Cursor is owned by a single caller for the duration of one operation and
// is not safe for concurrent use. It never reads ahead: each Read fetches
// exactly the range it returns.
type Cursor struct {
	src    ByteSource
	offset int64
}

var _ io.ReadSeeker = (*Cursor)(nil)

// NewCursor returns a cursor at offset 0.
func NewCursor(src ByteSource) *Cursor {
	return &Cursor{src: src}
}

// Offset returns the current absolute position. It may exceed the source size.
func (c *Cursor) Offset() int64 {
	return c.offset
}

// Size returns the length of the underlying source.
func (c *Cursor) Size() int64 {
	return c.src.Size()
}

// Read copies up to len(p) bytes starting at the current offset.
//
// At or past the end of the source Read returns 0, io.EOF. A short final read
// leaves p[n:] untouched; callers must rely on n. If the source fails to
// fetch, or returns no bytes or more bytes than requested, Read returns a
// SourceFetchFailed error, copies nothing, and leaves the offset unchanged so
// the read can be retried.
func (c *Cursor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	pos := c.offset
	total := c.src.Size()
	if pos >= total {
		return 0, io.EOF
	}

	end := total
	if want := int64(len(p)); want < total-pos {
		end = pos + want
	}

	data, err := c.src.Fetch(pos, end)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, fault.New(fault.KindSourceFetchFailed,
			fmt.Sprintf("source returned no data for range [%d, %d)", pos, end), io.ErrUnexpectedEOF)
	}
	if int64(len(data)) > end-pos {
		return 0, fault.New(fault.KindSourceFetchFailed,
			fmt.Sprintf("source returned %d bytes for range [%d, %d)", len(data), pos, end), nil)
	}

	n := copy(p, data)
	c.offset += int64(n)
	return n, nil
}

// Seek sets the offset for the next Read, interpreted according to whence:
// io.SeekStart is relative to the start of the source, io.SeekCurrent to the
// current offset and io.SeekEnd to the end of the source.
//
// Seeking past the end is allowed; subsequent reads return io.EOF. Seeking to
// a negative absolute offset returns a SeekOutOfRange error and leaves the
// offset unchanged.
func (c *Cursor) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = c.offset
	case io.SeekEnd:
		base = c.src.Size()
	default:
		return c.offset, fault.New(fault.KindSeekOutOfRange, fmt.Sprintf("invalid whence %d", whence), nil)
	}

	if offset > 0 && base > math.MaxInt64-offset {
		return c.offset, fault.New(fault.KindSeekOutOfRange,
			fmt.Sprintf("offset %d from %d overflows", offset, base), nil)
	}

	next := base + offset
	if next < 0 {
		return c.offset, fault.New(fault.KindSeekOutOfRange,
			fmt.Sprintf("seek to negative position %d", next), nil)
	}

	c.offset = next
	return next, nil
}
