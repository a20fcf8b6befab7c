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
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
)

// countingFetcher records every range requested and can be told to fail.
type countingFetcher struct {
	data  []byte
	calls [][2]int64
	fail  error
}

func (f *countingFetcher) Size() int64 { return int64(len(f.data)) }

func (f *countingFetcher) Slice(start, end int64) ([]byte, error) {
	f.calls = append(f.calls, [2]int64{start, end})
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]byte, end-start)
	copy(out, f.data[start:end])
	return out, nil
}

func sources(data []byte) map[string]func() ByteSource {
	return map[string]func() ByteSource{
		"chunked":    func() ByteSource { return NewChunked(&countingFetcher{data: data}) },
		"contiguous": func() ByteSource { return NewContiguous(data) },
		"readerAt":   func() ByteSource { return NewReaderAt(bytes.NewReader(data), int64(len(data))) },
	}
}

func TestCursorReadSequence(t *testing.T) {
	for name, mk := range sources([]byte{0, 1, 2, 3}) {
		t.Run(name, func(t *testing.T) {
			c := NewCursor(mk())

			buf := make([]byte, 2)
			n, err := c.Read(buf)
			if err != nil || n != 2 || !bytes.Equal(buf, []byte{0, 1}) {
				t.Fatalf("first Read() = %d, %v, %v; want 2, nil, [0 1]", n, err, buf)
			}

			if pos, err := c.Seek(-1, io.SeekCurrent); err != nil || pos != 1 {
				t.Fatalf("Seek(-1, Current) = %d, %v; want 1, nil", pos, err)
			}

			big := make([]byte, 10)
			n, err = c.Read(big)
			if err != nil || n != 3 || !bytes.Equal(big[:n], []byte{1, 2, 3}) {
				t.Fatalf("second Read() = %d, %v, %v; want 3, nil, [1 2 3]", n, err, big[:n])
			}
			if c.Offset() != 4 {
				t.Errorf("Offset() = %d, want 4", c.Offset())
			}

			n, err = c.Read(big)
			if n != 0 || !errors.Is(err, io.EOF) {
				t.Errorf("Read() at end = %d, %v; want 0, io.EOF", n, err)
			}
		})
	}
}

func TestCursorShortReadLeavesTailUntouched(t *testing.T) {
	c := NewCursor(NewContiguous([]byte("abc")))
	buf := []byte("XXXXXX")

	n, err := c.Read(buf)
	if err != nil || n != 3 {
		t.Fatalf("Read() = %d, %v; want 3, nil", n, err)
	}
	if string(buf) != "abcXXX" {
		t.Errorf("buffer = %q, want %q", buf, "abcXXX")
	}
}

func TestCursorReadAll(t *testing.T) {
	data := bytes.Repeat([]byte("c2pa"), 1000)
	for name, mk := range sources(data) {
		t.Run(name, func(t *testing.T) {
			got, err := io.ReadAll(NewCursor(mk()))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("ReadAll() returned %d bytes, want %d", len(got), len(data))
			}
		})
	}
}

func TestCursorZeroLengthRead(t *testing.T) {
	f := &countingFetcher{data: []byte{1, 2, 3}}
	c := NewCursor(NewChunked(f))

	n, err := c.Read(nil)
	if n != 0 || err != nil {
		t.Errorf("Read(nil) = %d, %v; want 0, nil", n, err)
	}
	if len(f.calls) != 0 {
		t.Errorf("zero-length read fetched %v", f.calls)
	}
}

func TestCursorEmptySource(t *testing.T) {
	c := NewCursor(NewContiguous(nil))
	n, err := c.Read(make([]byte, 8))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Read() on empty source = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestCursorFetchesOnlyRequestedRange(t *testing.T) {
	f := &countingFetcher{data: make([]byte, 100)}
	c := NewCursor(NewChunked(f))

	if _, err := c.Seek(90, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Read(make([]byte, 64)); err != nil {
		t.Fatal(err)
	}

	want := [][2]int64{{90, 100}}
	if len(f.calls) != 1 || f.calls[0] != want[0] {
		t.Errorf("fetch calls = %v, want %v", f.calls, want)
	}
}

func TestCursorFetchFailureKeepsOffset(t *testing.T) {
	hostErr := errors.New("blob revoked")
	f := &countingFetcher{data: []byte{9, 8, 7, 6}}
	c := NewCursor(NewChunked(f))

	if _, err := c.Seek(1, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	f.fail = hostErr
	buf := []byte{0xAA, 0xAA}
	n, err := c.Read(buf)
	if n != 0 {
		t.Errorf("Read() n = %d, want 0", n)
	}
	if !fault.IsKind(err, fault.KindSourceFetchFailed) {
		t.Errorf("Read() error = %v, want SourceFetchFailed", err)
	}
	if !errors.Is(err, hostErr) {
		t.Errorf("Read() error should wrap the host error, got %v", err)
	}
	if c.Offset() != 1 {
		t.Errorf("Offset() after failure = %d, want 1", c.Offset())
	}
	if !bytes.Equal(buf, []byte{0xAA, 0xAA}) {
		t.Errorf("buffer modified on failure: %v", buf)
	}

	// The same read succeeds once the host recovers.
	f.fail = nil
	n, err = c.Read(buf)
	if err != nil || n != 2 || !bytes.Equal(buf, []byte{8, 7}) {
		t.Errorf("retry Read() = %d, %v, %v; want 2, nil, [8 7]", n, err, buf)
	}
}

func TestCursorEmptyFetchIsFailure(t *testing.T) {
	src := NewChunked(FetchFunc{
		Length: 4,
		Fn:     func(start, end int64) ([]byte, error) { return nil, nil },
	})
	c := NewCursor(src)

	_, err := c.Read(make([]byte, 4))
	if !fault.IsKind(err, fault.KindSourceFetchFailed) {
		t.Errorf("Read() error = %v, want SourceFetchFailed", err)
	}
	if c.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", c.Offset())
	}
}

func TestCursorOversizedFetchIsFailure(t *testing.T) {
	src := NewChunked(FetchFunc{
		Length: 4,
		Fn: func(start, end int64) ([]byte, error) {
			return []byte{0, 1, 2, 3, 9, 9, 9, 9}, nil
		},
	})
	c := NewCursor(src)

	buf := make([]byte, 8)
	n, err := c.Read(buf)
	if !fault.IsKind(err, fault.KindSourceFetchFailed) {
		t.Errorf("Read() error = %v, want SourceFetchFailed", err)
	}
	if n != 0 {
		t.Errorf("Read() n = %d, want 0", n)
	}
	if !bytes.Equal(buf, make([]byte, 8)) {
		t.Errorf("Read() copied %v on failure", buf)
	}
	if c.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", c.Offset())
	}
}

func TestCursorReadSizesConcatenate(t *testing.T) {
	data := []byte("0123456789")
	n := int64(len(data))

	tests := [][]int{
		{1},
		{10},
		{11},
		{3, 3, 3, 3},
		{1, 2, 3, 4},
		{4, 0, 4},
		{9, 1, 1},
		{20, 5},
		{2, 2, 2, 2, 2, 2, 2},
	}
	// Deterministic splits of 12 bytes into read sizes 1..4.
	for seed := 0; seed < 32; seed++ {
		var sizes []int
		total, x := 0, seed
		for total < 12 {
			b := x%4 + 1
			x = x/4 + seed + len(sizes)
			sizes = append(sizes, b)
			total += b
		}
		tests = append(tests, sizes)
	}

	for name, mk := range sources(data) {
		t.Run(name, func(t *testing.T) {
			for _, sizes := range tests {
				c := NewCursor(mk())

				var got []byte
				var sum int64
				for _, b := range sizes {
					buf := make([]byte, b)
					k, err := c.Read(buf)
					if err != nil && !errors.Is(err, io.EOF) {
						t.Fatalf("sizes %v: Read(%d) error = %v", sizes, b, err)
					}
					got = append(got, buf[:k]...)
					sum += int64(b)
				}

				want := min(n, sum)
				if !bytes.Equal(got, data[:want]) {
					t.Errorf("sizes %v: read %q, want %q", sizes, got, data[:want])
				}
				if c.Offset() != want {
					t.Errorf("sizes %v: Offset() = %d, want %d", sizes, c.Offset(), want)
				}
			}
		})
	}
}

func TestCursorSeekCurrentComposes(t *testing.T) {
	data := []byte("0123456789")

	tests := []struct {
		start, d1, d2 int64
	}{
		{0, 3, 4},
		{5, -2, -3},
		{5, 3, -6},
		{2, -2, 7},
		{9, 4, -5},
		{0, 12, -1},
		{7, 0, 0},
		{4, -4, 0},
	}

	for name, mk := range sources(data) {
		t.Run(name, func(t *testing.T) {
			for _, tt := range tests {
				twice := NewCursor(mk())
				once := NewCursor(mk())
				for _, c := range []*Cursor{twice, once} {
					if _, err := c.Seek(tt.start, io.SeekStart); err != nil {
						t.Fatal(err)
					}
				}

				if _, err := twice.Seek(tt.d1, io.SeekCurrent); err != nil {
					t.Fatalf("Seek(%d, Current) error = %v", tt.d1, err)
				}
				got, err := twice.Seek(tt.d2, io.SeekCurrent)
				if err != nil {
					t.Fatalf("Seek(%d, Current) error = %v", tt.d2, err)
				}
				want, err := once.Seek(tt.d1+tt.d2, io.SeekCurrent)
				if err != nil {
					t.Fatalf("Seek(%d, Current) error = %v", tt.d1+tt.d2, err)
				}
				if got != want {
					t.Errorf("start %d: seeks %d then %d = %d, single seek = %d", tt.start, tt.d1, tt.d2, got, want)
				}

				a, _ := io.ReadAll(twice)
				b, _ := io.ReadAll(once)
				if !bytes.Equal(a, b) {
					t.Errorf("start %d: reads differ after composed seek: %q vs %q", tt.start, a, b)
				}
			}
		})
	}
}

func TestCursorSeek(t *testing.T) {
	tests := []struct {
		name    string
		start   int64
		offset  int64
		whence  int
		want    int64
		wantErr bool
	}{
		{name: "start", start: 3, offset: 5, whence: io.SeekStart, want: 5},
		{name: "start zero", start: 3, offset: 0, whence: io.SeekStart, want: 0},
		{name: "current forward", start: 3, offset: 2, whence: io.SeekCurrent, want: 5},
		{name: "current back", start: 3, offset: -3, whence: io.SeekCurrent, want: 0},
		{name: "end", start: 0, offset: 0, whence: io.SeekEnd, want: 10},
		{name: "end back", start: 0, offset: -4, whence: io.SeekEnd, want: 6},
		{name: "past end", start: 0, offset: 5, whence: io.SeekEnd, want: 15},
		{name: "negative start", start: 3, offset: -1, whence: io.SeekStart, want: 3, wantErr: true},
		{name: "underflow current", start: 3, offset: -4, whence: io.SeekCurrent, want: 3, wantErr: true},
		{name: "underflow end", start: 3, offset: -11, whence: io.SeekEnd, want: 3, wantErr: true},
		{name: "bad whence", start: 3, offset: 0, whence: 7, want: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(NewContiguous(make([]byte, 10)))
			if _, err := c.Seek(tt.start, io.SeekStart); err != nil {
				t.Fatal(err)
			}

			got, err := c.Seek(tt.offset, tt.whence)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Seek() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !fault.IsKind(err, fault.KindSeekOutOfRange) {
				t.Errorf("Seek() error = %v, want SeekOutOfRange", err)
			}
			if got != tt.want || c.Offset() != tt.want {
				t.Errorf("Seek() = %d (offset %d), want %d", got, c.Offset(), tt.want)
			}
		})
	}
}

func TestCursorSeekEndThenRead(t *testing.T) {
	data := []byte("0123456789")
	c := NewCursor(NewContiguous(data))

	for k := int64(1); k <= int64(len(data)); k++ {
		if _, err := c.Seek(-k, io.SeekEnd); err != nil {
			t.Fatalf("Seek(-%d, End) error = %v", k, err)
		}
		got, err := io.ReadAll(c)
		if err != nil {
			t.Fatal(err)
		}
		if want := data[int64(len(data))-k:]; !bytes.Equal(got, want) {
			t.Errorf("after Seek(-%d, End) read %q, want %q", k, got, want)
		}
	}
}

func TestCursorPastEndReadsNothing(t *testing.T) {
	f := &countingFetcher{data: []byte{1, 2}}
	c := NewCursor(NewChunked(f))
	if _, err := c.Seek(50, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	n, err := c.Read(make([]byte, 4))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Read() past end = %d, %v; want 0, io.EOF", n, err)
	}
	if len(f.calls) != 0 {
		t.Errorf("read past end fetched %v", f.calls)
	}
}

func TestIndependentCursorsShareSource(t *testing.T) {
	src := NewContiguous([]byte("abcdef"))
	a, b := NewCursor(src), NewCursor(src)

	if _, err := a.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	bufA, bufB := make([]byte, 3), make([]byte, 3)
	if _, err := a.Read(bufA); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Read(bufB); err != nil {
		t.Fatal(err)
	}
	if string(bufA) != "def" || string(bufB) != "abc" {
		t.Errorf("cursors interfered: a=%q b=%q", bufA, bufB)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset.bin")
	data := []byte("file-backed source")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer src.Close()

	if src.Size() != int64(len(data)) {
		t.Errorf("Size() = %d, want %d", src.Size(), len(data))
	}
	got, err := io.ReadAll(NewCursor(src))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read %q, want %q", got, data)
	}

	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("OpenFile() on a missing path should fail")
	}
	if _, err := OpenFile(t.TempDir()); err == nil {
		t.Error("OpenFile() on a directory should fail")
	}
}

func TestCursorReadSeekScenario(t *testing.T) {
	type step struct {
		seek   bool
		offset int64
		whence int
		want   []byte
	}
	steps := []step{
		{want: []byte{0, 1}},
		{want: []byte{2, 3}},
		{seek: true, offset: 2, whence: io.SeekStart, want: []byte{2, 3}},
		{seek: true, offset: -4, whence: io.SeekCurrent, want: []byte{0, 1}},
		{seek: true, offset: -2, whence: io.SeekEnd, want: []byte{2, 3}},
		{seek: true, offset: 10, whence: io.SeekStart, want: []byte{}},
	}

	for name, mk := range sources([]byte{0, 1, 2, 3}) {
		t.Run(name, func(t *testing.T) {
			c := NewCursor(mk())
			for i, s := range steps {
				if s.seek {
					if _, err := c.Seek(s.offset, s.whence); err != nil {
						t.Fatalf("step %d: Seek() error = %v", i, err)
					}
				}
				buf := make([]byte, 2)
				n, err := c.Read(buf)
				if err != nil && !errors.Is(err, io.EOF) {
					t.Fatalf("step %d: Read() error = %v", i, err)
				}
				if !bytes.Equal(buf[:n], s.want) {
					t.Errorf("step %d: read %v, want %v", i, buf[:n], s.want)
				}
			}
		})
	}
}
