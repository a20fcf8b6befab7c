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

package engine

import (
	"bytes"
	"context"
	"io"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/stream"
	"github.com/contentauth/c2pa-bridge/pkg/tracing"
)

// ReadOptions configures FromSource.
type ReadOptions struct {
	// Settings is engine settings JSON scoped to this read. Empty uses the
	// engine defaults.
	Settings string
}

// Reader is a parsed manifest store.
type Reader struct {
	h ReaderHandle
}

// FromSource reads the manifest store of the asset in src.
func FromSource(ctx context.Context, e Engine, format string, src stream.ByteSource, opts ReadOptions) (*Reader, error) {
	var h ReaderHandle
	err := tracing.Run(ctx, "engine.read", map[string]interface{}{
		"engine.format":      format,
		"engine.source_size": src.Size(),
	}, func(ctx context.Context) error {
		var err error
		h, err = e.Read(ctx, format, stream.NewCursor(src), opts.Settings)
		return fault.Engine("read", err)
	})
	if err != nil {
		return nil, err
	}
	return &Reader{h: h}, nil
}

// FromFragment reads a fragmented asset. init and fragment each get their
// own cursor.
func FromFragment(ctx context.Context, e Engine, format string, init, fragment stream.ByteSource) (*Reader, error) {
	var h ReaderHandle
	err := tracing.Run(ctx, "engine.read", map[string]interface{}{
		"engine.format":        format,
		"engine.source_size":   init.Size(),
		"engine.fragment_size": fragment.Size(),
	}, func(ctx context.Context) error {
		var err error
		h, err = e.ReadFragment(ctx, format, stream.NewCursor(init), stream.NewCursor(fragment))
		return fault.Engine("read_fragment", err)
	})
	if err != nil {
		return nil, err
	}
	return &Reader{h: h}, nil
}

// ActiveLabel returns the label of the active manifest, if any.
func (r *Reader) ActiveLabel() (string, bool) { return r.h.ActiveLabel() }

// JSON returns the manifest store as JSON.
func (r *Reader) JSON() string { return r.h.JSON() }

// ResourceToWriter writes the resource identified by uri to w.
func (r *Reader) ResourceToWriter(uri string, w io.Writer) error {
	return fault.Engine("resource_to_writer", r.h.ResourceToWriter(uri, w))
}

// ResourceBytes returns the resource identified by uri.
func (r *Reader) ResourceBytes(uri string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.ResourceToWriter(uri, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
