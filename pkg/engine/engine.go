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

// Package engine connects byte sources and signers to a manifest engine.
//
// The engine itself is external and consumed through the Engine interface.
// This package only adapts arguments: every stream-consuming call gets a
// fresh stream.Cursor, every Builder.Sign builds one signer, and engine
// failures are reported as EngineError with their cause intact.
package engine

import (
	"context"
	"io"

	"github.com/contentauth/c2pa-bridge/pkg/signing"
)

// Engine assembles and reads content-provenance manifests.
type Engine interface {
	// NewBuilder parses a manifest definition.
	NewBuilder(manifestJSON string) (BuilderHandle, error)
	// Read parses the manifest store embedded in r. settingsJSON may be
	// empty to use the engine defaults.
	Read(ctx context.Context, format string, r io.ReadSeeker, settingsJSON string) (ReaderHandle, error)
	// ReadFragment parses a fragmented asset from its initial segment and
	// one fragment.
	ReadFragment(ctx context.Context, format string, init, fragment io.ReadSeeker) (ReaderHandle, error)
	// LoadSettings applies process-wide engine settings.
	LoadSettings(settingsJSON string) error
}

// BuilderHandle is the engine's mutable manifest builder.
type BuilderHandle interface {
	SetRemoteURL(url string)
	SetNoEmbed(noEmbed bool)
	SetThumbnail(format string, r io.ReadSeeker) error
	AddIngredient(ingredientJSON, format string, r io.ReadSeeker) error
	AddResource(id string, r io.ReadSeeker) error
	Definition() (string, error)
	// Sign embeds a signed manifest into the asset read from src and writes
	// the result to dst.
	Sign(ctx context.Context, s signing.Signer, format string, src io.ReadSeeker, dst io.Writer) error
}

// ReaderHandle is a parsed manifest store.
type ReaderHandle interface {
	ActiveLabel() (string, bool)
	JSON() string
	ResourceToWriter(uri string, w io.Writer) error
}
