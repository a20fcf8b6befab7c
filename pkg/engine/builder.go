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
	"fmt"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
	"github.com/contentauth/c2pa-bridge/pkg/stream"
	"github.com/contentauth/c2pa-bridge/pkg/tracing"
)

// Builder accumulates a manifest definition and signs assets with it.
type Builder struct {
	h      BuilderHandle
	logger logging.Logger
}

// FromJSON creates a builder from a manifest definition.
func FromJSON(e Engine, manifestJSON string, logger logging.Logger) (*Builder, error) {
	h, err := e.NewBuilder(manifestJSON)
	if err != nil {
		return nil, fault.Engine("from_json", err)
	}
	return &Builder{h: h, logger: logging.EnsureLogger(logger)}, nil
}

// SetRemoteURL sets where the manifest will be served from. Combine with
// SetNoEmbed(true) for remote-only manifests.
func (b *Builder) SetRemoteURL(url string) { b.h.SetRemoteURL(url) }

// SetNoEmbed controls whether the manifest is embedded in the output asset.
func (b *Builder) SetNoEmbed(noEmbed bool) { b.h.SetNoEmbed(noEmbed) }

// SetThumbnail sets the manifest thumbnail from src.
func (b *Builder) SetThumbnail(format string, src stream.ByteSource) error {
	return fault.Engine("set_thumbnail", b.h.SetThumbnail(format, stream.NewCursor(src)))
}

// AddIngredient adds src as an ingredient. Values in ingredientJSON take
// precedence over those the engine derives from the asset.
func (b *Builder) AddIngredient(ctx context.Context, ingredientJSON, format string, src stream.ByteSource) error {
	return tracing.Run(ctx, "engine.add_ingredient", map[string]interface{}{
		"engine.format":      format,
		"engine.source_size": src.Size(),
	}, func(ctx context.Context) error {
		return fault.Engine("add_ingredient", b.h.AddIngredient(ingredientJSON, format, stream.NewCursor(src)))
	})
}

// AddResource adds src under id, which must match an identifier in the
// manifest.
func (b *Builder) AddResource(id string, src stream.ByteSource) error {
	return fault.Engine("add_resource", b.h.AddResource(id, stream.NewCursor(src)))
}

// Definition returns the current manifest definition as JSON.
func (b *Builder) Definition() (string, error) {
	def, err := b.h.Definition()
	if err != nil {
		return "", fault.Engine("definition", err)
	}
	return def, nil
}

// Sign builds a callback signer from def and signs src with it. A malformed
// definition fails before any asset bytes are read.
func (b *Builder) Sign(ctx context.Context, def signing.Definition, format string, src stream.ByteSource) ([]byte, error) {
	if def.Logger == nil {
		def.Logger = b.logger
	}
	s, err := signing.FromDefinition(def)
	if err != nil {
		return nil, err
	}
	return b.SignWith(ctx, s, format, src)
}

// SignWith signs src with an already constructed signer and returns the
// output asset.
func (b *Builder) SignWith(ctx context.Context, s signing.Signer, format string, src stream.ByteSource) ([]byte, error) {
	var out bytes.Buffer
	err := tracing.Run(ctx, "engine.sign", map[string]interface{}{
		"engine.format":      format,
		"engine.source_size": src.Size(),
		"signer.alg":         s.Alg().String(),
	}, func(ctx context.Context) error {
		if err := b.h.Sign(ctx, s, format, stream.NewCursor(src), &out); err != nil {
			// Signer failures reach us through the engine; keep their kind.
			if fault.IsKind(err, fault.KindSignCallbackFailed) {
				return err
			}
			return fault.Engine("sign", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("signed %s asset: %d bytes in, %d bytes out", format, src.Size(), out.Len())
	return out.Bytes(), nil
}

// LoadSettings applies engine settings given as JSON.
func LoadSettings(e Engine, settingsJSON string) error {
	if err := e.LoadSettings(settingsJSON); err != nil {
		return fault.Engine("load_settings", fmt.Errorf("invalid settings: %w", err))
	}
	return nil
}
