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

// Package tracing wraps bridge operations in spans. The default build uses
// a no-op tracer; building with -tags=otel and calling InitFromEnv exports
// spans over OTLP/HTTP.
//
// Spans currently emitted: signer.sign, tsa.fetch, engine.sign, engine.read
// and engine.add_ingredient.
package tracing

import (
	"context"
	"sync"
)

// Span is one timed operation in a trace.
type Span interface {
	SetAttribute(key string, value interface{})
	// RecordError marks the span as failed.
	RecordError(err error)
	End()
}

// Tracer starts spans. The returned context carries the span to children.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

var (
	mu     sync.RWMutex
	global Tracer = NoopTracer{}
)

// SetTracer installs t as the process tracer. Nil restores the no-op tracer.
func SetTracer(t Tracer) {
	mu.Lock()
	defer mu.Unlock()
	if t == nil {
		global = NoopTracer{}
		return
	}
	global = t
}

// Current returns the installed tracer. It is never nil.
func Current() Tracer {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Start starts a span on the installed tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return Current().Start(ctx, name)
}

// Enabled reports whether a non-noop tracer is installed.
func Enabled() bool {
	_, noop := Current().(NoopTracer)
	return !noop
}

// Run calls fn inside a span named name carrying attrs. A non-nil error from
// fn is recorded on the span and returned unchanged. With no tracer installed
// fn is called directly.
func Run(ctx context.Context, name string, attrs map[string]interface{}, fn func(context.Context) error) error {
	t := Current()
	if _, noop := t.(NoopTracer); noop {
		return fn(ctx)
	}

	ctx, span := t.Start(ctx, name)
	defer span.End()
	for k, v := range attrs {
		span.SetAttribute(k, v)
	}

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
