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

// Package command provides a SignFunc that delegates signing to an external
// program. The bytes to sign are written to the program's stdin and the raw
// signature is read from its stdout.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
)

const (
	// maxStderr bounds how much of the program's stderr is kept for errors.
	maxStderr = 4096
	// waitDelay bounds how long output pipes are drained after the program
	// is killed; children it spawned may keep them open.
	waitDelay = 2 * time.Second
)

// Options configures New.
type Options struct {
	// Path is the program to run. It is resolved with exec.LookPath.
	Path string
	Args []string
	// Env is appended to the bridge's own environment.
	Env    []string
	Logger logging.Logger
}

// New returns a SignFunc running the configured program once per call.
func New(opts Options) (signing.SignFunc, error) {
	if opts.Path == "" {
		return nil, errors.New("sign command path is empty")
	}
	path, err := exec.LookPath(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("sign command: %w", err)
	}

	args := append([]string(nil), opts.Args...)
	env := append([]string(nil), opts.Env...)
	logger := logging.EnsureLogger(opts.Logger)

	return func(ctx context.Context, data []byte) ([]byte, error) {
		cmd := exec.CommandContext(ctx, path, args...)
		if len(env) > 0 {
			cmd.Env = append(os.Environ(), env...)
		}
		cmd.Stdin = bytes.NewReader(data)
		cmd.WaitDelay = waitDelay

		var stdout bytes.Buffer
		stderr := &limitedBuffer{max: maxStderr}
		cmd.Stdout = &stdout
		cmd.Stderr = stderr

		logger.Debug("running sign command %s over %d bytes", path, len(data))
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("sign command %s failed: %w: %s", path, err, msg)
			}
			return nil, fmt.Errorf("sign command %s failed: %w", path, err)
		}
		if stdout.Len() == 0 {
			return nil, fmt.Errorf("sign command %s produced no signature", path)
		}
		return stdout.Bytes(), nil
	}, nil
}

// limitedBuffer keeps the first max bytes written and drops the rest.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }
