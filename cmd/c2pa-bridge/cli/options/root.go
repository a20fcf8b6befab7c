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

// Package options defines the flag groups of the c2pa-bridge CLI.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentauth/c2pa-bridge/pkg/logging"
)

// EnvPrefix prefixes environment variables read by the CLI.
const EnvPrefix = "C2PA_BRIDGE"

// DefaultTimeout bounds each command unless --timeout is given.
const DefaultTimeout = 3 * time.Minute

// FlagAdder is implemented by flag groups that register on a command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// AddAllFlags registers several flag groups at once.
func AddAllFlags(cmd *cobra.Command, groups ...FlagAdder) {
	for _, g := range groups {
		g.AddFlags(cmd)
	}
}

// RootOptions holds the persistent flags shared by every subcommand.
type RootOptions struct {
	LogLevel  string
	LogFormat string
	Timeout   time.Duration
}

var _ FlagAdder = (*RootOptions)(nil)

// AddFlags registers the root persistent flags.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"minimum log level (debug, info, warn, error, silent)")
	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"log output format (text, json)")
	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "t", DefaultTimeout,
		"timeout for commands")
}

// NewLogger builds the stderr logger described by the flags.
func (o *RootOptions) NewLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	format, err := logging.ParseFormat(o.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("--log-format: %w", err)
	}
	return logging.New(logging.Options{Level: level, Format: format}), nil
}
