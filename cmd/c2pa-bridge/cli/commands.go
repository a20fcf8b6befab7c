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

// Package cli implements the c2pa-bridge command tree.
package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	cobracompletefig "github.com/withfig/autocomplete-tools/integrations/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/contentauth/c2pa-bridge/cmd/c2pa-bridge/cli/options"
	"github.com/contentauth/c2pa-bridge/pkg/logging"
)

var ro = &options.RootOptions{}

// New returns the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "c2pa-bridge",
		Short:             "Byte sources and signers for C2PA manifest engines.",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_, err := ro.NewLogger()
			return err
		},
	}
	ro.AddFlags(cmd)

	cmd.AddCommand(Stream())
	cmd.AddCommand(Signer())
	cmd.AddCommand(Sign())
	cmd.AddCommand(Timestamp())
	cmd.AddCommand(version.WithFont("starwars"))
	cmd.AddCommand(cobracompletefig.CreateCompletionSpecCommand())
	return cmd
}

// logger returns the logger described by the root flags. The flags were
// validated in PersistentPreRunE.
func logger() logging.Logger {
	l, err := ro.NewLogger()
	if err != nil {
		return logging.EnsureLogger(nil)
	}
	return l
}

// commandContext bounds cmd's context by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if ro.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ro.Timeout)
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// writeOutput writes data as described by o.
func writeOutput(cmd *cobra.Command, o *options.OutputFlags, data []byte) error {
	if o.Base64 {
		data = []byte(base64.StdEncoding.EncodeToString(data) + "\n")
	}
	if o.Path == "" || o.Path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(o.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
