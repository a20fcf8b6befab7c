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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentauth/c2pa-bridge/cmd/c2pa-bridge/cli/options"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
	"github.com/contentauth/c2pa-bridge/pkg/tsa"
)

// Timestamp groups RFC 3161 commands.
func Timestamp() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timestamp",
		Short: "Build and send RFC 3161 timestamp requests.",
	}
	cmd.AddCommand(newTimestampRequest())
	cmd.AddCommand(newTimestampFetch())
	cmd.AddCommand(newTimestampInspect())
	return cmd
}

func newTimestampRequest() *cobra.Command {
	s := &options.SignerFlags{}
	o := &options.OutputFlags{}

	cmd := &cobra.Command{
		Use:   "request [OPTIONS] MESSAGE",
		Short: "Write the timestamp request a signer would send for MESSAGE.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := s.Definition(cmd, logger())
			if err != nil {
				return err
			}
			profile, err := signing.NewProfile(def)
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			body, err := profile.TimestampRequestBody(msg)
			if err != nil {
				return err
			}
			return writeOutput(cmd, o, body)
		},
	}

	options.AddAllFlags(cmd, s, o)
	return cmd
}

func newTimestampFetch() *cobra.Command {
	s := &options.SignerFlags{}
	o := &options.OutputFlags{}

	cmd := &cobra.Command{
		Use:   "fetch [OPTIONS] MESSAGE",
		Short: "Send the signer's timestamp request for MESSAGE and write the reply.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := s.Definition(cmd, logger())
			if err != nil {
				return err
			}
			profile, err := signing.NewProfile(def)
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			body, err := profile.TimestampRequestBody(msg)
			if err != nil {
				return err
			}
			client := tsa.NewClient(tsa.ClientOptions{Logger: logger()})
			resp, err := client.Fetch(ctx, profile.TimeAuthorityURL(), profile.TimestampRequestHeaders(), body)
			if err != nil {
				return err
			}
			logger().Info("timestamp issued at %s", resp.Token.Time.UTC().Format("2006-01-02T15:04:05Z"))
			return writeOutput(cmd, o, resp.Raw)
		},
	}

	options.AddAllFlags(cmd, s, o)
	return cmd
}

func newTimestampInspect() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect REQUEST",
		Short: "Decode a DER timestamp request.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			der, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			info, err := tsa.InspectRequest(der)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "hash:      %s\n", info.Hash)
			fmt.Fprintf(w, "imprint:   %x\n", info.HashedMessage)
			fmt.Fprintf(w, "cert req:  %t\n", info.CertReq)
			if info.Nonce != nil {
				fmt.Fprintf(w, "nonce:     %s\n", info.Nonce)
			}
			if info.Policy != "" {
				fmt.Fprintf(w, "policy:    %s\n", info.Policy)
			}
			return nil
		},
	}
}
