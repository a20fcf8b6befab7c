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
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/contentauth/c2pa-bridge/cmd/c2pa-bridge/cli/options"
	"github.com/contentauth/c2pa-bridge/pkg/config"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
)

// Signer groups commands that work on signer definitions.
func Signer() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signer",
		Short: "Inspect and validate signer definitions.",
	}
	cmd.AddCommand(newSignerInspect())
	cmd.AddCommand(newSignerValidate())
	cmd.AddCommand(newSignerSchema())
	return cmd
}

func newSignerInspect() *cobra.Command {
	o := &options.SignerFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [OPTIONS]",
		Short: "Show what the engine would see for a signer definition.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := o.Definition(cmd, logger())
			if err != nil {
				return err
			}
			profile, err := signing.NewProfile(def)
			if err != nil {
				return err
			}
			return printProfile(cmd.OutOrStdout(), profile)
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func printProfile(w io.Writer, p *signing.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "alg:\t%s\n", p.Alg())
	fmt.Fprintf(tw, "reserve size:\t%d\n", p.ReserveSize())
	fmt.Fprintf(tw, "direct COSE:\t%t\n", p.DirectCoseHandling())

	url := p.TimeAuthorityURL()
	if url == "" {
		url = "(none)"
	}
	fmt.Fprintf(tw, "tsa url:\t%s\n", url)
	for _, h := range p.TimestampRequestHeaders() {
		fmt.Fprintf(tw, "tsa header:\t%s: %s\n", h.Name, h.Value)
	}

	certs, err := signing.ParseChain(p.Certs())
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "chain:\t%d certificate(s)\n", len(certs))
	for i, c := range certs {
		fmt.Fprintf(tw, "  [%d]\t%s (issuer %s, expires %s, %s)\n",
			i, c.Subject, c.Issuer, c.NotAfter.Format("2006-01-02"), certKeyInfo(c))
	}
	return tw.Flush()
}

func certKeyInfo(c *x509.Certificate) string {
	alg, err := signing.AlgForPublicKey(c.PublicKey)
	if err != nil {
		return "key " + c.PublicKeyAlgorithm.String()
	}
	return "fits " + alg.String() + ", serial " + hex.EncodeToString(c.SerialNumber.Bytes())
}

func newSignerValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check signer definition files.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				def, err := config.LoadFile(path)
				if err == nil {
					def.Logger = logger()
					_, err = signing.NewProfile(def)
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d definitions are invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newSignerSchema() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of signer definition files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", s)
			return err
		},
	}
}
