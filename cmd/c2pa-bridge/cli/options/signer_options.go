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

package options

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contentauth/c2pa-bridge/pkg/config"
	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
)

// SignerFlags describe the declarative half of a signer. Flags override the
// matching fields of --definition.
type SignerFlags struct {
	DefinitionPath string
	Alg            string
	StrictAlg      bool
	ReserveSize    int
	CertFiles      []string
	DirectCose     bool
	TSAURL         string
	TSAHeaders     []string
	TSABodyFile    string
}

var _ FlagAdder = (*SignerFlags)(nil)

// AddFlags registers the signer definition flags.
func (o *SignerFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.DefinitionPath, "definition", "", "Signer definition file (YAML or JSON).")
	_ = cmd.MarkFlagFilename("definition", "yaml", "yml", "json")
	cmd.Flags().StringVar(&o.Alg, "alg", "", "Signing algorithm (es256, es384, es512, ps256, ps384, ps512, ed25519).")
	cmd.Flags().BoolVar(&o.StrictAlg, "strict-alg", false, "Reject unknown algorithm names instead of falling back to ps256.")
	cmd.Flags().IntVar(&o.ReserveSize, "reserve-size", 0, "Bytes to reserve for the signature and certificates.")
	cmd.Flags().StringSliceVar(&o.CertFiles, "cert", nil, "Certificate chain file, PEM or DER, leaf first. Repeatable.")
	cmd.Flags().BoolVar(&o.DirectCose, "direct-cose", false, "Mark the signer as handling COSE directly.")
	cmd.Flags().StringVar(&o.TSAURL, "tsa-url", "", "RFC 3161 time stamp authority URL.")
	cmd.Flags().StringArrayVar(&o.TSAHeaders, "tsa-header", nil, `Header sent to the TSA as "Name: Value". Repeatable; order is kept.`)
	cmd.Flags().StringVar(&o.TSABodyFile, "tsa-body", "", "File whose bytes replace the default timestamp request.")
}

// Definition loads --definition, if any, and applies the flags set on cmd.
func (o *SignerFlags) Definition(cmd *cobra.Command, logger logging.Logger) (signing.Definition, error) {
	var def signing.Definition
	if o.DefinitionPath != "" {
		var err error
		if def, err = config.LoadFile(o.DefinitionPath); err != nil {
			return def, err
		}
	}
	def.Logger = logger

	changed := cmd.Flags().Changed
	if changed("alg") {
		def.Alg = o.Alg
	}
	if changed("strict-alg") {
		def.StrictAlg = o.StrictAlg
	}
	if changed("reserve-size") {
		def.ReserveSize = o.ReserveSize
	}
	if changed("direct-cose") {
		def.DirectCoseHandling = o.DirectCose
	}
	if changed("tsa-url") {
		def.TSAURL = o.TSAURL
	}

	for _, path := range o.CertFiles {
		raw, err := os.ReadFile(path)
		if err != nil {
			return def, fmt.Errorf("--cert: %w", err)
		}
		def.Certs = append(def.Certs, signing.RawEntry(raw))
	}

	if len(o.TSAHeaders) > 0 {
		def.TSAHeaders = SplitHeaders(o.TSAHeaders)
	}

	if o.TSABodyFile != "" {
		body, err := os.ReadFile(o.TSABodyFile)
		if err != nil {
			return def, fmt.Errorf("--tsa-body: %w", err)
		}
		def.TSABody = body
	}
	return def, nil
}

// SplitHeaders turns "Name: Value" strings into pairs. An entry without a
// colon becomes a one-element pair, which the signer rejects with its index.
func SplitHeaders(raw []string) [][]string {
	pairs := make([][]string, 0, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			pairs = append(pairs, []string{strings.TrimSpace(h)})
			continue
		}
		pairs = append(pairs, []string{strings.TrimSpace(name), strings.TrimSpace(value)})
	}
	return pairs
}

// KeyFlags select a PEM private key.
type KeyFlags struct {
	PrivateKeyPath string
	Password       string
}

// AddFlags registers the key flags.
func (o *KeyFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.PrivateKeyPath, "private-key", "", "Path to the private key, as a PEM-encoded file. [required]")
	_ = cmd.MarkFlagRequired("private-key")
	cmd.Flags().StringVar(&o.Password, "password", "", "Password for the key encryption, if any.")
}

// PKCS11Flags select a key in a PKCS#11 token.
type PKCS11Flags struct {
	URI        string
	ModuleDirs []string
}

// AddFlags registers the PKCS#11 flags.
func (o *PKCS11Flags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.URI, "pkcs11-uri", "", "RFC 7512 URI of the signing key. [required]")
	_ = cmd.MarkFlagRequired("pkcs11-uri")
	cmd.Flags().StringSliceVar(&o.ModuleDirs, "module-dir", nil, "Directories searched for the module named by module-name.")
}

// CommandFlags configure an external signing program.
type CommandFlags struct {
	Path string
	Args []string
	Env  []string
}

// AddFlags registers the command flags.
func (o *CommandFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Path, "program", "", "Program that reads bytes on stdin and writes the signature to stdout. [required]")
	_ = cmd.MarkFlagRequired("program")
	cmd.Flags().StringArrayVar(&o.Args, "arg", nil, "Argument passed to the program. Repeatable.")
	cmd.Flags().StringArrayVar(&o.Env, "env", nil, "NAME=VALUE added to the program environment. Repeatable.")
}

// OutputFlags choose where binary results go.
type OutputFlags struct {
	Path   string
	Base64 bool
}

// AddFlags registers the output flags.
func (o *OutputFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Path, "output", "o", "-", `Output file, or "-" for stdout.`)
	cmd.Flags().BoolVar(&o.Base64, "base64", false, "Write the output base64-encoded.")
}
