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
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/contentauth/c2pa-bridge/cmd/c2pa-bridge/cli/options"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
	"github.com/contentauth/c2pa-bridge/pkg/signing/command"
	"github.com/contentauth/c2pa-bridge/pkg/signing/key"
	"github.com/contentauth/c2pa-bridge/pkg/signing/pkcs11"
	"github.com/contentauth/c2pa-bridge/pkg/tsa"
)

// signFlags are shared by every sign subcommand.
type signFlags struct {
	options.SignerFlags
	options.OutputFlags
	TimestampOut string
}

func (o *signFlags) AddFlags(cmd *cobra.Command) {
	options.AddAllFlags(cmd, &o.SignerFlags, &o.OutputFlags)
	cmd.Flags().StringVar(&o.TimestampOut, "timestamp-out", "",
		"Also request a timestamp over the signature and write the TSA reply here.")
}

// runSign signs INPUT with s and writes the results.
func runSign(cmd *cobra.Command, o *signFlags, s signing.Signer, input string) error {
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sig, err := s.Sign(ctx, data)
	if err != nil {
		return err
	}
	logger().Info("signed %d bytes with %s: %d byte signature", len(data), s.Alg(), len(sig))

	if o.TimestampOut != "" {
		client := tsa.NewClient(tsa.ClientOptions{
			UserAgent: "c2pa-bridge/" + version.GetVersionInfo().GitVersion,
			Logger:    logger(),
		})
		resp, err := signing.RequestTimestamp(ctx, s, client, sig)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.TimestampOut, resp.Raw, 0o644); err != nil {
			return fmt.Errorf("failed to write timestamp: %w", err)
		}
		logger().Info("timestamp %s written to %s", resp.Token.Time.UTC().Format("2006-01-02T15:04:05Z"), o.TimestampOut)
	}

	return writeOutput(cmd, &o.OutputFlags, sig)
}

func newKeySign() *cobra.Command {
	o := &signFlags{}
	k := &options.KeyFlags{}

	long := `Sign INPUT with a PEM private key.

    INPUT is the exact byte sequence the engine would hand to the signer;
    use "-" for stdin. The algorithm is derived from the key unless --alg is
    given, in which case the two must agree.`

	cmd := &cobra.Command{
		Use:   "key [OPTIONS] INPUT",
		Short: "Sign using a private key.",
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := o.Definition(cmd, logger())
			if err != nil {
				return err
			}
			s, err := key.Load(key.Options{
				PrivateKeyPath: k.PrivateKeyPath,
				Password:       k.Password,
				Definition:     def,
			})
			if err != nil {
				return err
			}
			return runSign(cmd, o, s, args[0])
		},
	}

	options.AddAllFlags(cmd, o, k)
	return cmd
}

func newPKCS11Sign() *cobra.Command {
	o := &signFlags{}
	p := &options.PKCS11Flags{}

	long := `Sign INPUT with a key held in a PKCS#11 token.

    The key is named by an RFC 7512 URI, for example
    "pkcs11:token=c2pa;object=signing-key?module-name=softhsm2".
    The PIN comes from pin-value, pin-source or the ` + pkcs11.PINEnv + `
    environment variable.`

	cmd := &cobra.Command{
		Use:   "pkcs11 [OPTIONS] INPUT",
		Short: "Sign using a PKCS#11 token.",
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := o.Definition(cmd, logger())
			if err != nil {
				return err
			}
			s, err := pkcs11.NewSigner(pkcs11.Options{
				URI:        p.URI,
				ModuleDirs: p.ModuleDirs,
				Definition: def,
			})
			if err != nil {
				return err
			}
			defer s.Close()
			return runSign(cmd, o, s, args[0])
		},
	}

	options.AddAllFlags(cmd, o, p)
	return cmd
}

func newCommandSign() *cobra.Command {
	o := &signFlags{}
	c := &options.CommandFlags{}

	long := `Sign INPUT by running an external program.

    The program receives the bytes to sign on stdin and must write the raw
    signature to stdout. It runs once per signature; a non-zero exit fails
    the signing operation.`

	cmd := &cobra.Command{
		Use:   "command [OPTIONS] INPUT",
		Short: "Sign using an external program.",
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := o.Definition(cmd, logger())
			if err != nil {
				return err
			}
			def.Sign, err = command.New(command.Options{
				Path:   c.Path,
				Args:   c.Args,
				Env:    c.Env,
				Logger: def.Logger,
			})
			if err != nil {
				return err
			}
			s, err := signing.FromDefinition(def)
			if err != nil {
				return err
			}
			return runSign(cmd, o, s, args[0])
		},
	}

	options.AddAllFlags(cmd, o, c)
	return cmd
}

// Sign creates the sign command with one subcommand per key source.
func Sign() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [OPTIONS] KEY_SOURCE",
		Short: "Produce a raw signature the way a manifest engine would.",
	}

	cmd.AddCommand(newKeySign())
	cmd.AddCommand(newPKCS11Sign())
	cmd.AddCommand(newCommandSign())
	return cmd
}
