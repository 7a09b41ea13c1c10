// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package principals

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scionproto/dnpki/pkg/log"
	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
	"github.com/scionproto/dnpki/private/app"
	"github.com/scionproto/dnpki/private/app/command"
)

// VerifyEntry is the verification result of a single file.
type VerifyEntry struct {
	Entry `yaml:",inline"`
	Match bool `json:"match" yaml:"match"`
}

// VerifyResult is the result of the verify command.
type VerifyResult struct {
	Policy  principal.Principal `json:"policy" yaml:"policy"`
	Entries []VerifyEntry       `json:"entries" yaml:"entries"`
}

// Mismatches returns the number of entries that do not match the policy.
func (r VerifyResult) Mismatches() int {
	var n int
	for _, e := range r.Entries {
		if !e.Match {
			n++
		}
	}
	return n
}

// Human writes a table with the verdict for every entry.
func (r VerifyResult) Human(w io.Writer, colored bool) {
	p := newPalette(w, colored)
	fmt.Fprintf(w, "%s %s\n", p.keys.Sprint("Policy:"), r.Policy)
	table := newTable(w, "file", "field", "name", "result")
	for _, e := range r.Entries {
		table.Append([]string{e.File, e.Field, e.Principal.String(), p.verdict(e.Match)})
	}
	table.Render()
}

// NewVerifyCmd creates the verify command.
func NewVerifyCmd(pather command.Pather, env *Env) *cobra.Command {
	var flags struct {
		policy  string
		input   Input
		format  string
		noColor bool
	}
	cmd := &cobra.Command{
		Use:   "verify --policy <policy.toml> [flags] <file> [<file> ...]",
		Short: "Verify distinguished names against a policy",
		Long: `'verify' checks that the names of the certificates match the principal
described by the policy file. The names are compared the same way as in the
match command.

A sample policy file is displayed by the policy sample command.

The command exits with code 1 if any name does not match.
`,
		Example: fmt.Sprintf(`  %[1]s verify --policy policy.toml cert.pem
  %[1]s verify --policy issuer.toml --field issuer *.pem`,
			pather.CommandPath(),
		),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(flags.format); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx, logger := log.WithLabels(cmd.Context(), "cmd", cmd.Name())
			policy, err := LoadPolicy(flags.policy)
			if err != nil {
				return serrors.Wrap("loading policy", err)
			}
			if logger.Enabled(log.DebugLevel) {
				digest, err := policy.Digest()
				if err != nil {
					return err
				}
				logger.Debug("Loaded policy", "file", flags.policy, "digest", digest)
			}
			entries, err := LoadAll(ctx, env.Decoder(), flags.input, args)
			if err != nil {
				return err
			}
			res := VerifyResult{Policy: policy.Principal()}
			for _, e := range entries {
				match := e.Principal.Matches(res.Policy)
				if !match {
					logger.Debug("Name does not match policy", "file", e.File,
						"name", e.Principal.String())
				}
				res.Entries = append(res.Entries, VerifyEntry{Entry: e, Match: match})
			}
			err = render(cmd.OutOrStdout(), flags.format, res, func(w io.Writer) {
				res.Human(w, !flags.noColor)
			})
			if err != nil {
				return err
			}
			if n := res.Mismatches(); n > 0 {
				return app.WithExitCode(serrors.JoinNoStack(ErrMismatch, nil,
					"mismatches", n, "total", len(res.Entries)), 1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.policy, "policy", "", "Policy file (required)")
	flags.input.RegisterFlags(cmd.Flags(), "")
	cmd.Flags().StringVar(&flags.format, "format", "human", formatUsage)
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	if err := cmd.MarkFlagRequired("policy"); err != nil {
		panic(err)
	}
	return cmd
}
