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
	"strings"

	"github.com/spf13/cobra"

	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
	"github.com/scionproto/dnpki/private/app"
	"github.com/scionproto/dnpki/private/app/command"
)

// ErrMismatch indicates that names do not match.
var ErrMismatch = serrors.New("names do not match")

// Comparison states of a single attribute.
const (
	StatusEqual       = "equal"
	StatusDiffers     = "differs"
	StatusNotCompared = "not compared"
)

// AttributeDiff compares a single attribute of two principals. Multi-valued
// attributes are joined with "; ".
type AttributeDiff struct {
	Name   string `json:"name" yaml:"name"`
	A      string `json:"a" yaml:"a"`
	B      string `json:"b" yaml:"b"`
	Status string `json:"status" yaml:"status"`
}

// Compare lists the attributes that are populated in a or b. The status is
// consistent with Principal.Matches.
func Compare(a, b principal.Principal) []AttributeDiff {
	var diffs []AttributeDiff
	single := func(name, va, vb string) {
		if va == "" && vb == "" {
			return
		}
		status := StatusEqual
		if va != vb {
			status = StatusDiffers
		}
		diffs = append(diffs, AttributeDiff{Name: name, A: va, B: vb, Status: status})
	}
	multi := func(name string, va, vb []string, wrap func([]string) principal.Principal) {
		if len(va) == 0 && len(vb) == 0 {
			return
		}
		status := StatusNotCompared
		if wrap != nil {
			status = StatusEqual
			if !wrap(va).Matches(wrap(vb)) {
				status = StatusDiffers
			}
		}
		diffs = append(diffs, AttributeDiff{
			Name:   name,
			A:      strings.Join(va, "; "),
			B:      strings.Join(vb, "; "),
			Status: status,
		})
	}
	single("CN", a.CommonName, b.CommonName)
	multi("OU", a.OrganizationUnitNames, b.OrganizationUnitNames, func(v []string) principal.Principal {
		return principal.Principal{OrganizationUnitNames: v}
	})
	multi("O", a.OrganizationNames, b.OrganizationNames, func(v []string) principal.Principal {
		return principal.Principal{OrganizationNames: v}
	})
	single("L", a.LocalityName, b.LocalityName)
	single("ST", a.StateOrProvinceName, b.StateOrProvinceName)
	single("C", a.CountryName, b.CountryName)
	multi("DC", a.DomainComponents, b.DomainComponents, nil)
	return diffs
}

// MatchResult is the result of the match command.
type MatchResult struct {
	Match      bool            `json:"match" yaml:"match"`
	A          Entry           `json:"a" yaml:"a"`
	B          Entry           `json:"b" yaml:"b"`
	Attributes []AttributeDiff `json:"attributes" yaml:"attributes"`
}

// NewMatchResult compares the principals of both entries.
func NewMatchResult(a, b Entry) MatchResult {
	return MatchResult{
		Match:      a.Principal.Matches(b.Principal),
		A:          a,
		B:          b,
		Attributes: Compare(a.Principal, b.Principal),
	}
}

// Human writes the verdict followed by the attribute comparison.
func (r MatchResult) Human(w io.Writer, colored bool) {
	p := newPalette(w, colored)
	fmt.Fprintln(w, p.verdict(r.Match))
	fmt.Fprintf(w, "%s %s (%s)\n", p.keys.Sprint("A:"), r.A.File, r.A.Field)
	fmt.Fprintf(w, "%s %s (%s)\n", p.keys.Sprint("B:"), r.B.File, r.B.Field)
	table := newTable(w, "attribute", "a", "b", "status")
	for _, d := range r.Attributes {
		status := d.Status
		switch d.Status {
		case StatusEqual:
			status = p.good.Sprint(status)
		case StatusDiffers:
			status = p.bad.Sprint(status)
		}
		table.Append([]string{d.Name, d.A, d.B, status})
	}
	table.Render()
}

// NewMatchCmd creates the match command.
func NewMatchCmd(pather command.Pather, env *Env) *cobra.Command {
	var flags struct {
		a, b    Input
		format  string
		noColor bool
	}
	cmd := &cobra.Command{
		Use:   "match [flags] <file-a> <file-b>",
		Short: "Check whether two distinguished names match",
		Long: `'match' decodes a name from each file and checks whether they denote the
same principal.

Common name, locality, state or province and country must be equal.
Organization names and organizational unit names are compared as sets,
i.e., order and duplicates do not matter. Domain components are displayed
but not compared.

By default, the subject names are compared. Use --field-a and --field-b to
select the names, e.g., to check that the issuer of a certificate matches the
subject of a CA certificate.

The command exits with code 1 if the names do not match.
`,
		Example: fmt.Sprintf(`  %[1]s match a.pem b.pem
  %[1]s match --field-a issuer leaf.pem ca.pem`,
			pather.CommandPath(),
		),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(flags.format); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			a, err := Load(env.Decoder(), flags.a, args[0])
			if err != nil {
				return err
			}
			b, err := Load(env.Decoder(), flags.b, args[1])
			if err != nil {
				return err
			}
			res := NewMatchResult(a, b)
			err = render(cmd.OutOrStdout(), flags.format, res, func(w io.Writer) {
				res.Human(w, !flags.noColor)
			})
			if err != nil {
				return err
			}
			if !res.Match {
				return app.WithExitCode(ErrMismatch, 1)
			}
			return nil
		},
	}
	flags.a.RegisterFlags(cmd.Flags(), "-a")
	flags.b.RegisterFlags(cmd.Flags(), "-b")
	cmd.Flags().StringVar(&flags.format, "format", "human", formatUsage)
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	return cmd
}
