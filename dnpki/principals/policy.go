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
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/scionproto/dnpki/dnpki/file"
	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
	"github.com/scionproto/dnpki/private/app/command"
	"github.com/scionproto/dnpki/private/config"
)

// ErrEmptyPolicy indicates a policy without any attribute.
var ErrEmptyPolicy = serrors.New("policy does not define any attribute")

const policySample = `# The common name (CN).
common_name = "A-Trust-Qual-01"

# The locality name (L).
locality_name = "Vienna"

# The state or province name (ST).
state_or_province_name = "Vienna"

# The country name (C).
country_name = "AT"

# The organization names (O). The order does not matter.
organization_names = ["A-Trust Ges. für Sicherheitssysteme im elektr. Datenverkehr GmbH"]

# The organizational unit names (OU). The order does not matter.
organization_unit_names = ["A-Trust-Qual-01"]

# The domain components (DC). They are informational only and not compared.
domain_components = []
`

// Policy is the expected principal of the verify command. It is loaded from
// a TOML file. Unset attributes are expected to be absent.
type Policy struct {
	config.NoDefaulter `toml:"-"`

	CommonName            string   `toml:"common_name,omitempty"`
	LocalityName          string   `toml:"locality_name,omitempty"`
	StateOrProvinceName   string   `toml:"state_or_province_name,omitempty"`
	CountryName           string   `toml:"country_name,omitempty"`
	OrganizationNames     []string `toml:"organization_names,omitempty"`
	OrganizationUnitNames []string `toml:"organization_unit_names,omitempty"`
	DomainComponents      []string `toml:"domain_components,omitempty"`
}

// LoadPolicy loads and validates the policy file.
func LoadPolicy(file string) (Policy, error) {
	var p Policy
	if err := config.Load(file, &p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// PolicyFor returns the policy that matches exactly p.
func PolicyFor(p principal.Principal) Policy {
	c := p.Copy()
	return Policy{
		CommonName:            c.CommonName,
		LocalityName:          c.LocalityName,
		StateOrProvinceName:   c.StateOrProvinceName,
		CountryName:           c.CountryName,
		OrganizationNames:     c.OrganizationNames,
		OrganizationUnitNames: c.OrganizationUnitNames,
		DomainComponents:      c.DomainComponents,
	}
}

// Principal returns the expected principal.
func (p *Policy) Principal() principal.Principal {
	return principal.Principal{
		CommonName:            p.CommonName,
		LocalityName:          p.LocalityName,
		StateOrProvinceName:   p.StateOrProvinceName,
		CountryName:           p.CountryName,
		OrganizationNames:     p.OrganizationNames,
		OrganizationUnitNames: p.OrganizationUnitNames,
		DomainComponents:      p.DomainComponents,
	}.Copy()
}

// Validate checks that at least one compared attribute is set and that the
// multi-valued attributes do not contain empty values.
func (p *Policy) Validate() error {
	expected := p.Principal()
	expected.DomainComponents = nil
	if expected.IsEmpty() {
		return ErrEmptyPolicy
	}
	lists := []struct {
		key    string
		values []string
	}{
		{key: "organization_names", values: p.OrganizationNames},
		{key: "organization_unit_names", values: p.OrganizationUnitNames},
		{key: "domain_components", values: p.DomainComponents},
	}
	for _, l := range lists {
		for i, v := range l.values {
			if v == "" {
				return serrors.New("empty value", "key", l.key, "index", i)
			}
		}
	}
	return nil
}

// Sample writes a sample policy to dst.
func (p *Policy) Sample(dst io.Writer) {
	config.WriteString(dst, policySample)
}

// Digest returns the hex encoded digest of the policy. It does not depend on
// the formatting of the policy file.
func (p *Policy) Digest() (string, error) {
	d, err := config.Digest(p.Principal())
	if err != nil {
		return "", serrors.Wrap("computing policy digest", err)
	}
	return hex.EncodeToString(d), nil
}

// Encode returns the TOML encoding of the policy.
func (p *Policy) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetArraysMultiline(true)
	if err := enc.Encode(p); err != nil {
		return nil, serrors.Wrap("encoding policy", err)
	}
	return buf.Bytes(), nil
}

// NewPolicyCmd creates the policy command group.
func NewPolicyCmd(pather command.Pather, env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage the policies of the verify command",
		Args:  cobra.NoArgs,
	}
	joined := command.Join(pather, cmd)
	cmd.AddCommand(
		newPolicySample(joined),
		newPolicyCreate(joined, env),
	)
	return cmd
}

func newPolicySample(pather command.Pather) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sample",
		Short:   "Display a sample policy file",
		Example: fmt.Sprintf("  %s sample > policy.toml", pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteSample(cmd.OutOrStdout(), &Policy{})
		},
	}
	return cmd
}

func newPolicyCreate(pather command.Pather, env *Env) *cobra.Command {
	var flags struct {
		input Input
		out   string
		force bool
	}
	cmd := &cobra.Command{
		Use:   "create [flags] <file>",
		Short: "Create a policy from a certificate",
		Long: `'create' creates a policy that exactly matches the name of the certificate.

The policy is written to stdout, or to the file given with --out.
`,
		Example: fmt.Sprintf(`  %[1]s create ca.pem
  %[1]s create --field issuer --out policy.toml leaf.pem`,
			pather.CommandPath(),
		),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			e, err := Load(env.Decoder(), flags.input, args[0])
			if err != nil {
				return err
			}
			policy := PolicyFor(e.Principal)
			if err := policy.Validate(); err != nil {
				return serrors.Wrap("creating policy", err, "file", args[0])
			}
			raw, err := policy.Encode()
			if err != nil {
				return err
			}
			if flags.out == "" {
				_, err := cmd.OutOrStdout().Write(raw)
				return err
			}
			if err := file.CheckDirExists(filepath.Dir(flags.out)); err != nil {
				return serrors.Wrap("checking output directory", err)
			}
			if err := file.WriteFile(flags.out, raw, 0644, file.WithForce(flags.force)); err != nil {
				return serrors.Wrap("writing policy", err, "file", flags.out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Policy written to %q\n", flags.out)
			return nil
		},
	}
	flags.input.RegisterFlags(cmd.Flags(), "")
	cmd.Flags().StringVar(&flags.out, "out", "", "Write the policy to this file")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing policy file")
	return cmd
}
