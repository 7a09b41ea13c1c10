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

// Package principal decodes the distinguished name of an X.509 certificate,
// i.e., the DER encoded RDNSequence of its subject or issuer, into a
// Principal and compares principals with each other.
//
// Only a fixed set of attribute types is recognized. Attributes of any other
// type are skipped without error. Attributes of a recognized type whose
// value cannot be decoded are dropped, the remainder of the name is still
// decoded.
package principal

import (
	"slices"
	"strings"
)

// Principal is the decoded identity of an X.509 name. The zero value is the
// empty principal.
type Principal struct {
	CommonName            string   `json:"common_name,omitempty" yaml:"common_name,omitempty"`
	LocalityName          string   `json:"locality_name,omitempty" yaml:"locality_name,omitempty"`
	StateOrProvinceName   string   `json:"state_or_province_name,omitempty" yaml:"state_or_province_name,omitempty"`
	CountryName           string   `json:"country_name,omitempty" yaml:"country_name,omitempty"`
	OrganizationNames     []string `json:"organization_names,omitempty" yaml:"organization_names,omitempty"`
	OrganizationUnitNames []string `json:"organization_unit_names,omitempty" yaml:"organization_unit_names,omitempty"`
	DomainComponents      []string `json:"domain_components,omitempty" yaml:"domain_components,omitempty"`
}

// Matches reports whether p and other denote the same identity. The single
// valued fields must be equal, organization names and organizational unit
// names must be equal as sets. Domain components are not compared.
func (p Principal) Matches(other Principal) bool {
	return p.CommonName == other.CommonName &&
		p.LocalityName == other.LocalityName &&
		p.StateOrProvinceName == other.StateOrProvinceName &&
		p.CountryName == other.CountryName &&
		setEqual(p.OrganizationNames, other.OrganizationNames) &&
		setEqual(p.OrganizationUnitNames, other.OrganizationUnitNames)
}

// setEqual reports whether a and b contain the same strings, ignoring order
// and multiplicity.
func setEqual(a, b []string) bool {
	for _, s := range a {
		if !slices.Contains(b, s) {
			return false
		}
	}
	for _, s := range b {
		if !slices.Contains(a, s) {
			return false
		}
	}
	return true
}

// DisplayName returns a short name suitable for display. It is the common
// name, or the first organization name, or the first organizational unit
// name, whichever is present first.
func (p Principal) DisplayName() string {
	switch {
	case p.CommonName != "":
		return p.CommonName
	case len(p.OrganizationNames) > 0:
		return p.OrganizationNames[0]
	case len(p.OrganizationUnitNames) > 0:
		return p.OrganizationUnitNames[0]
	default:
		return ""
	}
}

// IsEmpty reports whether no field is populated.
func (p Principal) IsEmpty() bool {
	return p.CommonName == "" && p.LocalityName == "" && p.StateOrProvinceName == "" &&
		p.CountryName == "" && len(p.OrganizationNames) == 0 &&
		len(p.OrganizationUnitNames) == 0 && len(p.DomainComponents) == 0
}

// Copy returns a deep copy of p.
func (p Principal) Copy() Principal {
	c := p
	c.OrganizationNames = slices.Clone(p.OrganizationNames)
	c.OrganizationUnitNames = slices.Clone(p.OrganizationUnitNames)
	c.DomainComponents = slices.Clone(p.DomainComponents)
	return c
}

// Attribute is a single populated attribute of a principal.
type Attribute struct {
	// Name is the short attribute name, e.g., "CN".
	Name  string
	Value string
}

// Attributes returns the populated attributes in the order CN, OU, O, L, ST,
// C, DC. Multi-valued attributes keep their encounter order.
func (p Principal) Attributes() []Attribute {
	var attrs []Attribute
	add := func(name string, values ...string) {
		for _, v := range values {
			if v != "" {
				attrs = append(attrs, Attribute{Name: name, Value: v})
			}
		}
	}
	add("CN", p.CommonName)
	add("OU", p.OrganizationUnitNames...)
	add("O", p.OrganizationNames...)
	add("L", p.LocalityName)
	add("ST", p.StateOrProvinceName)
	add("C", p.CountryName)
	add("DC", p.DomainComponents...)
	return attrs
}

// String returns a one line representation listing the populated fields,
// e.g., "CN=A-Trust-Qual-01,OU=A-Trust-Qual-01,O=A-Trust,C=AT". Values are
// not escaped, the result is meant for humans only.
func (p Principal) String() string {
	attrs := p.Attributes()
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Name+"="+a.Value)
	}
	return strings.Join(parts, ",")
}
