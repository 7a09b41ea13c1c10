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

package principal

import (
	"encoding/asn1"
)

// Attribute type object identifiers that are recognized.
var (
	OIDCommonName             = asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDCountryName            = asn1.ObjectIdentifier{2, 5, 4, 6}
	OIDLocalityName           = asn1.ObjectIdentifier{2, 5, 4, 7}
	OIDStateOrProvinceName    = asn1.ObjectIdentifier{2, 5, 4, 8}
	OIDOrganizationName       = asn1.ObjectIdentifier{2, 5, 4, 10}
	OIDOrganizationalUnitName = asn1.ObjectIdentifier{2, 5, 4, 11}
	OIDDomainComponent        = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}
)

// attribute describes how the value of a recognized attribute type is stored
// in the principal.
type attribute struct {
	name   string
	update func(p *Principal, value string)
}

func overwrite(field func(*Principal) *string) func(*Principal, string) {
	return func(p *Principal, v string) { *field(p) = v }
}

func appendTo(field func(*Principal) *[]string) func(*Principal, string) {
	return func(p *Principal, v string) {
		f := field(p)
		*f = append(*f, v)
	}
}

// attributes maps the dotted attribute type OID to the field update.
var attributes = map[string]attribute{
	OIDCommonName.String(): {
		name:   "CN",
		update: overwrite(func(p *Principal) *string { return &p.CommonName }),
	},
	OIDCountryName.String(): {
		name:   "C",
		update: overwrite(func(p *Principal) *string { return &p.CountryName }),
	},
	OIDLocalityName.String(): {
		name:   "L",
		update: overwrite(func(p *Principal) *string { return &p.LocalityName }),
	},
	OIDStateOrProvinceName.String(): {
		name:   "ST",
		update: overwrite(func(p *Principal) *string { return &p.StateOrProvinceName }),
	},
	OIDOrganizationName.String(): {
		name:   "O",
		update: appendTo(func(p *Principal) *[]string { return &p.OrganizationNames }),
	},
	OIDOrganizationalUnitName.String(): {
		name:   "OU",
		update: appendTo(func(p *Principal) *[]string { return &p.OrganizationUnitNames }),
	},
	OIDDomainComponent.String(): {
		name:   "DC",
		update: appendTo(func(p *Principal) *[]string { return &p.DomainComponents }),
	},
}
