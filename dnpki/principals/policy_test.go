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

package principals_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/dnpki/dnpki/principals"
)

func TestPolicyValidate(t *testing.T) {
	testCases := map[string]struct {
		Policy       principals.Policy
		ErrAssertion assert.ErrorAssertionFunc
	}{
		"valid": {
			Policy:       principals.PolicyFor(leafPrincipal),
			ErrAssertion: assert.NoError,
		},
		"empty": {
			ErrAssertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, principals.ErrEmptyPolicy)
			},
		},
		"only domain components": {
			Policy: principals.Policy{DomainComponents: []string{"example", "com"}},
			ErrAssertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, principals.ErrEmptyPolicy)
			},
		},
		"empty organization unit": {
			Policy: principals.Policy{
				CommonName:            "host",
				OrganizationUnitNames: []string{"Operations", ""},
			},
			ErrAssertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorContains(t, err, "organization_unit_names")
			},
		},
		"first empty list is reported": {
			Policy: principals.Policy{
				CommonName:            "host",
				OrganizationNames:     []string{""},
				OrganizationUnitNames: []string{""},
				DomainComponents:      []string{""},
			},
			ErrAssertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorContains(t, err, "organization_names") &&
					assert.NotContains(t, err.Error(), "organization_unit_names") &&
					assert.NotContains(t, err.Error(), "domain_components")
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			// Repeat to catch order dependent results.
			for i := 0; i < 10; i++ {
				tc.ErrAssertion(t, tc.Policy.Validate())
			}
		})
	}
}

func TestPolicyDigest(t *testing.T) {
	leaf := principals.PolicyFor(leafPrincipal)
	a, err := leaf.Digest()
	require.NoError(t, err)
	assert.Len(t, a, 64)

	again := principals.PolicyFor(leafPrincipal)
	b, err := again.Digest()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	ca := principals.PolicyFor(caPrincipal)
	c, err := ca.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
