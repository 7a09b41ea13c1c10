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

package principal_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/dnpki/pkg/log/testlog"
	"github.com/scionproto/dnpki/pkg/metrics"
	"github.com/scionproto/dnpki/pkg/private/xtest"
	"github.com/scionproto/dnpki/pkg/scrypto/der"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
)

var (
	oidCN    = []byte{0x55, 0x04, 0x03}
	oidC     = []byte{0x55, 0x04, 0x06}
	oidL     = []byte{0x55, 0x04, 0x07}
	oidO     = []byte{0x55, 0x04, 0x0a}
	oidOU    = []byte{0x55, 0x04, 0x0b}
	oidDC    = []byte{0x09, 0x92, 0x26, 0x89, 0x93, 0xf2, 0x2c, 0x64, 0x01, 0x19}
	oidEmail = []byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x09, 0x01}
)

// tlv encodes a short form DER element.
func tlv(tag der.Tag, value ...[]byte) []byte {
	v := bytes.Join(value, nil)
	if len(v) > 127 {
		panic("value too long for short form")
	}
	return append([]byte{byte(tag), byte(len(v))}, v...)
}

func dn(rdns ...[]byte) []byte { return tlv(der.TagSequence, rdns...) }

func rdn(atvs ...[]byte) []byte { return tlv(der.TagSet, atvs...) }

func atv(oid []byte, tag der.Tag, value string) []byte {
	return tlv(der.TagSequence, tlv(der.TagOID, oid), tlv(tag, []byte(value)))
}

type testMetrics struct {
	decodes *metrics.TestCounterVec
	dropped *metrics.TestCounterVec
	ignored *metrics.TestCounter
	lookups *metrics.TestCounterVec
}

func newTestMetrics() (principal.Metrics, testMetrics) {
	tm := testMetrics{
		decodes: metrics.NewTestCounterVec(),
		dropped: metrics.NewTestCounterVec(),
		ignored: metrics.NewTestCounter(),
		lookups: metrics.NewTestCounterVec(),
	}
	return principal.Metrics{
		Decodes: func(result string) metrics.Counter {
			return tm.decodes.With(result)
		},
		DroppedAttributes: func(reason string) metrics.Counter {
			return tm.dropped.With(reason)
		},
		IgnoredAttributes: func() metrics.Counter {
			return tm.ignored
		},
		CacheLookups: func(result string) metrics.Counter {
			return tm.lookups.With(result)
		},
	}, tm
}

func TestDecodeFixtures(t *testing.T) {
	testCases := map[string]struct {
		File     string
		Expected principal.Principal
	}{
		"VeriSign": {
			File: "verisign.der",
			Expected: principal.Principal{
				CountryName:           "US",
				OrganizationNames:     []string{"VeriSign, Inc."},
				OrganizationUnitNames: []string{"Class 1 Public Primary Certification Authority"},
			},
		},
		"StartCom": {
			File: "startcom.der",
			Expected: principal.Principal{
				CommonName:            "StartCom Certification Authority",
				CountryName:           "IL",
				OrganizationNames:     []string{"StartCom Ltd."},
				OrganizationUnitNames: []string{"Secure Digital Certificate Signing"},
			},
		},
		"UserTrust": {
			File: "usertrust.der",
			Expected: principal.Principal{
				CommonName:            "UTN-USERFirst-Client Authentication and Email",
				CountryName:           "US",
				StateOrProvinceName:   "UT",
				LocalityName:          "Salt Lake City",
				OrganizationNames:     []string{"The USERTRUST Network"},
				OrganizationUnitNames: []string{"http://www.usertrust.com"},
			},
		},
		"TurkTrust UTF8String": {
			File: "turktrust.der",
			Expected: principal.Principal{
				CommonName:   "TÜRKTRUST Elektronik Sertifika Hizmet Sağlayıcısı",
				CountryName:  "TR",
				LocalityName: "Ankara",
				OrganizationNames: []string{
					"TÜRKTRUST Bilgi İletişim ve Bilişim Güvenliği Hizmetleri A.Ş. " +
						"(c) Kasım 2005",
				},
			},
		},
		"A-Trust BMPString": {
			File: "atrust.der",
			Expected: principal.Principal{
				CommonName:  "A-Trust-Qual-01",
				CountryName: "AT",
				OrganizationNames: []string{
					"A-Trust Ges. für Sicherheitssysteme im elektr. Datenverkehr GmbH",
				},
				OrganizationUnitNames: []string{"A-Trust-Qual-01"},
			},
		},
		"Entrust T61String": {
			File: "entrust.der",
			Expected: principal.Principal{
				CommonName:        "Entrust.net Certification Authority (2048)",
				OrganizationNames: []string{"Entrust.net"},
				OrganizationUnitNames: []string{
					"www.entrust.net/CPS_2048 incorp. by ref. (limits liab.)",
					"(c) 1999 Entrust.net Limited",
				},
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			raw := xtest.MustReadFromFile(t, tc.File)
			p, err := principal.Decode(raw)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tc.Expected, p))
		})
	}
}

func TestDecodeDeterministic(t *testing.T) {
	for _, file := range []string{"verisign.der", "turktrust.der", "atrust.der"} {
		raw := xtest.MustReadFromFile(t, file)
		first, err := principal.Decode(raw)
		require.NoError(t, err)
		second, err := principal.Decode(raw)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(first, second), file)
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	raw := xtest.MustReadFromFile(t, "usertrust.der")
	p, err := principal.Decode(raw)
	require.NoError(t, err)
	for i := range raw {
		raw[i] = 0
	}
	assert.Equal(t, "Salt Lake City", p.LocalityName)
	assert.Equal(t, []string{"The USERTRUST Network"}, p.OrganizationNames)
}

func TestDecodeErrors(t *testing.T) {
	verisign := xtest.MustReadFromFile(t, "verisign.der")
	usertrust := xtest.MustReadFromFile(t, "usertrust.der")

	testCases := map[string]struct {
		Input []byte
		Err   []error
	}{
		"nil": {
			Err: []error{principal.ErrTruncated},
		},
		"truncated mid length field": {
			Input: usertrust[:2],
			Err:   []error{principal.ErrTruncated},
		},
		"truncated inside value": {
			Input: verisign[:50],
			Err:   []error{principal.ErrTruncated, der.ErrMalformedLength},
		},
		"truncated by one byte": {
			Input: verisign[:len(verisign)-1],
			Err:   []error{principal.ErrTruncated},
		},
		"outer is a SET": {
			Input: []byte{0x31, 0x00},
			Err:   []error{principal.ErrInvalidStructure},
		},
		"outer is a string": {
			Input: tlv(der.TagPrintableString, []byte("US")),
			Err:   []error{principal.ErrInvalidStructure},
		},
		"RDN is a SEQUENCE": {
			Input: dn(tlv(der.TagSequence)),
			Err:   []error{principal.ErrInvalidStructure},
		},
		"attribute is a SET": {
			Input: dn(rdn(tlv(der.TagSet))),
			Err:   []error{principal.ErrInvalidStructure},
		},
		"RDN overruns name": {
			Input: []byte{0x30, 0x03, 0x31, 0x05, 0x00},
			Err:   []error{principal.ErrTruncated, der.ErrMalformedLength},
		},
		"dangling octet in name": {
			Input: []byte{0x30, 0x01, 0x31},
			Err:   []error{principal.ErrTruncated},
		},
		"dangling octet in RDN": {
			Input: dn(tlv(der.TagSet, []byte{0x30})),
			Err:   []error{principal.ErrTruncated},
		},
		"indefinite length name": {
			Input: []byte{0x30, 0x80, 0x00, 0x00},
			Err:   []error{der.ErrUnsupportedEncoding},
		},
		"indefinite length RDN": {
			Input: []byte{0x30, 0x04, 0x31, 0x80, 0x00, 0x00},
			Err:   []error{der.ErrUnsupportedEncoding},
		},
		"reserved length octet": {
			Input: []byte{0x30, 0xff, 0x00},
			Err:   []error{principal.ErrTruncated, der.ErrMalformedLength},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m, tm := newTestMetrics()
			p, err := principal.Decoder{Metrics: m}.Decode(tc.Input)
			require.Error(t, err)
			for _, target := range tc.Err {
				assert.ErrorIs(t, err, target)
			}
			assert.True(t, p.IsEmpty(), "no partial principal")
			assert.Equal(t, float64(1), tm.decodes.Value(principal.ResultErrParse))
			assert.Equal(t, float64(0), tm.decodes.Value(principal.ResultOk))
		})
	}
}

func TestDecodeAttributes(t *testing.T) {
	testCases := map[string]struct {
		Input    []byte
		Expected principal.Principal
		Dropped  map[string]float64
		Ignored  float64
	}{
		"empty name": {
			Input: dn(),
		},
		"empty RDN": {
			Input: dn(rdn()),
		},
		"trailing data is ignored": {
			Input:    append(dn(rdn(atv(oidC, der.TagPrintableString, "CH"))), 0x30, 0x1e, 0x17),
			Expected: principal.Principal{CountryName: "CH"},
		},
		"multi-valued RDN": {
			Input: dn(rdn(
				atv(oidO, der.TagPrintableString, "Anapaya"),
				atv(oidOU, der.TagPrintableString, "Engineering"),
				atv(oidO, der.TagUTF8String, "ETH Zürich"),
			)),
			Expected: principal.Principal{
				OrganizationNames:     []string{"Anapaya", "ETH Zürich"},
				OrganizationUnitNames: []string{"Engineering"},
			},
		},
		"repeated single valued attribute": {
			Input: dn(
				rdn(atv(oidCN, der.TagPrintableString, "first")),
				rdn(atv(oidCN, der.TagPrintableString, "second")),
			),
			Expected: principal.Principal{CommonName: "second"},
		},
		"domain components": {
			Input: dn(
				rdn(atv(oidDC, der.TagIA5String, "example")),
				rdn(atv(oidDC, der.TagIA5String, "com")),
				rdn(atv(oidCN, der.TagUTF8String, "host")),
			),
			Expected: principal.Principal{
				CommonName:       "host",
				DomainComponents: []string{"example", "com"},
			},
		},
		"unknown attribute type": {
			Input: dn(
				rdn(atv(oidEmail, der.TagIA5String, "ca@example.com")),
				rdn(atv(oidL, der.TagPrintableString, "Zurich")),
			),
			Expected: principal.Principal{LocalityName: "Zurich"},
			Ignored:  1,
		},
		"unknown attribute type with exotic value": {
			Input:   dn(rdn(atv(oidEmail, der.TagUniversalString, "\x00\x00\x00A"))),
			Ignored: 1,
		},
		"unknown attribute type without value": {
			Input:   dn(rdn(tlv(der.TagSequence, tlv(der.TagOID, oidEmail)))),
			Ignored: 1,
		},
		"unsupported string type": {
			Input: dn(
				rdn(atv(oidCN, der.TagUniversalString, "\x00\x00\x00A")),
				rdn(atv(oidC, der.TagPrintableString, "CH")),
			),
			Expected: principal.Principal{CountryName: "CH"},
			Dropped:  map[string]float64{principal.ReasonUnsupportedStringType: 1},
		},
		"octet string value": {
			Input:   dn(rdn(atv(oidO, der.Tag(0x04), "raw"))),
			Dropped: map[string]float64{principal.ReasonUnsupportedStringType: 1},
		},
		"malformed attribute type": {
			Input: dn(
				rdn(tlv(der.TagSequence,
					tlv(der.TagOID, []byte{0x80}),
					tlv(der.TagPrintableString, []byte("x")))),
				rdn(atv(oidC, der.TagPrintableString, "CH")),
			),
			Expected: principal.Principal{CountryName: "CH"},
			Dropped:  map[string]float64{principal.ReasonInvalidAttribute: 1},
		},
		"attribute type is not an OID": {
			Input: dn(rdn(tlv(der.TagSequence,
				tlv(der.TagPrintableString, []byte("CN")),
				tlv(der.TagPrintableString, []byte("x"))))),
			Dropped: map[string]float64{principal.ReasonInvalidAttribute: 1},
		},
		"missing value": {
			Input:   dn(rdn(tlv(der.TagSequence, tlv(der.TagOID, oidCN)))),
			Dropped: map[string]float64{principal.ReasonInvalidAttribute: 1},
		},
		"value overruns attribute": {
			Input: dn(rdn(tlv(der.TagSequence,
				tlv(der.TagOID, oidCN), []byte{byte(der.TagPrintableString), 0x05, 'x'}))),
			Dropped: map[string]float64{principal.ReasonInvalidAttribute: 1},
		},
		"invalid UTF-8 is replaced": {
			Input:    dn(rdn(atv(oidCN, der.TagUTF8String, "A\xffB"))),
			Expected: principal.Principal{CommonName: "A\uFFFDB"},
		},
		"BMPString surrogate pair": {
			Input:    dn(rdn(atv(oidCN, der.TagBMPString, "\x00A\xd8\x3d\xde\x00"))),
			Expected: principal.Principal{CommonName: "A\U0001F600"},
		},
		"BMPString odd length is replaced": {
			Input:    dn(rdn(atv(oidCN, der.TagBMPString, "\x00A\x00"))),
			Expected: principal.Principal{CommonName: "A\uFFFD"},
		},
		"T61String Latin-1": {
			Input:    dn(rdn(atv(oidL, der.TagT61String, "Z\xfcrich"))),
			Expected: principal.Principal{LocalityName: "Zürich"},
		},
		"empty string value": {
			Input:    dn(rdn(atv(oidOU, der.TagPrintableString, ""))),
			Expected: principal.Principal{OrganizationUnitNames: []string{""}},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m, tm := newTestMetrics()
			p, err := principal.Decoder{Metrics: m}.Decode(tc.Input)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tc.Expected, p, cmpopts.EquateEmpty()))
			assert.Equal(t, float64(1), tm.decodes.Value(principal.ResultOk))
			for _, reason := range []string{
				principal.ReasonUnsupportedStringType,
				principal.ReasonInvalidAttribute,
			} {
				assert.Equal(t, tc.Dropped[reason], tm.dropped.Value(reason), reason)
			}
			assert.Equal(t, tc.Ignored, metrics.CounterValue(tm.ignored))
		})
	}
}

func TestDecodeLogsDroppedAttributes(t *testing.T) {
	logger, logs := testlog.NewObserved()
	dec := principal.Decoder{Logger: logger}
	p, err := dec.Decode(dn(
		rdn(atv(oidCN, der.TagUniversalString, "\x00\x00\x00A")),
		rdn(atv(oidC, der.TagPrintableString, "CH")),
	))
	require.NoError(t, err)
	assert.Equal(t, "CH", p.CountryName)

	entries := logs.FilterMessage("Dropped attribute").All()
	require.Len(t, entries, 1)
	assert.Equal(t, principal.ReasonUnsupportedStringType,
		entries[0].ContextMap()["reason"])
}

func TestDecodePrefixes(t *testing.T) {
	// Every prefix of a valid name must either fail cleanly or, for the
	// complete name, succeed.
	raw := xtest.MustReadFromFile(t, "entrust.der")
	for i := 0; i < len(raw); i++ {
		p, err := principal.Decode(raw[:i])
		assert.Error(t, err, "prefix length %d", i)
		assert.True(t, p.IsEmpty())
	}
	_, err := principal.Decode(raw)
	assert.NoError(t, err)
}

func FuzzDecode(f *testing.F) {
	for _, file := range []string{
		"verisign.der", "startcom.der", "usertrust.der",
		"turktrust.der", "atrust.der", "entrust.der",
	} {
		f.Add(xtest.MustReadFromFile(f, file))
	}
	f.Fuzz(func(t *testing.T, raw []byte) {
		p, err := principal.Decode(raw)
		if err != nil && !p.IsEmpty() {
			t.Fatalf("partial principal on error: %v", p)
		}
		if err == nil && !p.Matches(p) {
			t.Fatalf("principal does not match itself: %v", p)
		}
	})
}
