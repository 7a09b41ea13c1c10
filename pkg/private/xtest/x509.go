// Copyright 2020 Anapaya Systems
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

package xtest

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scionproto/dnpki/pkg/scrypto/cppki"
)

// Chain is a generated CA and leaf certificate pair.
type Chain struct {
	CA   *x509.Certificate
	Leaf *x509.Certificate
}

// PEM returns the PEM encoded chain, leaf first.
func (c Chain) PEM() []byte {
	var buf bytes.Buffer
	for _, cert := range []*x509.Certificate{c.Leaf, c.CA} {
		_ = pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	}
	return buf.Bytes()
}

// NewChain creates a self-signed CA certificate with subject ca, and a leaf
// certificate with subject leaf issued by it. The certificates are only
// useful to exercise name handling, they are not meant to be verified.
func NewChain(t testing.TB, ca, leaf pkix.Name) Chain {
	t.Helper()

	caKey := newKey(t)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               ca,
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caCert := createCert(t, caTmpl, caTmpl, caKey.Public(), caKey)

	leafKey := newKey(t)
	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      leaf,
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafCert := createCert(t, leafTmpl, caCert, leafKey.Public(), caKey)
	return Chain{CA: caCert, Leaf: leafCert}
}

// WriteChain writes the PEM encoded chain to dir/name and returns the path.
func WriteChain(t testing.TB, dir, name string, chain Chain) string {
	t.Helper()

	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, chain.PEM(), 0644))
	return file
}

// LoadChain loads a certificate chain from a file. The file must be PEM encoded.
func LoadChain(t testing.TB, file string) []*x509.Certificate {
	t.Helper()
	chain, err := cppki.ReadPEMCerts(file)
	require.NoError(t, err)
	return chain
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func createCert(
	t testing.TB,
	tmpl, parent *x509.Certificate,
	pub crypto.PublicKey,
	priv crypto.Signer,
) *x509.Certificate {
	t.Helper()
	raw, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, priv)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(raw)
	require.NoError(t, err)
	return cert
}
