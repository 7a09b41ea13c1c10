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

// Package cppki loads X.509 certificates and extracts the distinguished names
// they carry.
package cppki

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"strings"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

var (
	// ErrNoCertificate indicates that the input does not contain any
	// certificate.
	ErrNoCertificate = serrors.New("no certificate found")
	// ErrInvalidBlockType indicates a PEM block that is not a certificate.
	ErrInvalidBlockType = serrors.New("invalid PEM block type")
	// ErrUnknownField indicates an unknown name field.
	ErrUnknownField = serrors.New("unknown name field")
)

// ReadPEMCerts reads the file and parses the certificate chain.
func ReadPEMCerts(file string) ([]*x509.Certificate, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParsePEMCerts(raw)
}

// ParsePEMCerts parses the PEM encoded certificate chain. If raw does not
// contain any PEM block, it is parsed as a single DER encoded certificate.
func ParsePEMCerts(raw []byte) ([]*x509.Certificate, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrNoCertificate
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, serrors.Wrap("parsing DER certificate", err)
		}
		return []*x509.Certificate{cert}, nil
	}
	var certs []*x509.Certificate
	for len(bytes.TrimSpace(raw)) > 0 {
		var block *pem.Block
		block, raw = pem.Decode(raw)
		if block == nil {
			return nil, serrors.New("error extracting PEM block")
		}
		if block.Type != "CERTIFICATE" {
			return nil, serrors.JoinNoStack(ErrInvalidBlockType, nil, "type", block.Type)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, serrors.Wrap("parsing certificate", err, "index", len(certs))
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// Field selects one of the names of a certificate.
type Field int

const (
	// Subject is the subject name.
	Subject Field = iota
	// Issuer is the issuer name.
	Issuer
)

// ParseField parses the field name. It is case insensitive.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(s) {
	case "subject":
		return Subject, nil
	case "issuer":
		return Issuer, nil
	default:
		return 0, serrors.JoinNoStack(ErrUnknownField, nil, "input", s)
	}
}

func (f Field) String() string {
	switch f {
	case Subject:
		return "subject"
	case Issuer:
		return "issuer"
	default:
		return "unknown"
	}
}

// Set implements pflag.Value.
func (f *Field) Set(s string) error {
	v, err := ParseField(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Field) Type() string {
	return "field"
}

// RawName returns the DER encoded name of the certificate selected by field.
// The returned slice references the certificate.
func RawName(cert *x509.Certificate, field Field) ([]byte, error) {
	if cert == nil {
		return nil, serrors.New("nil certificate")
	}
	switch field {
	case Subject:
		return cert.RawSubject, nil
	case Issuer:
		return cert.RawIssuer, nil
	default:
		return nil, serrors.JoinNoStack(ErrUnknownField, nil, "field", int(field))
	}
}
