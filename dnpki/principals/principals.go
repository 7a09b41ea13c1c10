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

// Package principals implements the commands of the dnpki tool. The commands
// decode the subject or issuer names of certificates and compare them.
package principals

import (
	"context"
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/scionproto/dnpki/pkg/log"
	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/cppki"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
)

//go:generate mockgen -destination mock_principals/principals.go -package mock_principals github.com/scionproto/dnpki/dnpki/principals Decoder

// Decoder decodes DER encoded names. It is implemented by principal.Decoder
// and principal.Cache.
type Decoder interface {
	Decode(raw []byte) (principal.Principal, error)
}

// Input describes how the name is read from a file.
type Input struct {
	// Field selects the name of the first certificate in the file.
	Field cppki.Field
	// Raw indicates that the file contains a DER encoded name instead of a
	// certificate.
	Raw bool
}

// RegisterFlags registers the input flags. The suffix is appended to the
// flag names, it allows registering multiple inputs on the same command.
func (in *Input) RegisterFlags(flags *pflag.FlagSet, suffix string) {
	flags.Var(&in.Field, "field"+suffix, "Certificate name to decode (subject|issuer)")
	flags.BoolVar(&in.Raw, "raw"+suffix, false,
		"The file contains a DER encoded name instead of a certificate")
}

// ReadName returns the DER encoded name from file.
func (in Input) ReadName(file string) ([]byte, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, serrors.Wrap("reading file", err, "file", file)
	}
	if in.Raw {
		return raw, nil
	}
	certs, err := cppki.ParsePEMCerts(raw)
	if err != nil {
		return nil, serrors.Wrap("parsing certificates", err, "file", file)
	}
	return cppki.RawName(certs[0], in.Field)
}

func (in Input) fieldName() string {
	if in.Raw {
		return "raw"
	}
	return in.Field.String()
}

// Entry is the decoded name of a single file.
type Entry struct {
	File      string              `json:"file" yaml:"file"`
	Field     string              `json:"field" yaml:"field"`
	Principal principal.Principal `json:"principal" yaml:"principal"`
}

// Load reads and decodes the name from file.
func Load(dec Decoder, in Input, file string) (Entry, error) {
	raw, err := in.ReadName(file)
	if err != nil {
		return Entry{}, err
	}
	p, err := dec.Decode(raw)
	if err != nil {
		return Entry{}, serrors.Wrap("decoding name", err, "file", file,
			"field", in.fieldName())
	}
	return Entry{
		File:      file,
		Field:     in.fieldName(),
		Principal: p,
	}, nil
}

// LoadAll loads the names from all files concurrently. The entries are in the
// order of the files. If any file fails, an error is returned.
func LoadAll(ctx context.Context, dec Decoder, in Input, files []string) ([]Entry, error) {
	logger := log.FromCtx(ctx)
	entries := make([]Entry, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := Load(dec, in, file)
			if err != nil {
				return err
			}
			logger.Debug("Decoded name", "file", file, "field", e.Field,
				"name", e.Principal.String())
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
