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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/scionproto/dnpki/dnpki/principals"
	"github.com/scionproto/dnpki/pkg/private/xtest"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
	"github.com/scionproto/dnpki/private/app"
	"github.com/scionproto/dnpki/private/config"
)

func TestDecodeCmd(t *testing.T) {
	files := writeTestFiles(t)

	t.Run("human", func(t *testing.T) {
		out, err := execute(t, "decode", "--no-color", files.Chain, files.CA)
		require.NoError(t, err)
		assert.Contains(t, out, "leaf.example.com")
		assert.Contains(t, out, "Operations")
		assert.Contains(t, out, "Test Root CA")
	})
	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "decode", "--format", "json", "--field", "issuer", files.Chain)
		require.NoError(t, err)
		var res principals.DecodeResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Len(t, res.Entries, 1)
		assert.Equal(t, "issuer", res.Entries[0].Field)
		assert.Equal(t, caPrincipal, res.Entries[0].Principal)
	})
	t.Run("yaml", func(t *testing.T) {
		out, err := execute(t, "decode", "--format", "yaml", "--raw", files.RawSubject)
		require.NoError(t, err)
		var res principals.DecodeResult
		require.NoError(t, yaml.Unmarshal([]byte(out), &res))
		require.Len(t, res.Entries, 1)
		assert.Equal(t, "raw", res.Entries[0].Field)
		assert.Equal(t, leafPrincipal, res.Entries[0].Principal)
	})
	t.Run("unsupported format", func(t *testing.T) {
		_, err := execute(t, "decode", "--format", "xml", files.Chain)
		assert.Error(t, err)
	})
	t.Run("unknown field", func(t *testing.T) {
		_, err := execute(t, "decode", "--field", "owner", files.Chain)
		assert.Error(t, err)
	})
	t.Run("invalid input", func(t *testing.T) {
		_, err := execute(t, "decode", files.Chain, files.Garbage)
		assert.Error(t, err)
	})
	t.Run("no arguments", func(t *testing.T) {
		_, err := execute(t, "decode")
		assert.Error(t, err)
	})
}

func TestMatchCmd(t *testing.T) {
	files := writeTestFiles(t)

	testCases := map[string]struct {
		Args     []string
		Match    bool
		Contains []string
	}{
		"issuer matches CA subject": {
			Args:     []string{"--field-a", "issuer", files.Chain, files.CA},
			Match:    true,
			Contains: []string{"MATCH", "Test Root CA"},
		},
		"raw subject matches certificate subject": {
			Args:     []string{"--raw-a", files.RawSubject, files.Chain},
			Match:    true,
			Contains: []string{"MATCH", "leaf.example.com"},
		},
		"subjects differ": {
			Args:     []string{files.Chain, files.CA},
			Contains: []string{"MISMATCH", principals.StatusDiffers},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, append([]string{"match", "--no-color"}, tc.Args...)...)
			for _, s := range tc.Contains {
				assert.Contains(t, out, s)
			}
			if tc.Match {
				assert.NoError(t, err)
				assert.NotContains(t, out, "MISMATCH")
				return
			}
			assert.ErrorIs(t, err, principals.ErrMismatch)
			assert.Equal(t, 1, app.ExitCode(err))
		})
	}

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "match", "--format", "json",
			"--field-a", "issuer", files.Chain, files.CA)
		require.NoError(t, err)
		var res principals.MatchResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.True(t, res.Match)
		assert.Equal(t, "issuer", res.A.Field)
		assert.Equal(t, "subject", res.B.Field)
		assert.Equal(t, principals.Compare(caPrincipal, caPrincipal), res.Attributes)
	})
	t.Run("invalid input", func(t *testing.T) {
		_, err := execute(t, "match", files.Chain, files.Garbage)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, principals.ErrMismatch)
	})
}

func TestVerifyCmd(t *testing.T) {
	files := writeTestFiles(t)
	policyFile := filepath.Join(files.Dir, "policy.toml")
	_, err := execute(t, "policy", "create", "--out", policyFile, files.CA)
	require.NoError(t, err)

	unknownKey := filepath.Join(files.Dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknownKey, []byte("common_name = \"x\"\nserial = \"1\"\n"), 0644))
	empty := filepath.Join(files.Dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("domain_components = [\"com\"]\n"), 0644))

	t.Run("match", func(t *testing.T) {
		out, err := execute(t, "verify", "--no-color", "--policy", policyFile,
			"--field", "issuer", files.Chain)
		require.NoError(t, err)
		assert.Contains(t, out, "MATCH")
		assert.NotContains(t, out, "MISMATCH")
	})
	t.Run("mismatch", func(t *testing.T) {
		out, err := execute(t, "verify", "--format", "json", "--policy", policyFile,
			files.CA, files.Chain)
		assert.ErrorIs(t, err, principals.ErrMismatch)
		assert.Equal(t, 1, app.ExitCode(err))

		var res principals.VerifyResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Len(t, res.Entries, 2)
		assert.True(t, res.Entries[0].Match)
		assert.False(t, res.Entries[1].Match)
		assert.Equal(t, 1, res.Mismatches())
		assert.Equal(t, files.Chain, res.Entries[1].File)
	})
	t.Run("missing policy flag", func(t *testing.T) {
		_, err := execute(t, "verify", files.Chain)
		assert.Error(t, err)
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := execute(t, "verify", "--policy", unknownKey, files.Chain)
		assert.Error(t, err)
	})
	t.Run("empty policy", func(t *testing.T) {
		_, err := execute(t, "verify", "--policy", empty, files.Chain)
		assert.ErrorIs(t, err, principals.ErrEmptyPolicy)
	})
}

func TestExtractCmd(t *testing.T) {
	files := writeTestFiles(t)
	leaf := xtest.LoadChain(t, files.Chain)[0]
	expected := leaf.RawSubject
	out := filepath.Join(files.Dir, "extracted.der")

	_, err := execute(t, "extract", "--out", out, files.Chain)
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, expected, raw)

	_, err = execute(t, "extract", "--field", "issuer", "--out", out, files.Chain)
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = execute(t, "extract", "--field", "issuer", "--backup", "bak", "--out", out,
		files.Chain)
	require.NoError(t, err)
	backup, err := os.ReadFile(filepath.Join(files.Dir, "extracted.bak.der"))
	require.NoError(t, err)
	assert.Equal(t, expected, backup)

	raw, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, leaf.RawIssuer, raw)
	p, err := principal.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, caPrincipal, p)

	_, err = execute(t, "extract", files.Chain)
	assert.Error(t, err)

	missing := filepath.Join(files.Dir, "missing", "subject.der")
	_, err = execute(t, "extract", "--out", missing, files.Chain)
	assert.ErrorContains(t, err, "directory does not exist")
	assert.NoFileExists(t, missing)
}

func TestPolicyCmd(t *testing.T) {
	files := writeTestFiles(t)

	t.Run("sample", func(t *testing.T) {
		out, err := execute(t, "policy", "sample")
		require.NoError(t, err)
		var p principals.Policy
		require.NoError(t, config.Decode([]byte(out), &p))
		assert.NoError(t, p.Validate())
		assert.Equal(t, "A-Trust-Qual-01", p.CommonName)
	})
	t.Run("create", func(t *testing.T) {
		out, err := execute(t, "policy", "create", files.Chain)
		require.NoError(t, err)
		var p principals.Policy
		require.NoError(t, config.Decode([]byte(out), &p))
		assert.Equal(t, leafPrincipal, p.Principal())
	})
	t.Run("create exists", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "policy.toml")
		_, err := execute(t, "policy", "create", "--out", file, files.Chain)
		require.NoError(t, err)
		_, err = execute(t, "policy", "create", "--out", file, files.CA)
		assert.ErrorIs(t, err, os.ErrExist)
		_, err = execute(t, "policy", "create", "--force", "--out", file, files.CA)
		require.NoError(t, err)

		p, err := principals.LoadPolicy(file)
		require.NoError(t, err)
		assert.Equal(t, caPrincipal, p.Principal())
	})
	t.Run("create missing directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "missing", "policy.toml")
		_, err := execute(t, "policy", "create", "--out", file, files.Chain)
		assert.ErrorContains(t, err, "directory does not exist")
	})
}
