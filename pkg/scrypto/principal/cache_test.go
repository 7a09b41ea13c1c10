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
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/scionproto/dnpki/pkg/metrics"
	"github.com/scionproto/dnpki/pkg/private/xtest"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewCacheInvalidSize(t *testing.T) {
	_, err := principal.NewCache(0, principal.Decoder{})
	assert.Error(t, err)
}

func TestCacheDecode(t *testing.T) {
	m, tm := newTestMetrics()
	cache, err := principal.NewCache(2, principal.Decoder{Metrics: m})
	require.NoError(t, err)

	raw := xtest.MustReadFromFile(t, "entrust.der")
	first, err := cache.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Entrust.net Certification Authority (2048)", first.DisplayName())

	// Modifying a returned principal must not affect the cached one.
	first.OrganizationUnitNames[0] = "changed"
	first.CommonName = "changed"

	second, err := cache.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Entrust.net Certification Authority (2048)", second.CommonName)
	assert.Equal(t, "www.entrust.net/CPS_2048 incorp. by ref. (limits liab.)",
		second.OrganizationUnitNames[0])

	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, float64(1), tm.lookups.Value(principal.LookupMiss))
	assert.Equal(t, float64(1), tm.lookups.Value(principal.LookupHit))
	assert.Equal(t, float64(1), tm.decodes.Value(principal.ResultOk))

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	m, tm := newTestMetrics()
	cache, err := principal.NewCache(2, principal.Decoder{Metrics: m})
	require.NoError(t, err)

	raw := xtest.MustReadFromFile(t, "verisign.der")
	for i := 0; i < 2; i++ {
		_, err := cache.Decode(raw[:10])
		assert.ErrorIs(t, err, principal.ErrTruncated)
	}
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, float64(2), tm.lookups.Value(principal.LookupMiss))
	assert.Equal(t, float64(2), tm.decodes.Value(principal.ResultErrParse))
}

func TestCacheEviction(t *testing.T) {
	cache, err := principal.NewCache(2, principal.Decoder{})
	require.NoError(t, err)
	for _, file := range []string{"verisign.der", "startcom.der", "usertrust.der"} {
		_, err := cache.Decode(xtest.MustReadFromFile(t, file))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())
}

func TestCacheConcurrent(t *testing.T) {
	cache, err := principal.NewCache(4, principal.Decoder{})
	require.NoError(t, err)

	files := []string{"verisign.der", "turktrust.der", "atrust.der"}
	inputs := make([][]byte, 0, len(files))
	expected := make([]principal.Principal, 0, len(files))
	for _, file := range files {
		raw := xtest.MustReadFromFile(t, file)
		p, err := principal.Decode(raw)
		require.NoError(t, err)
		inputs = append(inputs, raw)
		expected = append(expected, p)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				idx := (w + i) % len(inputs)
				p, err := cache.Decode(inputs[idx])
				if assert.NoError(t, err) {
					assert.True(t, p.Matches(expected[idx]))
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := principal.NewMetrics(metrics.WithRegistry(reg))
	cache, err := principal.NewCache(2, principal.Decoder{Metrics: m})
	require.NoError(t, err)

	raw := xtest.MustReadFromFile(t, "verisign.der")
	_, err = cache.Decode(raw)
	require.NoError(t, err)
	_, err = cache.Decode(raw)
	require.NoError(t, err)
	_, err = cache.Decode(append(dn(
		rdn(atv(oidEmail, 0x16, "ca@example.com")),
		rdn(atv(oidCN, 0x1c, "\x00\x00\x00A")),
	), 0x00))
	require.NoError(t, err)

	value := func(c metrics.Counter) float64 {
		return testutil.ToFloat64(c.(prometheus.Counter))
	}
	assert.Equal(t, float64(2), value(m.Decodes(principal.ResultOk)))
	assert.Equal(t, float64(1), value(m.CacheLookups(principal.LookupHit)))
	assert.Equal(t, float64(2), value(m.CacheLookups(principal.LookupMiss)))
	assert.Equal(t, float64(1), value(m.IgnoredAttributes()))
	assert.Equal(t, float64(1), value(m.DroppedAttributes(principal.ReasonUnsupportedStringType)))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
