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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/dnpki/pkg/metrics"
	"github.com/scionproto/dnpki/pkg/private/prom"
)

// Label values used by the decode metrics.
const (
	ResultOk       = prom.Success
	ResultErrParse = prom.ErrParse

	ReasonUnsupportedStringType = "unsupported_string_type"
	ReasonInvalidAttribute      = "invalid_attribute"

	LookupHit  = prom.Hit
	LookupMiss = prom.Miss
)

// Metrics are the counters observed while decoding principals. Every member
// is optional, a nil function disables the respective counter.
type Metrics struct {
	// Decodes counts decode calls by result.
	Decodes func(result string) metrics.Counter
	// DroppedAttributes counts recognized attributes that were dropped
	// because their value could not be decoded.
	DroppedAttributes func(reason string) metrics.Counter
	// IgnoredAttributes counts attributes of an unrecognized type.
	IgnoredAttributes func() metrics.Counter
	// CacheLookups counts cache lookups by result.
	CacheLookups func(result string) metrics.Counter
}

// NewMetrics creates the Prometheus backed decode metrics and registers them
// with the registry given in the options.
func NewMetrics(opts ...metrics.Option) Metrics {
	auto := metrics.ApplyOptions(opts...).Auto()
	decodes := auto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnpki_principal_decodes_total",
			Help: "Number of distinguished name decodes, by result.",
		},
		[]string{prom.LabelResult},
	)
	dropped := auto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnpki_principal_dropped_attributes_total",
			Help: "Number of recognized attributes dropped during decoding, by reason.",
		},
		[]string{prom.LabelReason},
	)
	ignored := auto.NewCounter(prometheus.CounterOpts{
		Name: "dnpki_principal_ignored_attributes_total",
		Help: "Number of attributes with an unrecognized type.",
	})
	lookups := auto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnpki_principal_cache_lookups_total",
			Help: "Number of principal cache lookups, by result.",
		},
		[]string{prom.LabelResult},
	)
	return Metrics{
		Decodes: func(result string) metrics.Counter {
			return decodes.WithLabelValues(result)
		},
		DroppedAttributes: func(reason string) metrics.Counter {
			return dropped.WithLabelValues(reason)
		},
		IgnoredAttributes: func() metrics.Counter {
			return ignored
		},
		CacheLookups: func(result string) metrics.Counter {
			return lookups.WithLabelValues(result)
		},
	}
}

func (m Metrics) decoded(result string) {
	if m.Decodes != nil {
		metrics.CounterInc(m.Decodes(result))
	}
}

func (m Metrics) dropped(reason string) {
	if m.DroppedAttributes != nil {
		metrics.CounterInc(m.DroppedAttributes(reason))
	}
}

func (m Metrics) ignored() {
	if m.IgnoredAttributes != nil {
		metrics.CounterInc(m.IgnoredAttributes())
	}
}

func (m Metrics) lookup(result string) {
	if m.CacheLookups != nil {
		metrics.CounterInc(m.CacheLookups(result))
	}
}
