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

package principals

import (
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scionproto/dnpki/pkg/log"
	"github.com/scionproto/dnpki/pkg/metrics"
	"github.com/scionproto/dnpki/pkg/private/prom"
	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/principal"
	"github.com/scionproto/dnpki/private/app"
)

// Keys of the tool settings. They double as flag names. The corresponding
// environment variables are prefixed with DNPKI_ and use underscores, e.g.,
// DNPKI_LOG_LEVEL.
const (
	KeyConfig      = "config"
	KeyLogLevel    = "log.level"
	KeyCacheSize   = "cache.size"
	KeyMetricsDump = "metrics.dump"
)

// Settings are the tool settings shared by all commands.
type Settings struct {
	LogLevel    string
	CacheSize   int
	DumpMetrics bool
}

// BindFlags registers the global flags and binds them to v. Flags take
// precedence over environment variables, which take precedence over the
// settings file.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	flags.String(KeyConfig, "", "Optional settings file (TOML)")
	flags.String(KeyLogLevel, "error", app.LogLevelUsage)
	flags.Int(KeyCacheSize, 128, "Number of decoded names kept in memory")
	flags.Bool(KeyMetricsDump, false, "Write the collected metrics to stderr on success")

	v.SetEnvPrefix("dnpki")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// LoadSettings reads the optional settings file and returns the resolved
// settings.
func LoadSettings(v *viper.Viper) (Settings, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, serrors.Wrap("reading settings file", err, "file", file)
		}
	}
	s := Settings{
		LogLevel:    v.GetString(KeyLogLevel),
		CacheSize:   v.GetInt(KeyCacheSize),
		DumpMetrics: v.GetBool(KeyMetricsDump),
	}
	if s.CacheSize <= 0 {
		return Settings{}, serrors.New("cache size must be positive", "size", s.CacheSize)
	}
	return s, nil
}

// Env is the environment of the commands. The commands are constructed with
// an empty Env, it is initialized right before the selected command runs.
type Env struct {
	Settings Settings
	// Registry collects the metrics of a single invocation.
	Registry *prometheus.Registry
	// Cache decodes the names. Identical names, e.g., the issuer of
	// multiple leaf certificates, are decoded once.
	Cache *principal.Cache
}

// Init sets up logging to logOut, metrics and the principal cache.
func (e *Env) Init(s Settings, logOut io.Writer) error {
	reg := prometheus.NewRegistry()
	opts := []metrics.Option{metrics.WithRegistry(reg)}

	entries := metrics.ApplyOptions(opts...).Auto().NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnpki_log_entries_total",
			Help: "Total number of emitted log entries.",
		},
		[]string{prom.LabelLevel},
	)
	err := app.SetupLog(s.LogLevel,
		log.WithWriter(logOut),
		log.WithEntriesCounter(log.EntriesCounter{
			Debug: entries.WithLabelValues("debug"),
			Info:  entries.WithLabelValues("info"),
			Error: entries.WithLabelValues("error"),
		}),
	)
	if err != nil {
		return serrors.Wrap("setting up logging", err)
	}
	cache, err := principal.NewCache(s.CacheSize, principal.Decoder{
		Logger:  log.New("component", "decoder"),
		Metrics: principal.NewMetrics(opts...),
	})
	if err != nil {
		return err
	}
	e.Settings = s
	e.Registry = reg
	e.Cache = cache
	return nil
}

// Decoder returns the decoder the commands use. Before Init, names are
// decoded without caching.
func (e *Env) Decoder() Decoder {
	if e == nil || e.Cache == nil {
		return principal.Decoder{}
	}
	return e.Cache
}

// DumpMetrics writes the collected metrics in the Prometheus text format to
// w, if enabled in the settings.
func (e *Env) DumpMetrics(w io.Writer) error {
	if e.Registry == nil || !e.Settings.DumpMetrics {
		return nil
	}
	families, err := e.Registry.Gather()
	if err != nil {
		return serrors.Wrap("gathering metrics", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return serrors.Wrap("encoding metrics", err)
		}
	}
	return nil
}
