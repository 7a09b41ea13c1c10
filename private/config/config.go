// Copyright 2019 Anapaya Systems
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

// Package config provides an unified pattern for configuration structs.
//
// # Usage
//
// Configuration structs implement the Config interface. There are three
// parts to a configuration: Initialization, validation and sample
// generation.
//
// # Initialization
//
// A config struct is initialized by calling InitDefaults. This initializes
// all uninitialized fields. Fields that should not be initialized to default
// must be set before calling InitDefaults.
//
// # Validation
//
// A config struct is validated by calling Validate.
//
// # Sample Generation
//
// A config struct can be used to generate a commented sample toml config by
// calling Sample or WriteSample. Unit tests guarantee that the sample is
// parsable and passes validation.
//
// Warning: The method Sample is allowed to panic if an error occurs during
// sample generation.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

// Config is the interface that config structs should implement to allow for
// streamlined initialization, validation and sample generation.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator defines the validation part of Config.
type Validator interface {
	// Validate checks that all fields contain valid values.
	Validate() error
}

// Defaulter defines the initialization part of Config.
type Defaulter interface {
	// InitDefaults initializes the default values of all uninitialized
	// fields.
	InitDefaults()
}

// Sampler defines the sample generation part of Config.
type Sampler interface {
	// Sample writes a commented sample config to dst. Sample is allowed to
	// panic if an error occurs.
	Sample(dst io.Writer)
}

// NoDefaulter implements a Defaulter that does a no-op on InitDefaults.
// It can be embedded in config structs that do not have any defaults.
type NoDefaulter struct{}

// InitDefaults is a no-op.
func (NoDefaulter) InitDefaults() {}

// Decode decodes a raw config. Unknown keys are rejected.
func Decode(raw []byte, cfg any) error {
	return toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(cfg)
}

// LoadFile loads the config from file.
func LoadFile(file string, cfg any) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if err := Decode(raw, cfg); err != nil {
		return serrors.Wrap("decoding config", err, "file", file)
	}
	return nil
}

// Load loads the config from file, initializes the defaults and validates
// it.
func Load(file string, cfg Config) error {
	if err := LoadFile(file, cfg); err != nil {
		return err
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return serrors.Wrap("validating config", err, "file", file)
	}
	return nil
}

// Digest calculates the SHA256 sum of the JSON encoding of the config. Equal
// configs have equal digests regardless of the formatting of the file they
// were loaded from.
func Digest(cfg any) ([]byte, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
