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

// Package app contains helpers shared by the command line applications.
package app

import (
	"errors"
	"fmt"

	"github.com/scionproto/dnpki/pkg/log"
)

// LogLevelUsage is the usage string of the log level flag.
const LogLevelUsage = "Console logging level (debug|info|error)"

// SetupLog configures the console logger of a command line application at
// the given level. The log is written to stderr.
func SetupLog(level string, opts ...log.Option) error {
	cfg := log.Config{Console: log.ConsoleConfig{
		Level:         level,
		DisableCaller: true,
	}}
	return log.Setup(cfg, opts...)
}

type codeError struct {
	error
	code int
}

func (e codeError) Error() string {
	if e.error == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.error.Error()
}

func (e codeError) Unwrap() error {
	return e.error
}

// WithExitCode annotates err with the exit code the process should terminate
// with.
func WithExitCode(err error, code int) error {
	return codeError{error: err, code: code}
}

// ExitCode returns the exit code err is annotated with. It returns 0 for a
// nil error and -1 if err does not carry an exit code.
func ExitCode(err error) int {
	var c codeError
	if errors.As(err, &c) {
		return c.code
	}
	if err == nil {
		return 0
	}
	return -1
}
