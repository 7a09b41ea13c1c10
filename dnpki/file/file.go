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

// Package file contains helper functions to write the output files of the
// dnpki tool.
package file

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

// Option is the type to add optional behavior changes.
type Option func(o *options)

type options struct {
	force  bool
	backup string
}

// WithForce overwrites an existing file if it already exists.
func WithForce(force bool) Option {
	return func(o *options) {
		o.force = force
	}
}

// WithBackup moves an existing file to a backup before writing. The suffix is
// inserted before the file extension, e.g., name.der becomes name.bak.der.
// An empty suffix disables the backup.
func WithBackup(suffix string) Option {
	return func(o *options) {
		o.backup = suffix
	}
}

func apply(opts []Option) options {
	var o options
	for _, option := range opts {
		option(&o)
	}
	return o
}

// CheckDirExists checks whether the provided directory exists.
func CheckDirExists(dir string) error {
	stat, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return serrors.New("directory does not exist", "dir", dir)
	}
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return serrors.New("not a directory", "dir", dir)
	}
	return nil
}

// WriteFile writes data to the named file. An existing file is only replaced
// if either WithForce or WithBackup is set.
func WriteFile(filename string, data []byte, perm os.FileMode, opts ...Option) error {
	options := apply(opts)

	info, err := os.Stat(filename)
	if errors.Is(err, os.ErrNotExist) {
		return os.WriteFile(filename, data, perm)
	}
	if err != nil {
		return serrors.Wrap("reading stat information", err)
	}
	if info.IsDir() {
		return serrors.New("file is a directory", "file", filename)
	}
	switch {
	case options.backup != "":
		backup := backupName(filename, options.backup)
		if err := os.Rename(filename, backup); err != nil {
			return serrors.Wrap("creating backup", err, "backup", backup)
		}
	case options.force:
		if err := os.Remove(filename); err != nil {
			return serrors.Wrap("removing existing file", err)
		}
	default:
		return serrors.Wrap("writing file", os.ErrExist, "file", filename)
	}
	return os.WriteFile(filename, data, perm)
}

func backupName(filename, suffix string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "." + suffix + ext
}
