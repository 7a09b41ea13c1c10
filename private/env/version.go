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

// Package env contains the build information of the applications.
package env

import (
	"fmt"
	"runtime/debug"
)

var (
	// StartupBuildDate is the build date. It is set at link time.
	StartupBuildDate = "local builds have no build time"
	// StartupVersion is the release version. It is set at link time and
	// falls back to the module version.
	StartupVersion string
)

// Version returns the release version.
func Version() string {
	if StartupVersion != "" {
		return StartupVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// VersionInfo returns the multi-line version information.
func VersionInfo() string {
	goVersion := "unknown"
	revision := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				revision = s.Value
			}
		}
	}
	return fmt.Sprintf("  %s\n  %s\n  %s\n  %s\n",
		fmt.Sprintf("Version:       %s", Version()),
		fmt.Sprintf("Build date:    %s", StartupBuildDate),
		fmt.Sprintf("Revision:      %s", revision),
		fmt.Sprintf("Go version:    %s", goVersion),
	)
}
