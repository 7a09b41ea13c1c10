// Copyright 2021 Anapaya Systems
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

// Package command contains helpers shared by the cobra commands of the
// command line tools.
package command

import (
	"strings"

	"github.com/spf13/cobra"
)

// Pather returns the command path of a command. It is used to render
// examples before the command tree is fully assembled.
type Pather interface {
	CommandPath() string
}

// StringPather is a Pather with a fixed path.
type StringPather string

// CommandPath returns the path.
func (s StringPather) CommandPath() string {
	return string(s)
}

// Join returns a Pather that appends the name of cmd to the path of parent.
func Join(parent Pather, cmd *cobra.Command) Pather {
	return joined{parent: parent, cmd: cmd}
}

type joined struct {
	parent Pather
	cmd    *cobra.Command
}

func (j joined) CommandPath() string {
	return strings.TrimSpace(j.parent.CommandPath() + " " + j.cmd.Name())
}
