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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scionproto/dnpki/dnpki/principals"
	"github.com/scionproto/dnpki/pkg/log"
	"github.com/scionproto/dnpki/private/app"
	"github.com/scionproto/dnpki/private/app/command"
)

func main() {
	cmd := newRoot(filepath.Base(os.Args[0]))
	err := cmd.Execute()
	log.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode returns the exit code for err. Errors without an explicit code
// exit with 2, code 1 is reserved for names that do not match.
func exitCode(err error) int {
	if code := app.ExitCode(err); code >= 0 {
		return code
	}
	return 2
}

func newRoot(executable string) *cobra.Command {
	v := viper.New()
	env := &principals.Env{}
	cmd := &cobra.Command{
		Use:   executable,
		Short: "X.509 distinguished name inspection tool",
		Long: `Decodes the distinguished names of X.509 certificates and checks whether
they denote the same principal.`,
		Args: cobra.NoArgs,
		// Silence the errors, since we print them in main. Otherwise, cobra
		// will print any non-nil errors returned by a RunE function.
		// Commands should turn off the usage help message, if they deem the
		// arguments to be reasonable well-formed.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := principals.LoadSettings(v)
			if err != nil {
				return err
			}
			return env.Init(settings, cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.DumpMetrics(cmd.ErrOrStderr())
		},
	}
	if err := principals.BindFlags(cmd.PersistentFlags(), v); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		command.NewCompletion(cmd),
		command.NewGendocs(cmd),
		newVersion(),
		principals.NewDecodeCmd(cmd, env),
		principals.NewMatchCmd(cmd, env),
		principals.NewVerifyCmd(cmd, env),
		principals.NewExtractCmd(cmd, env),
		principals.NewPolicyCmd(cmd, env),
	)
	return cmd
}
