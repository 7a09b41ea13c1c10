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
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scionproto/dnpki/dnpki/file"
	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/private/app/command"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd(pather command.Pather, env *Env) *cobra.Command {
	var flags struct {
		field  Input
		out    string
		force  bool
		backup string
	}
	cmd := &cobra.Command{
		Use:   "extract --out <file> [flags] <certificate>",
		Short: "Extract the DER encoded distinguished name of a certificate",
		Long: `'extract' writes the DER encoded subject or issuer name of the first
certificate in the file to the output file. The name is checked to be
decodable before it is written.

The output can be inspected with the --raw flag of the other commands.
`,
		Example: fmt.Sprintf(`  %[1]s extract --out subject.der cert.pem
  %[1]s extract --field issuer --out issuer.der --force cert.pem`,
			pather.CommandPath(),
		),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			raw, err := flags.field.ReadName(args[0])
			if err != nil {
				return err
			}
			if _, err := env.Decoder().Decode(raw); err != nil {
				return serrors.Wrap("decoding name", err, "file", args[0],
					"field", flags.field.Field)
			}
			if err := file.CheckDirExists(filepath.Dir(flags.out)); err != nil {
				return serrors.Wrap("checking output directory", err)
			}
			err = file.WriteFile(flags.out, raw, 0644,
				file.WithForce(flags.force), file.WithBackup(flags.backup))
			if err != nil {
				return serrors.Wrap("writing name", err, "file", flags.out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s name written to %q\n", flags.field.Field, flags.out)
			return nil
		},
	}
	cmd.Flags().Var(&flags.field.Field, "field", "Certificate name to extract (subject|issuer)")
	cmd.Flags().StringVar(&flags.out, "out", "", "Output file (required)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing output file")
	cmd.Flags().StringVar(&flags.backup, "backup", "",
		"Move an existing output file to a backup with this suffix")
	if err := cmd.MarkFlagRequired("out"); err != nil {
		panic(err)
	}
	return cmd
}
