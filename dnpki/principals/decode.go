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
	"io"

	"github.com/spf13/cobra"

	"github.com/scionproto/dnpki/pkg/log"
	"github.com/scionproto/dnpki/private/app/command"
)

// DecodeResult is the result of the decode command.
type DecodeResult struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Human writes a table listing the attributes of every entry.
func (r DecodeResult) Human(w io.Writer, colored bool) {
	p := newPalette(w, colored)
	table := newTable(w, "file", "field", "attribute", "value")
	for _, e := range r.Entries {
		file, field := e.File, e.Field
		attrs := e.Principal.Attributes()
		if len(attrs) == 0 {
			table.Append([]string{file, field, "-", "(empty)"})
			continue
		}
		for _, a := range attrs {
			table.Append([]string{file, field, p.keys.Sprint(a.Name), a.Value})
			file, field = "", ""
		}
	}
	table.Render()
}

// NewDecodeCmd creates the decode command.
func NewDecodeCmd(pather command.Pather, env *Env) *cobra.Command {
	var flags struct {
		input   Input
		format  string
		noColor bool
	}
	cmd := &cobra.Command{
		Use:   "decode [flags] <file> [<file> ...]",
		Short: "Decode the distinguished name of certificates",
		Long: `'decode' decodes the subject or issuer name of the first certificate in
each file and displays the recognized attributes.

Files may contain PEM or DER encoded certificates. With --raw, the files
contain a DER encoded name instead, e.g., as written by the extract command.

Attributes of unrecognized types are skipped. Attributes with values that
cannot be decoded are dropped, run with --log.level=debug to see them.
`,
		Example: fmt.Sprintf(`  %[1]s decode cert.pem
  %[1]s decode --field issuer --format json cert.pem
  %[1]s decode --raw subject.der`,
			pather.CommandPath(),
		),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(flags.format); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx, _ := log.WithLabels(cmd.Context(), "cmd", cmd.Name())
			entries, err := LoadAll(ctx, env.Decoder(), flags.input, args)
			if err != nil {
				return err
			}
			res := DecodeResult{Entries: entries}
			return render(cmd.OutOrStdout(), flags.format, res, func(w io.Writer) {
				res.Human(w, !flags.noColor)
			})
		},
	}
	flags.input.RegisterFlags(cmd.Flags(), "")
	cmd.Flags().StringVar(&flags.format, "format", "human", formatUsage)
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	return cmd
}
