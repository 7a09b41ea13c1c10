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
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

const formatUsage = "Specify the output format (human|json|yaml)"

func checkFormat(format string) error {
	switch format {
	case "human", "json", "yaml":
		return nil
	default:
		return serrors.New("output format not supported", "format", format)
	}
}

// render writes v in the machine readable formats, or calls human.
func render(w io.Writer, format string, v any, human func(w io.Writer)) error {
	switch format {
	case "human":
		human(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return serrors.New("output format not supported", "format", format)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette holds the colors of the human output.
type palette struct {
	good *color.Color
	bad  *color.Color
	keys *color.Color
}

// newPalette returns the palette for output to w. Colors are only used on
// terminals.
func newPalette(w io.Writer, colored bool) palette {
	plain := color.New()
	plain.DisableColor()
	if !colored || !isTerminal(w) {
		return palette{good: plain, bad: plain, keys: plain}
	}
	p := palette{
		good: color.New(color.FgGreen),
		bad:  color.New(color.FgRed),
		keys: color.New(color.FgHiCyan),
	}
	for _, c := range []*color.Color{p.good, p.bad, p.keys} {
		c.EnableColor()
	}
	return p
}

func (p palette) verdict(match bool) string {
	if match {
		return p.good.Sprint("MATCH")
	}
	return p.bad.Sprint("MISMATCH")
}
