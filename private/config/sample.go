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

package config

import (
	"bytes"
	"fmt"
	"io"
)

// WriteSample writes the samples to dst, separated by an empty line. The
// samples are written only if all of them were generated.
func WriteSample(dst io.Writer, samplers ...Sampler) error {
	var buf bytes.Buffer
	for i, sampler := range samplers {
		if i > 0 {
			buf.WriteByte('\n')
		}
		sampler.Sample(&buf)
	}
	_, err := buf.WriteTo(dst)
	return err
}

// WriteString writes the string to dst. It panics if an error occurs.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("Unable to write string err=%s", err))
	}
}
