// Copyright 2023 Anapaya Systems
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

// Package metrics provides small metric interfaces that are satisfied by the
// Prometheus client types, so that libraries can expose metrics without
// depending on a registry. All helpers accept nil metrics and then do nothing.
package metrics

// Counter describes a metric that accumulates values monotonically.
// prometheus.Counter satisfies this interface.
type Counter interface {
	Add(delta float64)
}

// CounterInc increases the passed in counter by 1. A nil counter is ignored.
func CounterInc(c Counter) {
	if c == nil {
		return
	}
	c.Add(1)
}

// CounterAdd increases the passed in counter by the amount specified. A nil
// counter is ignored.
func CounterAdd(c Counter, v float64) {
	if c == nil {
		return
	}
	c.Add(v)
}
