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

// Package prom contains the label conventions shared by the prometheus
// metrics.
package prom

// Common label names.
const (
	// LabelResult is the label for result classifications.
	LabelResult = "result"
	// LabelReason is the label for the reason of a dropped or rejected item.
	LabelReason = "reason"
	// LabelLevel is the label for log levels.
	LabelLevel = "level"
)

// Common result values.
const (
	// Success is no error.
	Success = "ok_success"
	// ErrParse failed to parse the input.
	ErrParse = "err_parse"
	// Hit is a successful cache lookup.
	Hit = "hit"
	// Miss is a cache lookup that did not find an entry.
	Miss = "miss"
)
