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

package metrics

import (
	"sync"
)

// TestCounter implements a counter for use in tests.
type TestCounter struct {
	mtx sync.Mutex
	v   float64
}

// NewTestCounter creates a new counter for use in tests.
func NewTestCounter() *TestCounter {
	return &TestCounter{}
}

// Add increases the internal value of the counter by the specified delta.
// Negative deltas panic, like they do for Prometheus counters.
func (c *TestCounter) Add(delta float64) {
	if delta < 0 {
		panic("counter increment value is < 0")
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.v += delta
}

func (c *TestCounter) value() float64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.v
}

// CounterValue extracts the value out of a TestCounter. If the argument is not a *TestCounter,
// CounterValue will panic.
func CounterValue(c Counter) float64 {
	return c.(*TestCounter).value()
}

// TestCounterVec hands out one TestCounter per label value combination.
type TestCounterVec struct {
	mtx      sync.Mutex
	counters map[string]*TestCounter
}

// NewTestCounterVec creates an empty counter vector for use in tests.
func NewTestCounterVec() *TestCounterVec {
	return &TestCounterVec{counters: map[string]*TestCounter{}}
}

// With returns the counter for the given label values, creating it on first
// use.
func (v *TestCounterVec) With(labelValues ...string) Counter {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	key := joinLabels(labelValues)
	c, ok := v.counters[key]
	if !ok {
		c = NewTestCounter()
		v.counters[key] = c
	}
	return c
}

// Value returns the value of the counter with the given label values, or 0 if
// it was never used.
func (v *TestCounterVec) Value(labelValues ...string) float64 {
	v.mtx.Lock()
	c, ok := v.counters[joinLabels(labelValues)]
	v.mtx.Unlock()
	if !ok {
		return 0
	}
	return c.value()
}

func joinLabels(labelValues []string) string {
	var key string
	for i, l := range labelValues {
		if i > 0 {
			key += "\x00"
		}
		key += l
	}
	return key
}
