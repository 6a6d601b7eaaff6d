// Copyright 2025 The Bulkwriter Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package keyenc

import (
	"sync"
	"sync/atomic"
)

// UnknownTableRegistry is a concurrent map from table name to a
// monotonic counter of how many mutations have been encoded against
// that (schema-unknown) table. It has no teardown requirement; Reset
// is provided purely for test isolation.
type UnknownTableRegistry struct {
	counts sync.Map // map[string]*int64
}

// NewUnknownTableRegistry returns an empty registry.
func NewUnknownTableRegistry() *UnknownTableRegistry {
	return &UnknownTableRegistry{}
}

// IncrementAndGet increments name's counter, creating it atomically if
// this is the first time name has been seen, and returns the new
// value.
func (r *UnknownTableRegistry) IncrementAndGet(name string) int64 {
	v, _ := r.counts.LoadOrStore(name, new(int64))
	return atomic.AddInt64(v.(*int64), 1)
}

// Snapshot returns a point-in-time copy of the counter map.
func (r *UnknownTableRegistry) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	r.counts.Range(func(k, v interface{}) bool {
		out[k.(string)] = atomic.LoadInt64(v.(*int64))
		return true
	})
	return out
}

// Reset clears every counter. It is visible-for-testing; production
// callers have no reason to call it, since the registry is meant to
// accumulate for the life of the process.
func (r *UnknownTableRegistry) Reset() {
	r.counts.Range(func(k, v interface{}) bool {
		r.counts.Delete(k)
		return true
	})
}

// defaultRegistry is the process-wide registry used by encoders built
// with New. Tests that need isolation should use NewWithRegistry with
// a fresh UnknownTableRegistry instead of relying on Reset.
var defaultRegistry = NewUnknownTableRegistry()

// DefaultUnknownTableRegistry returns the process-wide registry shared
// by every encoder built with New.
func DefaultUnknownTableRegistry() *UnknownTableRegistry {
	return defaultRegistry
}
