// Copyright 2026 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workspace

import (
	"sync"
	"time"
)

// debouncer collapses rapid edit bursts into a single analysis pass per
// key (spec.md §4.7 "debouncer", §5 "Cancellation semantics"). There is
// no teacher precedent for a dedicated debounce type (CUE's actor model
// re-analyzes synchronously on every request); this is a small
// `time.AfterFunc` wrapper, stdlib-only because no pack repo ships a
// dedicated debounce library (see DESIGN.md).
type debouncer struct {
	delay time.Duration
	run   func(key string)

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func newDebouncer(delay time.Duration, run func(key string)) *debouncer {
	return &debouncer{delay: delay, run: run, timers: map[string]*time.Timer{}}
}

// executeLater schedules (or re-schedules, extending the existing
// timer) a run of key after the debounce delay.
func (d *debouncer) executeLater(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		d.run(key)
	})
}

// executeNow cancels any pending timer for key and runs it synchronously.
func (d *debouncer) executeNow(key string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()
	d.run(key)
}

// shutdown rejects further submissions and drops every pending task.
func (d *debouncer) shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
