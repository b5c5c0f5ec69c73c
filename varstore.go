// Copyright 2012 Google Inc. All Rights Reserved.
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

package dash

import "sync"

// VarStore is the C6 variable store (§6): a name-keyed table of shell
// variables, grounded on original_source/src/states.c's vartab/var2/
// var_state chain. Where the C original appends an immutable var_state per
// write and lets readers hold a pointer into that chain, VarStore instead
// keeps only the latest committed value per name — a deferred reader only
// ever wants "the value once this particular write lands", which the
// scheduler's blocked_by/dependents edges already guarantee happens before
// it runs; there is no need to chain older states behind it.
type VarStore struct {
	mu    sync.Mutex
	vars  map[string]string
	isSet map[string]bool
}

// NewVarStore returns an empty store.
func NewVarStore() *VarStore {
	return &VarStore{
		vars:  make(map[string]string),
		isSet: make(map[string]bool),
	}
}

// Set commits name=value. Called by a worker immediately after it executes
// an NAssign graph node and before it reports completion to the scheduler,
// so that by the time any dependent unblocks, the value it reads back is
// already in place.
func (v *VarStore) Set(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vars[name] = value
	v.isSet[name] = true
}

// Get returns the current value of name and whether it has ever been set.
func (v *VarStore) Get(name string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.isSet[name]
	if !ok {
		return "", false
	}
	return v.vars[name], val
}

// Hook returns a WriteHook suitable for Scheduler.SetWriteHook. It exists
// purely for symmetry with the C original's "notify waiting accessors on
// write"; VarStore.Set already does the commit, and the scheduler's own
// blocked_by mechanics do the notification (any dependent blocked on this
// name's write edge is activated once the writing node's wrapper drains).
// A caller that wants a side-channel log of writes (the status reporter,
// for instance) can pass a closure that wraps this.
func (v *VarStore) Hook() WriteHook {
	return func(name string) {}
}
