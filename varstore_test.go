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

import "testing"

func TestVarStore_GetUnsetReturnsFalse(t *testing.T) {
	v := NewVarStore()
	if _, ok := v.Get("x"); ok {
		t.Errorf("Get() on unset var returned ok=true")
	}
}

func TestVarStore_SetThenGet(t *testing.T) {
	v := NewVarStore()
	v.Set("x", "1")
	val, ok := v.Get("x")
	if !ok || val != "1" {
		t.Errorf("Get() = (%q, %v), want (\"1\", true)", val, ok)
	}
}

func TestVarStore_SetOverwritesLatestValueOnly(t *testing.T) {
	v := NewVarStore()
	v.Set("x", "1")
	v.Set("x", "2")
	val, ok := v.Get("x")
	if !ok || val != "2" {
		t.Errorf("Get() = (%q, %v), want (\"2\", true)", val, ok)
	}
}
