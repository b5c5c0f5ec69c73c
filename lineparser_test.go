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

func TestParseLine_Empty(t *testing.T) {
	tree, err := ParseLine("   ")
	if err != nil || tree != nil {
		t.Fatalf("ParseLine() = (%v, %v), want (nil, nil)", tree, err)
	}
}

func TestParseLine_Simple(t *testing.T) {
	tree, err := ParseLine("echo hi")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if tree.Kind != NSimple || len(tree.Payload.Argv) != 2 {
		t.Fatalf("ParseLine() = %+v, want a two-word NSimple", tree)
	}
}

func TestParseLine_Assign(t *testing.T) {
	tree, err := ParseLine("x=1")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if tree.Kind != NAssign || tree.AssignVar != "x" || tree.AssignValue != "1" {
		t.Fatalf("ParseLine() = %+v, want NAssign x=1", tree)
	}
}

func TestParseLine_AndOr(t *testing.T) {
	tree, err := ParseLine("a && b || c")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	// "&&" binds left-to-right ahead of "||" in this grammar's simple
	// recursive-descent order: a && (b || c).
	if tree.Kind != NAnd {
		t.Fatalf("ParseLine() top kind = %v, want NAnd", tree.Kind)
	}
	if tree.Right.Kind != NOr {
		t.Fatalf("ParseLine() right kind = %v, want NOr", tree.Right.Kind)
	}
}

func TestParseLine_Semicolon(t *testing.T) {
	tree, err := ParseLine("a; b")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if tree.Kind != NSemi {
		t.Fatalf("ParseLine() kind = %v, want NSemi", tree.Kind)
	}
}

func TestParseLine_Background(t *testing.T) {
	tree, err := ParseLine("sleep 1 &")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if tree.Kind != NBackground || tree.Inner.Kind != NSimple {
		t.Fatalf("ParseLine() = %+v, want NBackground wrapping NSimple", tree)
	}
}

func TestParseLine_Redirects(t *testing.T) {
	tree, err := ParseLine("sort < in.txt > out.txt")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if len(tree.Redirects) != 2 {
		t.Fatalf("ParseLine() redirects = %+v, want 2", tree.Redirects)
	}
	if tree.Redirects[0].Kind != RedirFrom || tree.Redirects[0].Target != "in.txt" {
		t.Errorf("Redirects[0] = %+v, want RedirFrom in.txt", tree.Redirects[0])
	}
	if tree.Redirects[1].Kind != RedirTo || tree.Redirects[1].Target != "out.txt" {
		t.Errorf("Redirects[1] = %+v, want RedirTo out.txt", tree.Redirects[1])
	}
}

func TestParseLine_AppendRedirect(t *testing.T) {
	tree, err := ParseLine("echo hi >> out.txt")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if len(tree.Redirects) != 1 || tree.Redirects[0].Kind != RedirAppend {
		t.Fatalf("ParseLine() redirects = %+v, want a single RedirAppend", tree.Redirects)
	}
}

func TestParseLine_NoProgramIsError(t *testing.T) {
	if _, err := ParseLine("> out.txt"); err == nil {
		t.Errorf("ParseLine() error = nil, want an error for a redirect with no program")
	}
}

func TestSplitTop_IgnoresQuotedSeparators(t *testing.T) {
	got := splitTop(`echo "a;b"; echo c`, ";")
	want := []string{`echo "a;b"`, " echo c"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("splitTop() = %v, want %v", got, want)
	}
}
