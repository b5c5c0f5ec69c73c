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

// AccessMode is read or write access to a name in a footprint entry.
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

// EntryKind distinguishes an ordinary file/variable access from a
// continue/break control marker in a footprint.
type EntryKind int

const (
	EntryAccess EntryKind = iota
	EntryJump
)

// FootprintEntry is one (mode, name) access or one continue/break marker
// that a command tree contributes to its footprint. File and variable names
// share the same Name field but live in distinct namespaces: variable names
// carry a leading '$' sentinel (see NameOf), exactly as
// original_source/src/dgraph.c's dg_file_var prefixes the name it builds.
type FootprintEntry struct {
	Kind EntryKind

	// Valid when Kind == EntryAccess.
	Access AccessMode
	Name   string

	// Valid when Kind == EntryJump.
	Jump       JumpKind
	JumpTarget int // effective nest depth the jump targets, already clamped to >= 1
}

// NameOf returns the namespaced name used for footprint comparisons: file
// names are returned unchanged, variable names get the '$' sentinel so they
// can never collide with a file of the same spelling.
func NameOf(isVar bool, name string) string {
	if isVar {
		return "$" + name
	}
	return name
}

// Footprint computes the read/write footprint of a command tree plus any
// continue/break markers it carries, at the given lexical nest depth. It is
// a pure function of (tree, nest): C1 in the design.
func Footprint(n *CommandNode, nest int) []FootprintEntry {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NSimple:
		return redirectFootprint(n.Redirects, nil)
	case NAssign:
		return []FootprintEntry{{Kind: EntryAccess, Access: Write, Name: NameOf(true, n.AssignVar)}}
	case NBackground:
		inner := Footprint(n.Inner, nest)
		return redirectFootprint(n.Redirects, inner)
	case NPipeline:
		var out []FootprintEntry
		for _, stage := range n.Stages {
			out = append(out, Footprint(stage, nest)...)
		}
		return out
	case NSemi, NAnd, NOr:
		out := Footprint(n.Left, nest)
		out = append(out, Footprint(n.Right, nest)...)
		return out
	case NIf:
		out := Footprint(n.Test, nest)
		out = append(out, Footprint(n.Then, nest)...)
		out = append(out, Footprint(n.Else, nest)...)
		return out
	case NWhile, NUntil:
		inner := nest + 1
		out := Footprint(n.Test, inner)
		out = append(out, Footprint(n.Body, inner)...)
		return out
	case NFor:
		inner := nest + 1
		return Footprint(n.Body, inner)
	case NNot:
		return Footprint(n.Inner, nest)
	case NControlJump:
		target := nest - (n.JumpN - 1)
		if target < 1 {
			target = 1
		}
		return []FootprintEntry{{Kind: EntryJump, Jump: n.Jump, JumpTarget: target}}
	default:
		return nil
	}
}

// redirectFootprint appends the footprint entries a redirection list
// contributes (reads for "<", writes for ">"/">>") ahead of an already
// computed inner footprint, matching the way NBACKGND recursion in the
// distilled spec appends "the wrapper's own redirections" after the inner
// command's footprint. Order does not affect correctness (4.1's edge policy
// permits duplicates), only readability of traces.
func redirectFootprint(redirects []Redirect, inner []FootprintEntry) []FootprintEntry {
	if len(redirects) == 0 {
		return inner
	}
	out := make([]FootprintEntry, 0, len(redirects)+len(inner))
	for _, r := range redirects {
		mode := Write
		if r.Kind == RedirFrom {
			mode = Read
		}
		out = append(out, FootprintEntry{Kind: EntryAccess, Access: mode, Name: NameOf(false, r.Target)})
	}
	out = append(out, inner...)
	return out
}
