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

import "github.com/google/uuid"

// nodeID is a stable arena index for a graphNode. Graph nodes reference
// each other and their parent wrapper by ID, never by pointer, so that
// lifetimes can be reasoned about independently of the Go garbage collector
// (Design Notes: "cyclic graph references").
type nodeID int

// noNode is the zero value, meaning "no node" (ids start at 1).
const noNode nodeID = 0

// graphNode is one scheduled unit of work: a command payload plus the
// bookkeeping the dependency DAG (C2) and frontier/controller (C3/C4) need.
type graphNode struct {
	id nodeID

	tree  *CommandNode // opaque to C2/C3, used by C1/C4 to re-derive footprint/expansions
	trace uuid.UUID

	footprint  []FootprintEntry
	blockedBy  int
	dependents []nodeID

	// parent is the back-reference to the owning compound wrapper
	// (invariant 5), set only for a node created by expansion (a test/body
	// child). noWrapper for a top-level submission.
	parent wrapperID

	// rootWrapper is set for a node that is itself a dep_walk root: either
	// a top-level simple/pipeline command (its own dedicated KindSimple
	// wrapper) or a compound construct's representative node (its
	// long-lived wrapper, which includes a compound reached as an expansion
	// child). noWrapper for leaf expansion children, which are never roots
	// themselves — their conflicts are always mediated through their
	// parent's representative node's footprint.
	rootWrapper wrapperID

	nest      int
	iteration int

	// invert records that this node was reached through one or more "!"
	// wrappers stripped off by expandListLocked; its tree is the innermost
	// un-negated command, and its completion status must be flipped before
	// any relay or branch decision sees it.
	invert bool

	freePayload      bool
	isTest           bool
	isBody           bool
	reportTestStatus bool
	reportBodyStatus bool
	cancelled        bool
	removed          bool
}

func (n *graphNode) hasDependent(target nodeID) bool {
	for _, d := range n.dependents {
		if d == target {
			return true
		}
	}
	return false
}
