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

// wrapperID is a stable arena index for a frontierWrapper.
type wrapperID int

// noWrapper is the zero value, meaning "top level, no enclosing construct".
const noWrapper wrapperID = 0

// WrapperKind is the frontier wrapper's construct tag.
type WrapperKind int

const (
	KindSimple WrapperKind = iota
	KindAnd
	KindOr
	KindIf
	KindWhile
	KindUntil
	KindFor
)

func (k WrapperKind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindIf:
		return "if"
	case KindWhile:
		return "while"
	case KindUntil:
		return "until"
	case KindFor:
		return "for"
	default:
		return "unknown"
	}
}

func isLoopKind(k WrapperKind) bool {
	return k == KindWhile || k == KindUntil || k == KindFor
}

// frontierWrapper is the per-construct state around one graph node that is
// a dep_walk root: either a top-level simple command (removed the instant
// its one node completes) or a compound construct (persisting across test
// and body expansions until fully drained).
type frontierWrapper struct {
	id    wrapperID
	trace uuid.UUID

	// repNode is the representative graph node this wrapper owns for its
	// whole lifetime. Its footprint/dependents/blockedBy are what the
	// distilled spec calls "the wrapper's footprint/dependents": mutated in
	// place as the construct's state machine advances (test expanded, then
	// body, then next test, ...).
	repNode nodeID

	kind WrapperKind

	// enclosing is the wrapper id of the construct this one was expanded
	// from (the loop or branch body it textually sits inside), captured at
	// creation time from the representative node's own parent. noWrapper
	// at the top level. Used to resolve a continue/break's target depth by
	// walking outward.
	enclosing wrapperID

	status int
	active int

	iteration int

	// forIdx is the index of the next item to hand out for an NFor
	// construct.
	forIdx int

	// doubly linked list pointers within the roots list, in source order.
	next, prev wrapperID
}
