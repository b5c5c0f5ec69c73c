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

func TestConflictKind_NoOverlapIsNone(t *testing.T) {
	a := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Read, Name: "a"}}}
	b := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Read, Name: "b"}}}
	if got := conflictKind(a, b); got != conflictNone {
		t.Errorf("conflictKind() = %v, want conflictNone", got)
	}
}

func TestConflictKind_BothReadsIsReadOnly(t *testing.T) {
	a := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Read, Name: "f"}}}
	b := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Read, Name: "f"}}}
	if got := conflictKind(a, b); got != conflictReadOnly {
		t.Errorf("conflictKind() = %v, want conflictReadOnly", got)
	}
}

func TestConflictKind_WriteVsReadCollides(t *testing.T) {
	a := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Write, Name: "f"}}}
	b := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Read, Name: "f"}}}
	if got := conflictKind(a, b); got != conflictWriteCollision {
		t.Errorf("conflictKind() = %v, want conflictWriteCollision", got)
	}
}

func TestConflictKind_WriteVsWriteCollides(t *testing.T) {
	a := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Write, Name: "f"}}}
	b := &graphNode{footprint: []FootprintEntry{{Kind: EntryAccess, Access: Write, Name: "f"}}}
	if got := conflictKind(a, b); got != conflictWriteCollision {
		t.Errorf("conflictKind() = %v, want conflictWriteCollision", got)
	}
}

func TestConflictKind_JumpTargetingEnclosingNestCollides(t *testing.T) {
	a := &graphNode{
		footprint: []FootprintEntry{{Kind: EntryJump, Jump: JumpBreak, JumpTarget: 1}},
		iteration: 0,
	}
	root := &graphNode{nest: 1, iteration: 0}
	if got := conflictKind(a, root); got != conflictWriteCollision {
		t.Errorf("conflictKind() = %v, want conflictWriteCollision for a jump targeting root's nest", got)
	}
}

func TestConflictKind_JumpDifferentIterationDoesNotCollide(t *testing.T) {
	a := &graphNode{
		footprint: []FootprintEntry{{Kind: EntryJump, Jump: JumpBreak, JumpTarget: 1}},
		iteration: 1,
	}
	root := &graphNode{nest: 1, iteration: 0}
	if got := conflictKind(a, root); got != conflictNone {
		t.Errorf("conflictKind() = %v, want conflictNone when iterations differ", got)
	}
}

// dagFixture wires a minimal two-node scheduler state for exercising
// dgAddLocked/dgRemoveLocked without going through Submit.
func dagFixture() (*Scheduler, *graphNode, *graphNode) {
	s := NewScheduler()
	writer := s.allocNode(&CommandNode{Kind: NSimple}, 0, 0, noWrapper)
	writer.footprint = []FootprintEntry{{Kind: EntryAccess, Access: Write, Name: "f"}}
	s.allocWrapper(KindSimple, writer)

	reader := s.allocNode(&CommandNode{Kind: NSimple}, 0, 0, noWrapper)
	reader.footprint = []FootprintEntry{{Kind: EntryAccess, Access: Read, Name: "f"}}
	return s, writer, reader
}

func TestDgAddLocked_BlocksOnWriteCollision(t *testing.T) {
	s, writer, reader := dagFixture()
	blocked := s.dgAddLocked(reader, noWrapper)
	if blocked != 1 {
		t.Fatalf("dgAddLocked() = %d, want 1", blocked)
	}
	if !writer.hasDependent(reader.id) {
		t.Errorf("writer has no dependent recorded for reader")
	}
}

func TestDgAddLocked_ExcludesOwnWrapper(t *testing.T) {
	s, writer, _ := dagFixture()
	// A child expanding from writer's own wrapper must not block on it.
	child := s.allocNode(&CommandNode{Kind: NSimple}, 0, 0, writer.rootWrapper)
	child.footprint = []FootprintEntry{{Kind: EntryAccess, Access: Write, Name: "f"}}
	blocked := s.dgAddLocked(child, writer.rootWrapper)
	if blocked != 0 {
		t.Fatalf("dgAddLocked() = %d, want 0 when excluding the expanding wrapper", blocked)
	}
}

func TestDgRemoveLocked_ReleasesDependents(t *testing.T) {
	s, writer, reader := dagFixture()
	reader.blockedBy = s.dgAddLocked(reader, noWrapper)
	if reader.blockedBy != 1 {
		t.Fatalf("reader.blockedBy = %d, want 1", reader.blockedBy)
	}
	s.dgRemoveLocked(writer)
	if reader.blockedBy != 0 {
		t.Errorf("reader.blockedBy = %d, want 0 after writer is removed", reader.blockedBy)
	}
}
