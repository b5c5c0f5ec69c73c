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

import (
	"sync"

	"github.com/google/uuid"
)

// WriteHook is the variable-store notification contract described in §6 of
// the spec: "a hook to notify waiting readers when a deferred variable
// write completes." The scheduler invokes it, once per write entry in a
// completed node's footprint, inside Complete and before the owning
// wrapper is removed.
type WriteHook func(name string)

// Scheduler is the concurrent dependency DAG + frontier + compound-construct
// controller (C2+C3+C4) described by the spec. One parser goroutine calls
// Submit/SetEOF; one or more worker goroutines call TakeRunnable/Complete.
//
// The single mutex below guards both the node arena and the wrapper/frontier
// arena. Per the Design Notes deviation recorded in SPEC_FULL.md §5, it is a plain
// (non-reentrant) sync.Mutex: exported methods acquire it; every unexported
// helper assumes it is already held and never re-acquires it, so controller
// callbacks can freely call back into frontier/DAG helpers without deadlock.
type Scheduler struct {
	mu   sync.Mutex
	cond *sync.Cond

	nodes    map[nodeID]*graphNode
	nextNode nodeID

	wrappers    map[wrapperID]*frontierWrapper
	nextWrapper wrapperID

	head, tail wrapperID

	// ready is the FIFO queue of node ids actually dispatched to workers by
	// TakeRunnable: top-level simple commands, and a compound construct's
	// currently expanded test/body children. It is distinct from the roots
	// list above, which exists purely for dep_walk conflict checking and is
	// never drained by a worker directly (see DESIGN.md).
	ready []nodeID

	eof       bool
	eofSent   bool
	submitted int
	completed int

	onWrite WriteHook
}

// NewScheduler returns an empty, ready-to-use Scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		nodes:    make(map[nodeID]*graphNode),
		wrappers: make(map[wrapperID]*frontierWrapper),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// SetWriteHook installs the variable-store write-complete callback (§6).
// Must be called before the first Submit to avoid a race with workers.
func (s *Scheduler) SetWriteHook(h WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWrite = h
}

func (s *Scheduler) allocNode(tree *CommandNode, nest, iteration int, parent wrapperID) *graphNode {
	s.nextNode++
	n := &graphNode{
		id:        s.nextNode,
		tree:      tree,
		trace:     uuid.New(),
		parent:    parent,
		nest:      nest,
		iteration: iteration,
	}
	s.nodes[n.id] = n
	return n
}

// allocWrapper creates a new dep_walk root wrapper for rep and links it
// into the roots list. enclosing is captured from rep.parent as it stood
// at creation time (the wrapper of the body rep was expanded from, if
// any), so a nested construct's continue/break can later walk outward to
// find the loop it targets without that chain being disturbed by rep's
// own wrapper assignment.
func (s *Scheduler) allocWrapper(kind WrapperKind, rep *graphNode) *frontierWrapper {
	s.nextWrapper++
	w := &frontierWrapper{
		id:        s.nextWrapper,
		trace:     uuid.New(),
		repNode:   rep.id,
		kind:      kind,
		enclosing: rep.parent,
	}
	s.wrappers[w.id] = w
	rep.rootWrapper = w.id
	s.enqueueRootLocked(w)
	return w
}

// Submit is the parser-feed entry point (§6): it wraps tree in a graph node,
// computes its footprint, links it into the DAG, and — if unblocked — places
// it on the frontier. Submit corresponds to C2's public `add` operation plus
// C4's per-kind wrapper initialization for whatever Submit creates at the
// top level. A ";"-joined tree is split into its entries, and each entry is
// submitted in order as its own top-level node.
func (s *Scheduler) Submit(tree *CommandNode) {
	defer metricRecord("submit")()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range flattenSemi(tree) {
		s.submitted++
		s.submitTopLevelLocked(entry, 0, 0)
	}
	s.cond.Broadcast()
}

// submitTopLevelLocked creates a node for tree and, once it is unblocked,
// activates it: a compound construct gets its frontier wrapper and its
// first stage (the test) expanded, per C4 §4.4; a simple construct just
// gets a plain "simple" wrapper.
func (s *Scheduler) submitTopLevelLocked(tree *CommandNode, nest, iteration int) nodeID {
	actual, invert := tree, false
	for actual.Kind == NNot {
		invert = !invert
		actual = actual.Inner
	}
	n := s.allocNode(actual, nest, iteration, noWrapper)
	n.invert = invert
	n.footprint = Footprint(tree, nest)
	n.blockedBy = s.dgAddLocked(n, noWrapper)
	if n.blockedBy == 0 {
		s.activateLocked(n)
	}
	return n.id
}

// activateLocked is called the moment a node's blockedBy first reaches
// zero, whether it is a fresh top-level submission (submitTopLevelLocked),
// a compound's test/body entry (expandListLocked — entries can themselves
// be and/or/if/while/until/for, ordinary shell nesting), or a node released
// later by dgRemoveLocked/recheckDependentsLocked. A compound construct
// always gets its own wrapper and first expansion here, regardless of
// nesting depth. A plain leaf only gets its own dedicated roots-list
// wrapper when it is a top-level node (n.parent == noWrapper): an
// expansion child's conflicts are already represented by its parent
// wrapper's footprint (dgAddLocked's exclude parameter keeps it from
// blocking on that parent), so giving it a second, independent wrapper
// would leave an untracked phantom root behind once the child completes
// through the n.parent-keyed path in finishChildOrRootLocked.
func (s *Scheduler) activateLocked(n *graphNode) {
	switch n.tree.Kind {
	case NAnd, NOr, NIf, NWhile, NUntil, NFor:
		w := s.allocWrapper(kindOf(n.tree.Kind), n)
		s.initCompoundLocked(w, n)
	default:
		if n.parent == noWrapper {
			s.allocWrapper(KindSimple, n)
		}
		s.readyOrSkipLocked(n)
	}
}

func kindOf(k Kind) WrapperKind {
	switch k {
	case NAnd:
		return KindAnd
	case NOr:
		return KindOr
	case NIf:
		return KindIf
	case NWhile:
		return KindWhile
	case NUntil:
		return KindUntil
	case NFor:
		return KindFor
	default:
		return KindSimple
	}
}

// SetEOF marks the end of the parsed stream. If the frontier is already
// empty, the EOF sentinel is appended immediately; otherwise it is deferred
// until the frontier drains (invariant 6).
func (s *Scheduler) SetEOF() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eof = true
	if s.head == noWrapper {
		s.sendEOFLocked()
	}
	s.cond.Broadcast()
}

// Stats returns a point-in-time snapshot of submitted/completed command
// counts, used by the status reporter (C7).
func (s *Scheduler) Stats() (submitted, completed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted, s.completed
}
