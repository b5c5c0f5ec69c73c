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

// This file is the compound-construct controller (C4): it drives and/or/
// if/while/until/for wrappers through their test/body expansions and
// resolves continue/break. A compound wrapper owns exactly one
// representative graph node (§4.4's "representative node") whose footprint,
// dependents and blocked_by are mutated in place as the construct advances;
// its test/body children are ordinary graph nodes created by expansion,
// back-referencing the wrapper through graphNode.parent.

// flattenSemi walks a ";"-joined tree depth-first, left to right, into the
// ordered list of commands it sequences. A single non-NSemi node flattens
// to itself.
func flattenSemi(tree *CommandNode) []*CommandNode {
	if tree == nil {
		return nil
	}
	if tree.Kind != NSemi {
		return []*CommandNode{tree}
	}
	out := flattenSemi(tree.Left)
	return append(out, flattenSemi(tree.Right)...)
}

// expandListLocked turns entries into child graph nodes of w, linking each
// into the DAG against every root except w itself and, once unblocked,
// activating it (or completing it in place if it is a cancelled/jump node).
// Only the last entry carries the requested relay flag, per §4.4's "the
// last one carries is_test/report_test_status". An entry can itself be
// another and/or/if/while/until/for — ordinary nesting, e.g. an if inside a
// while's body — so activation is delegated to activateLocked rather than
// assuming every entry is a leaf command.
func (s *Scheduler) expandListLocked(w *frontierWrapper, entries []*CommandNode, nest, iteration int, isTest, isBody bool) {
	defer metricRecord("expand")()
	for i, entry := range entries {
		actual, invert := entry, false
		for actual.Kind == NNot {
			invert = !invert
			actual = actual.Inner
		}
		child := s.allocNode(actual, nest, iteration, w.id)
		child.invert = invert
		child.footprint = Footprint(entry, nest)
		if i == len(entries)-1 {
			child.isTest = isTest
			child.isBody = isBody
			child.reportTestStatus = isTest
			child.reportBodyStatus = isBody
		}
		w.active++
		child.blockedBy = s.dgAddLocked(child, w.id)
		if child.blockedBy == 0 {
			s.activateLocked(child)
		}
	}
}

// drainIfDoneLocked reports whether w has no outstanding children left and
// has settled into a terminal (simple) state, meaning it and its
// representative node should now be removed from the frontier and DAG.
func (s *Scheduler) drainIfDoneLocked(w *frontierWrapper) bool {
	return w.kind == KindSimple && w.active == 0
}

// initCompoundLocked performs the first expansion of a freshly created
// compound wrapper: the test for and/or/if/while/until, or the first loop
// body for for. Must be called with s.mu held.
func (s *Scheduler) initCompoundLocked(w *frontierWrapper, n *graphNode) {
	switch w.kind {
	case KindAnd, KindOr:
		s.expandListLocked(w, flattenSemi(n.tree.Left), n.nest, n.iteration, true, false)
		// The wrapper's own footprint is now carried by the expanded test;
		// narrow it to the right operand's footprint so unrelated commands
		// blocked on the whole "a && b" only wait as long as they truly must.
		n.footprint = Footprint(n.tree.Right, n.nest)
		s.recheckDependentsLocked(n)
	case KindIf:
		s.expandListLocked(w, flattenSemi(n.tree.Test), n.nest, n.iteration, true, false)
		n.footprint = append(Footprint(n.tree.Then, n.nest), Footprint(n.tree.Else, n.nest)...)
		s.recheckDependentsLocked(n)
	case KindWhile, KindUntil:
		// The conservative whole-loop footprint computed at submission time
		// is left untouched: later iterations' bodies may write names the
		// test never mentions, so nothing outside the loop may be let
		// through early.
		s.expandListLocked(w, flattenSemi(n.tree.Test), n.nest+1, w.iteration, true, false)
	case KindFor:
		if len(n.tree.ForItems) == 0 {
			w.kind = KindSimple
			break
		}
		s.expandForIterationLocked(w, n, 0)
	}
	if s.drainIfDoneLocked(w) {
		s.settleWrapperLocked(w)
	}
}

// settleWrapperLocked removes w from the roots list once it has fully
// drained. If w's representative node is itself a test/body entry of some
// outer construct (it was reached through expandListLocked, not a
// top-level submission), its settled status is relayed to that outer
// wrapper exactly as an ordinary leaf relays its own completion —
// otherwise a nested compound would drain internally but never decrement
// its parent's active count, leaving the parent permanently undrained and
// its own wrapper a phantom root that blocks the rest of the program
// forever.
func (s *Scheduler) settleWrapperLocked(w *frontierWrapper) {
	s.unlinkRootLocked(w)
	rep := s.nodes[w.repNode]
	if rep.parent != noWrapper {
		s.finishChildOrRootLocked(rep, w.status)
		return
	}
	s.dgRemoveLocked(rep)
}

// expandForIterationLocked binds the loop variable to ForItems[idx] and
// expands the body, advancing w.forIdx past it.
func (s *Scheduler) expandForIterationLocked(w *frontierWrapper, n *graphNode, idx int) {
	w.iteration = idx
	w.forIdx = idx + 1
	assign := &CommandNode{Kind: NAssign, AssignVar: n.tree.ForVar, AssignValue: n.tree.ForItems[idx]}
	entries := append([]*CommandNode{assign}, flattenSemi(n.tree.Body)...)
	s.expandListLocked(w, entries, n.nest+1, idx, false, true)
}

// onChildCompleteLocked is the completion relay for a test/body child of
// compound wrapper w: it applies the "!" inversion, relays status to the
// wrapper when the child is flagged to, drives the branch-decision table
// when the child was the test or loop body, and reports whether w is now
// fully drained.
func (s *Scheduler) onChildCompleteLocked(w *frontierWrapper, n *graphNode, status int) bool {
	if n.invert {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
	}
	// The iteration gate only matters for a loop kind, where a cancelled
	// stale iteration's body can still complete asynchronously after
	// w.iteration has already advanced; and/or/if never advance w.iteration
	// so their single branch's status always applies.
	if n.reportBodyStatus && (!isLoopKind(w.kind) || n.iteration == w.iteration) {
		w.status = status
	}
	w.active--

	switch {
	case n.reportTestStatus:
		s.onTestCompleteLocked(w, status)
	case n.reportBodyStatus && isLoopKind(w.kind):
		s.onBodyCompleteLocked(w, status)
	}
	return s.drainIfDoneLocked(w)
}

// onTestCompleteLocked runs the branch decision once a compound's test
// (and/or's left operand, if's Test, while/until's Test) has finished.
func (s *Scheduler) onTestCompleteLocked(w *frontierWrapper, status int) {
	rep := s.nodes[w.repNode]
	switch w.kind {
	case KindAnd:
		// "a && b" reports a's status unless b actually runs and overrides
		// it below (passing isBody so its last entry relays its own
		// status back through the iteration-agnostic branch in
		// onChildCompleteLocked).
		w.status = status
		if status == 0 {
			s.expandListLocked(w, flattenSemi(rep.tree.Right), rep.nest, rep.iteration, false, true)
		}
		w.kind = KindSimple
		s.recheckDependentsLocked(rep)
	case KindOr:
		w.status = status
		if status != 0 {
			s.expandListLocked(w, flattenSemi(rep.tree.Right), rep.nest, rep.iteration, false, true)
		}
		w.kind = KindSimple
		s.recheckDependentsLocked(rep)
	case KindIf:
		// Default to the test's own status (POSIX: no matching branch
		// means the construct's status is the test's); overridden below if
		// Then/Else actually expands to anything.
		w.status = status
		branch := rep.tree.Else
		if status == 0 {
			branch = rep.tree.Then
		}
		// Narrow the then+else footprint to the branch actually taken, so
		// the recheck below releases waiters that only conflict with the
		// other one.
		rep.footprint = Footprint(branch, rep.nest)
		s.expandListLocked(w, flattenSemi(branch), rep.nest, rep.iteration, false, true)
		w.kind = KindSimple
		s.recheckDependentsLocked(rep)
	case KindWhile:
		if status == 0 {
			s.expandListLocked(w, flattenSemi(rep.tree.Body), rep.nest+1, w.iteration, false, true)
		} else {
			w.kind = KindSimple
		}
	case KindUntil:
		if status != 0 {
			s.expandListLocked(w, flattenSemi(rep.tree.Body), rep.nest+1, w.iteration, false, true)
		} else {
			w.kind = KindSimple
		}
	}
}

// onBodyCompleteLocked advances a while/until/for loop once its body has
// finished: while/until re-expand the test for the next iteration; for
// either expands the next item's body or, once exhausted, settles the
// wrapper to simple.
func (s *Scheduler) onBodyCompleteLocked(w *frontierWrapper, status int) {
	rep := s.nodes[w.repNode]
	switch w.kind {
	case KindWhile, KindUntil:
		w.iteration++
		s.expandListLocked(w, flattenSemi(rep.tree.Test), rep.nest, w.iteration, true, false)
	case KindFor:
		if w.forIdx < len(rep.tree.ForItems) {
			s.expandForIterationLocked(w, rep, w.forIdx)
		} else {
			w.kind = KindSimple
		}
	}
}

// recheckDependentsLocked re-tests n's deferred dependents against n's
// current footprint, releasing (decrementing blocked_by, activating at
// zero) any that no longer genuinely conflict — most relevantly after
// and/or/if narrow the wrapper's footprint in initCompoundLocked.
func (s *Scheduler) recheckDependentsLocked(n *graphNode) {
	kept := n.dependents[:0]
	var released []nodeID
	for _, id := range n.dependents {
		dep, ok := s.nodes[id]
		if !ok {
			continue
		}
		if conflictKind(dep, n) == conflictWriteCollision {
			kept = append(kept, id)
		} else {
			released = append(released, id)
		}
	}
	n.dependents = kept
	for _, id := range released {
		dep := s.nodes[id]
		dep.blockedBy--
		if dep.blockedBy == 0 {
			s.activateLocked(dep)
		}
	}
}

// applyJumpLocked resolves a continue/break node's target loop by walking
// outward through enclosing wrappers, and cancels that loop's current
// iteration (continue) or the loop entirely (break). A jump with no
// enclosing loop at all, e.g. a bare "break" outside any loop, is a no-op.
// An N larger than the actual nesting has already been clamped by
// Footprint to target 1, which resolves to the outermost loop, per §4.4/§7.
func (s *Scheduler) applyJumpLocked(n *graphNode) {
	var target int
	for _, e := range n.footprint {
		if e.Kind == EntryJump {
			target = e.JumpTarget
			break
		}
	}
	for cur := n.parent; cur != noWrapper; {
		w, ok := s.wrappers[cur]
		if !ok {
			return
		}
		if isLoopKind(w.kind) && s.nodes[w.repNode].nest+1 == target {
			s.cancelLoopLocked(w, n)
			return
		}
		cur = w.enclosing
	}
}

// cancelLoopLocked marks every other not-yet-removed child of w from n's
// own iteration as cancelled, so they complete as no-ops as soon as they
// are reached (TakeRunnable and readyOrSkipLocked both check the flag). A
// break additionally flips w to KindSimple so no further iteration is ever
// expanded once the current one finishes draining.
func (s *Scheduler) cancelLoopLocked(w *frontierWrapper, n *graphNode) {
	for id, nd := range s.nodes {
		if id == n.id || nd.parent != w.id || nd.removed || nd.iteration != n.iteration {
			continue
		}
		nd.cancelled = true
	}
	if n.tree.Jump == JumpBreak {
		w.kind = KindSimple
	}
}
