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

import "context"

// Handle is what TakeRunnable hands a worker: either a runnable command to
// execute, or the EOF signal telling the worker to terminate.
type Handle struct {
	EOF bool

	node nodeID

	// Cmd is the opaque leaf payload to execute. Nil for NPipeline, whose
	// stages are carried in Pipeline instead.
	Cmd *Command

	// Pipeline holds every stage when the underlying node is NPipeline.
	Pipeline []*Command

	Trace string
}

// enqueueRootLocked links w into the roots list used by dep_walk (dag.go).
// A wrapper is a root for its entire lifetime: a simple command's own
// wrapper, or a compound construct's representative node's wrapper.
func (s *Scheduler) enqueueRootLocked(w *frontierWrapper) {
	w.prev = s.tail
	w.next = noWrapper
	if s.tail != noWrapper {
		s.wrappers[s.tail].next = w.id
	} else {
		s.head = w.id
	}
	s.tail = w.id
}

// unlinkRootLocked removes w from the roots list. It does not touch the
// DAG; callers call dgRemoveLocked on the representative node separately.
func (s *Scheduler) unlinkRootLocked(w *frontierWrapper) {
	if w.prev != noWrapper {
		s.wrappers[w.prev].next = w.next
	} else {
		s.head = w.next
	}
	if w.next != noWrapper {
		s.wrappers[w.next].prev = w.prev
	} else {
		s.tail = w.prev
	}
	delete(s.wrappers, w.id)
	if s.head == noWrapper && s.eof {
		s.sendEOFLocked()
	}
}

func (s *Scheduler) sendEOFLocked() {
	s.eofSent = true
	s.cond.Broadcast()
}

// readyOrSkipLocked is called the moment a node becomes runnable: a
// top-level node whose blockedBy has reached zero, or a compound's
// test/body child likewise unblocked. A node already marked cancelled, or
// a bare continue/break node, is never handed to a worker — it completes
// immediately, matching §4.4's "the continue/break node itself completes
// immediately (no execution)" and §7's cancelled-node handling.
func (s *Scheduler) readyOrSkipLocked(n *graphNode) {
	if n.cancelled || n.tree.Kind == NControlJump {
		s.completeCancelledOrJumpLocked(n)
		return
	}
	s.ready = append(s.ready, n.id)
	s.cond.Broadcast()
}

// completeCancelledOrJumpLocked runs applyJumpLocked first (if n is itself
// the jump), then the normal completion path with status 0 and without
// ever handing n to a worker.
func (s *Scheduler) completeCancelledOrJumpLocked(n *graphNode) {
	if n.tree.Kind == NControlJump {
		s.applyJumpLocked(n)
	}
	s.finishChildOrRootLocked(n, 0)
}

// TakeRunnable blocks until a runnable command is available or the stream
// has reached EOF. Once EOF has been sent, every subsequent call returns it
// again — a deliberate generalization of the single-reader "exactly once"
// wording in invariant 4 to a multi-worker pool, where every worker must
// see the sentinel to stop.
func (s *Scheduler) TakeRunnable(ctx context.Context) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return Handle{}, false
		default:
		}
		if len(s.ready) > 0 {
			id := s.ready[0]
			s.ready = s.ready[1:]
			n, ok := s.nodes[id]
			if !ok {
				continue
			}
			if n.cancelled || n.tree.Kind == NControlJump {
				s.completeCancelledOrJumpLocked(n)
				continue
			}
			return s.handleFor(n), true
		}
		if s.eofSent {
			return Handle{EOF: true}, true
		}
		s.cond.Wait()
	}
}

func (s *Scheduler) handleFor(n *graphNode) Handle {
	h := Handle{node: n.id, Trace: n.trace.String()}
	tree := n.tree
	// "cmd &" dispatches its inner command: the worker pool already runs
	// every unblocked command concurrently.
	for tree.Kind == NBackground {
		tree = tree.Inner
	}
	switch tree.Kind {
	case NSimple:
		h.Cmd = tree.Payload
	case NPipeline:
		for _, stage := range tree.Stages {
			h.Pipeline = append(h.Pipeline, stage.Payload)
		}
	case NAssign:
		// Synthesize a worker-recognizable marker instead of handing this to
		// the Executor: a bare "VAR=value" has no program to run, only a
		// VarStore commit (see assignSentinel in workerpool.go).
		h.Cmd = &Command{Argv: []string{assignSentinel, tree.AssignValue}, Description: tree.AssignVar}
	}
	return h
}

// WaitNonEmpty blocks until the frontier holds at least one root, for an
// optional status-reporter goroutine (C7) that wants to know when there is
// anything to report on.
func (s *Scheduler) WaitNonEmpty(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.head == noWrapper && !s.eofSent {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.cond.Wait()
	}
}

// Complete reports that h's command finished with the given exit status.
func (s *Scheduler) Complete(h Handle, status int) {
	if h.EOF {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[h.node]
	if !ok {
		return
	}
	s.finishChildOrRootLocked(n, status)
}

// finishChildOrRootLocked is the single completion path for every node,
// whether it is a top-level simple command or a compound's expanded
// test/body child. It notifies the variable store for every write in n's
// footprint, then either runs the C4 branch-decision/relay step (for a
// compound child) or removes n's own dedicated wrapper directly (for a
// top-level node).
func (s *Scheduler) finishChildOrRootLocked(n *graphNode, status int) {
	s.completed++
	s.notifyWritesLocked(n)
	if n.parent != noWrapper {
		w := s.wrappers[n.parent]
		drained := s.onChildCompleteLocked(w, n, status)
		s.dgRemoveLocked(n)
		if drained {
			s.settleWrapperLocked(w)
		}
		return
	}
	w := s.wrappers[n.rootWrapper]
	s.unlinkRootLocked(w)
	s.dgRemoveLocked(n)
}

func (s *Scheduler) notifyWritesLocked(n *graphNode) {
	if s.onWrite == nil {
		return
	}
	for _, e := range n.footprint {
		if e.Kind == EntryAccess && e.Access == Write {
			s.onWrite(e.Name)
		}
	}
}
