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

// conflict is the result of cross-checking two footprints, per §4.2.
type conflict int

const (
	conflictNone conflict = iota
	conflictReadOnly
	conflictWriteCollision
)

// conflictKind computes the conflict between a candidate node's footprint
// and a frontier root's footprint, per the distilled spec's dep_walk step 1:
// write-collision if any pair of names matches and at least one side is a
// write, OR if the candidate carries a continue/break that targets the
// root's nest (or shallower) and the iteration matches — forcing the jump
// to be ordered after anything it might later cancel; read-only if names
// match but both sides are reads; none otherwise.
func conflictKind(newNode, root *graphNode) conflict {
	result := conflictNone
	for _, a := range newNode.footprint {
		if a.Kind == EntryJump {
			if a.JumpTarget <= root.nest && root.iteration == newNode.iteration {
				return conflictWriteCollision
			}
			continue
		}
		for _, b := range root.footprint {
			if b.Kind != EntryAccess || b.Name != a.Name {
				continue
			}
			if a.Access == Write || b.Access == Write {
				return conflictWriteCollision
			}
			result = conflictReadOnly
		}
	}
	return result
}

// dgAddLocked links new into the DAG against every current frontier root
// except exclude, per the distilled spec's edge-insertion algorithm (§4.2),
// and returns the total blocked_by contributed. exclude is the wrapper a
// node is being expanded from, if any; it and every wrapper enclosing it
// (followed through frontierWrapper.enclosing) are skipped: a compound's
// representative node already carries its conservative footprint against
// the rest of the program, so the test/body children expanded inside it,
// at any nesting depth, never need to additionally block against it. Pass
// noWrapper for a top-level submission. Must be called with s.mu held.
func (s *Scheduler) dgAddLocked(n *graphNode, exclude wrapperID) int {
	blocked := 0
	for w := s.head; w != noWrapper; w = s.wrappers[w].next {
		excluded := false
		for e := exclude; e != noWrapper; e = s.wrappers[e].enclosing {
			if e == w {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		root := s.nodes[s.wrappers[w].repNode]
		blocked += s.depWalkLocked(n, root)
	}
	return blocked
}

// depWalkLocked implements dep_walk(new, R): compute the conflict kind
// between new and root; if none, contribute nothing; otherwise walk root's
// existing dependents depth-first, and only append new as a new dependent
// of the (unique) frontier-most node that doesn't already lead to it, when
// the conflict is a genuine write collision. Read-only conflicts are
// "handled" (no further edge synthesized) without blocking anything.
func (s *Scheduler) depWalkLocked(newNode, root *graphNode) int {
	defer metricRecord("dep_walk")()
	kind := conflictKind(newNode, root)
	if kind == conflictNone {
		return 0
	}
	if root.hasDependent(newNode.id) {
		return 0
	}
	deps := 0
	for _, depID := range root.dependents {
		dep := s.nodes[depID]
		deps += s.depWalkLocked(newNode, dep)
	}
	if deps == 0 && kind == conflictWriteCollision {
		root.dependents = append(root.dependents, newNode.id)
		explainf("node %s blocked on node %s", newNode.trace, root.trace)
		return 1
	}
	return 0
}

// dgRemoveLocked is called when n's work is complete: every not-yet-removed
// dependent has its blocked_by decremented, and is activated the moment it
// reaches zero. n itself is marked removed; its payload is released when
// freePayload is set (Go's GC reclaims everything else).
func (s *Scheduler) dgRemoveLocked(n *graphNode) {
	n.removed = true
	for _, depID := range n.dependents {
		dep, ok := s.nodes[depID]
		if !ok || dep.removed {
			continue
		}
		dep.blockedBy--
		if dep.blockedBy == 0 {
			s.activateLocked(dep)
		}
	}
	if n.freePayload {
		n.tree = nil
	}
	delete(s.nodes, n.id)
}
