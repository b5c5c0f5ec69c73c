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
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WorkerPool is C8: it owns the goroutines that pull runnable work off the
// scheduler's frontier and hand it to an Executor. It is the Go-idiomatic
// replacement for hand-rolled pthread_create/pthread_join bookkeeping,
// built on golang.org/x/sync/errgroup the same way
// manifest_parser_concurrent.go leans on goroutines and channels instead of
// explicit thread handles.
type WorkerPool struct {
	sched *Scheduler
	exec  Executor
	vars  *VarStore

	// limit is the live parallelism ceiling; Resize adjusts it while the
	// pool is running by changing how many workers hold the semaphore at
	// once, per §4.9's "resized by adjusting a semaphore-backed dispatch
	// limit rather than restarting goroutines".
	limit chan struct{}

	running int64
}

// NewWorkerPool constructs a pool bounded at parallelism concurrent workers.
func NewWorkerPool(sched *Scheduler, exec Executor, vars *VarStore, parallelism int) *WorkerPool {
	if parallelism < 1 {
		parallelism = 1
	}
	return &WorkerPool{
		sched: sched,
		exec:  exec,
		vars:  vars,
		limit: make(chan struct{}, parallelism),
	}
}

// Resize changes the live parallelism ceiling. Existing workers already
// holding a slot are unaffected; it only changes how many new slots are
// available to future acquires.
func (p *WorkerPool) Resize(parallelism int) {
	if parallelism < 1 {
		parallelism = 1
	}
	p.limit = make(chan struct{}, parallelism)
}

// Running returns the number of commands currently executing.
func (p *WorkerPool) Running() int {
	return int(atomic.LoadInt64(&p.running))
}

// Run drives the pool until the scheduler reaches EOF or ctx is cancelled,
// spawning one goroutine per TakeRunnable handle so that the configured
// parallelism bounds concurrent Executor.Run calls, not concurrent
// TakeRunnable polls.
func (p *WorkerPool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for {
		h, ok := p.sched.TakeRunnable(ctx)
		if !ok {
			break
		}
		if h.EOF {
			break
		}
		h := h
		// Release the slot into the same channel it was taken from, even if
		// Resize has replaced p.limit in the meantime.
		limit := p.limit
		select {
		case limit <- struct{}{}:
		case <-ctx.Done():
			return g.Wait()
		}
		g.Go(func() error {
			defer func() { <-limit }()
			atomic.AddInt64(&p.running, 1)
			defer atomic.AddInt64(&p.running, -1)
			status := p.execute(ctx, h)
			p.sched.Complete(h, status)
			return nil
		})
	}
	return g.Wait()
}

func (p *WorkerPool) execute(ctx context.Context, h Handle) int {
	switch {
	case h.Cmd != nil && h.Cmd.Argv != nil && h.Cmd.Argv[0] == assignSentinel:
		p.vars.Set(h.Cmd.Description, h.Cmd.Argv[1])
		return 0
	case len(h.Pipeline) > 0:
		status, err := p.exec.RunPipeline(ctx, h.Pipeline, nil)
		if err != nil {
			errorf("pipeline %s: %s", h.Trace, err)
			return -1
		}
		return status
	case h.Cmd != nil:
		status, err := p.exec.Run(ctx, h.Cmd, nil)
		if err != nil {
			errorf("command %s: %s", h.Trace, err)
			return -1
		}
		return status
	default:
		// Handles with no leaf command to run complete instantly.
		return 0
	}
}

// assignSentinel flags a Handle.Cmd synthesized for an NAssign node, so the
// worker commits it to the VarStore instead of handing it to the Executor.
// Scheduler.handleFor (frontier.go) is the only place that ever sets it.
const assignSentinel = "\x00dash:assign"
