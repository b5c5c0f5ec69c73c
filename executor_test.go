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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSubprocessExecutor_RunCapturesExitStatus(t *testing.T) {
	var out bytes.Buffer
	e := &SubprocessExecutor{Stdout: &out, Stderr: &out}
	status, err := e.Run(context.Background(), &Command{Argv: []string{"true"}}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if status != 0 {
		t.Errorf("Run() status = %d, want 0", status)
	}
}

func TestSubprocessExecutor_RunReportsNonZeroExit(t *testing.T) {
	e := NewSubprocessExecutor()
	status, err := e.Run(context.Background(), &Command{Argv: []string{"false"}}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if status == 0 {
		t.Errorf("Run() status = 0, want non-zero")
	}
}

func TestSubprocessExecutor_RunWritesToRedirectTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	e := NewSubprocessExecutor()
	_, err := e.Run(context.Background(), &Command{Argv: []string{"echo", "hello"}}, []Redirect{
		{Kind: RedirTo, Target: target},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello\n" {
		t.Errorf("output file contents = %q, want %q", got, "hello\n")
	}
}

func TestSubprocessExecutor_RunPipelineReturnsLastStageStatus(t *testing.T) {
	e := NewSubprocessExecutor()
	status, err := e.RunPipeline(context.Background(), []*Command{
		{Argv: []string{"echo", "a"}},
		{Argv: []string{"cat"}},
	}, nil)
	if err != nil {
		t.Fatalf("RunPipeline() error = %v", err)
	}
	if status != 0 {
		t.Errorf("RunPipeline() status = %d, want 0", status)
	}
}
