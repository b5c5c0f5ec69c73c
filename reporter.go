// Copyright 2016 Google Inc. All Rights Reserved.
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
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Reporter is C7: it polls the scheduler's Submit/Complete counters and
// renders them, grounded on status.go's StatusPrinter but driven by
// polling Scheduler.Stats instead of per-Edge callbacks, since the
// scheduler here has no single linear edge count to report against.
type Reporter struct {
	sched *Scheduler
	tui   bool
}

// NewReporter picks interactive (bubbletea) or plain-line mode the way
// StatusPrinter checks is_smart_terminal(): a real terminal on stdout gets
// the TUI, anything else (a pipe, a log file, --no-tui) gets plain lines.
func NewReporter(sched *Scheduler, noTUI bool) *Reporter {
	tui := !noTUI && term.IsTerminal(int(os.Stdout.Fd()))
	return &Reporter{sched: sched, tui: tui}
}

// Run blocks until ctx is cancelled or the scheduler reaches EOF with
// nothing left running, printing progress as it goes.
func (r *Reporter) Run(ctx context.Context) error {
	if r.tui {
		return r.runTUI(ctx)
	}
	return r.runPlain(ctx)
}

func (r *Reporter) runPlain(ctx context.Context) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			submitted, completed := r.sched.Stats()
			fmt.Printf("\r[%d/%d commands]", completed, submitted)
			if submitted > 0 && completed == submitted {
				fmt.Println()
				return nil
			}
		}
	}
}

// reporterModel is the bubbletea progress view.
type reporterModel struct {
	sched                *Scheduler
	submitted, completed int
	done                 bool
}

type reporterTick time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return reporterTick(t) })
}

func (m reporterModel) Init() tea.Cmd {
	return tickCmd()
}

func (m reporterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case reporterTick:
		m.submitted, m.completed = m.sched.Stats()
		if m.submitted > 0 && m.completed == m.submitted {
			m.done = true
			return m, tea.Quit
		}
		return m, tickCmd()
	case tea.KeyMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m reporterModel) View() string {
	if m.submitted == 0 {
		return "dash: waiting for commands...\n"
	}
	frac := float64(m.completed) / float64(m.submitted)
	width := 30
	filled := int(frac * float64(width))
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "="
		} else {
			bar += " "
		}
	}
	return fmt.Sprintf("[%s] %d/%d commands\n", bar, m.completed, m.submitted)
}

func (r *Reporter) runTUI(ctx context.Context) error {
	p := tea.NewProgram(reporterModel{sched: r.sched})
	done := make(chan error, 1)
	go func() { _, err := p.Run(); done <- err }()
	select {
	case <-ctx.Done():
		p.Quit()
		return nil
	case err := <-done:
		return err
	}
}
