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

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/chenguo/dash"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		parallelism int
		verbose     bool
		noTUI       bool
		configPath  string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "a concurrent dependency-graph command scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			var v *viper.Viper
			if configPath != "" {
				v = loadConfig(configPath, &parallelism)
			}
			dash.SetExplaining(verbose)
			return run(cmd.Context(), v, parallelism, noTUI, showMetrics)
		},
	}

	cmd.Flags().IntVarP(&parallelism, "parallelism", "j", 4, "number of concurrent workers")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable explain-level tracing")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "disable the interactive progress display")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config (parallelism)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print a timing summary on exit")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	_ = cancel
	cmd.SetContext(ctx)
	return cmd
}

// loadConfig reads parallelism from a YAML file via viper; no other key
// (verbosity included) is read. The
// returned *viper.Viper is handed to watchConfigReload by run() so a later
// edit of the file resizes the already-running pool, per §4.9's live-reload
// requirement.
func loadConfig(path string, parallelism *int) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("parallelism", *parallelism)
	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "dash: reading config %s: %s\n", path, err)
		return v
	}
	*parallelism = v.GetInt("parallelism")
	return v
}

func run(ctx context.Context, v *viper.Viper, parallelism int, noTUI, showMetrics bool) error {
	sched := dash.NewScheduler()
	vars := dash.NewVarStore()
	sched.SetWriteHook(vars.Hook())
	exec := dash.NewSubprocessExecutor()
	pool := dash.NewWorkerPool(sched, exec, vars, parallelism)
	reporter := dash.NewReporter(sched, noTUI)

	watchConfigReload(v, pool)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readLines(ctx, sched) })
	g.Go(func() error { return pool.Run(ctx) })
	g.Go(func() error { return reporter.Run(ctx) })

	err := g.Wait()
	if showMetrics {
		dash.ReportMetrics()
	}
	return err
}

// watchConfigReload starts the fsnotify-backed watcher viper keeps on the
// config file and resizes pool's worker semaphore whenever it changes. v is
// nil when dash was started without --config, in which case there is
// nothing to watch.
func watchConfigReload(v *viper.Viper, pool *dash.WorkerPool) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		pool.Resize(v.GetInt("parallelism"))
	})
	v.WatchConfig()
}

func readLines(ctx context.Context, sched *dash.Scheduler) error {
	defer sched.SetEOF()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		tree, err := dash.ParseLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "dash: %s\n", err)
			continue
		}
		if tree == nil {
			continue
		}
		sched.Submit(tree)
	}
	return scanner.Err()
}
