// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/matt-FFFFFF/xe/internal/ctxlog"
	"github.com/matt-FFFFFF/xe/internal/relay"
	"github.com/matt-FFFFFF/xe/internal/status"
	"github.com/matt-FFFFFF/xe/internal/trace"
)

// IterationEnv is the environment variable holding the iteration number of a job.
const IterationEnv = "ITER"

var (
	// ErrJobFailed is returned in strict mode when a job exits with a status in 1..125.
	ErrJobFailed = errors.New("job failed")
	// ErrJobExit255 is returned when a job exits with status 255.
	ErrJobExit255 = errors.New("job exited with status 255")
	// ErrJobFatalStatus is returned when a job exits with a status above 125.
	ErrJobFatalStatus = errors.New("job exited with fatal status")
	// ErrJobSignaled is returned when a job is terminated by a signal.
	ErrJobSignaled = errors.New("job terminated by signal")
	// ErrWaitFailed is returned when waiting for a job fails.
	ErrWaitFailed = errors.New("failed to wait for job")
	// ErrUnknownChild is returned when a completion does not match a running job.
	ErrUnknownChild = errors.New("completion for unknown child")
)

// Options configures a Scheduler.
type Options struct {
	Jobs        int           // number of slots, values below 1 mean 1
	Strict      bool          // stop at the first failed job
	KeepGoing   bool          // ignore exit statuses, only signals stop the run
	DryRun      bool          // print commands to Stdout instead of running them
	TraceBefore bool          // trace each command before it starts
	TraceAfter  bool          // trace each command after it finished
	Env         []string      // base environment of every job
	Stdin       io.Reader     // standard input of every job, nil for the null device
	Stdout      io.Writer     // standard output of every job, unless Relay is set
	Stderr      io.Writer     // standard error of every job
	Tracer      *trace.Tracer // destination of command traces
	Relay       *relay.Relay  // when set, job output is relayed line by line
	Now         func() time.Time
}

// Record is the summary of one finished job.
type Record struct {
	Iteration int
	Pid       int
	Argv      []string
	Status    ExitStatus
	Outcome   Outcome
	Duration  time.Duration
}

type slot struct {
	proc      Process
	iteration int
	argv      []string
	started   time.Time
}

type completion struct {
	slot   int
	pid    int
	status ExitStatus
	err    error
}

// Scheduler runs jobs in a fixed number of slots.
// It is not safe for concurrent use; completions are delivered to it by
// one waiter goroutine per child.
type Scheduler struct {
	opts      Options
	spawner   Spawner
	slots     []slot
	running   int
	iteration int
	failed    bool
	done      chan completion
	dryRun    *trace.Tracer
	records   []Record
}

// New returns a Scheduler starting processes with spawner.
func New(spawner Spawner, opts Options) *Scheduler {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	if opts.Tracer == nil {
		opts.Tracer = trace.New(opts.Stderr)
	}

	return &Scheduler{
		opts:    opts,
		spawner: spawner,
		slots:   make([]slot, opts.Jobs),
		done:    make(chan completion, opts.Jobs),
		dryRun:  trace.New(opts.Stdout),
	}
}

// Iterations returns the number of commands started so far.
func (s *Scheduler) Iterations() int {
	return s.iteration
}

// Running returns the number of occupied slots.
func (s *Scheduler) Running() int {
	return s.running
}

// Failed reports whether any job has failed softly.
func (s *Scheduler) Failed() bool {
	return s.failed
}

// Records returns the summaries of the finished jobs in completion order.
func (s *Scheduler) Records() []Record {
	return s.records
}

// Submit starts argv in a free slot. When all slots are busy it reaps
// finished jobs first, which may return the fatal status of one of them.
// The argv slice is copied.
func (s *Scheduler) Submit(ctx context.Context, argv []string) error {
	for s.running >= len(s.slots) {
		if err := s.ReapOne(ctx); err != nil {
			return err
		}
	}

	s.iteration++
	iteration := s.iteration
	argv = slices.Clone(argv)

	logger := ctxlog.Logger(ctx).With("iteration", iteration)

	if s.opts.DryRun {
		return s.traceErr(s.dryRun.Command(argv))
	}

	if s.opts.TraceBefore {
		if err := s.traceErr(s.opts.Tracer.Command(argv)); err != nil {
			return err
		}
	}

	idx := slices.IndexFunc(s.slots, func(sl slot) bool { return sl.proc == nil })

	req := SpawnRequest{
		Argv:   argv,
		Env:    append(slices.Clone(s.opts.Env), IterationEnv+"="+strconv.Itoa(iteration)),
		Stdin:  s.opts.Stdin,
		Stdout: s.opts.Stdout,
		Stderr: s.opts.Stderr,
	}

	var (
		relayDone <-chan struct{}
		pipe      *os.File
	)

	if s.opts.Relay != nil {
		var err error

		pipe, relayDone, err = s.opts.Relay.Attach(iteration)
		if err != nil {
			return status.New(status.Usage, err)
		}

		req.Stdout = pipe
	}

	logger.Debug("starting job", "argv", argv)

	proc, err := s.spawner.Spawn(req)

	if pipe != nil {
		pipe.Close() //nolint:errcheck
	}

	if err != nil {
		logger.Debug("could not start job", "error", err)
		return status.New(SpawnStatus(err), fmt.Errorf("%s: %w", argv[0], err))
	}

	logger.Debug("job started", "pid", proc.Pid(), "slot", idx)

	s.slots[idx] = slot{
		proc:      proc,
		iteration: iteration,
		argv:      argv,
		started:   s.opts.Now(),
	}
	s.running++

	go func() {
		st, err := proc.Wait()
		if relayDone != nil {
			<-relayDone
		}
		s.done <- completion{slot: idx, pid: proc.Pid(), status: st, err: err}
	}()

	return nil
}

// ReapOne waits for any running job to finish, frees its slot and
// classifies its exit status. It returns nil immediately when no job is
// running.
func (s *Scheduler) ReapOne(ctx context.Context) error {
	if s.running == 0 {
		return nil
	}

	var c completion

	select {
	case c = <-s.done:
	case <-ctx.Done():
		return status.New(status.Usage, ctx.Err())
	}

	sl := s.slots[c.slot]
	if sl.proc == nil || sl.proc.Pid() != c.pid {
		return status.New(status.Usage, fmt.Errorf("%w: pid %d", ErrUnknownChild, c.pid))
	}

	s.slots[c.slot] = slot{}
	s.running--

	return s.finish(ctx, sl, c)
}

// Drain reaps jobs until none is running, then waits for relayed output
// to be flushed.
func (s *Scheduler) Drain(ctx context.Context) error {
	for s.running > 0 {
		if err := s.ReapOne(ctx); err != nil {
			return err
		}
	}

	if s.opts.Relay != nil {
		if err := s.opts.Relay.Wait(); err != nil {
			return status.New(status.Usage, err)
		}
	}

	return nil
}

func (s *Scheduler) finish(ctx context.Context, sl slot, c completion) error {
	outcome := Classify(c.status)

	logger := ctxlog.Logger(ctx).With("iteration", sl.iteration).With("pid", c.pid)
	logger.Debug("job finished", "status", c.status.String(), "outcome", outcome.String())

	s.records = append(s.records, Record{
		Iteration: sl.iteration,
		Pid:       c.pid,
		Argv:      sl.argv,
		Status:    c.status,
		Outcome:   outcome,
		Duration:  s.opts.Now().Sub(sl.started),
	})

	if c.err != nil {
		return status.New(status.Usage, errors.Join(ErrWaitFailed, c.err))
	}

	if s.opts.TraceAfter {
		if err := s.traceErr(s.opts.Tracer.Completed(sl.iteration, c.pid, c.status.String(), sl.argv)); err != nil {
			return err
		}
	}

	if s.opts.KeepGoing && outcome != OutcomeSignaled {
		return nil
	}

	desc := fmt.Sprintf("job %d (pid %d, %s)", sl.iteration, c.pid, sl.argv[0])

	switch outcome {
	case OutcomeSucceeded:
		return nil
	case OutcomeFailed:
		if s.opts.Strict {
			return status.New(status.JobsFailed, fmt.Errorf("%w: %s exited with status %d", ErrJobFailed, desc, c.status.Code))
		}

		logger.Info("job failed", "status", c.status.Code)

		s.failed = true

		return nil
	case OutcomeExit255:
		return status.New(status.Job255, fmt.Errorf("%w: %s", ErrJobExit255, desc))
	case OutcomeFatalExit:
		return status.New(c.status.Code, fmt.Errorf("%w: %s exited with status %d", ErrJobFatalStatus, desc, c.status.Code))
	default:
		return status.New(status.JobSignaled, fmt.Errorf("%w: %s terminated by signal %d", ErrJobSignaled, desc, int(c.status.Signal)))
	}
}

func (s *Scheduler) traceErr(err error) error {
	if err == nil {
		return nil
	}

	return status.New(status.Usage, err)
}
