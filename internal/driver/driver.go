// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package driver reads arguments, builds the command line of every
// invocation and hands it to the job scheduler.
//
// There are three ways of building command lines. In single mode every
// argument gets its own invocation, substituted for each replace token of
// the template or appended when the template has none. In batch mode up
// to MaxArgs arguments are spliced in at the first replace token, or
// appended, as long as they fit in the byte budget. In pattern mode every
// argument is dispatched to the first rule whose pattern matches it.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/xe/internal/argpack"
	"github.com/matt-FFFFFF/xe/internal/ctxlog"
	"github.com/matt-FFFFFF/xe/internal/input"
	"github.com/matt-FFFFFF/xe/internal/pattern"
	"github.com/matt-FFFFFF/xe/internal/rules"
	"github.com/matt-FFFFFF/xe/internal/status"
)

// DefaultReplace is the default replace token.
const DefaultReplace = "{}"

// DefaultCommand is run when neither a command nor a shell script is given.
var DefaultCommand = []string{"printf", `%s\n`}

var (
	// ErrArgListTooLong is returned when not even one argument fits in the byte budget.
	ErrArgListTooLong = errors.New("argument list too long")
	// ErrReadArgs is returned when reading the next argument fails.
	ErrReadArgs = errors.New("failed to read arguments")
	// ErrJobsFailed is returned at the end of a run in which some job failed.
	ErrJobsFailed = errors.New("some jobs failed")
	// ErrNothingToDo is returned when a run was required but no job was started.
	ErrNothingToDo = errors.New("no job was run")
	// ErrPatternBatch is returned when pattern mode is combined with more than one argument per job.
	ErrPatternBatch = errors.New("pattern rules take one argument per job")
)

// Scheduler runs the command lines built by the driver.
type Scheduler interface {
	Submit(ctx context.Context, argv []string) error
	Drain(ctx context.Context) error
	Iterations() int
	Failed() bool
}

// Config configures a Driver.
type Config struct {
	Command    []string     // command template, unused in pattern mode
	Rules      []rules.Rule // pattern rules, enables pattern mode when not empty
	Prefix     []string     // words put in front of every command line
	Replace    string       // replace token, DefaultReplace when empty
	MaxArgs    int          // arguments per job, values below 1 mean 1
	Budget     int          // byte budget of one command line
	RequireRun bool         // fail when no job was started
}

// pendingState tracks the argument carried between batches.
type pendingState int

const (
	needArg    pendingState = iota // no argument is pending
	haveArg                        // an argument was read and not yet packed
	overflowed                     // an argument did not fit and starts the next batch
)

// Driver owns the argument buffer and feeds the scheduler.
type Driver struct {
	cfg     Config
	sched   Scheduler
	buf     *argpack.Buffer
	pending string
	state   pendingState
	eof     bool
}

// New returns a Driver submitting to sched.
func New(cfg Config, sched Scheduler) (*Driver, error) {
	if cfg.Replace == "" {
		cfg.Replace = DefaultReplace
	}

	if cfg.MaxArgs < 1 {
		cfg.MaxArgs = 1
	}

	if len(cfg.Rules) > 0 && cfg.MaxArgs > 1 {
		return nil, status.New(status.Usage, ErrPatternBatch)
	}

	if len(cfg.Command) == 0 && len(cfg.Prefix) == 0 {
		cfg.Command = DefaultCommand
	}

	return &Driver{
		cfg:   cfg,
		sched: sched,
		buf:   argpack.New(cfg.Budget, 0),
	}, nil
}

// Run reads src to the end, waits for all jobs and returns the error
// carrying the exit status of the run, or nil.
func (d *Driver) Run(ctx context.Context, src input.Source) error {
	var err error

	switch {
	case len(d.cfg.Rules) > 0:
		err = d.runPatterns(ctx, src)
	case d.cfg.MaxArgs > 1:
		err = d.runBatches(ctx, src)
	default:
		err = d.runSingle(ctx, src)
	}

	if err != nil {
		return err
	}

	if err := d.sched.Drain(ctx); err != nil {
		return err //nolint:wrapcheck
	}

	return d.finish(ctx)
}

func (d *Driver) finish(ctx context.Context) error {
	n := d.sched.Iterations()
	ctxlog.Debug(ctx, "run finished", "iterations", n, "failed", d.sched.Failed())

	switch {
	case d.cfg.RequireRun && n == 0:
		return status.New(status.NothingToDo, ErrNothingToDo)
	case d.sched.Failed():
		return status.New(status.JobsFailed, ErrJobsFailed)
	default:
		return nil
	}
}

// next reads the next argument. It returns io.EOF at the end of input.
func (d *Driver) next(ctx context.Context, src input.Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", status.New(status.Usage, err)
	}

	arg, err := src.Next()
	if errors.Is(err, io.EOF) {
		d.eof = true
		return "", io.EOF
	}

	if err != nil {
		return "", status.New(status.Usage, errors.Join(ErrReadArgs, err))
	}

	return arg, nil
}

func (d *Driver) submit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return status.New(status.Usage, err)
	}

	return d.sched.Submit(ctx, d.buf.Argv()) //nolint:wrapcheck
}

func (d *Driver) runSingle(ctx context.Context, src input.Source) error {
	isReplace := func(tok string) bool { return tok == d.cfg.Replace }

	for {
		arg, err := d.next(ctx, src)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		resolve := func(string) (string, error) { return arg, nil }

		if err := d.pack(d.cfg.Command, isReplace, resolve, arg); err != nil {
			return err
		}

		if err := d.submit(ctx); err != nil {
			return err
		}
	}
}

// runBatches packs up to MaxArgs arguments per job. An argument that does
// not fit closes the batch and is carried over to the next one.
func (d *Driver) runBatches(ctx context.Context, src input.Source) error {
	head, tail := d.cfg.Command, []string(nil)

	for i, tok := range d.cfg.Command {
		if tok == d.cfg.Replace {
			head, tail = d.cfg.Command[:i], d.cfg.Command[i+1:]
			break
		}
	}

	logger := ctxlog.Logger(ctx)

	for !d.eof || d.state != needArg {
		d.buf.Reset()

		if err := d.pushLiterals(d.cfg.Prefix, head); err != nil {
			return err
		}

		if !d.buf.Reserve(argpack.Encoded(tail...)) {
			return d.tooLong(tail...)
		}

		n := 0

		for n < d.cfg.MaxArgs {
			if d.state == needArg {
				arg, err := d.next(ctx, src)
				if errors.Is(err, io.EOF) {
					break
				}

				if err != nil {
					return err
				}

				d.pending, d.state = arg, haveArg
			}

			if !d.buf.Push(d.pending) {
				if n == 0 {
					return d.tooLong(d.pending)
				}

				logger.Debug("batch full, carrying argument over", "args", n, "bytes", d.buf.Size())

				d.state = overflowed

				break
			}

			d.pending, d.state = "", needArg
			n++
		}

		if n == 0 {
			return nil
		}

		d.buf.Release()

		if err := d.pushLiterals(tail); err != nil {
			return err
		}

		if err := d.submit(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (d *Driver) runPatterns(ctx context.Context, src input.Source) error {
	for {
		arg, err := d.next(ctx, src)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		rule, m, ok := rules.Match(d.cfg.Rules, arg)
		if !ok {
			ctxlog.Debug(ctx, "no rule matches argument, skipping", "arg", arg)
			continue
		}

		tmpl := rule.Template
		isDynamic := func(tok string) bool { return pattern.Substitutes(tok, d.cfg.Replace) }
		resolve := func(tok string) (string, error) { return pattern.Substitute(m, tok, d.cfg.Replace) }

		if len(tmpl) == 0 && len(d.cfg.Prefix) == 0 {
			tmpl = DefaultCommand
			isDynamic = func(string) bool { return false }
		}

		if err := d.pack(tmpl, isDynamic, resolve, arg); err != nil {
			return err
		}

		if err := d.submit(ctx); err != nil {
			return err
		}
	}
}

// pack fills the buffer with the prefix and tmpl. Tokens for which
// isDynamic is true are replaced by resolve; when there are none, arg is
// appended. Room for the literal tokens after a dynamic one is reserved
// before the dynamic one is pushed.
func (d *Driver) pack(tmpl []string, isDynamic func(string) bool, resolve func(string) (string, error), arg string) error {
	d.buf.Reset()

	if err := d.pushLiterals(d.cfg.Prefix); err != nil {
		return err
	}

	substituted := false

	for i, tok := range tmpl {
		if !isDynamic(tok) {
			if !d.buf.Push(tok) {
				return d.tooLong(tok)
			}

			continue
		}

		val, err := resolve(tok)
		if err != nil {
			return status.New(status.Usage, fmt.Errorf("%q: %w", arg, err))
		}

		trailing := 0

		for _, t := range tmpl[i+1:] {
			if !isDynamic(t) {
				trailing += argpack.Encoded(t)
			}
		}

		if err := d.pushDynamic(val, trailing); err != nil {
			return err
		}

		substituted = true
	}

	if !substituted {
		return d.pushDynamic(arg, 0)
	}

	return nil
}

func (d *Driver) pushDynamic(val string, trailing int) error {
	if !d.buf.Reserve(trailing) {
		return d.tooLong(val)
	}

	ok := d.buf.Push(val)
	d.buf.Release()

	if !ok {
		return d.tooLong(val)
	}

	return nil
}

func (d *Driver) pushLiterals(groups ...[]string) error {
	for _, g := range groups {
		for _, tok := range g {
			if !d.buf.Push(tok) {
				return d.tooLong(tok)
			}
		}
	}

	return nil
}

func (d *Driver) tooLong(tokens ...string) error {
	return status.New(status.Usage, fmt.Errorf("%w: %d bytes do not fit after %d of %d bytes",
		ErrArgListTooLong, argpack.Encoded(tokens...), d.buf.Size(), d.buf.Budget()))
}
