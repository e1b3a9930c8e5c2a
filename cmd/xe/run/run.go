// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the xe root command.
package run

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/matt-FFFFFF/xe"
	"github.com/matt-FFFFFF/xe/internal/argmax"
	"github.com/matt-FFFFFF/xe/internal/ctxlog"
	"github.com/matt-FFFFFF/xe/internal/driver"
	"github.com/matt-FFFFFF/xe/internal/input"
	"github.com/matt-FFFFFF/xe/internal/jobs"
	"github.com/matt-FFFFFF/xe/internal/relay"
	"github.com/matt-FFFFFF/xe/internal/report"
	"github.com/matt-FFFFFF/xe/internal/rules"
	"github.com/matt-FFFFFF/xe/internal/status"
	"github.com/matt-FFFFFF/xe/internal/trace"
	"github.com/urfave/cli/v3"
	"mvdan.cc/sh/v3/syntax"
)

const (
	nullFlag       = "null"
	argsFlag       = "args"
	argSepFlag     = "argsep"
	argFileFlag    = "arg-file"
	failFastFlag   = "fail-fast"
	replaceFlag    = "replace"
	jobsFlag       = "jobs"
	keepGoingFlag  = "keep-going"
	linePrefixFlag = "line-prefix"
	dryRunFlag     = "dry-run"
	maxArgsFlag    = "max-args"
	maxBytesFlag   = "max-bytes"
	patternsFlag   = "patterns"
	rulesFlag      = "rules"
	requireRunFlag = "require-run"
	shellFlag      = "shell"
	summaryFlag    = "summary"
	verboseFlag    = "verbose"
)

// shell runs the script given with --shell.
const shell = "/bin/sh"

var (
	// ErrInvalidScript is returned when the --shell script does not parse.
	ErrInvalidScript = errors.New("invalid shell script")
	// ErrConflictingArgs is returned when arguments are taken from more than one place.
	ErrConflictingArgs = errors.New("conflicting argument sources")
	// ErrInvalidMaxArgs is returned for a negative --max-args.
	ErrInvalidMaxArgs = errors.New("invalid number of arguments per job")
)

// -v is --verbose, so the version flag only has its long form.
func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

// Execute runs cmd with the command line args, args[0] being the program name.
func Execute(ctx context.Context, cmd *cli.Command, args []string) error {
	if len(args) == 0 {
		args = []string{cmd.Name}
	}

	norm, err := normalize(args[1:])
	if err != nil {
		return status.New(status.Usage, err)
	}

	return cmd.Run(ctx, append([]string{args[0]}, norm...)) //nolint:wrapcheck
}

// NewCommand returns the xe root command.
func NewCommand() *cli.Command {
	var verbosity int

	return &cli.Command{
		Name:      "xe",
		Version:   Version(xe.Version, xe.Commit),
		Usage:     "run a command for each argument",
		UsageText: "xe [-0FLRknpv] [-I REPL] [-N MAX] [-j JOBS] [-f FILE] [-s SCRIPT] [-r RULES] COMMAND...",
		Description: `xe reads arguments from standard input, one per line, and runs COMMAND once
for each of them. Every occurrence of the replace token {} in COMMAND is
replaced by the argument; without one the argument is appended.

  xe -a COMMAND... -- ARGS...        take the arguments from the command line
  xe -A SEP COMMAND... SEP ARGS...   same, with a custom separator
  xe -p PATTERN COMMAND... [+ PATTERN COMMAND...]...
                                     run the command of the first matching pattern

Option parsing stops at the first word that is not an option.`,
		Reader:          os.Stdin,
		Writer:          os.Stdout,
		ErrWriter:       os.Stderr,
		HideHelpCommand: true,
		ExitErrHandler:  func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    nullFlag,
				Aliases: []string{"0"},
				Usage:   "input arguments are terminated by NUL instead of newline",
			},
			&cli.BoolFlag{
				Name:    argsFlag,
				Aliases: []string{"a"},
				Usage:   "take arguments from the command line after --",
			},
			&cli.StringFlag{
				Name:    argSepFlag,
				Aliases: []string{"A"},
				Usage:   "take arguments from the command line after `SEP`",
			},
			&cli.StringFlag{
				Name:      argFileFlag,
				Aliases:   []string{"f"},
				Usage:     "read arguments from `FILE` instead of standard input",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    failFastFlag,
				Aliases: []string{"F"},
				Usage:   "stop at the first failing job",
			},
			&cli.BoolFlag{
				Name:    keepGoingFlag,
				Aliases: []string{"k"},
				Usage:   "ignore the exit status of jobs",
			},
			&cli.StringFlag{
				Name:    replaceFlag,
				Aliases: []string{"I"},
				Usage:   "replace `REPL` in the command by the argument",
				Value:   driver.DefaultReplace,
			},
			&cli.StringFlag{
				Name:    jobsFlag,
				Aliases: []string{"j"},
				Usage:   "run up to `JOBS` jobs in parallel; 0 is one per CPU, Nx is N per CPU",
				Value:   "1",
			},
			&cli.BoolFlag{
				Name:    linePrefixFlag,
				Aliases: []string{"L"},
				Usage:   "prefix each output line with the job number",
			},
			&cli.BoolFlag{
				Name:    dryRunFlag,
				Aliases: []string{"n"},
				Usage:   "print the commands instead of running them",
			},
			&cli.IntFlag{
				Name:    maxArgsFlag,
				Aliases: []string{"N"},
				Usage:   "pass up to `MAX` arguments to each job; 0 is as many as fit",
				Value:   1,
			},
			&cli.IntFlag{
				Name:  maxBytesFlag,
				Usage: "limit the command line of a job to `BYTES`; 0 derives it from the system",
			},
			&cli.BoolFlag{
				Name:    patternsFlag,
				Aliases: []string{"p"},
				Usage:   "treat the command as PATTERN COMMAND... groups separated by +",
			},
			&cli.StringFlag{
				Name:    rulesFlag,
				Aliases: []string{"r"},
				Usage: "read pattern rules from `RULES`, a YAML or HCL file. " +
					"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    requireRunFlag,
				Aliases: []string{"R"},
				Usage:   "exit with status 122 if no job was run",
			},
			&cli.StringFlag{
				Name:    shellFlag,
				Aliases: []string{"s"},
				Usage:   "run `SCRIPT` with /bin/sh, the arguments being $1 and up",
			},
			&cli.BoolFlag{
				Name:  summaryFlag,
				Usage: "print a summary of all jobs to standard error",
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "print commands before running them; twice to also print their status",
				Config:  cli.BoolConfig{Count: &verbosity},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return action(ctx, cmd, verbosity)
		},
	}
}

// options is the configuration assembled from the command line.
type options struct {
	driver    driver.Config
	jobs      jobs.Options
	source    input.Source
	closeArgs func() error
	summary   bool
}

func action(ctx context.Context, cmd *cli.Command, verbosity int) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	opts, err := buildOptions(ctx, cmd, verbosity)
	if err != nil {
		return err
	}

	if opts.closeArgs != nil {
		defer opts.closeArgs() //nolint:errcheck
	}

	logger.Debug("starting run",
		"jobs", opts.jobs.Jobs,
		"maxArgs", opts.driver.MaxArgs,
		"budget", opts.driver.Budget,
		"rules", len(opts.driver.Rules))

	sched := jobs.New(jobs.OSSpawner{}, opts.jobs)

	d, err := driver.New(opts.driver, sched)
	if err != nil {
		return err //nolint:wrapcheck
	}

	runErr := d.Run(ctx, opts.source)

	if opts.summary {
		if err := report.Write(cmd.ErrWriter, sched.Records()); err != nil {
			logger.Warn("could not write summary", "error", err)
		}
	}

	return runErr //nolint:wrapcheck
}

func buildOptions(ctx context.Context, cmd *cli.Command, verbosity int) (*options, error) {
	opts := &options{summary: cmd.Bool(summaryFlag)}
	words := cmd.Args().Slice()
	script := cmd.String(shellFlag)

	if script != "" {
		if _, err := syntax.NewParser().Parse(strings.NewReader(script), ""); err != nil {
			return nil, status.New(status.Usage, errors.Join(ErrInvalidScript, err))
		}

		opts.driver.Prefix = []string{shell, "-c", script, "-"}
	}

	command, args, fromCommandLine, err := splitArgs(cmd, words, script != "")
	if err != nil {
		return nil, err
	}

	if err := buildRules(ctx, cmd, command, &opts.driver); err != nil {
		return nil, err
	}

	maxArgs := cmd.Int(maxArgsFlag)

	switch {
	case maxArgs < 0:
		return nil, status.Newf(status.Usage, "%w: %d", ErrInvalidMaxArgs, maxArgs)
	case maxArgs == 0:
		maxArgs = math.MaxInt
	}

	n, err := parseJobs(cmd.String(jobsFlag), numCPU())
	if err != nil {
		return nil, status.New(status.Usage, err)
	}

	env := os.Environ()

	budget := cmd.Int(maxBytesFlag)
	if budget <= 0 {
		budget = argmax.Budget(env)
	}

	opts.driver.Replace = cmd.String(replaceFlag)
	opts.driver.MaxArgs = maxArgs
	opts.driver.Budget = budget
	opts.driver.RequireRun = cmd.Bool(requireRunFlag)

	opts.jobs.Jobs = n
	opts.jobs.Strict = cmd.Bool(failFastFlag)
	opts.jobs.KeepGoing = cmd.Bool(keepGoingFlag)
	opts.jobs.DryRun = cmd.Bool(dryRunFlag)
	opts.jobs.TraceBefore = verbosity >= 1
	opts.jobs.TraceAfter = verbosity >= 2
	opts.jobs.Env = env
	opts.jobs.Stdout = cmd.Writer
	opts.jobs.Stderr = cmd.ErrWriter
	opts.jobs.Tracer = trace.New(cmd.ErrWriter)

	switch {
	case fromCommandLine:
		opts.source = input.NewList(args)
		opts.jobs.Stdin = cmd.Reader
	case cmd.String(argFileFlag) != "":
		f, err := input.OpenFile(cmd.String(argFileFlag))
		if err != nil {
			return nil, status.New(status.Usage, err)
		}

		opts.source = input.NewDelimReader(f, delimiter(cmd))
		opts.closeArgs = f.Close
		opts.jobs.Stdin = cmd.Reader
	default:
		opts.source = input.NewDelimReader(cmd.Reader, delimiter(cmd))
	}

	if cmd.Bool(linePrefixFlag) {
		opts.jobs.Relay = relay.New(cmd.Writer)
	}

	return opts, nil
}

// splitArgs separates the command from arguments given on the command line.
func splitArgs(cmd *cli.Command, words []string, hasScript bool) (command, args []string, fromCommandLine bool, err error) {
	sep, hasSep := cmd.String(argSepFlag), cmd.IsSet(argSepFlag)

	switch {
	case cmd.Bool(argsFlag) && hasSep:
		return nil, nil, false, status.Newf(status.Usage, "%w: --%s and --%s", ErrConflictingArgs, argsFlag, argSepFlag)
	case (cmd.Bool(argsFlag) || hasSep) && cmd.IsSet(argFileFlag):
		return nil, nil, false, status.Newf(status.Usage, "%w: --%s with arguments on the command line", ErrConflictingArgs, argFileFlag)
	case cmd.Bool(argsFlag) && hasScript:
		if command, args, ok := splitAt(words, "--"); ok {
			return command, args, true, nil
		}

		return nil, words, true, nil
	case cmd.Bool(argsFlag):
		command, args, _ = splitAt(words, "--")
		return command, args, true, nil
	case hasSep:
		command, args, _ = splitAt(words, sep)
		return command, args, true, nil
	default:
		return words, nil, false, nil
	}
}

func buildRules(ctx context.Context, cmd *cli.Command, command []string, cfg *driver.Config) error {
	if !cmd.Bool(patternsFlag) && !cmd.IsSet(rulesFlag) {
		cfg.Command = command

		return nil
	}

	if cmd.Bool(patternsFlag) {
		rs, err := rules.FromArgs(command, rules.GroupSeparator)
		if err != nil {
			return status.New(status.Usage, err)
		}

		cfg.Rules = rs
	} else if len(command) > 0 {
		return status.Newf(status.Usage, "%w: command %q given with --%s, use --%s to combine them",
			ErrConflictingArgs, command, rulesFlag, patternsFlag)
	}

	if src := cmd.String(rulesFlag); src != "" {
		rs, err := rules.Load(ctx, src)
		if err != nil {
			return status.New(status.Usage, err)
		}

		cfg.Rules = append(cfg.Rules, rs...)
	}

	return nil
}

func delimiter(cmd *cli.Command) byte {
	if cmd.Bool(nullFlag) {
		return 0
	}

	return '\n'
}

// Version formats the version string shown by --version.
func Version(version, commit string) string {
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
