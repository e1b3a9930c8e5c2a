// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package relay multiplexes the standard output of concurrent jobs onto one
// stream. Every line is written whole and tagged with the iteration number
// of the job that produced it.
package relay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrRelayWrite is returned when relayed output could not be written.
	ErrRelayWrite = errors.New("failed to write relayed output")
)

// Prefix returns the tag written in front of every line of a job.
func Prefix(iteration int) string {
	return fmt.Sprintf("%04d= ", iteration)
}

// Relay copies job output to a shared writer.
type Relay struct {
	mu sync.Mutex
	w  io.Writer
	g  errgroup.Group
}

// New returns a Relay writing to w.
func New(w io.Writer) *Relay {
	return &Relay{w: w}
}

// Attach creates a pipe for the job with the given iteration and starts
// relaying what is written to it. The caller hands the returned file to the
// child as its standard output and closes it once the child is started.
// The returned channel is closed when the relay has seen end of input.
func (r *Relay) Attach(iteration int) (*os.File, <-chan struct{}, error) {
	rp, wp, err := os.Pipe()
	if err != nil {
		return nil, nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	done := make(chan struct{})

	r.g.Go(func() error {
		defer close(done)
		defer rp.Close() //nolint:errcheck

		return r.Copy(iteration, rp)
	})

	return wp, done, nil
}

// Copy relays src line by line until end of input. A last line without a
// newline gets one. If the destination fails, the rest of src is discarded
// so the writing process is never blocked on a full pipe.
func (r *Relay) Copy(iteration int, src io.Reader) error {
	prefix := Prefix(iteration)
	br := bufio.NewReader(src)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if line[len(line)-1] != '\n' {
				line += "\n"
			}

			if werr := r.write(prefix + line); werr != nil {
				_, _ = io.Copy(io.Discard, br)
				return errors.Join(ErrRelayWrite, werr)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err //nolint:wrapcheck
		}
	}
}

func (r *Relay) write(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := io.WriteString(r.w, s)

	return err //nolint:wrapcheck
}

// Wait blocks until every attached relay has finished and returns the first error.
func (r *Relay) Wait() error {
	return r.g.Wait() //nolint:wrapcheck
}
