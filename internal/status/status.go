// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package status holds the exit statuses reported by xe and the error type
// that carries them from the place a run stops to main.
package status

import (
	"context"
	"errors"
	"fmt"
)

// Exit statuses of the driver.
const (
	OK           = 0   // normal completion
	Usage        = 1   // bad configuration, I/O setup failure or argument list too long
	NothingToDo  = 122 // require-run was set and no job was dispatched
	JobsFailed   = 123 // at least one job exited with a status in 1..125
	Job255       = 124 // a job exited with status 255
	JobSignaled  = 125 // a job was terminated by a signal
	CannotInvoke = 126 // the command could not be started
	NotFound     = 127 // the command was not found
)

// Error is an error which carries the exit status xe should terminate with.
type Error struct {
	Code int
	Err  error
}

// New wraps err so that Code reports status.
func New(code int, err error) *Error {
	return &Error{Code: code, Err: err}
}

// Newf formats a message, wrapping any %w verbs, and attaches the exit status.
func Newf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}

	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the exit status for err.
// A nil error is OK, an error without an attached status is Usage.
func Code(err error) int {
	if err == nil {
		return OK
	}

	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}

	return Usage
}

// Interrupted reports whether err was caused by context cancellation.
func Interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
