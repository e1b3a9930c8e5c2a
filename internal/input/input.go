// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package input provides the sources xe reads its arguments from.
package input

import (
	"bufio"
	"errors"
	"io"

	"github.com/spf13/afero"
)

// ErrOpenArgFile is returned when the argument file cannot be opened.
var ErrOpenArgFile = errors.New("failed to open argument file")

// FsFactory returns the filesystem argument files are opened from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Source yields arguments one at a time. Next returns io.EOF when there are
// no more arguments.
type Source interface {
	Next() (string, error)
}

var (
	_ Source = (*DelimReader)(nil)
	_ Source = (*List)(nil)
)

// DelimReader splits a byte stream into records terminated by a delimiter.
// A final record without a delimiter is still returned.
type DelimReader struct {
	r     *bufio.Reader
	delim byte
}

// NewDelimReader returns a DelimReader reading records ending in delim from r.
func NewDelimReader(r io.Reader, delim byte) *DelimReader {
	return &DelimReader{r: bufio.NewReader(r), delim: delim}
}

// Next implements Source.
func (d *DelimReader) Next() (string, error) {
	rec, err := d.r.ReadString(d.delim)

	switch {
	case err == nil:
		return rec[:len(rec)-1], nil
	case errors.Is(err, io.EOF) && rec != "":
		return rec, nil
	default:
		return "", err //nolint:wrapcheck
	}
}

// List is a Source over a fixed list of arguments.
type List struct {
	args []string
}

// NewList returns a Source yielding args in order.
func NewList(args []string) *List {
	return &List{args: args}
}

// Next implements Source.
func (l *List) Next() (string, error) {
	if len(l.args) == 0 {
		return "", io.EOF
	}

	a := l.args[0]
	l.args = l.args[1:]

	return a, nil
}

// OpenFile opens name through FsFactory.
func OpenFile(name string) (afero.File, error) {
	f, err := FsFactory().Open(name)
	if err != nil {
		return nil, errors.Join(ErrOpenArgFile, err)
	}

	return f, nil
}
