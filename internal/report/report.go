// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report prints an end of run summary of the jobs xe ran.
package report

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matt-FFFFFF/xe/internal/color"
	"github.com/matt-FFFFFF/xe/internal/jobs"
	"github.com/matt-FFFFFF/xe/internal/trace"
)

// MaxCommandWidth is the width at which command lines are truncated.
const MaxCommandWidth = 60

// ErrWriteReport is returned when the report cannot be written.
var ErrWriteReport = errors.New("failed to write report")

// Totals counts the records by outcome.
type Totals struct {
	Jobs      int
	Succeeded int
	Failed    int
	Fatal     int
	Elapsed   time.Duration
}

// Count sums up records.
func Count(records []jobs.Record) Totals {
	var t Totals

	for _, r := range records {
		t.Jobs++
		t.Elapsed += r.Duration

		switch {
		case r.Outcome == jobs.OutcomeSucceeded:
			t.Succeeded++
		case r.Outcome.Fatal():
			t.Fatal++
		default:
			t.Failed++
		}
	}

	return t
}

// String implements fmt.Stringer.
func (t Totals) String() string {
	return fmt.Sprintf("%d jobs: %s %d succeeded, %s %d failed, %s %d fatal (%s job time)",
		t.Jobs,
		color.Colorize(color.GlyphSuccess, color.FgGreen), t.Succeeded,
		color.Colorize(color.GlyphFailure, color.FgRed), t.Failed,
		color.Colorize(color.GlyphFatal, color.FgHiMagenta), t.Fatal,
		t.Elapsed.Round(time.Millisecond))
}

func glyph(o jobs.Outcome) string {
	switch {
	case o == jobs.OutcomeSucceeded:
		return color.GlyphSuccess
	case o.Fatal():
		return color.GlyphFatal
	default:
		return color.GlyphFailure
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	return string(r[:width-1]) + "…"
}

// Write prints a table of records in iteration order followed by the totals.
func Write(w io.Writer, records []jobs.Record) error {
	sorted := slices.SortedFunc(slices.Values(records), func(a, b jobs.Record) int {
		return cmp.Compare(a.Iteration, b.Iteration)
	})

	re := lipgloss.NewRenderer(w)
	cell := re.NewStyle().Padding(0, 1)
	header := cell.Bold(true)
	styles := map[string]lipgloss.Style{
		color.GlyphSuccess: cell.Foreground(lipgloss.Color("2")),
		color.GlyphFailure: cell.Foreground(lipgloss.Color("1")),
		color.GlyphFatal:   cell.Foreground(lipgloss.Color("5")),
	}

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, []string{
			glyph(r.Outcome),
			strconv.Itoa(r.Iteration),
			strconv.Itoa(r.Pid),
			r.Status.String(),
			r.Duration.Round(time.Millisecond).String(),
			truncate(trace.Join(r.Argv), MaxCommandWidth),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle().Faint(true)).
		Headers("", "ITER", "PID", "STATUS", "TIME", "COMMAND").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return styles[rows[row][0]]
			default:
				return cell
			}
		})

	if _, err := fmt.Fprintf(w, "%s\n%s\n", t.String(), Count(records)); err != nil {
		return errors.Join(ErrWriteReport, err)
	}

	return nil
}
