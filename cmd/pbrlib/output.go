package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if col.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelFail
)

func (l level) tag() string {
	switch l {
	case levelOK:
		return "OK"
	case levelWarn:
		return "WARN"
	case levelFail:
		return "FAIL"
	default:
		return "INFO"
	}
}

func (l level) color() string {
	switch l {
	case levelOK:
		return "\x1b[32m"
	case levelWarn:
		return "\x1b[33m"
	case levelFail:
		return "\x1b[31m"
	default:
		return "\x1b[34m"
	}
}

const ansiReset = "\x1b[0m"

// report writes labelled status lines, colored when the destination is a
// terminal.
type report struct {
	out   io.Writer
	color bool
}

func newReport(out io.Writer) *report {
	return &report{out: out, color: isTerminal(out)}
}

func (r *report) heading(title string) {
	line := "== " + title + " =="
	if r.color {
		line = levelInfo.color() + line + ansiReset
	}
	fmt.Fprintln(r.out, line)
}

func (r *report) line(lvl level, label, format string, args ...any) {
	msg := fmt.Sprintf("  %-16s [%s] %s", label+":", lvl.tag(), fmt.Sprintf(format, args...))
	if r.color {
		msg = lvl.color() + msg + ansiReset
	}
	fmt.Fprintln(r.out, msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
