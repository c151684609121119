package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

var isTerminalFunc = term.IsTerminal // mockable

// table prints aligned columns on a terminal and tab-separated values otherwise.
type table struct {
	w      io.Writer
	tw     *tabwriter.Writer
	cellFn func(string) string
}

var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func (cli *commandLine) newTable(headers ...string) *table {
	fd := -1
	if f, ok := cli.out.(*os.File); ok {
		fd = int(f.Fd())
	}

	t := &table{w: cli.out, cellFn: cellReplacer.Replace}
	if isTerminalFunc(fd) {
		t.tw = tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
		t.w = t.tw
		t.cellFn = func(s string) string {
			if s = cellReplacer.Replace(s); s == "" {
				return "-"
			}
			return s
		}
	}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	clean := make([]string, len(cells))
	for i, c := range cells {
		clean[i] = t.cellFn(c)
	}
	_, _ = fmt.Fprintln(t.w, strings.Join(clean, "\t"))
}

func (t *table) flush() error {
	if t.tw != nil {
		return t.tw.Flush()
	}
	return nil
}
