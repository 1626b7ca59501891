package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	info   = color.New(color.FgCyan)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

// classColor picks the terminal color for a company category.
func classColor(c graph.Classification) *color.Color {
	switch c {
	case graph.Strike:
		return good
	case graph.Monitor:
		return warn
	case graph.Disregard:
		return bad
	}
	return subtle
}

// table prints an aligned table. Cells may carry color escapes; widths are
// computed from the plain text passed in plain.
func table(w io.Writer, headers []string, rows [][]string, plain [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range plain {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	header, sep := "  ", "  "
	for i, h := range headers {
		header += fmt.Sprintf("%-*s  ", widths[i], h)
		sep += strings.Repeat("─", widths[i]) + "  "
	}
	subtle.Fprintln(w, header)
	subtle.Fprintln(w, sep)

	for r, row := range rows {
		line := "  "
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			pad := widths[i] - utf8.RuneCountInString(plain[r][i])
			line += cell + strings.Repeat(" ", pad) + "  "
		}
		fmt.Fprintln(w, line)
	}
}
