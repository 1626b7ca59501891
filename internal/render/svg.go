package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

// SVG is a Surface that writes SVG elements. Node-local coordinates are
// shifted by the current translation. The first write error is kept and
// every later call becomes a no-op.
type SVG struct {
	w      *bufio.Writer
	dx, dy float64
	err    error
}

func NewSVG(w io.Writer) *SVG {
	return &SVG{w: bufio.NewWriter(w)}
}

// Translate moves the origin of subsequent draw calls to (x, y).
func (s *SVG) Translate(x, y float64) {
	s.dx, s.dy = x, y
}

func (s *SVG) FillPolygon(points []Point, fill Color) {
	s.printf(`<polygon points="%s" fill="%s"/>`+"\n", s.points(points), escape(string(fill)))
}

func (s *SVG) StrokePolygon(points []Point, stroke Color, width float64) {
	s.printf(`<polygon points="%s" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		s.points(points), escape(string(stroke)), width)
}

func (s *SVG) FillCircle(center Point, radius float64, fill Color) {
	s.printf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
		center.X+s.dx, center.Y+s.dy, radius, escape(string(fill)))
}

func (s *SVG) StrokeCircle(center Point, radius float64, stroke Color, width float64) {
	s.printf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		center.X+s.dx, center.Y+s.dy, radius, escape(string(stroke)), width)
}

func (s *SVG) Text(at Point, text string, size float64, fill Color) {
	s.printf(`<text x="%.2f" y="%.2f" font-size="%.2f" text-anchor="middle" fill="%s">%s</text>`+"\n",
		at.X+s.dx, at.Y+s.dy, size, escape(string(fill)), escape(text))
}

// Flush writes buffered output and returns the first error seen.
func (s *SVG) Flush() error {
	if s.err != nil {
		return s.err
	}
	s.err = s.w.Flush()
	return s.err
}

func (s *SVG) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *SVG) points(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X+s.dx, p.Y+s.dy)
	}
	return strings.Join(parts, " ")
}

func escape(v string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(v))
	return b.String()
}

// -----------------------------------------------------------------------
// Contact sheet
// -----------------------------------------------------------------------

// SheetOptions controls the grid of a contact sheet.
type SheetOptions struct {
	Columns    int
	Cell       float64
	Background Color
}

func DefaultSheetOptions() SheetOptions {
	return SheetOptions{Columns: 6, Cell: 96, Background: "#0f172a"}
}

// WriteSheet writes a standalone SVG document with one glyph per grid cell.
// It is a preview of node styling, not a graph layout.
func WriteSheet(w io.Writer, nodes []graph.Node, d *Dispatcher, scale float64, opts SheetOptions) error {
	if opts.Columns <= 0 {
		opts.Columns = DefaultSheetOptions().Columns
	}
	if opts.Cell <= 0 {
		opts.Cell = DefaultSheetOptions().Cell
	}
	rows := (len(nodes) + opts.Columns - 1) / opts.Columns
	if rows == 0 {
		rows = 1
	}
	width := float64(opts.Columns) * opts.Cell
	height := float64(rows) * opts.Cell

	svg := NewSVG(w)
	svg.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		width, height, width, height)
	if opts.Background != "" {
		svg.printf(`<rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(string(opts.Background)))
	}
	for i, n := range nodes {
		col, row := i%opts.Columns, i/opts.Columns
		svg.Translate(float64(col)*opts.Cell+opts.Cell/2, float64(row)*opts.Cell+opts.Cell/2)
		d.Paint(n, svg, scale)
	}
	svg.printf("</svg>\n")
	if err := svg.Flush(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
