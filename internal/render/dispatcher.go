// Package render decides what each visible node looks like and paints it onto
// a pluggable drawing surface. Positions and layout belong to the caller.
package render

import (
	"math"

	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

// Surface is the drawing target. All coordinates are node-local.
type Surface interface {
	FillPolygon(points []Point, fill Color)
	StrokePolygon(points []Point, stroke Color, width float64)
	FillCircle(center Point, radius float64, fill Color)
	StrokeCircle(center Point, radius float64, stroke Color, width float64)
	Text(at Point, text string, size float64, fill Color)
}

// Dispatcher maps a node to its glyph. It is immutable and safe to share.
type Dispatcher struct {
	style Style
	focus graph.NodeID
}

// NewDispatcher returns a dispatcher drawing with style. Company nodes whose id
// equals focus get a ring outline.
func NewDispatcher(style Style, focus graph.NodeID) *Dispatcher {
	return &Dispatcher{style: style, focus: focus}
}

// Style returns the style the dispatcher draws with.
func (d *Dispatcher) Style() Style { return d.style }

// Paint draws node onto surface at the given zoom scale. Sizes are divided by
// scale so on-screen size stays constant; a non-positive scale is treated as 1.
func (d *Dispatcher) Paint(node graph.Node, surface Surface, scale float64) {
	if node == nil || surface == nil {
		return
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	size := d.style.sizeOf(node.Type()) / scale

	switch node.Type() {
	case graph.NodeTypeStrategy:
		surface.FillPolygon(square(size), d.style.StrategyColor)
	case graph.NodeTypeCompany:
		surface.FillCircle(Point{}, size, d.style.CompanyColor(graph.Classify(node)))
		if d.focus != "" && node.ID() == d.focus {
			surface.StrokeCircle(Point{}, size+d.style.RingGap/scale, d.style.RingColor, d.style.RingWidth/scale)
		}
	case graph.NodeTypeEvidence:
		surface.FillPolygon(diamond(size), d.style.EvidenceColor)
	case graph.NodeTypeLesson:
		surface.FillPolygon(triangle(size), d.style.LessonColor)
	default:
		return
	}

	if scale < d.style.LabelMinScale {
		return
	}
	font := d.style.FontSize / scale
	surface.Text(Point{X: 0, Y: size + font}, TruncateLabel(node.Label(), d.style.LabelMaxRunes), font, d.style.LabelColor)
}

// TruncateLabel shortens label to at most max runes, the trailing ellipsis
// included. A non-positive max leaves the label untouched.
func TruncateLabel(label string, max int) string {
	if max <= 0 {
		return label
	}
	runes := []rune(label)
	if len(runes) <= max {
		return label
	}
	return string(runes[:max-1]) + "…"
}

func square(s float64) []Point {
	return []Point{{-s, -s}, {s, -s}, {s, s}, {-s, s}}
}

func diamond(s float64) []Point {
	return []Point{{0, -s}, {s, 0}, {0, s}, {-s, 0}}
}

func triangle(s float64) []Point {
	h := s * math.Sqrt(3) / 2
	return []Point{{0, -s}, {h, s / 2}, {-h, s / 2}}
}
