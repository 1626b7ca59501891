package render

import (
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

// OpKind names a recorded draw operation.
type OpKind string

const (
	OpFillPolygon   OpKind = "fill_polygon"
	OpStrokePolygon OpKind = "stroke_polygon"
	OpFillCircle    OpKind = "fill_circle"
	OpStrokeCircle  OpKind = "stroke_circle"
	OpText          OpKind = "text"
)

// Op is one draw call, shaped for a browser canvas to replay.
type Op struct {
	Kind   OpKind  `json:"op"`
	Points []Point `json:"points,omitempty"`
	Center *Point  `json:"center,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Color  Color   `json:"color"`
	Text   string  `json:"text,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

// Recorder is a Surface that stores operations instead of drawing them.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) FillPolygon(points []Point, fill Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillPolygon, Points: clonePoints(points), Color: fill})
}

func (r *Recorder) StrokePolygon(points []Point, stroke Color, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokePolygon, Points: clonePoints(points), Color: stroke, Width: width})
}

func (r *Recorder) FillCircle(center Point, radius float64, fill Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillCircle, Center: &center, Radius: radius, Color: fill})
}

func (r *Recorder) StrokeCircle(center Point, radius float64, stroke Color, width float64) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeCircle, Center: &center, Radius: radius, Color: stroke, Width: width})
}

func (r *Recorder) Text(at Point, text string, size float64, fill Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Center: &at, Text: text, Size: size, Color: fill})
}

func clonePoints(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// Glyph is the recorded drawing for one node.
type Glyph struct {
	ID   graph.NodeID   `json:"id"`
	Type graph.NodeType `json:"type"`
	Ops  []Op           `json:"ops"`
}

// Glyphs paints every node into its own Recorder.
func Glyphs(nodes []graph.Node, d *Dispatcher, scale float64) []Glyph {
	out := make([]Glyph, 0, len(nodes))
	for _, n := range nodes {
		var rec Recorder
		d.Paint(n, &rec, scale)
		out = append(out, Glyph{ID: n.ID(), Type: n.Type(), Ops: rec.Ops})
	}
	return out
}
