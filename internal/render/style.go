package render

import (
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

// Color is a CSS color string, usually "#rrggbb".
type Color string

// Point is a position in node-local coordinates; the node centre is (0, 0).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style fixes the look of every glyph. Sizes are in screen pixels at scale 1.
type Style struct {
	StrategySize float64
	CompanySize  float64
	EvidenceSize float64
	LessonSize   float64

	StrategyColor Color
	EvidenceColor Color
	LessonColor   Color
	CompanyColors map[graph.Classification]Color

	RingColor Color
	RingGap   float64
	RingWidth float64

	LabelMinScale float64
	LabelMaxRunes int
	FontSize      float64
	LabelColor    Color
}

// DefaultStyle returns the built-in palette and sizes.
func DefaultStyle() Style {
	return Style{
		StrategySize: 8,
		CompanySize:  6,
		EvidenceSize: 5,
		LessonSize:   5,

		StrategyColor: "#6366f1",
		EvidenceColor: "#94a3b8",
		LessonColor:   "#eab308",
		CompanyColors: map[graph.Classification]Color{
			graph.Strike:       "#ef4444",
			graph.Monitor:      "#f59e0b",
			graph.Disregard:    "#6b7280",
			graph.Unclassified: "#3b82f6",
		},

		RingColor: "#22d3ee",
		RingGap:   2,
		RingWidth: 1.5,

		LabelMinScale: 1.5,
		LabelMaxRunes: 24,
		FontSize:      12,
		LabelColor:    "#e5e7eb",
	}
}

// CompanyColor returns the fill for a classification, falling back to the
// Unclassified color and then to the default palette.
func (s Style) CompanyColor(c graph.Classification) Color {
	if col, ok := s.CompanyColors[c]; ok && col != "" {
		return col
	}
	if col, ok := s.CompanyColors[graph.Unclassified]; ok && col != "" {
		return col
	}
	return DefaultStyle().CompanyColors[graph.Unclassified]
}

func (s Style) sizeOf(t graph.NodeType) float64 {
	switch t {
	case graph.NodeTypeStrategy:
		return s.StrategySize
	case graph.NodeTypeCompany:
		return s.CompanySize
	case graph.NodeTypeEvidence:
		return s.EvidenceSize
	default:
		return s.LessonSize
	}
}
