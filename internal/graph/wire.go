package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Wire format: each node is a flat JSON object discriminated by "type".
// Keys owned by one variant are rejected on any other variant; keys nobody
// owns (layout fields such as x/y/vx added by the canvas) are ignored.
var variantKeys = map[NodeType][]string{
	NodeTypeStrategy: {"version", "icp", "keywords", "competitors", "created_at"},
	NodeTypeCompany:  {"name", "domain", "tech_stack", "employees", "funding", "classification", "score"},
	NodeTypeEvidence: {"source_url", "summary"},
	NodeTypeLesson:   {"lesson_id", "details", "timestamp", "lesson_type"},
}

var keyOwner = func() map[string]NodeType {
	m := make(map[string]NodeType)
	for t, keys := range variantKeys {
		for _, k := range keys {
			m[k] = t
		}
	}
	return m
}()

type wireStrategy struct {
	ID          flexString `json:"id"`
	Type        NodeType   `json:"type"`
	Label       string     `json:"label,omitempty"`
	Version     int        `json:"version"`
	ICP         string     `json:"icp,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Competitors []string   `json:"competitors,omitempty"`
	CreatedAt   flexTime   `json:"created_at,omitempty"`
}

type wireCompany struct {
	ID             flexString  `json:"id"`
	Type           NodeType    `json:"type"`
	Label          string      `json:"label,omitempty"`
	Name           string      `json:"name,omitempty"`
	Domain         string      `json:"domain,omitempty"`
	TechStack      []string    `json:"tech_stack,omitempty"`
	Employees      flexString  `json:"employees,omitempty"`
	Funding        flexString  `json:"funding,omitempty"`
	Classification looseString `json:"classification,omitempty"`
	Score          *score      `json:"score,omitempty"`
}

type wireEvidence struct {
	ID        flexString `json:"id"`
	Type      NodeType   `json:"type"`
	Label     string     `json:"label,omitempty"`
	SourceURL string     `json:"source_url,omitempty"`
	Summary   string     `json:"summary,omitempty"`
}

type wireLesson struct {
	ID        flexString `json:"id"`
	Type      NodeType   `json:"type"`
	Label     string     `json:"label,omitempty"`
	LessonID  flexString `json:"lesson_id,omitempty"`
	Details   string     `json:"details,omitempty"`
	Timestamp flexTime   `json:"timestamp,omitempty"`
	Kind      string     `json:"lesson_type,omitempty"`
}

// DecodeNode builds the node variant named by the object's "type" field.
func DecodeNode(data []byte) (Node, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	var typ NodeType
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &typ); err != nil {
			return nil, fmt.Errorf("decode node type: %w", err)
		}
	}
	if _, known := variantKeys[typ]; !known {
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
	var foreign []string
	for k := range fields {
		if owner, ok := keyOwner[k]; ok && owner != typ {
			foreign = append(foreign, k)
		}
	}
	if len(foreign) > 0 {
		sort.Strings(foreign)
		return nil, fmt.Errorf("%s node carries fields of another type: %s", typ, strings.Join(foreign, ", "))
	}

	switch typ {
	case NodeTypeStrategy:
		var w wireStrategy
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode strategy: %w", err)
		}
		return checked(NewStrategy(NodeID(w.ID), w.Label, StrategyFields{
			Version:     w.Version,
			ICP:         w.ICP,
			Keywords:    w.Keywords,
			Competitors: w.Competitors,
			CreatedAt:   time.Time(w.CreatedAt),
		}))
	case NodeTypeCompany:
		var w wireCompany
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode company: %w", err)
		}
		return checked(NewCompany(NodeID(w.ID), w.Label, CompanyFields{
			Name:           w.Name,
			Domain:         w.Domain,
			TechStack:      w.TechStack,
			Employees:      string(w.Employees),
			Funding:        string(w.Funding),
			Classification: string(w.Classification),
			Score:          w.Score.value(),
		}))
	case NodeTypeEvidence:
		var w wireEvidence
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode evidence: %w", err)
		}
		return checked(NewEvidence(NodeID(w.ID), w.Label, w.SourceURL, w.Summary))
	default:
		var w wireLesson
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode lesson: %w", err)
		}
		return checked(NewLesson(NodeID(w.ID), w.Label, LessonFields{
			LessonID:  string(w.LessonID),
			Details:   w.Details,
			Timestamp: time.Time(w.Timestamp),
			Kind:      w.Kind,
		}))
	}
}

// checked keeps a failed constructor from leaking a typed nil into Node.
func checked(n Node, err error) (Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireStrategy{
		ID:          flexString(n.id),
		Type:        NodeTypeStrategy,
		Label:       n.label,
		Version:     n.Version,
		ICP:         n.ICP,
		Keywords:    n.Keywords,
		Competitors: n.Competitors,
		CreatedAt:   flexTime(n.CreatedAt),
	})
}

func (n *Company) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCompany{
		ID:             flexString(n.id),
		Type:           NodeTypeCompany,
		Label:          n.label,
		Name:           n.Name,
		Domain:         n.Domain,
		TechStack:      n.TechStack,
		Employees:      flexString(n.Employees),
		Funding:        flexString(n.Funding),
		Classification: looseString(n.Classification),
		Score:          scoreOf(n.Score),
	})
}

func (n *Evidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvidence{
		ID:        flexString(n.id),
		Type:      NodeTypeEvidence,
		Label:     n.label,
		SourceURL: n.SourceURL,
		Summary:   n.Summary,
	})
}

func (n *Lesson) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireLesson{
		ID:        flexString(n.id),
		Type:      NodeTypeLesson,
		Label:     n.label,
		LessonID:  flexString(n.LessonID),
		Details:   n.Details,
		Timestamp: flexTime(n.Timestamp),
		Kind:      n.Kind,
	})
}

// -----------------------------------------------------------------------
// Lenient scalar types
// -----------------------------------------------------------------------

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

// looseString keeps a JSON string; any other value decodes to "".
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(v)
	return nil
}

// score is an optional integer. Fractions are rounded, numeric strings are
// accepted and anything else decodes as absent.
type score struct {
	n  int
	ok bool
}

func scoreOf(p *int) *score {
	if p == nil {
		return nil
	}
	return &score{n: *p, ok: true}
}

func (s *score) value() *int {
	if s == nil || !s.ok {
		return nil
	}
	n := s.n
	return &n
}

func (s *score) UnmarshalJSON(data []byte) error {
	*s = score{}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		var str string
		if json.Unmarshal(data, &str) != nil {
			return nil
		}
		num = json.Number(strings.TrimSpace(str))
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*s = score{n: int(math.Round(f)), ok: true}
	return nil
}

func (s score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.n)
}

// flexTime accepts an RFC 3339 string; anything unparsable decodes to the zero time.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*t = flexTime{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		*t = flexTime{}
		return nil
	}
	*t = flexTime(parsed)
	return nil
}

func (t flexTime) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(tt.Format(time.RFC3339Nano))
}

// endpoint accepts a bare id (string or number) or an embedded node object.
type endpoint NodeID

func (e *endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID flexString `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*e = endpoint(obj.ID)
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*e = endpoint(s)
	return nil
}
