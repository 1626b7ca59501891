package graph

import (
	"errors"
	"time"
)

// NodeID identifies a node. It is stable across fetches and the zero value
// means "no node".
type NodeID string

// NodeType discriminates the four kinds of graph nodes.
type NodeType string

const (
	NodeTypeStrategy NodeType = "strategy"
	NodeTypeCompany  NodeType = "company"
	NodeTypeEvidence NodeType = "evidence"
	NodeTypeLesson   NodeType = "lesson"
)

// ErrMissingID is returned by the node constructors when id is empty.
var ErrMissingID = errors.New("node id is required")

// Node is the common interface for all graph nodes.
// The set of implementations is closed: *Strategy, *Company, *Evidence, *Lesson.
type Node interface {
	ID() NodeID
	Label() string
	Type() NodeType
	sealed()
}

type base struct {
	id    NodeID
	label string
}

func (b base) ID() NodeID    { return b.id }
func (b base) Label() string { return b.label }
func (base) sealed()         {}

func newBase(id NodeID, label string) (base, error) {
	if id == "" {
		return base{}, ErrMissingID
	}
	if label == "" {
		label = string(id)
	}
	return base{id: id, label: label}, nil
}

// -----------------------------------------------------------------------
// Strategy
// -----------------------------------------------------------------------

// Strategy is one version of the generated sales strategy (ICP).
type Strategy struct {
	base
	Version     int
	ICP         string
	Keywords    []string
	Competitors []string
	CreatedAt   time.Time
}

// StrategyFields holds the strategy-only attributes.
type StrategyFields struct {
	Version     int
	ICP         string
	Keywords    []string
	Competitors []string
	CreatedAt   time.Time
}

func NewStrategy(id NodeID, label string, f StrategyFields) (*Strategy, error) {
	b, err := newBase(id, label)
	if err != nil {
		return nil, err
	}
	return &Strategy{
		base:        b,
		Version:     f.Version,
		ICP:         f.ICP,
		Keywords:    f.Keywords,
		Competitors: f.Competitors,
		CreatedAt:   f.CreatedAt,
	}, nil
}

func (*Strategy) Type() NodeType { return NodeTypeStrategy }

// -----------------------------------------------------------------------
// Company
// -----------------------------------------------------------------------

// Company is a candidate lead. Classification holds the raw stored value and
// may be empty or unknown; use Classify for the resolved category.
type Company struct {
	base
	Name           string
	Domain         string
	TechStack      []string
	Employees      string
	Funding        string
	Classification string
	Score          *int
}

// CompanyFields holds the company-only attributes.
type CompanyFields struct {
	Name           string
	Domain         string
	TechStack      []string
	Employees      string
	Funding        string
	Classification string
	Score          *int
}

func NewCompany(id NodeID, label string, f CompanyFields) (*Company, error) {
	if label == "" {
		label = f.Name
	}
	b, err := newBase(id, label)
	if err != nil {
		return nil, err
	}
	return &Company{
		base:           b,
		Name:           f.Name,
		Domain:         f.Domain,
		TechStack:      f.TechStack,
		Employees:      f.Employees,
		Funding:        f.Funding,
		Classification: f.Classification,
		Score:          f.Score,
	}, nil
}

func (*Company) Type() NodeType { return NodeTypeCompany }

// -----------------------------------------------------------------------
// Evidence
// -----------------------------------------------------------------------

// Evidence is a web source backing a lead assessment.
type Evidence struct {
	base
	SourceURL string
	Summary   string
}

func NewEvidence(id NodeID, label, sourceURL, summary string) (*Evidence, error) {
	b, err := newBase(id, label)
	if err != nil {
		return nil, err
	}
	return &Evidence{base: b, SourceURL: sourceURL, Summary: summary}, nil
}

func (*Evidence) Type() NodeType { return NodeTypeEvidence }

// -----------------------------------------------------------------------
// Lesson
// -----------------------------------------------------------------------

// Lesson is a correction learned from a failed lead validation.
// Kind is the mismatch category (e.g. "TechStackMismatch") when known.
type Lesson struct {
	base
	LessonID  string
	Details   string
	Timestamp time.Time
	Kind      string
}

// LessonFields holds the lesson-only attributes.
type LessonFields struct {
	LessonID  string
	Details   string
	Timestamp time.Time
	Kind      string
}

func NewLesson(id NodeID, label string, f LessonFields) (*Lesson, error) {
	b, err := newBase(id, label)
	if err != nil {
		return nil, err
	}
	return &Lesson{
		base:      b,
		LessonID:  f.LessonID,
		Details:   f.Details,
		Timestamp: f.Timestamp,
		Kind:      f.Kind,
	}, nil
}

func (*Lesson) Type() NodeType { return NodeTypeLesson }
