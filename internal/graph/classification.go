package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Classification is the sales-qualification label of a company.
type Classification string

const (
	Strike       Classification = "Strike"
	Monitor      Classification = "Monitor"
	Disregard    Classification = "Disregard"
	Unclassified Classification = "Unclassified"
)

// Classifications lists every category in display order.
var Classifications = []Classification{Strike, Monitor, Disregard, Unclassified}

// ParseClassification maps a stored value to a category. Matching is exact;
// empty or unknown values resolve to Unclassified.
func ParseClassification(raw string) Classification {
	switch Classification(raw) {
	case Strike, Monitor, Disregard:
		return Classification(raw)
	default:
		return Unclassified
	}
}

// Classify resolves a node's classification. Only companies carry one; every
// other node type resolves to Unclassified.
func Classify(n Node) Classification {
	c, ok := n.(*Company)
	if !ok {
		return Unclassified
	}
	return ParseClassification(c.Classification)
}

// -----------------------------------------------------------------------
// ClassificationSet
// -----------------------------------------------------------------------

// ClassificationSet is an immutable set of categories.
type ClassificationSet uint8

func bit(c Classification) ClassificationSet {
	switch c {
	case Strike:
		return 1 << 0
	case Monitor:
		return 1 << 1
	case Disregard:
		return 1 << 2
	case Unclassified:
		return 1 << 3
	}
	return 0
}

// AllClassifications is the set with every category active.
func AllClassifications() ClassificationSet {
	var s ClassificationSet
	for _, c := range Classifications {
		s |= bit(c)
	}
	return s
}

// NewClassificationSet returns a set holding cs.
func NewClassificationSet(cs ...Classification) ClassificationSet {
	var s ClassificationSet
	for _, c := range cs {
		s |= bit(c)
	}
	return s
}

func (s ClassificationSet) Has(c Classification) bool {
	b := bit(c)
	return b != 0 && s&b != 0
}

// Toggle returns a copy of s with c flipped.
func (s ClassificationSet) Toggle(c Classification) ClassificationSet {
	return s ^ bit(c)
}

func (s ClassificationSet) Empty() bool { return s == 0 }

// List returns the members in display order.
func (s ClassificationSet) List() []Classification {
	out := make([]Classification, 0, len(Classifications))
	for _, c := range Classifications {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s ClassificationSet) String() string {
	parts := make([]string, 0, len(Classifications))
	for _, c := range s.List() {
		parts = append(parts, string(c))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (s ClassificationSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *ClassificationSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := ParseClassificationSet(names)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// ParseClassificationSet builds a set from category names. Unlike
// ParseClassification it rejects unknown names, since they come from
// configuration or user input rather than stored data.
func ParseClassificationSet(names []string) (ClassificationSet, error) {
	var s ClassificationSet
	for _, name := range names {
		c, ok := LookupClassification(name)
		if !ok {
			return 0, fmt.Errorf("unknown classification %q", name)
		}
		s |= bit(c)
	}
	return s, nil
}

// LookupClassification matches name case-insensitively against the four categories.
func LookupClassification(name string) (Classification, bool) {
	for _, c := range Classifications {
		if strings.EqualFold(name, string(c)) {
			return c, true
		}
	}
	return "", false
}
