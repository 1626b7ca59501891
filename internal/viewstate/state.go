// Package viewstate holds the interactive filter/focus/selection state and the
// pure reducer that replaces it on each user action.
package viewstate

import (
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

// State is the UI filter state. It is a value: Reduce returns a new State and
// never modifies its input. An empty NodeID means "none".
type State struct {
	Active   graph.ClassificationSet `json:"active"`
	Focus    graph.NodeID            `json:"focus,omitempty"`
	Selected graph.NodeID            `json:"selected,omitempty"`
}

// Initial returns the start-up state: every classification active, nothing
// focused or selected.
func Initial() State {
	return State{Active: graph.AllClassifications()}
}

// WithActive returns the initial state with a custom starting filter set.
func WithActive(active graph.ClassificationSet) State {
	return State{Active: active}
}

// Filter extracts the part of the state the materialization pipeline reads.
func (s State) Filter() graph.Filter {
	return graph.Filter{Active: s.Active, Focus: s.Focus}
}

// -----------------------------------------------------------------------
// Actions
// -----------------------------------------------------------------------

// ActionKind names an action for logging and metrics.
type ActionKind string

const (
	ActionToggleFilter    ActionKind = "toggle_filter"
	ActionClickNode       ActionKind = "click_node"
	ActionClickBackground ActionKind = "click_background"
	ActionReset           ActionKind = "reset"
)

// Action is a discrete user (or reset) event. The set is closed.
type Action interface {
	Kind() ActionKind
	apply(State) State
}

// ToggleClassification flips one classification in the active set.
type ToggleClassification struct {
	Classification graph.Classification
}

func (ToggleClassification) Kind() ActionKind { return ActionToggleFilter }

func (a ToggleClassification) apply(s State) State {
	s.Active = s.Active.Toggle(a.Classification)
	return s
}

// ClickNode selects a node. Clicking a company also toggles the expansion
// focus: a second click on the focused company clears it.
type ClickNode struct {
	ID   graph.NodeID
	Type graph.NodeType
}

func (ClickNode) Kind() ActionKind { return ActionClickNode }

func (a ClickNode) apply(s State) State {
	s.Selected = a.ID
	if a.Type != graph.NodeTypeCompany {
		return s
	}
	if s.Focus == a.ID {
		s.Focus = ""
	} else {
		s.Focus = a.ID
	}
	return s
}

// ClickBackground clears the selection and the expansion focus.
type ClickBackground struct{}

func (ClickBackground) Kind() ActionKind { return ActionClickBackground }

func (ClickBackground) apply(s State) State {
	s.Selected = ""
	s.Focus = ""
	return s
}

// Reset returns to Start, discarding focus and selection.
type Reset struct {
	Start State
}

func (Reset) Kind() ActionKind { return ActionReset }

func (a Reset) apply(State) State {
	return State{Active: a.Start.Active}
}

// Reduce applies action to s and returns the resulting state.
// A nil action leaves the state unchanged.
func Reduce(s State, action Action) State {
	if action == nil {
		return s
	}
	return action.apply(s)
}
