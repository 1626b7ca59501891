package feed

import "sort"

// TriggerSet is the declared set of event kinds that cause a full re-fetch.
// Any kind not in the set is observed but ignored.
type TriggerSet map[string]struct{}

// NewTriggerSet builds a set from kinds. Empty strings are skipped.
func NewTriggerSet(kinds ...string) TriggerSet {
	s := make(TriggerSet, len(kinds))
	for _, k := range kinds {
		if k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// DefaultTriggers returns the kinds that change graph content on the backend.
func DefaultTriggers() TriggerSet {
	return NewTriggerSet(
		KindStrategyStored,
		KindMarketResearchDone,
		KindPivotEmailDrafted,
		KindOutageReprioritized,
		KindGraphReset,
		KindValidationComplete,
	)
}

// Triggers reports whether an event of kind should cause a refresh.
func (s TriggerSet) Triggers(kind string) bool {
	_, ok := s[kind]
	return ok
}

// List returns the kinds in sorted order.
func (s TriggerSet) List() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
