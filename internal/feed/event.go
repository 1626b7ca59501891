package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event kinds published by the lead-hunting backend.
const (
	KindStrategyStored      = "strategy_stored"
	KindMarketResearchDone  = "market_research_done"
	KindPivotEmailDrafted   = "pivot_email_drafted"
	KindOutageReprioritized = "outage_reprioritized"
	KindGraphReset          = "graph_reset"
	KindValidationComplete  = "validation_complete"
	KindScoutStatusChange   = "scout_status_change"
	KindAgentError          = "agent_error"
)

// Event is one message from the live feed. Data is opaque to the graph core.
type Event struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"-"`
}

var errMissingType = errors.New("feed event has no type")

// DecodeEvent parses a feed message and stamps ReceivedAt.
func DecodeEvent(data []byte, now time.Time) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode feed event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, errMissingType
	}
	ev.ReceivedAt = now
	return ev, nil
}
