// Package session is the interactive layer: it owns the graph store and the
// UI state, applies user actions one at a time and re-materializes the view.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/huntgraph/internal/feed"
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/huntgraph/internal/render"
	"github.com/gyaneshwarpardhi/huntgraph/internal/viewstate"
)

// ErrUnknownNode is returned when a click names a node not in the snapshot.
var ErrUnknownNode = errors.New("unknown node")

// Fetcher loads a fresh graph snapshot.
type Fetcher interface {
	FetchGraph(ctx context.Context) (*graph.Snapshot, error)
}

// Status describes the most recent fetch outcome.
type Status struct {
	LastError     string    `json:"last_error,omitempty"`
	LastErrorAt   time.Time `json:"last_error_at"`
	LastFetchedAt time.Time `json:"last_fetched_at"`
	InFlight      int       `json:"in_flight"`
	Fetches       int       `json:"fetches"`
	Breaker       string    `json:"breaker,omitempty"`
}

// breakerReporter is implemented by fetchers guarded by a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// Stale reports whether the view is older than the last fetch attempt.
func (s Status) Stale() bool { return s.LastError != "" }

// Update is what subscribers receive after every recompute.
type Update struct {
	View   *graph.View     `json:"view"`
	State  viewstate.State `json:"state"`
	Status Status          `json:"status"`
}

// Options configures a Session.
type Options struct {
	Fetcher Fetcher
	Initial *viewstate.State // nil means viewstate.Initial()
	Style   *render.Style    // nil means render.DefaultStyle()
	Logger  *slog.Logger
}

type Session struct {
	store   *graph.Store
	fetcher Fetcher
	start   viewstate.State
	log     *slog.Logger

	mu     sync.Mutex
	state  viewstate.State
	status Status
	everOK bool

	view     atomic.Pointer[graph.View]
	style    atomic.Pointer[render.Style]
	inFlight atomic.Int32

	subMu  sync.Mutex
	subs   map[int]chan Update
	nextID int
}

// New builds a session holding an empty graph. Call Refresh to load data.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	initial := viewstate.Initial()
	if opts.Initial != nil {
		initial = *opts.Initial
	}
	style := render.DefaultStyle()
	if opts.Style != nil {
		style = *opts.Style
	}
	s := &Session{
		store:   graph.NewStore(),
		fetcher: opts.Fetcher,
		start:   viewstate.WithActive(initial.Active),
		log:     opts.Logger.With("component", "session"),
		state:   viewstate.WithActive(initial.Active),
		subs:    make(map[int]chan Update),
	}
	s.style.Store(&style)
	s.mu.Lock()
	s.recomputeLocked()
	s.mu.Unlock()
	return s
}

// Refresh fetches a new snapshot and re-materializes the view. The fetch runs
// without holding the state lock, so the previous view keeps being served
// while it is in flight. Concurrent refreshes are not cancelled: whichever
// resolves last is stored. A failed fetch keeps the previous snapshot.
func (s *Session) Refresh(ctx context.Context) error {
	if s.fetcher == nil {
		return errors.New("session has no fetcher")
	}
	s.inFlight.Add(1)
	snap, err := s.fetcher.FetchGraph(ctx)
	s.inFlight.Add(-1)

	s.mu.Lock()
	s.status.Fetches++
	if err != nil {
		s.status.LastError = err.Error()
		s.status.LastErrorAt = time.Now()
		s.mu.Unlock()
		s.log.Warn("refresh failed, keeping previous graph", "err", err)
		s.publish()
		return err
	}
	if snap == nil {
		snap = graph.EmptySnapshot()
		snap.FetchedAt = time.Now()
	}
	s.store.Replace(snap)
	s.status.LastError = ""
	s.status.LastErrorAt = time.Time{}
	s.status.LastFetchedAt = snap.FetchedAt
	s.everOK = true
	s.recomputeLocked()
	s.mu.Unlock()

	s.publish()
	return nil
}

// Dispatch applies a user action and returns the new state.
func (s *Session) Dispatch(action viewstate.Action) viewstate.State {
	s.mu.Lock()
	s.state = viewstate.Reduce(s.state, action)
	state := s.state
	s.recomputeLocked()
	s.mu.Unlock()

	if action != nil {
		metrics.UserActions.WithLabelValues(string(action.Kind())).Inc()
		s.log.Debug("action applied", "kind", action.Kind(), "focus", state.Focus, "active", state.Active.String())
	}
	s.publish()
	return state
}

// ClickNode resolves id against the current snapshot and dispatches a click.
func (s *Session) ClickNode(id graph.NodeID) (viewstate.State, error) {
	for _, n := range s.store.Load().Nodes {
		if n.ID() == id {
			return s.Dispatch(viewstate.ClickNode{ID: id, Type: n.Type()}), nil
		}
	}
	return s.State(), ErrUnknownNode
}

// HandleEvent is the feed trigger callback. A graph reset returns the UI
// state to its initial value before re-fetching.
func (s *Session) HandleEvent(ctx context.Context, ev feed.Event) {
	if ev.Type == feed.KindGraphReset {
		s.Dispatch(viewstate.Reset{Start: s.start})
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("event-triggered refresh failed", "event", ev.Type, "err", err)
	}
}

func (s *Session) recomputeLocked() {
	start := time.Now()
	v := graph.Materialize(s.store.Load(), s.state.Filter())
	s.view.Store(v)
	metrics.RecomputeDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	metrics.VisibleNodes.Set(float64(len(v.Nodes)))
	metrics.VisibleEdges.Set(float64(len(v.Edges)))
}

// View returns the current materialized view.
func (s *Session) View() *graph.View { return s.view.Load() }

// Snapshot returns the full graph as last fetched.
func (s *Session) Snapshot() *graph.Snapshot { return s.store.Load() }

func (s *Session) State() viewstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	st.InFlight = int(s.inFlight.Load())
	st.Breaker = s.breakerState()
	return st
}

// Ready is false only when no fetch has ever succeeded and the last one failed.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.everOK || s.status.LastError == ""
}

// Current bundles view, state and status.
func (s *Session) Current() Update {
	s.mu.Lock()
	u := Update{View: s.view.Load(), State: s.state, Status: s.status}
	s.mu.Unlock()
	u.Status.InFlight = int(s.inFlight.Load())
	u.Status.Breaker = s.breakerState()
	return u
}

func (s *Session) breakerState() string {
	if b, ok := s.fetcher.(breakerReporter); ok {
		return b.BreakerState()
	}
	return ""
}

// -----------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------

// Style returns the active render style.
func (s *Session) Style() render.Style { return *s.style.Load() }

// SetStyle swaps the render style, e.g. after a config reload.
func (s *Session) SetStyle(style render.Style) {
	s.style.Store(&style)
	s.log.Info("render style updated")
	s.publish()
}

// Frame returns the current view together with a render dispatcher whose
// focus matches that view.
func (s *Session) Frame() (*graph.View, *render.Dispatcher) {
	v := s.view.Load()
	return v, render.NewDispatcher(s.Style(), v.Focus)
}

// -----------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------

// Subscribe returns a channel that receives the latest Update after every
// change. Slow readers only see the most recent update. Call cancel to stop.
func (s *Session) Subscribe() (updates <-chan Update, cancel func()) {
	ch := make(chan Update, 1)
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) publish() {
	u := s.Current()
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}
