package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gyaneshwarpardhi/huntgraph/internal/metrics"
)

const maxMessageSize = 512 * 1024

// Handler is called for every event whose kind is in the trigger set.
type Handler func(ctx context.Context, ev Event)

// Options configures a Listener.
type Options struct {
	URL            string
	Triggers       TriggerSet
	ReconnectDelay time.Duration
	// QueueSize > 0 runs the trigger handler on a single background worker
	// with that many pending events; extra events are dropped. Zero calls
	// the handler inline from the read loop.
	QueueSize int
	Header    http.Header
	Logger    *slog.Logger
}

// Listener subscribes to the backend's WebSocket feed and reconnects after
// the connection drops.
type Listener struct {
	url       string
	triggers  TriggerSet
	reconnect time.Duration
	queueSize int
	header    http.Header
	dialer    *websocket.Dialer
	log       *slog.Logger
	now       func() time.Time
}

func NewListener(opts Options) *Listener {
	if opts.Triggers == nil {
		opts.Triggers = DefaultTriggers()
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Listener{
		url:       opts.URL,
		triggers:  opts.Triggers,
		reconnect: opts.ReconnectDelay,
		queueSize: opts.QueueSize,
		header:    opts.Header,
		dialer:    websocket.DefaultDialer,
		log:       opts.Logger.With("component", "feed", "url", opts.URL),
		now:       time.Now,
	}
}

// Triggers returns the listener's trigger set.
func (l *Listener) Triggers() TriggerSet { return l.triggers }

// Run connects, reads events and calls onTrigger for triggering kinds until
// ctx is cancelled. Connection failures are logged and retried after the
// reconnect delay; Run only returns when ctx is done.
func (l *Listener) Run(ctx context.Context, onTrigger Handler) error {
	if l.queueSize > 0 && onTrigger != nil {
		pool := newWorkerPool(ctx, 1, l.queueSize, func(ctx context.Context, ev Event) {
			onTrigger(ctx, ev)
		})
		defer pool.Drain()
		onTrigger = func(_ context.Context, ev Event) {
			if !pool.Submit(ev) {
				metrics.FeedEventsDropped.Inc()
				l.log.Warn("trigger queue full, dropping event", "type", ev.Type, "queued", pool.QueueLen())
			}
		}
	}
	for {
		err := l.session(ctx, onTrigger)
		metrics.FeedConnected.Set(0)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("feed disconnected", "err", err, "retry_in", l.reconnect)

		t := time.NewTimer(l.reconnect)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (l *Listener) session(ctx context.Context, onTrigger Handler) error {
	conn, resp, err := l.dialer.DialContext(ctx, l.url, l.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	metrics.FeedConnected.Set(1)
	l.log.Info("feed connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("feed closed by server")
			}
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		ev, err := DecodeEvent(data, l.now())
		if err != nil {
			l.log.Warn("dropping feed message", "err", err)
			continue
		}
		l.dispatch(ctx, ev, onTrigger)
	}
}

func (l *Listener) dispatch(ctx context.Context, ev Event, onTrigger Handler) {
	triggered := l.triggers.Triggers(ev.Type)
	metrics.FeedEvents.WithLabelValues(ev.Type, strconv.FormatBool(triggered)).Inc()

	if ev.Type == KindAgentError {
		l.log.Warn("backend agent error", "data", string(ev.Data))
	}
	if !triggered {
		l.log.Debug("feed event ignored", "type", ev.Type)
		return
	}
	l.log.Info("feed event triggers refresh", "type", ev.Type)
	if onTrigger != nil {
		onTrigger(ctx, ev)
	}
}
