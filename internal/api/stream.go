package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gyaneshwarpardhi/huntgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/huntgraph/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxClientMessage = 4 * 1024
)

// streamMessage is the envelope pushed to browsers.
type streamMessage struct {
	Type string         `json:"type"`
	Data session.Update `json:"data"`
}

// streamServer pushes every new view to connected WebSocket clients.
type streamServer struct {
	sess     *session.Session
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func newStreamServer(sess *session.Session, allowedOrigins []string, logger *slog.Logger) *streamServer {
	return &streamServer{
		sess: sess,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: logger.With("component", "stream"),
	}
}

// originChecker allows requests without an Origin header (non-browser
// clients) and browser requests whose origin is listed. "*" allows all.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// GET /v1/stream
func (s *streamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stream upgrade failed", "err", err, "remote_addr", r.RemoteAddr)
		return
	}
	id := uuid.NewString()
	log := s.log.With("client_id", id)
	log.Info("stream client connected", "remote_addr", r.RemoteAddr)
	metrics.StreamClients.Inc()

	updates, cancel := s.sess.Subscribe()
	closed := make(chan struct{})
	go s.readPump(conn, closed)
	s.writePump(conn, updates, closed, log)

	cancel()
	conn.Close()
	metrics.StreamClients.Dec()
	log.Info("stream client disconnected")
}

// readPump discards client messages and signals closed when the peer goes away.
func (s *streamServer) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxClientMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *streamServer) writePump(conn *websocket.Conn, updates <-chan session.Update, closed <-chan struct{}, log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	send := func(u session.Update) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(streamMessage{Type: "view", Data: u}); err != nil {
			log.Warn("stream write failed", "err", err)
			return false
		}
		return true
	}

	if !send(s.sess.Current()) {
		return
	}
	for {
		select {
		case u, ok := <-updates:
			if !ok || !send(u) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
