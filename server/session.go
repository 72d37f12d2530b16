package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TFMV/forcegraph/camera"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 64 << 10

	// Client pointer ids keep their low bits; the session number goes
	// above them so pointers of different viewers never collide.
	pointerBits = 16
	pointerMask = 1<<pointerBits - 1

	maxCanvas = 1 << 14
)

// ErrTooManySessions is returned when MaxSessions viewers are connected.
var ErrTooManySessions = errors.New("too many sessions")

// session is one connected viewer.
type session struct {
	id   string
	base int
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// enqueue queues data for the writer. A slow viewer misses frames instead
// of stalling the loop.
func (s *session) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.once.Do(func() { close(s.done) })
}

// inMessage is a message from a viewer. "input" carries the viewer's
// pointers, the wheel delta since its last message, the modifier keys and
// optionally its canvas viewport; "visibility" reports a hidden page.
type inMessage struct {
	Type      string           `json:"type"`
	Pointers  []camera.Pointer `json:"pointers,omitempty"`
	Wheel     float64          `json:"wheel,omitempty"`
	Modifiers camera.Modifiers `json:"modifiers"`
	Viewport  *camera.Viewport `json:"viewport,omitempty"`
	Hidden    bool             `json:"hidden,omitempty"`
}

func (s *Server) register() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.srv.MaxSessions {
		return nil, ErrTooManySessions
	}
	s.seq++
	sess := &session{
		id:   uuid.NewString(),
		base: s.seq << pointerBits,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
	s.sessions[sess.id] = sess
	if s.metrics != nil {
		s.metrics.UpdateSessions(len(s.sessions))
	}
	return sess, nil
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	n := len(s.sessions)
	s.mu.Unlock()

	sess.close()
	if s.metrics != nil {
		s.metrics.UpdateSessions(n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.do(ctx, func() { delete(s.pointers, sess.id) })
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.close()
	}
}

// Sessions returns the number of connected viewers.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.register()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.unregister(sess)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	sess.conn = conn
	logger := s.logger.With("session", sess.id)
	logger.Info("viewer connected", "remote", r.RemoteAddr)

	hello, _ := json.Marshal(outMessage{Type: "hello", Session: sess.id})
	sess.enqueue(hello)

	go s.writer(sess)
	s.reader(r.Context(), sess)
	logger.Info("viewer disconnected")
}

// reader applies viewer messages on the loop goroutine until the
// connection fails.
func (s *Server) reader(ctx context.Context, sess *session) {
	conn := sess.conn
	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session", sess.id, "error", err)
			}
			return
		}
		if s.metrics != nil {
			s.metrics.RecordSocketMessage("in")
		}

		var msg inMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("malformed viewer message", "session", sess.id, "error", err)
			continue
		}
		if err := s.do(ctx, func() { s.applyMessage(sess, msg, time.Now()) }); err != nil {
			return
		}
	}
}

// applyMessage runs on the loop goroutine.
func (s *Server) applyMessage(sess *session, msg inMessage, now time.Time) {
	switch msg.Type {
	case "input":
		ps := make([]camera.Pointer, 0, len(msg.Pointers))
		for _, p := range msg.Pointers {
			p.ID = sess.base | p.ID&pointerMask
			ps = append(ps, p)
		}
		s.pointers[sess.id] = ps
		s.wheel += msg.Wheel
		s.mods = msg.Modifiers
		if vp := msg.Viewport; vp != nil && validViewport(*vp) {
			s.viewport = *vp
		}
	case "visibility":
		if msg.Hidden {
			s.loop.Hide()
		} else {
			s.loop.Interact(now)
		}
	default:
		s.logger.Debug("unknown viewer message", "session", sess.id, "type", msg.Type)
	}
}

func validViewport(vp camera.Viewport) bool {
	w, h := vp.CanvasSize()
	return vp.Rect.W > 0 && vp.Rect.H > 0 && vp.DPR > 0 && w <= maxCanvas && h <= maxCanvas
}

// writer sends queued messages and keepalive pings.
func (s *Server) writer(sess *session) {
	conn := sess.conn
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data := <-sess.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			if s.metrics != nil {
				s.metrics.RecordSocketMessage("out")
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sess.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
