// Package feed exposes the countdown state over a websocket so
// companion clients (widgets, remote screens) can mirror the timers.
// Each client gets a state_init snapshot on connect, then per-event
// frames. Slow clients are dropped when their send buffer fills.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
	"cookmode/internal/timer"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
	sendBuf    = 32
)

// envelope is the wire format: {type, ts, data}.
type envelope struct {
	Type string      `json:"type"`
	Ts   time.Time   `json:"ts"`
	Data interface{} `json:"data,omitempty"`
}

// timerFrame is the JSON shape of one timer in any frame.
type timerFrame struct {
	ID         string `json:"id"`
	RecipeID   string `json:"recipe_id"`
	StepIndex  int    `json:"step_index"`
	DurationS  int    `json:"duration_s"`
	RemainingS int    `json:"remaining_s"`
	Status     string `json:"status"`
	Clock      string `json:"clock"` // "m:ss", ready for display
}

func frameOf(t domain.TimerState) timerFrame {
	return timerFrame{
		ID:         t.ID,
		RecipeID:   t.RecipeID,
		StepIndex:  t.StepIndex,
		DurationS:  int(t.Duration.Seconds()),
		RemainingS: int(t.Remaining.Seconds()),
		Status:     t.Status.String(),
		Clock:      domain.Clock(t.Remaining),
	}
}

// Server broadcasts engine events to websocket clients.
type Server struct {
	eng  *timer.Engine
	log  *logger.Logger
	addr string

	mu      sync.Mutex
	clients map[*client]struct{}

	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// NewServer creates a feed server listening on addr (e.g. ":8791").
func NewServer(eng *timer.Engine, addr string, log *logger.Logger) *Server {
	return &Server{
		eng:        eng,
		log:        log,
		addr:       addr,
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 128),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
	}
}

// Run serves the feed until ctx is cancelled. Call in a goroutine.
func (s *Server) Run(ctx context.Context) error {
	events := s.eng.Subscribe()
	defer s.eng.Unsubscribe(events)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	srv := &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	go s.loop(ctx, events)

	s.log.Info("feed: listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// loop owns the client set: registrations, departures, and fan-out.
func (s *Server) loop(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return

		case c := <-s.register:
			s.mu.Lock()
			s.clients[c] = struct{}{}
			n := len(s.clients)
			s.mu.Unlock()
			s.log.Info("feed: client connected (%s, %d total)", c.remoteAddr, n)

		case c := <-s.unregister:
			s.drop(c, "disconnect")

		case ev, ok := <-events:
			if !ok {
				s.closeAll()
				return
			}
			msg, ok := marshalEvent(ev)
			if !ok {
				continue
			}
			s.fanOut(msg)

		case msg := <-s.broadcast:
			s.fanOut(msg)
		}
	}
}

// fanOut delivers one frame to every client, collecting the slow ones
// for removal after the lock is released.
func (s *Server) fanOut(msg []byte) {
	var slow []*client
	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.Unlock()
	for _, c := range slow {
		s.drop(c, "slow client")
	}
}

func (s *Server) drop(c *client, reason string) {
	s.mu.Lock()
	_, ok := s.clients[c]
	if ok {
		delete(s.clients, c)
	}
	n := len(s.clients)
	s.mu.Unlock()

	if ok {
		_ = c.conn.Close()
		c.closeSend()
		s.log.Info("feed: client dropped (%s, %s, %d left)", c.remoteAddr, reason, n)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.Close()
		c.closeSend()
		delete(s.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS upgrades the connection, registers the client, and sends
// the state_init snapshot.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("feed: upgrade failed: %v", err)
		return
	}

	c := newClient(conn, r.RemoteAddr)
	s.register <- c

	// The pumps outlive the handler; net/http cancels r.Context() on
	// return, so the connection lifetime is managed by the hub loop
	// and read/write errors instead.
	go c.writePump()
	go c.readPump(s)

	frames := make([]timerFrame, 0)
	for _, t := range s.eng.Snapshot() {
		frames = append(frames, frameOf(t))
	}
	init, err := json.Marshal(envelope{Type: "state_init", Ts: time.Now().UTC(), Data: frames})
	if err != nil {
		return
	}
	select {
	case c.send <- init:
	default:
		s.unregister <- c
	}
}

// marshalEvent converts an engine event to a wire frame. Unknown event
// kinds are dropped.
func marshalEvent(ev timer.Event) ([]byte, bool) {
	var env envelope
	env.Ts = time.Now().UTC()

	switch e := ev.(type) {
	case timer.TickEvent:
		env.Type = "timer_tick"
		env.Data = frameOf(e.State)
	case timer.FinishedEvent:
		env.Type = "timer_finished"
		env.Data = frameOf(e.State)
	case timer.ClearedEvent:
		env.Type = "timers_cleared"
		env.Data = map[string][]int{"step_indices": e.StepIndices}
	default:
		return nil, false
	}

	msg, err := json.Marshal(env)
	if err != nil {
		return nil, false
	}
	return msg, true
}

// ── Client ───────────────────────────────────────────────────────

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, remoteAddr string) *client {
	return &client{
		conn:       conn,
		send:       make(chan []byte, sendBuf),
		remoteAddr: remoteAddr,
	}
}

func (c *client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// writePump drains the send queue onto the wire, pinging on idle.
// Exits on write error or when send is closed.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; it exists to notice disconnects
// and answer control frames.
func (c *client) readPump(s *Server) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.unregister <- c
			return
		}
	}
}
