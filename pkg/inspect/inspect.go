// Package inspect streams navigation lifecycle events to dev tooling over
// WebSocket.
//
// Mount Handler under any prefix:
//
//	srv := inspect.New(nav)
//	defer srv.Close()
//	r.Mount("/_wayfinder", srv.Handler())
//
// GET {prefix}/events upgrades to a WebSocket receiving one JSON Message per
// event. GET {prefix}/current returns the committed location as JSON, or 204
// before the first commit.
package inspect

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/location"
)

// Source is the navigation state being inspected. *navigation.Controller
// implements it.
type Source interface {
	Bus() *events.Bus
	Current() *location.Context
}

// Message is the JSON form of an event.
type Message struct {
	Type     events.Type       `json:"type"`
	Token    uint64            `json:"token"`
	Time     time.Time         `json:"time"`
	Href     string            `json:"href,omitempty"`
	Pathname string            `json:"pathname,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Progress int               `json:"progress,omitempty"`
	Code     string            `json:"code,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// NewMessage converts e.
func NewMessage(e *events.Event) Message {
	msg := Message{
		Type:     e.Type,
		Token:    e.Token,
		Time:     e.Timestamp,
		Progress: e.Progress,
	}
	if e.Context != nil {
		msg.Href = e.Context.Href
		msg.Pathname = e.Context.Pathname
		msg.Params = e.Context.Params
	}
	if e.Err != nil {
		msg.Code = e.Err.CodeString()
		msg.Error = e.Err.Message
	}
	return msg
}

// Location is the JSON form of a committed location.
type Location struct {
	Href       string              `json:"href"`
	BasePrefix string              `json:"basePrefix"`
	Pathname   string              `json:"pathname"`
	Query      map[string][]string `json:"query,omitempty"`
	Hash       string              `json:"hash,omitempty"`
	Params     map[string]string   `json:"params,omitempty"`
}

// Server fans lifecycle events out to WebSocket clients.
type Server struct {
	src         Source
	clients     map[*websocket.Conn]bool
	mu          sync.RWMutex
	writeMu     sync.Mutex // one writer per connection at a time
	upgrader    websocket.Upgrader
	unsubscribe func()
}

// Option configures a Server.
type Option func(*Server)

// WithCheckOrigin sets the upgrader's origin check. All origins are allowed
// by default.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates a server and subscribes it to src's bus.
func New(src Source, opts ...Option) *Server {
	s := &Server{
		src:     src,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = src.Bus().Subscribe(func(e *events.Event) {
		s.broadcast(NewMessage(e))
	})
	return s
}

// Handler returns the inspection routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/events", s.HandleWebSocket)
	r.Get("/current", s.handleCurrent)
	return r
}

// HandleWebSocket upgrades the request and keeps the client registered
// until it disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.drop(conn)
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	cur := s.src.Current()
	if cur == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Location{
		Href:       cur.Href,
		BasePrefix: cur.BasePrefix,
		Pathname:   cur.Pathname,
		Query:      cur.Query,
		Hash:       cur.Hash,
		Params:     cur.Params,
	})
}

func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, client := range clients {
		_ = client.SetWriteDeadline(time.Now().Add(time.Second))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.drop(client)
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close unsubscribes from the bus and closes all client connections.
func (s *Server) Close() {
	s.unsubscribe()

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}
