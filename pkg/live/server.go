//go:build !js || !wasm
// +build !js !wasm

package live

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server broadcasts live-reload messages to connected browsers
type Server struct {
	upgrader websocket.Upgrader
	sessions map[string]*Session
	mu       sync.RWMutex
	version  uint64
}

// Session is one connected browser
type Session struct {
	ID        string
	conn      *websocket.Conn
	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewServer creates a live-reload server
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
	}
}

// HandleWebSocket upgrades the request and serves the session until the
// browser disconnects
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live Server] Failed to upgrade connection: %v", err)
		return
	}

	session := &Session{
		ID:        uuid.NewString(),
		conn:      conn,
		sendChan:  make(chan []byte, 16),
		closeChan: make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	version := s.version
	s.mu.Unlock()

	go session.writer()
	session.send(Message{Type: TypeHello, Version: version})
	log.Printf("[Live Session %s] Connected", session.ID)

	session.reader()

	s.mu.Lock()
	delete(s.sessions, session.ID)
	s.mu.Unlock()
	session.close()
	log.Printf("[Live Session %s] Disconnected", session.ID)
}

// Broadcast sends a reload for id to every session and returns the new
// version
func (s *Server) Broadcast(id string) uint64 {
	s.mu.Lock()
	s.version++
	m := Message{Type: TypeReload, ID: id, Version: s.version}
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.send(m)
	}
	log.Printf("[Live Server] Notified %d clients (version %d)", len(sessions), m.Version)
	return m.Version
}

// SessionCount returns the number of connected browsers
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Version returns the last broadcast version
func (s *Server) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Close disconnects every session
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}

func (s *Session) send(m Message) {
	data, err := Encode(m)
	if err != nil {
		log.Printf("[Live Session %s] %v", s.ID, err)
		return
	}
	select {
	case s.sendChan <- data:
	case <-s.closeChan:
	default:
		log.Printf("[Live Session %s] Send buffer full, dropping %s", s.ID, m.Type)
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		s.conn.Close()
	})
}

// reader answers pings until the connection fails
func (s *Session) reader() {
	s.conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(300 * time.Second))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Live Session %s] Unexpected close: %v", s.ID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		m, err := Decode(data)
		if err != nil {
			log.Printf("[Live Session %s] %v", s.ID, err)
			continue
		}
		if m.Type == TypePing {
			s.send(Message{Type: TypePong, Version: m.Version})
		}
	}
}

// writer owns all writes to the connection
func (s *Session) writer() {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.sendChan:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Live Session %s] Failed to write message: %v", s.ID, err)
				s.close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}

		case <-s.closeChan:
			return
		}
	}
}
