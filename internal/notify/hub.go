package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hadfi53/rakb-sub004/internal/observability"
	"go.uber.org/zap"
)

// Push is the payload sent to connected clients.
type Push struct {
	Type      string      `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	RelatedID *uuid.UUID  `json:"related_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// session wraps one websocket connection. Writes are serialized per
// connection since gorilla/websocket allows one concurrent writer.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(p Push) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(p)
}

// Hub tracks connected user sessions and fans pushes out to them. Delivery
// is at-most-once: users without a live session simply miss the push and
// catch up from the persisted notification list.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	logger   *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]*session),
		logger:   logger,
	}
}

// Add registers a user's connection, replacing any previous session.
func (h *Hub) Add(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	old := h.sessions[userID]
	h.sessions[userID] = &session{conn: conn}
	h.mu.Unlock()

	if old != nil {
		_ = old.conn.Close()
	} else {
		observability.WSSessionsOnline.Inc()
	}
}

// Remove drops a user's session if conn is still the registered one.
func (h *Hub) Remove(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	if s, ok := h.sessions[userID]; ok && s.conn == conn {
		delete(h.sessions, userID)
		observability.WSSessionsOnline.Dec()
	}
	h.mu.Unlock()
}

// Push delivers a payload to the user's session if one is connected.
// Missed pushes are not buffered.
func (h *Hub) Push(userID uuid.UUID, p Push) {
	h.mu.RLock()
	s, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := s.send(p); err != nil {
		h.logger.Warn("websocket push failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		h.Remove(userID, s.conn)
		_ = s.conn.Close()
		return
	}
	observability.NotificationsPushedTotal.Inc()
}
