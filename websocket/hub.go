package websocket

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"debatearena/internal/debate"
	"debatearena/middlewares"
	"debatearena/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Hub pushes session snapshots to the browser tabs watching each session.
type Hub struct {
	rooms    map[string]*Room
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// Room holds the connections for one session.
type Room struct {
	sessionID   string
	clients     map[*websocket.Conn]*Client
	mu          sync.RWMutex
	unsubscribe func()
	closed      bool
	log         *zap.Logger
}

// Client is one websocket connection.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewHub creates a hub. Cross-origin upgrades are accepted only from allowOrigins.
func NewHub(allowOrigins []string, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	allowed := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	h := &Hub{
		rooms: make(map[string]*Room),
		log:   log,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
	return h
}

// Register adds conn to the session's room. The first connection subscribes the
// room to the machine.
func (h *Hub) Register(m *debate.Machine, conn *websocket.Conn) *Client {
	h.mu.Lock()
	room, exists := h.rooms[m.ID()]
	if !exists {
		room = &Room{
			sessionID: m.ID(),
			clients:   make(map[*websocket.Conn]*Client),
			log:       h.log.With(zap.String("session", m.ID())),
		}
		h.rooms[m.ID()] = room
	}
	client := &Client{conn: conn}
	room.mu.Lock()
	room.clients[conn] = client
	room.mu.Unlock()
	h.mu.Unlock()

	// Subscribe outside the hub lock; observers run while the machine holds its
	// notify lock.
	if !exists {
		unsubscribe := m.Subscribe(room.broadcastSession)
		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			unsubscribe()
		} else {
			room.unsubscribe = unsubscribe
			room.mu.Unlock()
		}
	}

	room.broadcastPresence()
	return client
}

// Unregister removes conn. The last connection out closes the room.
func (h *Hub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	room, exists := h.rooms[sessionID]
	if !exists {
		h.mu.Unlock()
		return
	}
	room.mu.Lock()
	delete(room.clients, conn)
	empty := len(room.clients) == 0
	var unsubscribe func()
	if empty {
		room.closed = true
		unsubscribe = room.unsubscribe
		delete(h.rooms, sessionID)
	}
	room.mu.Unlock()
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if !empty {
		room.broadcastPresence()
	}
}

// Connections returns the number of open connections for a session.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	room, exists := h.rooms[sessionID]
	h.mu.RUnlock()
	if !exists {
		return 0
	}
	room.mu.RLock()
	defer room.mu.RUnlock()
	return len(room.clients)
}

func (r *Room) snapshotClients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

func (r *Room) broadcast(event *debate.Event) {
	for _, client := range r.snapshotClients() {
		if err := client.WriteJSON(event); err != nil {
			r.log.Debug("websocket write failed", zap.Error(err))
		}
	}
}

func (r *Room) broadcastSession(s models.Session) {
	event, err := debate.NewSessionEvent(s)
	if err != nil {
		r.log.Error("encode session event", zap.Error(err))
		return
	}
	r.broadcast(event)
}

func (r *Room) broadcastPresence() {
	r.mu.RLock()
	count := len(r.clients)
	r.mu.RUnlock()
	event, err := debate.NewEvent(debate.EventPresence, debate.PresencePayload{Connected: count})
	if err != nil {
		return
	}
	r.broadcast(event)
}

// WriteJSON safely writes JSON to the WebSocket connection
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// SessionHandler upgrades the request and streams the caller's session until the
// client disconnects.
func (h *Hub) SessionHandler(c *gin.Context) {
	m, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := h.Register(m, conn)
	defer h.Unregister(m.ID(), conn)

	if event, err := debate.NewSessionEvent(m.Snapshot()); err == nil {
		if err := client.WriteJSON(event); err != nil {
			return
		}
	}

	// Clients only listen; reading drains control frames and detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket closed", zap.String("session", m.ID()), zap.Error(err))
			}
			return
		}
	}
}
