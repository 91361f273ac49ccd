package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/google/uuid"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// progressEvent is the wire shape pushed to subscribers of a run.
type progressEvent struct {
	RunID  string `json:"run_id"`
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Status string `json:"status,omitempty"`
}

// WSClient is one subscriber's socket connection, scoped to a single run.
type WSClient struct {
	conn      *websocket.Conn
	send      chan progressEvent
	hub       *WSHub
	runID     uuid.UUID
	closeChan chan struct{}
}

// WSHub fans progress events for a run out to every client subscribed to it.
type WSHub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*WSClient]bool

	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan progressEvent
}

// NewWSHub creates an unstarted hub; call Run in a goroutine before use.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[uuid.UUID]map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan progressEvent, 256),
	}
}

// Run drives the hub's select loop. Blocks; call as `go hub.Run()`.
func (h *WSHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.runID] == nil {
				h.clients[c.runID] = make(map[*WSClient]bool)
			}
			h.clients[c.runID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[c.runID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
					if len(set) == 0 {
						delete(h.clients, c.runID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			runID, err := uuid.Parse(event.RunID)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for c := range h.clients[runID] {
				select {
				case c.send <- event:
				default:
					log.Printf("api: dropping progress event for a slow websocket client on run %s", event.RunID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish broadcasts done/total progress for the given run. Safe to call
// from the mining goroutine; never blocks the miner on a slow consumer.
func (h *WSHub) Publish(runID uuid.UUID, done, total int, status string) {
	h.broadcast <- progressEvent{RunID: runID.String(), Done: done, Total: total, Status: status}
}

// GetClientCount reports how many sockets are subscribed to runID.
func (h *WSHub) GetClientCount(runID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[runID])
}

func (s *Server) handleRunWebSocket(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_RUN_ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn:      conn,
		send:      make(chan progressEvent, 32),
		hub:       s.hub,
		runID:     runID,
		closeChan: make(chan struct{}),
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			close(c.closeChan)
			return
		}
	}
}
