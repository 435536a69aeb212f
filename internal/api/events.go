package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nsilverman/compete/internal/models"
	log "github.com/sirupsen/logrus"
)

// writeWait bounds a single write to a websocket client
const writeWait = 5 * time.Second

// wsClient serializes writes to one websocket connection
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(event models.ContestEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

// BroadcastEvent implements scheduler.EventBroadcaster
func (s *Server) BroadcastEvent(event models.ContestEvent) {
	s.wsMu.Lock()
	clients := make([]*wsClient, 0, len(s.wsClients))
	for _, client := range s.wsClients {
		clients = append(clients, client)
	}
	s.wsMu.Unlock()

	for _, client := range clients {
		if err := client.send(event); err != nil {
			log.Debugf("Dropping WebSocket client: %v", err)
			s.removeClient(client.conn)
			_ = client.conn.Close()
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.wsMu.Lock()
	delete(s.wsClients, conn)
	s.wsMu.Unlock()
}

// handleWebSocket handles GET /api/v1/ws/events
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	s.wsClients[conn] = &wsClient{conn: conn}
	s.wsMu.Unlock()

	defer func() {
		s.removeClient(conn)
		if err := conn.Close(); err != nil {
			log.Debugf("Error closing WebSocket connection: %v", err)
		}
	}()

	// Keep connection alive until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}
	}
}
