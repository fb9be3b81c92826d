package socket

import (
	"net/http"
	"time"

	"markhub/pkg/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking is handled by the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one open change subscription: a single browser tab's websocket.
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	OwnerID string
	Send    chan []byte
}

// ServeWs upgrades the request and registers the connection in the owner's
// room. ownerID comes from the verified session, never from the request body.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, ownerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:     hub,
		Conn:    conn,
		OwnerID: ownerID,
		Send:    make(chan []byte, 256),
	}
	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

// readPump exists to observe the close of the connection. The subscription
// is one-way; anything the client sends is discarded.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("subscription read error: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	// A ping every 30s keeps intermediaries from dropping idle connections
	// and detects dead peers.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				// Hub closed the channel; say goodbye properly.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
