package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// enqueue hands payload to the write pump without blocking. Callers hold
// hub.mu, so send cannot be closed underneath.
func (c *Client) enqueue(payload []byte, msgType string) bool {
	select {
	case c.send <- payload:
		return true
	default:
		log.Warn().Str("conn", c.id).Str("type", msgType).Msg("[enqueue] send buffer full, dropping message")
		return false
	}
}

// close runs the departure exactly once, however many paths reach it.
func (c *Client) close(handler Handler) {
	c.closeOnce.Do(func() {
		handler.Disconnect(c.id)
		c.hub.unregister(c)
		_ = c.conn.Close()
		log.Info().Str("conn", c.id).Msg("[close] client disconnected")
	})
}

func (c *Client) readPump(handler Handler) {
	defer c.close(handler)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.id).Msg("[readPump] unexpected close")
			}
			return
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			log.Warn().Err(err).Str("conn", c.id).Msg("[readPump] malformed envelope")
			c.hub.SendTo(c.id, internal.Message[any]{
				Type: internal.EventError,
				Data: internal.ErrorData{Message: "malformed message"},
			})
			continue
		}
		handler.Dispatch(c.id, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warn().Err(err).Str("conn", c.id).Msg("[writePump] write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
