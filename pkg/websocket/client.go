package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Client is one UI connection. The game only pushes to it; inbound frames are
// small requests such as joining a room or asking for a fresh snapshot.
type Client struct {
	Conn *websocket.Conn
	Hub  *Hub

	SessionID string
	Send      chan []byte

	mu     sync.Mutex
	room   string
	closed bool
}

func NewClient(conn *websocket.Conn, hub *Hub, room string, sessionID string) *Client {
	return &Client{
		Conn:      conn,
		Hub:       hub,
		room:      room,
		SessionID: sessionID,
		Send:      make(chan []byte, sendBuffer),
	}
}

// Room is the room the hub last placed the client in.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) setRoom(name string) {
	c.mu.Lock()
	c.room = name
	c.mu.Unlock()
}

// Enqueue hands data to the write pump without blocking. It reports false when
// the client is too slow to keep up or has already been closed.
func (c *Client) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// SendMessage encodes and enqueues a message for this client only.
func (c *Client) SendMessage(typ string, payload any) error {
	data, err := Encode(typ, payload)
	if err != nil {
		return err
	}
	if !c.Enqueue(data) {
		log.Printf("ws send drop: session=%q room=%s type=%s", c.SessionID, c.Room(), typ)
	}
	return nil
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// ReadPump reads until the peer goes away, passing each frame to handle.
func (c *Client) ReadPump(handle func([]byte)) {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error: room=%s session=%q err=%v", c.Room(), c.SessionID, err)
			}
			return
		}
		if handle != nil {
			handle(data)
		}
	}
}

// WritePump drains Send and keeps the connection alive with pings. It exits
// when Send is closed by the hub or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("ws ping error: session=%q err=%v", c.SessionID, err)
				return
			}
		}
	}
}
