package websocket

import (
	"log"
	"sync"
)

// DefaultRoom is the room every game UI joins unless it asks otherwise.
const DefaultRoom = "game"

type room map[*Client]struct{}

type joinReq struct {
	client *Client
	room   string
}

type broadcast struct {
	room    string
	typ     string
	payload any
}

// Hub fans game updates out to subscribed UIs. Room membership is owned by
// the Run goroutine; every other method only sends it requests.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	join       chan joinReq
	broadcast  chan broadcast

	stop     chan struct{}
	stopOnce sync.Once

	rooms map[string]room
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinReq),
		broadcast:  make(chan broadcast, 256),
		stop:       make(chan struct{}),
		rooms:      map[string]room{},
	}
}

// Run services the hub until Stop is called, then closes every client.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			for _, members := range h.rooms {
				for c := range members {
					c.close()
				}
			}
			h.rooms = map[string]room{}
			return
		case c := <-h.register:
			h.add(c, c.Room())
		case c := <-h.unregister:
			h.remove(c)
			c.close()
		case jr := <-h.join:
			h.remove(jr.client)
			h.add(jr.client, jr.room)
		case b := <-h.broadcast:
			h.fanOut(b)
		}
	}
}

// Stop ends Run. Calls made after Stop return immediately.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

func (h *Hub) Join(c *Client, room string) {
	select {
	case h.join <- joinReq{client: c, room: room}:
	case <-h.stop:
	}
}

// Broadcast queues a typed message for a room. It never blocks the caller:
// when the queue is full the message is dropped, and the next snapshot
// supersedes it.
func (h *Hub) Broadcast(room, typ string, payload any) {
	select {
	case h.broadcast <- broadcast{room: room, typ: typ, payload: payload}:
	case <-h.stop:
	default:
		log.Printf("ws broadcast dropped: room=%s type=%s", room, typ)
	}
}

func (h *Hub) add(c *Client, name string) {
	if c == nil {
		return
	}
	if name == "" {
		name = DefaultRoom
	}
	c.setRoom(name)
	if h.rooms[name] == nil {
		h.rooms[name] = room{}
	}
	h.rooms[name][c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	if c == nil {
		return
	}
	name := c.Room()
	members := h.rooms[name]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, name)
	}
}

func (h *Hub) fanOut(b broadcast) {
	members := h.rooms[b.room]
	if len(members) == 0 {
		return
	}
	data, err := Encode(b.typ, b.payload)
	if err != nil {
		log.Printf("ws broadcast marshal error: room=%s type=%s err=%v", b.room, b.typ, err)
		return
	}
	for c := range members {
		if !c.Enqueue(data) {
			// A client that cannot keep up is dropped rather than stalling the room.
			h.remove(c)
			c.close()
		}
	}
}
