package websocket

import (
	"log"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// HubRef points at the live Hub. Supervise swaps in a fresh hub when Run
// panics, so callers resolve it on every use.
type HubRef struct {
	p atomic.Pointer[Hub]
}

func NewHubRef(initial *Hub) *HubRef {
	r := &HubRef{}
	r.p.Store(initial)
	return r
}

func (r *HubRef) Get() (*Hub, bool) {
	h := r.p.Load()
	return h, h != nil
}

func (r *HubRef) Set(h *Hub) {
	r.p.Store(h)
}

// Supervise runs the current hub and replaces it after a panic. It returns
// once a hub stops normally.
func (r *HubRef) Supervise(backoff time.Duration) {
	for {
		h, ok := r.Get()
		if !ok {
			r.Set(NewHub())
			continue
		}
		if !runRecovered(h) {
			return
		}
		// Clients of the dead hub must not block on it.
		h.Stop()
		r.Set(NewHub())
		time.Sleep(backoff)
	}
}

func runRecovered(h *Hub) (panicked bool) {
	defer func() {
		if v := recover(); v != nil {
			panicked = true
			log.Printf("hub.Run panic: %v\n%s", v, debug.Stack())
		}
	}()
	h.Run()
	return false
}
