package handlers

import (
	"card-sorting-go/internal/game/sorting"
	ws "card-sorting-go/pkg/websocket"
)

// hubProvider is set by main at startup so game observers can push realtime updates.
var hubProvider func() (*ws.Hub, bool)

func SetHubProvider(p func() (*ws.Hub, bool)) {
	hubProvider = p
}

func currentHub() (*ws.Hub, bool) {
	if hubProvider == nil {
		return nil, false
	}
	hub, ok := hubProvider()
	if !ok || hub == nil {
		return nil, false
	}
	return hub, true
}

// BroadcastState is a sorting.ChangeObserver pushing every applied snapshot
// to the game room.
func BroadcastState(view sorting.View) {
	hub, ok := currentHub()
	if !ok {
		return
	}
	hub.Broadcast(ws.DefaultRoom, "state", view)
}
