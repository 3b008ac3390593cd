package handlers

import (
	"context"

	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/leaderboard"
	ws "card-sorting-go/pkg/websocket"
)

// BroadcastCompleted returns a sorting.CompletionObserver announcing results to
// the game room. Register it after the leaderboard observer so the board it
// sends already includes this game.
func BroadcastCompleted(board *leaderboard.Store) sorting.CompletionObserver {
	return func(ctx context.Context, _ sorting.State, res sorting.Results) error {
		hub, ok := currentHub()
		if !ok {
			return nil
		}
		hub.Broadcast(ws.DefaultRoom, "completed", buildResultsView(ctx, board, res))
		return nil
	}
}
