package handlers

import (
	"context"

	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/leaderboard"
)

// resultsView is the end-of-game payload: the evaluation plus the board as it
// stands after this game was recorded.
type resultsView struct {
	sorting.Results
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
}

type gameResponse struct {
	Game    sorting.View  `json:"game"`
	Move    *sorting.Move `json:"move,omitempty"`
	Results *resultsView  `json:"results,omitempty"`
	Token   string        `json:"token,omitempty"`
}

func buildResultsView(ctx context.Context, board *leaderboard.Store, res sorting.Results) *resultsView {
	out := &resultsView{Results: res, Leaderboard: []leaderboard.Entry{}}
	if board != nil {
		out.Leaderboard = board.Load(ctx)
	}
	return out
}

// buildGameResponse attaches results only when they belong to the game the view shows.
func buildGameResponse(ctx context.Context, engine *sorting.Engine, board *leaderboard.Store, view sorting.View) gameResponse {
	resp := gameResponse{Game: view}
	if view.Phase != sorting.PhaseCompleted {
		return resp
	}
	if res, ok := engine.Results(); ok && res.SessionID == view.SessionID {
		resp.Results = buildResultsView(ctx, board, res)
	}
	return resp
}
