package sorting

import "math"

// Accuracy is the percentage of correct moves, 0 when no move was made.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func Passed(accuracy float64) bool {
	return accuracy >= PassThreshold
}

// Score is round(accuracy * 1000 / seconds) for a passing run and 0 otherwise.
// Sub-millisecond sessions are floored to 1ms.
func Score(accuracy float64, totalTimeMs int64) int64 {
	if !Passed(accuracy) {
		return 0
	}
	if totalTimeMs < 1 {
		totalTimeMs = 1
	}
	return int64(math.Round(accuracy * scoreScale / float64(totalTimeMs)))
}

// Results is the end-of-game evaluation.
type Results struct {
	SessionID     string  `json:"session_id"`
	PlayerName    string  `json:"player_name"`
	Passed        bool    `json:"passed"`
	Score         int64   `json:"score"`
	Accuracy      float64 `json:"accuracy"`
	CorrectMoves  int     `json:"correct_moves"`
	TotalMoves    int     `json:"total_moves"`
	TotalTimeMs   int64   `json:"total_time_ms"`
	AverageTimeMs float64 `json:"average_time_ms"`
	WrongMoves    []Move  `json:"wrong_moves"`
}

// Evaluate derives results from a completed state.
func Evaluate(s State) Results {
	acc := Accuracy(s.CorrectMoves, s.TotalMoves)
	return Results{
		SessionID:     s.SessionID,
		PlayerName:    s.PlayerName,
		Passed:        Passed(acc),
		Score:         Score(acc, s.Timing.TotalTimeMs),
		Accuracy:      acc,
		CorrectMoves:  s.CorrectMoves,
		TotalMoves:    s.TotalMoves,
		TotalTimeMs:   s.Timing.TotalTimeMs,
		AverageTimeMs: s.Timing.AverageMs(),
		WrongMoves:    append([]Move{}, s.WrongMoves...),
	}
}
