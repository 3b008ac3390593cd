package sorting

import "card-sorting-go/internal/game/common"

// View is the client-facing state snapshot. Unlike State it never carries the
// deck order.
type View struct {
	SessionID        string                            `json:"session_id,omitempty"`
	PlayerName       string                            `json:"player_name"`
	Phase            Phase                             `json:"phase"`
	CurrentCard      *common.Card                      `json:"current_card,omitempty"`
	Skipped          []common.Card                     `json:"skipped"`
	Piles            map[common.Category][]common.Card `json:"piles"`
	SortedCount      int                               `json:"sorted_count"`
	DeckSize         int                               `json:"deck_size"`
	CorrectMoves     int                               `json:"correct_moves"`
	TotalMoves       int                               `json:"total_moves"`
	RunningAccuracy  float64                           `json:"running_accuracy"`
	RunningAverageMs float64                           `json:"running_average_ms"`
}

// NewView deep-copies what a client may see from s.
func NewView(s State) View {
	v := View{
		SessionID:        s.SessionID,
		PlayerName:       s.PlayerName,
		Phase:            s.Phase,
		Skipped:          s.Skipped(),
		Piles:            make(map[common.Category][]common.Card, len(common.Categories)),
		SortedCount:      s.SortedCount(),
		DeckSize:         len(s.Deck),
		CorrectMoves:     s.CorrectMoves,
		TotalMoves:       s.TotalMoves,
		RunningAccuracy:  Accuracy(s.CorrectMoves, s.TotalMoves),
		RunningAverageMs: s.Timing.AverageMs(),
	}
	for _, cat := range common.Categories {
		v.Piles[cat] = append([]common.Card{}, s.Piles[cat]...)
	}
	if c, ok := s.CurrentCard(); ok {
		v.CurrentCard = &c
	}
	return v
}
