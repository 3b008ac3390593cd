package sorting

import (
	"time"

	"card-sorting-go/internal/game/common"
)

// Move records a single drop. Moves are never edited once appended.
type Move struct {
	Card    common.Card     `json:"card"`
	Target  common.Category `json:"target"`
	Correct bool            `json:"correct"`
	At      time.Time       `json:"timestamp"`
}

// Classify reports whether dropping card on target is a correct move.
// Decoys are only correct on the invalid pile; suited cards only on their own suit.
func Classify(card common.Card, target common.Category) bool {
	if !card.Valid {
		return target == common.Invalid
	}
	return card.Category == target
}
