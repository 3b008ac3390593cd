package sorting

import (
	"fmt"
	"strings"
	"time"

	"card-sorting-go/internal/game/common"
	"card-sorting-go/internal/models"
)

// State is an immutable snapshot of one sorting session. Transitions return a
// new State and never touch the receiver.
type State struct {
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	Phase      Phase  `json:"phase"`

	// Deck is never exposed to clients (views only show the cursor card and skipped cards).
	Deck         []common.Card `json:"deck"`
	CurrentIndex int           `json:"current_index"`

	Piles map[common.Category][]common.Card `json:"piles"`

	CorrectMoves int    `json:"correct_moves"`
	TotalMoves   int    `json:"total_moves"`
	Moves        []Move `json:"moves"`
	WrongMoves   []Move `json:"wrong_moves"`
	Timing       Timing `json:"timing"`
}

func NewState() State {
	return State{Phase: PhaseSetup, Piles: emptyPiles()}
}

func emptyPiles() map[common.Category][]common.Card {
	piles := make(map[common.Category][]common.Card, len(common.Categories))
	for _, c := range common.Categories {
		piles[c] = []common.Card{}
	}
	return piles
}

// Start deals a fresh deck for name. The name is trimmed; an empty name is
// refused and the receiver is returned unchanged.
func (s State) Start(name string, deck []common.Card, sessionID string, now time.Time) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, models.ErrEmptyPlayerName
	}
	return State{
		SessionID:  sessionID,
		PlayerName: name,
		Phase:      PhasePlaying,
		Deck:       append([]common.Card(nil), deck...),
		Piles:      emptyPiles(),
		Moves:      []Move{},
		WrongMoves: []Move{},
		Timing:     StartTiming(now),
	}, nil
}

// Restart deals a new game for the retained player name.
func (s State) Restart(deck []common.Card, sessionID string, now time.Time) (State, error) {
	return s.Start(s.PlayerName, deck, sessionID, now)
}

// Place drops the dealt card cardID on target. Wrong placements are accepted
// and recorded. The cursor moves forward by one unless it is on the last card.
func (s State) Place(cardID string, target common.Category, now time.Time) (State, Move, error) {
	if err := s.requirePlaying(); err != nil {
		return s, Move{}, err
	}
	if _, err := common.ParseCategory(string(target)); err != nil {
		return s, Move{}, fmt.Errorf("%w: %q", models.ErrInvalidCategory, target)
	}
	idx := s.indexOf(cardID)
	if idx < 0 || idx > s.CurrentIndex {
		return s, Move{}, fmt.Errorf("%w: %s", models.ErrCardNotDealt, cardID)
	}
	if s.isPlaced(cardID) {
		return s, Move{}, fmt.Errorf("%w: %s", models.ErrCardAlreadyPlaced, cardID)
	}

	card := s.Deck[idx]
	mv := Move{Card: card, Target: target, Correct: Classify(card, target), At: now}

	next := s.clone()
	next.Piles[target] = append(next.Piles[target], card)
	next.TotalMoves++
	next.Moves = append(next.Moves, mv)
	if mv.Correct {
		next.CorrectMoves++
	} else {
		next.WrongMoves = append(next.WrongMoves, mv)
	}
	next.Timing = next.Timing.Lap(now)
	if next.CurrentIndex < len(next.Deck)-1 {
		next.CurrentIndex++
	}
	return next, mv, nil
}

// ResolveCurrent places the card under the cursor.
func (s State) ResolveCurrent(target common.Category, now time.Time) (State, Move, error) {
	if err := s.requirePlaying(); err != nil {
		return s, Move{}, err
	}
	return s.Place(s.Deck[s.CurrentIndex].ID, target, now)
}

// Next shows the following card without resolving the current one. The skipped
// card stays droppable.
func (s State) Next() (State, error) {
	if err := s.requirePlaying(); err != nil {
		return s, err
	}
	if s.CurrentIndex >= len(s.Deck)-1 {
		return s, nil
	}
	next := s.clone()
	next.CurrentIndex++
	return next, nil
}

// IsComplete is the completion predicate: every dealt card sits in a pile while
// the game is still playing. It turns false again once Complete is applied.
func (s State) IsComplete() bool {
	return s.Phase == PhasePlaying && len(s.Deck) > 0 && s.SortedCount() == len(s.Deck)
}

// Complete moves a finished game to PhaseCompleted and stamps the total time.
func (s State) Complete(now time.Time) State {
	next := s.clone()
	next.Phase = PhaseCompleted
	next.Timing = next.Timing.Finish(now)
	return next
}

func (s State) SortedCount() int {
	n := 0
	for _, pile := range s.Piles {
		n += len(pile)
	}
	return n
}

// CurrentCard returns the card under the cursor, if any.
func (s State) CurrentCard() (common.Card, bool) {
	if s.Phase != PhasePlaying || s.CurrentIndex >= len(s.Deck) {
		return common.Card{}, false
	}
	c := s.Deck[s.CurrentIndex]
	if s.isPlaced(c.ID) {
		return common.Card{}, false
	}
	return c, true
}

// Skipped lists cards before the cursor that were passed over with Next and
// are still unplaced.
func (s State) Skipped() []common.Card {
	out := []common.Card{}
	for i := 0; i < s.CurrentIndex && i < len(s.Deck); i++ {
		if !s.isPlaced(s.Deck[i].ID) {
			out = append(out, s.Deck[i])
		}
	}
	return out
}

func (s State) requirePlaying() error {
	switch s.Phase {
	case PhasePlaying:
		return nil
	case PhaseCompleted:
		return models.ErrGameCompleted
	default:
		return models.ErrNotPlaying
	}
}

func (s State) indexOf(cardID string) int {
	for i, c := range s.Deck {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func (s State) isPlaced(cardID string) bool {
	for _, pile := range s.Piles {
		for _, c := range pile {
			if c.ID == cardID {
				return true
			}
		}
	}
	return false
}

func (s State) clone() State {
	out := s
	out.Deck = append([]common.Card(nil), s.Deck...)
	out.Piles = make(map[common.Category][]common.Card, len(s.Piles))
	for k, v := range s.Piles {
		out.Piles[k] = append([]common.Card{}, v...)
	}
	out.Moves = append([]Move{}, s.Moves...)
	out.WrongMoves = append([]Move{}, s.WrongMoves...)
	out.Timing = s.Timing.clone()
	return out
}
