package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	RanksPerSuit = 3
	DecoyCount   = 3
	DeckSize     = RanksPerSuit*4 + DecoyCount
)

// Source picks a uniform index in [0, n). Tests inject a seeded source.
type Source interface {
	IntN(n int) int
}

// CryptoSource draws from crypto/rand, falling back to a time-seeded LCG if the
// system reader fails.
type CryptoSource struct {
	seed int64
}

func (s *CryptoSource) IntN(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err == nil {
		return int(nBig.Int64())
	}
	// fallback: predictable, used only if crypto/rand fails
	if s.seed == 0 {
		s.seed = time.Now().UnixNano()
	}
	s.seed = (s.seed*6364136223846793005 + 1) & 0x7fffffffffffffff
	return int(s.seed % int64(n))
}

// NewDeck builds the 15-card sorting deck: the first three ranks of every suit
// plus three decoys, shuffled with src (crypto-backed when nil).
func NewDeck(src Source) []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks[:RanksPerSuit] {
			deck = append(deck, Card{
				ID:       fmt.Sprintf("%s-%s", s, r),
				Category: s,
				Value:    r,
				Color:    SuitColor(s),
				Valid:    true,
			})
		}
	}
	for i := 0; i < DecoyCount; i++ {
		deck = append(deck, Card{
			ID:       fmt.Sprintf("%s-%d", Invalid, i),
			Category: Invalid,
			Value:    DecoySymbols[i],
			Color:    Purple,
			Valid:    false,
		})
	}
	if src == nil {
		src = &CryptoSource{}
	}
	Shuffle(deck, src)
	return deck
}

// Shuffle is an in-place Fisher–Yates shuffle.
func Shuffle(cards []Card, src Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
