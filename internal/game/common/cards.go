package common

import (
	"fmt"
	"strings"
)

// Category is the pile a card belongs to: one of the four suits or the decoy pile.
type Category string

const (
	Hearts   Category = "hearts"
	Diamonds Category = "diamonds"
	Clubs    Category = "clubs"
	Spades   Category = "spades"
	Invalid  Category = "invalid"
)

type Color string

const (
	Red    Color = "red"
	Black  Color = "black"
	Purple Color = "purple"
)

// Suits is the fixed suit order used when building a deck.
var Suits = []Category{Hearts, Diamonds, Clubs, Spades}

// Categories lists every pile, suits first.
var Categories = []Category{Hearts, Diamonds, Clubs, Spades, Invalid}

// Ranks is the fixed 13-rank ordering; only a prefix of it is dealt.
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// DecoySymbols is the alphabet invalid cards draw their face from.
var DecoySymbols = []string{"★", "◆", "●", "▲", "◊", "※"}

type Card struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Value    string   `json:"value"`
	Color    Color    `json:"color"`
	Valid    bool     `json:"valid"`
}

func (c Card) String() string {
	if !c.Valid {
		return c.Value
	}
	return c.Value + c.Category.Symbol()
}

// Symbol returns the printable suit glyph. Decoys carry their own symbol in Value.
func (cat Category) Symbol() string {
	switch cat {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "★"
	}
}

// SuitColor returns the display color of a category.
func SuitColor(cat Category) Color {
	switch cat {
	case Hearts, Diamonds:
		return Red
	case Clubs, Spades:
		return Black
	default:
		return Purple
	}
}

// ParseCategory accepts a pile name from the host UI.
func ParseCategory(s string) (Category, error) {
	cat := Category(strings.ToLower(strings.TrimSpace(s)))
	switch cat {
	case Hearts, Diamonds, Clubs, Spades, Invalid:
		return cat, nil
	default:
		return "", fmt.Errorf("invalid category %q", s)
	}
}
