package domain

import "math/rand"

// Suit represents a card suit
type Suit string

const (
	SuitSpades   Suit = "spades"
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
)

var suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Card is a single card drawn from an infinite shoe.
// Point carries the baccarat value: 0 for ten and face cards, 1 for ace,
// otherwise the face value.
type Card struct {
	Suit  Suit `json:"suit"`
	Rank  int  `json:"rank"` // 1 (ace) .. 13 (king)
	Point int  `json:"point"`
}

// PointValue returns the baccarat point value for a rank
func PointValue(rank int) int {
	if rank >= 10 {
		return 0
	}
	return rank
}

// DrawCard draws a uniformly random card
func DrawCard(rnd *rand.Rand) Card {
	rank := rnd.Intn(13) + 1
	return Card{
		Suit:  suits[rnd.Intn(len(suits))],
		Rank:  rank,
		Point: PointValue(rank),
	}
}

// Cards is an ordered sequence of cards as dealt
type Cards []Card

// Score returns the hand total mod 10
func (c Cards) Score() int {
	sum := 0
	for _, card := range c {
		sum += card.Point
	}
	return sum % 10
}

// HasPair reports whether the first two cards share a rank
func (c Cards) HasPair() bool {
	return len(c) >= 2 && c[0].Rank == c[1].Rank
}
