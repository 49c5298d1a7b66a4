package domain

import "math/rand"

const (
	// PlayersPerGame is the fixed player count for Half Suit.
	PlayersPerGame = 6
	// CardsPerPlayer is the opening hand size (54 / 6).
	CardsPerPlayer = DeckSize / PlayersPerGame
	// PlayersPerTeam is the fixed roster size of each team.
	PlayersPerTeam = PlayersPerGame / 2
)

// NewDeck returns the full 54-card deck in catalog order.
func NewDeck() []Card {
	return AllCards()
}

// ShuffleDeck returns a shuffled copy of the given deck using the provided
// random source.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealHands splits a 54-card deck into 6 consecutive 9-card hands in seat
// order.
func DealHands(deck []Card) [PlayersPerGame][]Card {
	var hands [PlayersPerGame][]Card
	for seat := 0; seat < PlayersPerGame; seat++ {
		start := seat * CardsPerPlayer
		hands[seat] = append([]Card{}, deck[start:start+CardsPerPlayer]...)
	}
	return hands
}

// TeamForSeat assigns teams by seating parity: even seats on team 0, odd on
// team 1.
func TeamForSeat(seat int) TeamID {
	return TeamID(seat % 2)
}
