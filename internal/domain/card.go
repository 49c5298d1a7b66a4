package domain

// Rank is a card rank in the 54-card Half Suit deck.
type Rank string

const (
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankAce   Rank = "A"
	// RankJoker is the black joker; only valid with SuitJoker.
	RankJoker Rank = "Joker"
	// RankCut is the red ("cut") joker; only valid with SuitJoker.
	RankCut Rank = "Cut"
)

// Suit is a card suit. SuitJoker is reserved for the two joker cards.
type Suit string

const (
	SuitSpades   Suit = "Spades"
	SuitHearts   Suit = "Hearts"
	SuitDiamonds Suit = "Diamonds"
	SuitClubs    Suit = "Clubs"
	SuitJoker    Suit = "Joker"
)

// HalfSuitID identifies one of the nine scoring groups.
type HalfSuitID int

const (
	SpadesLow HalfSuitID = iota
	SpadesHigh
	HeartsLow
	HeartsHigh
	DiamondsLow
	DiamondsHigh
	ClubsLow
	ClubsHigh
	// EightsAndJokers groups the four 8s with both jokers.
	EightsAndJokers
)

const (
	// NumHalfSuits is the number of scoring groups in a game.
	NumHalfSuits = 9
	// HalfSuitSize is the number of cards in every half suit.
	HalfSuitSize = 6
	// DeckSize is the full deck: 52 regular cards plus two jokers.
	DeckSize = 54
)

// Card is a single playing card. Immutable once created.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

var lowRanks = map[Rank]bool{
	RankTwo: true, RankThree: true, RankFour: true,
	RankFive: true, RankSix: true, RankSeven: true,
}

var highRanks = map[Rank]bool{
	RankNine: true, RankTen: true, RankJack: true,
	RankQueen: true, RankKing: true, RankAce: true,
}

var regularSuits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

var allRanks = []Rank{
	RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight,
	RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce,
}

// ValidCard reports whether the rank/suit pair names a card that exists in the deck.
func ValidCard(rank Rank, suit Suit) bool {
	if rank == RankJoker || rank == RankCut {
		return suit == SuitJoker
	}
	if suit == SuitJoker {
		return false
	}
	switch suit {
	case SuitSpades, SuitHearts, SuitDiamonds, SuitClubs:
	default:
		return false
	}
	return lowRanks[rank] || highRanks[rank] || rank == RankEight
}

// HalfSuitOf returns the half suit a card belongs to.
// The second return value is false for a malformed rank/suit pair.
func HalfSuitOf(rank Rank, suit Suit) (HalfSuitID, bool) {
	if !ValidCard(rank, suit) {
		return 0, false
	}
	if suit == SuitJoker || rank == RankEight {
		return EightsAndJokers, true
	}
	var low HalfSuitID
	switch suit {
	case SuitSpades:
		low = SpadesLow
	case SuitHearts:
		low = HeartsLow
	case SuitDiamonds:
		low = DiamondsLow
	case SuitClubs:
		low = ClubsLow
	}
	if lowRanks[rank] {
		return low, true
	}
	return low + 1, true
}

// HalfSuit returns the card's half suit. Panics on a malformed card, which
// cannot occur for cards obtained from the catalog.
func (c Card) HalfSuit() HalfSuitID {
	hs, ok := HalfSuitOf(c.Rank, c.Suit)
	if !ok {
		panic("malformed card: " + c.ID())
	}
	return hs
}

// ID returns the stable unique id for a card: the rank followed by the
// suit's initial, e.g. "10H", "JokerJ", "CutJ".
func (c Card) ID() string {
	return string(c.Rank) + string(c.Suit[0])
}

// CardByID resolves a card id back to a card. The second return value is
// false for ids that do not name a deck card.
func CardByID(id string) (Card, bool) {
	c, ok := cardsByID[id]
	return c, ok
}

// AllCards returns a fresh copy of the full 54-card catalog in a fixed order.
func AllCards() []Card {
	out := make([]Card, len(catalog))
	copy(out, catalog)
	return out
}

// HalfSuitCards returns the fixed ordered 6-card membership of a half suit.
func HalfSuitCards(hs HalfSuitID) []Card {
	out := make([]Card, len(halfSuitCards[hs]))
	copy(out, halfSuitCards[hs])
	return out
}

// HalfSuitCardIDs returns the 6 card ids of a half suit in fixed order.
func HalfSuitCardIDs(hs HalfSuitID) []string {
	cards := halfSuitCards[hs]
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID()
	}
	return out
}

// Valid reports whether hs is a real half suit id.
func (hs HalfSuitID) Valid() bool {
	return hs >= 0 && hs < NumHalfSuits
}

// Name returns a human-readable label for the half suit.
func (hs HalfSuitID) Name() string {
	switch hs {
	case SpadesLow:
		return "2-7 of Spades"
	case SpadesHigh:
		return "9-A of Spades"
	case HeartsLow:
		return "2-7 of Hearts"
	case HeartsHigh:
		return "9-A of Hearts"
	case DiamondsLow:
		return "2-7 of Diamonds"
	case DiamondsHigh:
		return "9-A of Diamonds"
	case ClubsLow:
		return "2-7 of Clubs"
	case ClubsHigh:
		return "9-A of Clubs"
	case EightsAndJokers:
		return "Eights and Jokers"
	}
	return "unknown"
}

var (
	catalog       []Card
	cardsByID     map[string]Card
	halfSuitCards [NumHalfSuits][]Card
)

func init() {
	catalog = make([]Card, 0, DeckSize)
	for _, rank := range allRanks {
		for _, suit := range regularSuits {
			catalog = append(catalog, Card{Rank: rank, Suit: suit})
		}
	}
	catalog = append(catalog, Card{Rank: RankJoker, Suit: SuitJoker})
	catalog = append(catalog, Card{Rank: RankCut, Suit: SuitJoker})

	cardsByID = make(map[string]Card, DeckSize)
	for _, c := range catalog {
		cardsByID[c.ID()] = c
		hs := c.HalfSuit()
		halfSuitCards[hs] = append(halfSuitCards[hs], c)
	}
}
