package domain

import "testing"

func TestCatalogPartitionsIntoHalfSuits(t *testing.T) {
	cards := AllCards()
	if len(cards) != DeckSize {
		t.Fatalf("catalog has %d cards, want %d", len(cards), DeckSize)
	}

	seen := make(map[string]bool, DeckSize)
	counts := make(map[HalfSuitID]int, NumHalfSuits)
	for _, c := range cards {
		id := c.ID()
		if seen[id] {
			t.Fatalf("duplicate card id %q", id)
		}
		seen[id] = true
		counts[c.HalfSuit()]++
	}
	for hs := HalfSuitID(0); hs < NumHalfSuits; hs++ {
		if counts[hs] != HalfSuitSize {
			t.Errorf("half suit %s has %d cards, want %d", hs.Name(), counts[hs], HalfSuitSize)
		}
	}
}

func TestCardIDRoundTrip(t *testing.T) {
	for _, c := range AllCards() {
		got, ok := CardByID(c.ID())
		if !ok || got != c {
			t.Errorf("CardByID(%q) = %v, %v", c.ID(), got, ok)
		}
	}
	if _, ok := CardByID("1Z"); ok {
		t.Error("CardByID accepted a bogus id")
	}
	if _, ok := CardByID(""); ok {
		t.Error("CardByID accepted an empty id")
	}
}

func TestHalfSuitOf(t *testing.T) {
	cases := []struct {
		rank Rank
		suit Suit
		want HalfSuitID
	}{
		{RankTwo, SuitSpades, SpadesLow},
		{RankSeven, SuitSpades, SpadesLow},
		{RankNine, SuitSpades, SpadesHigh},
		{RankAce, SuitClubs, ClubsHigh},
		{RankThree, SuitHearts, HeartsLow},
		{RankKing, SuitDiamonds, DiamondsHigh},
		{RankEight, SuitHearts, EightsAndJokers},
		{RankJoker, SuitJoker, EightsAndJokers},
		{RankCut, SuitJoker, EightsAndJokers},
	}
	for _, tc := range cases {
		got, ok := HalfSuitOf(tc.rank, tc.suit)
		if !ok || got != tc.want {
			t.Errorf("HalfSuitOf(%s, %s) = %v, %v; want %v", tc.rank, tc.suit, got, ok, tc.want)
		}
	}
}

func TestHalfSuitOfRejectsMalformed(t *testing.T) {
	bad := []struct {
		rank Rank
		suit Suit
	}{
		{RankEight, SuitJoker},
		{RankJoker, SuitSpades},
		{RankCut, SuitHearts},
		{Rank("1"), SuitSpades},
		{RankTwo, Suit("Stars")},
	}
	for _, tc := range bad {
		if _, ok := HalfSuitOf(tc.rank, tc.suit); ok {
			t.Errorf("HalfSuitOf(%s, %s) accepted a malformed card", tc.rank, tc.suit)
		}
	}
}

func TestJokerIDs(t *testing.T) {
	if id := (Card{RankJoker, SuitJoker}).ID(); id != "JokerJ" {
		t.Errorf("joker id = %q, want JokerJ", id)
	}
	if id := (Card{RankCut, SuitJoker}).ID(); id != "CutJ" {
		t.Errorf("cut id = %q, want CutJ", id)
	}
	if id := (Card{RankTen, SuitHearts}).ID(); id != "10H" {
		t.Errorf("ten of hearts id = %q, want 10H", id)
	}
}

func TestHalfSuitCardIDsMatchMembership(t *testing.T) {
	for hs := HalfSuitID(0); hs < NumHalfSuits; hs++ {
		ids := HalfSuitCardIDs(hs)
		if len(ids) != HalfSuitSize {
			t.Fatalf("half suit %s lists %d ids", hs.Name(), len(ids))
		}
		for _, id := range ids {
			c, ok := CardByID(id)
			if !ok || c.HalfSuit() != hs {
				t.Errorf("id %q listed under %s but belongs to %v", id, hs.Name(), c.HalfSuit())
			}
		}
	}
}
