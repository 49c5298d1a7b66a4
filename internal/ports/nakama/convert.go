package nakama

import (
	"halfsuit/internal/domain"
)

func toWireCards(cards []domain.Card) []WireCard {
	out := make([]WireCard, len(cards))
	for i, c := range cards {
		out[i] = toWireCard(c)
	}
	return out
}

func toWireCard(c domain.Card) WireCard {
	return WireCard{
		ID:   c.ID(),
		Rank: string(c.Rank),
		Suit: string(c.Suit),
	}
}

func toHalfSuitInfos(game *domain.Game) []HalfSuitInfo {
	out := make([]HalfSuitInfo, domain.NumHalfSuits)
	for hs := domain.HalfSuitID(0); hs < domain.NumHalfSuits; hs++ {
		st := game.HalfSuits[hs]
		out[hs] = HalfSuitInfo{
			ID:        int(hs),
			Name:      hs.Name(),
			Resolved:  st.Resolved,
			WonBy:     int(st.WonBy),
			ClaimedBy: st.ClaimedBy,
		}
	}
	return out
}
