package bot

import (
	"math/rand"
	"time"

	"halfsuit/internal/domain"
)

// SmartBot replays the public ask log to track proven card locations and
// acts on them: it claims half suits it can fully place on its own team,
// counters claims it can disprove, and aims asks at cards it knows an
// opponent holds.
type SmartBot struct {
	rng *rand.Rand
}

func (b *SmartBot) PlanAction(game *domain.Game, player *domain.Player) (Action, error) {
	if player == nil {
		return Action{Kind: ActionNone}, nil
	}
	known := provenHolders(game, player)

	switch game.Phase {
	case domain.PhaseClaimPending:
		return b.planNegotiation(game, player, known)
	case domain.PhaseAwaitingAction:
	default:
		return Action{Kind: ActionNone}, nil
	}

	// Claim a half suit once every card is provably on the bot's team.
	if hs, assignment, ok := provableHalfSuit(game, player.Team, known); ok {
		return Action{Kind: ActionClaim, HalfSuit: hs, Assignment: assignment}, nil
	}

	if game.CurrentPlayer != player.UserID {
		return Action{Kind: ActionNone}, nil
	}

	// Prefer asks for cards a specific opponent is known to hold.
	if ask, ok := b.provenAsk(game, player, known); ok {
		return ask, nil
	}
	if ask, ok := randomLegalAsk(b.rand(), game, player); ok {
		return ask, nil
	}
	fallback := &StandardBot{rng: b.rand()}
	return fallback.forcedClaim(game, player), nil
}

func (b *SmartBot) planNegotiation(game *domain.Game, player *domain.Player, known map[string]string) (Action, error) {
	pending := game.Pending
	if pending == nil {
		return Action{Kind: ActionNone}, nil
	}
	if player.Team != pending.ClaimantTeam {
		if pending.Passed[player.UserID] {
			return Action{Kind: ActionNone}, nil
		}
		// Counter only with a complete proven placement on the bot's own
		// team; anything weaker is a coin flip against a confident claimant.
		if assignment, ok := completePlacement(game, pending.HalfSuit, player.Team, known); ok {
			return Action{Kind: ActionCounterClaim, HalfSuit: pending.HalfSuit, Assignment: assignment}, nil
		}
		return Action{Kind: ActionPassCounterClaim}, nil
	}
	if pending.ClaimantID == player.UserID && pending.AllPassed() {
		opposing := pending.ClaimantTeam.Opponent()
		assignment := guessAssignment(b.rand(), game, pending.HalfSuit, opposing, filterTeam(game, known, opposing))
		return Action{Kind: ActionFinalizeUnopposed, HalfSuit: pending.HalfSuit, Assignment: assignment}, nil
	}
	return Action{Kind: ActionNone}, nil
}

func (b *SmartBot) provenAsk(game *domain.Game, player *domain.Player, known map[string]string) (Action, bool) {
	if player.CardCount() == 0 {
		return Action{}, false
	}
	for hs := domain.HalfSuitID(0); hs < domain.NumHalfSuits; hs++ {
		if game.HalfSuits[hs].Resolved || !player.HasHalfSuit(hs) {
			continue
		}
		for _, cardID := range domain.HalfSuitCardIDs(hs) {
			if player.HasCard(cardID) {
				continue
			}
			holder, ok := known[cardID]
			if !ok {
				continue
			}
			p := game.Players[holder]
			if p == nil || p.Team == player.Team {
				continue
			}
			return Action{Kind: ActionAsk, Respondent: holder, CardID: cardID}, true
		}
	}
	return Action{}, false
}

func (b *SmartBot) rand() *rand.Rand {
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return b.rng
}

// provenHolders replays the public ask log in order. A successful ask proves
// the card moved to the asker and stays there until a later transfer or the
// half suit resolves. The bot's own hand needs no inference.
func provenHolders(game *domain.Game, player *domain.Player) map[string]string {
	known := make(map[string]string)
	for _, rec := range game.Asks {
		if rec.Success {
			known[rec.CardID] = rec.Asker
		}
	}
	for id := range known {
		card, ok := domain.CardByID(id)
		if !ok || game.HalfSuits[card.HalfSuit()].Resolved {
			delete(known, id)
		}
	}
	for id := range player.Hand {
		known[id] = player.UserID
	}
	// Drop facts invalidated by resolution ordering quirks: a proven holder
	// must still actually hold the card.
	for id, userID := range known {
		p := game.Players[userID]
		if p == nil || !p.HasCard(id) {
			delete(known, id)
		}
	}
	return known
}

// provableHalfSuit finds a half suit whose six cards are all proven to sit
// on the given team, together with the exact assignment.
func provableHalfSuit(game *domain.Game, team domain.TeamID, known map[string]string) (domain.HalfSuitID, map[string]string, bool) {
	for hs := domain.HalfSuitID(0); hs < domain.NumHalfSuits; hs++ {
		if game.HalfSuits[hs].Resolved {
			continue
		}
		if assignment, ok := completePlacement(game, hs, team, known); ok {
			return hs, assignment, true
		}
	}
	return 0, nil, false
}

func completePlacement(game *domain.Game, hs domain.HalfSuitID, team domain.TeamID, known map[string]string) (map[string]string, bool) {
	assignment := make(map[string]string, domain.HalfSuitSize)
	for _, cardID := range domain.HalfSuitCardIDs(hs) {
		holder, ok := known[cardID]
		if !ok {
			return nil, false
		}
		p := game.Players[holder]
		if p == nil || p.Team != team {
			return nil, false
		}
		assignment[cardID] = holder
	}
	return assignment, true
}

func filterTeam(game *domain.Game, known map[string]string, team domain.TeamID) map[string]string {
	out := make(map[string]string)
	for cardID, userID := range known {
		if p := game.Players[userID]; p != nil && p.Team == team {
			out[cardID] = userID
		}
	}
	return out
}
