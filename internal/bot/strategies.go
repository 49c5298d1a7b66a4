package bot

import (
	"math/rand"
	"time"

	"halfsuit/internal/domain"
)

// StandardBot plays legal moves with no deduction beyond its own hand. It
// claims only half suits it holds entirely itself and otherwise asks for a
// random card it could plausibly want.
type StandardBot struct {
	rng *rand.Rand
}

func (b *StandardBot) PlanAction(game *domain.Game, player *domain.Player) (Action, error) {
	if player == nil {
		return Action{Kind: ActionNone}, nil
	}

	switch game.Phase {
	case domain.PhaseClaimPending:
		return b.planNegotiation(game, player)
	case domain.PhaseAwaitingAction:
	default:
		return Action{Kind: ActionNone}, nil
	}

	// Claim any half suit fully in hand. Always correct, so always safe.
	for hs := domain.HalfSuitID(0); hs < domain.NumHalfSuits; hs++ {
		if game.HalfSuits[hs].Resolved {
			continue
		}
		if holdsEntireHalfSuit(player, hs) {
			assignment := make(map[string]string, domain.HalfSuitSize)
			for _, cardID := range domain.HalfSuitCardIDs(hs) {
				assignment[cardID] = player.UserID
			}
			return Action{Kind: ActionClaim, HalfSuit: hs, Assignment: assignment}, nil
		}
	}

	if game.CurrentPlayer != player.UserID {
		return Action{Kind: ActionNone}, nil
	}
	if ask, ok := randomLegalAsk(b.rand(), game, player); ok {
		return ask, nil
	}
	return b.forcedClaim(game, player), nil
}

func (b *StandardBot) planNegotiation(game *domain.Game, player *domain.Player) (Action, error) {
	pending := game.Pending
	if pending == nil {
		return Action{Kind: ActionNone}, nil
	}
	if player.Team != pending.ClaimantTeam {
		if pending.Passed[player.UserID] {
			return Action{Kind: ActionNone}, nil
		}
		return Action{Kind: ActionPassCounterClaim}, nil
	}
	if pending.ClaimantID == player.UserID && pending.AllPassed() {
		opposing := pending.ClaimantTeam.Opponent()
		assignment := guessAssignment(b.rand(), game, pending.HalfSuit, opposing, nil)
		return Action{Kind: ActionFinalizeUnopposed, HalfSuit: pending.HalfSuit, Assignment: assignment}, nil
	}
	return Action{Kind: ActionNone}, nil
}

// forcedClaim covers the corner where no legal ask exists, usually because
// the bot's remaining cards complete their half suits. A claim is the only
// way to keep the game moving.
func (b *StandardBot) forcedClaim(game *domain.Game, player *domain.Player) Action {
	for hs := domain.HalfSuitID(0); hs < domain.NumHalfSuits; hs++ {
		if game.HalfSuits[hs].Resolved || !player.HasHalfSuit(hs) {
			continue
		}
		known := map[string]string{}
		for _, cardID := range domain.HalfSuitCardIDs(hs) {
			if player.HasCard(cardID) {
				known[cardID] = player.UserID
			}
		}
		assignment := guessAssignment(b.rand(), game, hs, player.Team, known)
		return Action{Kind: ActionClaim, HalfSuit: hs, Assignment: assignment}
	}
	// Out of cards entirely: declare the first open half suit for the
	// opponents and let the table sort it out.
	for hs := domain.HalfSuitID(0); hs < domain.NumHalfSuits; hs++ {
		if !game.HalfSuits[hs].Resolved {
			return Action{Kind: ActionClaimForOpponent, HalfSuit: hs}
		}
	}
	return Action{Kind: ActionNone}
}

func (b *StandardBot) rand() *rand.Rand {
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return b.rng
}

func holdsEntireHalfSuit(player *domain.Player, hs domain.HalfSuitID) bool {
	for _, cardID := range domain.HalfSuitCardIDs(hs) {
		if !player.HasCard(cardID) {
			return false
		}
	}
	return true
}

// randomLegalAsk picks a uniformly random ask that passes every rule: an
// unresolved half suit the player holds a card of, a card of it the player
// does not hold, and a random opponent.
func randomLegalAsk(rng *rand.Rand, game *domain.Game, player *domain.Player) (Action, bool) {
	if player.CardCount() == 0 {
		return Action{}, false
	}

	var candidates []Action
	opponents := opposingPlayers(game, player.Team)
	if len(opponents) == 0 {
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
			candidates = append(candidates, Action{
				Kind:       ActionAsk,
				Respondent: opponents[rng.Intn(len(opponents))],
				CardID:     cardID,
			})
		}
	}
	if len(candidates) == 0 {
		return Action{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

func opposingPlayers(game *domain.Game, team domain.TeamID) []string {
	var out []string
	for seat := 0; seat < len(game.Seats); seat++ {
		p := game.PlayerBySeat(seat)
		if p != nil && p.Team != team {
			out = append(out, p.UserID)
		}
	}
	return out
}

// guessAssignment distributes the cards of hs over the members of team,
// honoring known holder facts and spreading the rest randomly.
func guessAssignment(rng *rand.Rand, game *domain.Game, hs domain.HalfSuitID, team domain.TeamID, known map[string]string) map[string]string {
	var members []string
	for seat := 0; seat < len(game.Seats); seat++ {
		p := game.PlayerBySeat(seat)
		if p != nil && p.Team == team {
			members = append(members, p.UserID)
		}
	}
	assignment := make(map[string]string, domain.HalfSuitSize)
	for _, cardID := range domain.HalfSuitCardIDs(hs) {
		if userID, ok := known[cardID]; ok {
			assignment[cardID] = userID
			continue
		}
		assignment[cardID] = members[rng.Intn(len(members))]
	}
	return assignment
}
