package bot

import (
	"math/rand"
	"testing"

	"halfsuit/internal/domain"
)

func TestSmartBotAsksProvenHolder(t *testing.T) {
	g := newBotGame(t, 21)
	// u0 holds part of spades-low, u1 provably took "2S" in a public ask.
	moveHalfSuitTo(t, g, domain.SpadesLow, "u0", "u1")
	cardID := ""
	for _, id := range domain.HalfSuitCardIDs(domain.SpadesLow) {
		if g.Players["u1"].HasCard(id) {
			cardID = id
			break
		}
	}
	g.Asks = append(g.Asks, domain.AskRecord{Turn: 1, Asker: "u1", Respondent: "u2", CardID: cardID, Success: true})

	brain := &SmartBot{rng: rand.New(rand.NewSource(22))}
	action, err := brain.PlanAction(g, g.Players["u0"])
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionAsk {
		t.Fatalf("action = %+v, want ask", action)
	}
	if action.Respondent != "u1" || action.CardID != cardID {
		t.Fatalf("asked %q for %q, want u1 for %q", action.Respondent, action.CardID, cardID)
	}
}

func TestSmartBotClaimsProvableHalfSuit(t *testing.T) {
	g := newBotGame(t, 23)
	// Distribute diamonds-high across the bot's team and publish transfers
	// proving where the teammates' cards sit.
	moveHalfSuitTo(t, g, domain.DiamondsHigh, "u0", "u2", "u4")
	turn := 0
	for _, id := range domain.HalfSuitCardIDs(domain.DiamondsHigh) {
		for _, teammate := range []string{"u2", "u4"} {
			if g.Players[teammate].HasCard(id) {
				turn++
				g.Asks = append(g.Asks, domain.AskRecord{Turn: turn, Asker: teammate, Respondent: "u1", CardID: id, Success: true})
			}
		}
	}

	brain := &SmartBot{rng: rand.New(rand.NewSource(24))}
	action, err := brain.PlanAction(g, g.Players["u0"])
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionClaim || action.HalfSuit != domain.DiamondsHigh {
		t.Fatalf("action = %+v, want claim of diamonds-high", action)
	}
	if !g.AssignmentCorrect(action.Assignment) {
		t.Fatal("provable claim produced a wrong assignment")
	}
}

func TestSmartBotCountersWithProof(t *testing.T) {
	g := newBotGame(t, 25)
	moveHalfSuitTo(t, g, domain.HeartsHigh, "u1", "u3", "u5")
	turn := 0
	for _, id := range domain.HalfSuitCardIDs(domain.HeartsHigh) {
		for _, teammate := range []string{"u3", "u5"} {
			if g.Players[teammate].HasCard(id) {
				turn++
				g.Asks = append(g.Asks, domain.AskRecord{Turn: turn, Asker: teammate, Respondent: "u0", CardID: id, Success: true})
			}
		}
	}
	g.Phase = domain.PhaseClaimPending
	g.Pending = &domain.PendingClaim{
		ClaimantID:   "u0",
		ClaimantTeam: domain.Team0,
		HalfSuit:     domain.HeartsHigh,
		Passed:       map[string]bool{},
	}

	brain := &SmartBot{rng: rand.New(rand.NewSource(26))}
	action, err := brain.PlanAction(g, g.Players["u1"])
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionCounterClaim {
		t.Fatalf("action = %+v, want counter-claim", action)
	}
	if !g.AssignmentCorrect(action.Assignment) {
		t.Fatal("counter with proof produced a wrong assignment")
	}
}

func TestSmartBotPassesWithoutProof(t *testing.T) {
	g := newBotGame(t, 27)
	g.Phase = domain.PhaseClaimPending
	g.Pending = &domain.PendingClaim{
		ClaimantID:   "u0",
		ClaimantTeam: domain.Team0,
		HalfSuit:     domain.ClubsLow,
		Passed:       map[string]bool{},
	}

	brain := &SmartBot{rng: rand.New(rand.NewSource(28))}
	action, err := brain.PlanAction(g, g.Players["u3"])
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionPassCounterClaim {
		t.Fatalf("action = %+v, want pass", action)
	}
}
