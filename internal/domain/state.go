package domain

import (
	"fmt"
	"sort"
)

// Phase represents the lifecycle stage of a Half Suit game.
type Phase string

const (
	// PhaseLobby is the pre-game state where seats fill up.
	PhaseLobby Phase = "lobby"
	// PhaseAwaitingAction accepts asks and claim declarations.
	PhaseAwaitingAction Phase = "awaiting_action"
	// PhaseClaimPending is the contested-claim negotiation window.
	PhaseClaimPending Phase = "claim_pending"
	// PhaseFinished is terminal; all nine half suits are resolved.
	PhaseFinished Phase = "finished"
)

// TeamID identifies one of the two teams.
type TeamID int

const (
	Team0 TeamID = 0
	Team1 TeamID = 1
)

// Opponent returns the other team.
func (t TeamID) Opponent() TeamID {
	return 1 - t
}

// Player holds the in-game state for one participant. The hand is a set of
// card ids; a card id is in at most one player's hand at any time.
type Player struct {
	UserID string
	Seat   int
	Team   TeamID
	Hand   map[string]Card
}

// HasCard reports whether the player holds the card with the given id.
func (p *Player) HasCard(cardID string) bool {
	_, ok := p.Hand[cardID]
	return ok
}

// HasHalfSuit reports whether the player holds at least one card of hs.
func (p *Player) HasHalfSuit(hs HalfSuitID) bool {
	for _, c := range p.Hand {
		if c.HalfSuit() == hs {
			return true
		}
	}
	return false
}

// CardCount returns the number of cards in the player's hand.
func (p *Player) CardCount() int {
	return len(p.Hand)
}

// Cards returns the hand sorted by card id for stable presentation.
func (p *Player) Cards() []Card {
	out := make([]Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Team groups three players and their score.
type Team struct {
	ID      TeamID
	Players []string
	Score   int
}

// HalfSuitState tracks the resolution of one half suit. Membership is fixed
// by the catalog; only the resolution fields mutate, and only once.
type HalfSuitState struct {
	Resolved  bool
	WonBy     TeamID
	ClaimedBy string
}

// PendingClaim is present only while a claim-for-opponent negotiation is
// open. Passed grows monotonically and only holds non-claiming-team members.
type PendingClaim struct {
	ClaimantID   string
	ClaimantTeam TeamID
	HalfSuit     HalfSuitID
	Passed       map[string]bool
	Resolved     bool
}

// AllPassed reports whether every member of the non-claiming roster passed.
func (pc *PendingClaim) AllPassed() bool {
	return len(pc.Passed) == PlayersPerTeam
}

// AskRecord is an immutable public log entry for one ask.
type AskRecord struct {
	Turn       int
	Asker      string
	Respondent string
	CardID     string
	Success    bool
}

// ClaimOutcome labels how a claim resolved in the public record.
type ClaimOutcome string

const (
	OutcomeOwnTeamCorrect   ClaimOutcome = "own_team_correct"
	OutcomeOwnTeamIncorrect ClaimOutcome = "own_team_incorrect"
	OutcomeSplitAutoFail    ClaimOutcome = "split_auto_incorrect"
	OutcomeCounterCorrect   ClaimOutcome = "counter_correct"
	OutcomeCounterIncorrect ClaimOutcome = "counter_incorrect"
	OutcomeUnopposedCorrect ClaimOutcome = "unopposed_correct"
	OutcomeUnopposedWrong   ClaimOutcome = "unopposed_incorrect"
)

// ClaimRecord is an immutable public log entry for one resolved claim.
type ClaimRecord struct {
	Turn     int
	Claimant string
	Team     TeamID
	HalfSuit HalfSuitID
	Outcome  ClaimOutcome
	WonBy    TeamID
}

// Game is the authoritative session aggregate. All actions against one game
// are applied serially by the match loop; the aggregate itself has no locks.
type Game struct {
	Phase   Phase
	Players map[string]*Player
	Seats   [PlayersPerGame]string
	Teams   [2]*Team

	HalfSuits [NumHalfSuits]HalfSuitState
	Pending   *PendingClaim

	Asks   []AskRecord
	Claims []ClaimRecord

	CurrentTeam   TeamID
	CurrentPlayer string
	TurnCount     int

	// Stake is the per-player wager resolved at game start.
	Stake int64
}

// PlayerBySeat returns the player seated at the given index, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	if seat < 0 || seat >= len(g.Seats) || g.Seats[seat] == "" {
		return nil
	}
	return g.Players[g.Seats[seat]]
}

// LowestSeatedEligible returns the lowest-seated member of team holding at
// least one card, falling back to the lowest-seated member when the whole
// team is out of cards (a cardless player may still claim).
func (g *Game) LowestSeatedEligible(team TeamID) string {
	fallback := ""
	for seat := 0; seat < len(g.Seats); seat++ {
		p := g.PlayerBySeat(seat)
		if p == nil || p.Team != team {
			continue
		}
		if p.CardCount() > 0 {
			return p.UserID
		}
		if fallback == "" {
			fallback = p.UserID
		}
	}
	return fallback
}

// ResolvedCount returns how many half suits have been resolved.
func (g *Game) ResolvedCount() int {
	n := 0
	for _, hs := range g.HalfSuits {
		if hs.Resolved {
			n++
		}
	}
	return n
}

// TrueHolders maps each card id of hs to the user currently holding it.
// Cards of resolved half suits are held by nobody and are absent.
func (g *Game) TrueHolders(hs HalfSuitID) map[string]string {
	holders := make(map[string]string, HalfSuitSize)
	for _, cardID := range HalfSuitCardIDs(hs) {
		for _, p := range g.Players {
			if p.HasCard(cardID) {
				holders[cardID] = p.UserID
				break
			}
		}
	}
	return holders
}

// ValidAssignment reports whether assignment covers exactly the 6 cards of hs
// and names only members of the given team.
func (g *Game) ValidAssignment(assignment map[string]string, hs HalfSuitID, team TeamID) bool {
	if len(assignment) != HalfSuitSize {
		return false
	}
	for cardID, userID := range assignment {
		card, ok := CardByID(cardID)
		if !ok || card.HalfSuit() != hs {
			return false
		}
		p, ok := g.Players[userID]
		if !ok || p.Team != team {
			return false
		}
	}
	return true
}

// AssignmentCorrect reports whether every card in assignment is truly held by
// the named player.
func (g *Game) AssignmentCorrect(assignment map[string]string) bool {
	for cardID, userID := range assignment {
		p, ok := g.Players[userID]
		if !ok || !p.HasCard(cardID) {
			return false
		}
	}
	return true
}

// TeamHoldsAll reports whether every unresolved card of hs is held by a
// member of team.
func (g *Game) TeamHoldsAll(hs HalfSuitID, team TeamID) bool {
	for _, cardID := range HalfSuitCardIDs(hs) {
		held := false
		for _, p := range g.Players {
			if p.HasCard(cardID) {
				held = p.Team == team
				break
			}
		}
		if !held {
			return false
		}
	}
	return true
}

// RemoveHalfSuit takes every card of hs out of all hands after resolution.
// Returns the user ids whose hands changed.
func (g *Game) RemoveHalfSuit(hs HalfSuitID) []string {
	touched := make([]string, 0, PlayersPerGame)
	for _, cardID := range HalfSuitCardIDs(hs) {
		for _, p := range g.Players {
			if p.HasCard(cardID) {
				delete(p.Hand, cardID)
				touched = appendUnique(touched, p.UserID)
				break
			}
		}
	}
	sort.Strings(touched)
	return touched
}

// CheckConservation verifies the closed-system invariant: every one of the
// 54 cards is either in exactly one hand or part of a resolved half suit.
// A non-nil error means the aggregate is corrupt and the session must halt.
func (g *Game) CheckConservation() error {
	for _, card := range AllCards() {
		id := card.ID()
		holders := 0
		for _, p := range g.Players {
			if p.HasCard(id) {
				holders++
			}
		}
		resolved := g.HalfSuits[card.HalfSuit()].Resolved
		switch {
		case resolved && holders != 0:
			return fmt.Errorf("card %s held after its half suit resolved", id)
		case !resolved && holders != 1:
			return fmt.Errorf("card %s held by %d players", id, holders)
		}
	}
	return nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
