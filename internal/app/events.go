package app

import "halfsuit/internal/domain"

// EventKind identifies emitted game events for dispatch.
type EventKind string

const (
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventHandUpdated    EventKind = "hand_updated"
	EventAskResolved    EventKind = "ask_resolved"
	EventClaimDeclared  EventKind = "claim_declared"
	EventClaimPassed    EventKind = "claim_passed"
	EventClaimResolved  EventKind = "claim_resolved"
	EventPlayerSelected EventKind = "player_selected"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a game event with optional targeted recipients.
// Empty Recipients means broadcast to every player. Hand payloads are always
// targeted; no broadcast event ever carries hand contents.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string
}

type GameStartedPayload struct {
	FirstTeam   domain.TeamID
	FirstPlayer string
	Seats       [domain.PlayersPerGame]string
	Stake       int64
}

type HandDealtPayload struct {
	UserID string
	Hand   []domain.Card
}

// HandUpdatedPayload refreshes one player's private hand after a transfer or
// half-suit resolution.
type HandUpdatedPayload struct {
	UserID string
	Hand   []domain.Card
}

type AskResolvedPayload struct {
	Record     domain.AskRecord
	NextTeam   domain.TeamID
	NextPlayer string
}

type ClaimDeclaredPayload struct {
	Claimant string
	Team     domain.TeamID
	HalfSuit domain.HalfSuitID
}

type ClaimPassedPayload struct {
	UserID    string
	HalfSuit  domain.HalfSuitID
	AllPassed bool
}

type ClaimResolvedPayload struct {
	Record     domain.ClaimRecord
	Scores     [2]int
	NextTeam   domain.TeamID
	NextPlayer string
}

type PlayerSelectedPayload struct {
	UserID string
	Team   domain.TeamID
}

type GameEndedPayload struct {
	Scores      [2]int
	WinningTeam domain.TeamID
	// BalanceChanges holds pre-tax stake movements per user id.
	BalanceChanges map[string]int64
}
