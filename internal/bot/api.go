package bot

import (
	"halfsuit/internal/domain"
)

// ActionKind enumerates the moves a bot can submit to the match loop.
type ActionKind int

const (
	// ActionNone means the bot has nothing to do right now.
	ActionNone ActionKind = iota
	ActionAsk
	ActionClaim
	ActionClaimForOpponent
	ActionPassCounterClaim
	ActionCounterClaim
	ActionFinalizeUnopposed
)

// Action is the decision made by the AI for one tick.
type Action struct {
	Kind       ActionKind
	Respondent string
	CardID     string
	HalfSuit   domain.HalfSuitID
	Assignment map[string]string
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	PlanAction(game *domain.Game, player *domain.Player) (Action, error)
}
