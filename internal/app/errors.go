package app

import "errors"

// Precondition violations: wrong state, wrong actor, malformed input.
// State is never touched and no log entry is written.
var (
	ErrNotInLobby         = errors.New("game not in lobby")
	ErrInvalidPlayerCount = errors.New("need exactly six seated players")
	ErrGameFinished       = errors.New("game already finished")
	ErrGameNotActive      = errors.New("game not active")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNotYourTeamsTurn   = errors.New("not your team's turn")
	ErrUnknownPlayer      = errors.New("player not found")
	ErrUnknownHalfSuit    = errors.New("half suit not found")
	ErrInvalidAssignment  = errors.New("assignment must cover the half suit with one team")
	ErrClaimInProgress    = errors.New("a claim is already being negotiated")
	ErrNoPendingClaim     = errors.New("no claim is being negotiated")
)

// Rule violations: the action is well-formed but the rules forbid it.
var (
	ErrInvalidAsk           = errors.New("ask violates the rules")
	ErrHalfSuitResolved     = errors.New("half suit already resolved")
	ErrClaimAlreadyResolved = errors.New("claim already resolved")
	ErrWrongTeam            = errors.New("player is on the wrong team for this action")
	ErrNotClaimant          = errors.New("only the original claimant may finalize")
	ErrNotAllPassed         = errors.New("not every opposing player has passed")
	ErrAlreadyPassed        = errors.New("player already passed on this claim")
	ErrNoCardsToSelect      = errors.New("selected player has no cards")
)

// ErrStateCorrupt signals a failed conservation check. The session must halt;
// there is no recovery path.
var ErrStateCorrupt = errors.New("card conservation violated")

// Error codes sent to clients alongside rejections.
const (
	CodePrecondition = 400
	CodeRule         = 409
	CodeInternal     = 500
)

var ruleErrors = []error{
	ErrInvalidAsk,
	ErrHalfSuitResolved,
	ErrClaimAlreadyResolved,
	ErrWrongTeam,
	ErrNotClaimant,
	ErrNotAllPassed,
	ErrAlreadyPassed,
	ErrNoCardsToSelect,
}

// ErrorCode maps a service error to its wire code.
func ErrorCode(err error) int {
	if errors.Is(err, ErrStateCorrupt) {
		return CodeInternal
	}
	for _, rule := range ruleErrors {
		if errors.Is(err, rule) {
			return CodeRule
		}
	}
	return CodePrecondition
}
