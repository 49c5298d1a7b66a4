package app

import (
	"fmt"
	"math/rand"
	"time"

	"halfsuit/internal/domain"
)

// Service contains Half Suit use-cases operating on domain state. Callers
// must apply actions to one game serially; the match loop guarantees this.
type Service struct {
	rng *rand.Rand

	// AllowBluffs permits asking for a card the asker already holds.
	AllowBluffs bool
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// StartGame deals a new game to exactly six seated players. seats holds user
// ids in seat order; even seats form team 0, odd seats team 1. The deal,
// team assignment and opening-turn pick happen atomically.
func (s *Service) StartGame(seats []string, stake int64) (*domain.Game, []Event, error) {
	if len(seats) != domain.PlayersPerGame {
		return nil, nil, ErrInvalidPlayerCount
	}
	seen := make(map[string]bool, len(seats))
	for _, userID := range seats {
		if userID == "" || seen[userID] {
			return nil, nil, ErrInvalidPlayerCount
		}
		seen[userID] = true
	}

	game := &domain.Game{
		Phase:   domain.PhaseAwaitingAction,
		Players: make(map[string]*domain.Player, domain.PlayersPerGame),
		Teams: [2]*domain.Team{
			{ID: domain.Team0},
			{ID: domain.Team1},
		},
		Stake: stake,
	}

	deck := domain.ShuffleDeck(s.rng, domain.NewDeck())
	hands := domain.DealHands(deck)

	events := make([]Event, 0, domain.PlayersPerGame+1)
	for seat, userID := range seats {
		team := domain.TeamForSeat(seat)
		player := &domain.Player{
			UserID: userID,
			Seat:   seat,
			Team:   team,
			Hand:   make(map[string]domain.Card, domain.CardsPerPlayer),
		}
		for _, card := range hands[seat] {
			player.Hand[card.ID()] = card
		}
		game.Players[userID] = player
		game.Seats[seat] = userID
		game.Teams[team].Players = append(game.Teams[team].Players, userID)

		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: userID, Hand: player.Cards()},
			Recipients: []string{userID},
		})
	}

	game.CurrentTeam = domain.TeamID(s.rng.Intn(2))
	roster := game.Teams[game.CurrentTeam].Players
	game.CurrentPlayer = roster[s.rng.Intn(len(roster))]

	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			FirstTeam:   game.CurrentTeam,
			FirstPlayer: game.CurrentPlayer,
			Seats:       game.Seats,
			Stake:       stake,
		},
	})

	if err := game.CheckConservation(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	return game, events, nil
}

// Ask requests a named card from an opponent. Validation order follows the
// rules; the first failure wins and leaves the game untouched.
func (s *Service) Ask(game *domain.Game, askerID, respondentID, cardID string) ([]Event, error) {
	if err := requireAwaitingAction(game); err != nil {
		return nil, err
	}
	asker, ok := game.Players[askerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	respondent, ok := game.Players[respondentID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if game.CurrentPlayer != askerID {
		return nil, ErrNotYourTurn
	}
	if asker.CardCount() == 0 {
		return nil, fmt.Errorf("%w: asker has no cards", ErrInvalidAsk)
	}
	if respondent.Team == asker.Team {
		return nil, fmt.Errorf("%w: cannot ask a teammate", ErrInvalidAsk)
	}
	card, ok := domain.CardByID(cardID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown card %q", ErrInvalidAsk, cardID)
	}
	if game.HalfSuits[card.HalfSuit()].Resolved {
		return nil, ErrHalfSuitResolved
	}
	if !asker.HasHalfSuit(card.HalfSuit()) {
		return nil, fmt.Errorf("%w: asker holds no card of that half suit", ErrInvalidAsk)
	}
	if !s.AllowBluffs && asker.HasCard(cardID) {
		return nil, fmt.Errorf("%w: asker already holds that card", ErrInvalidAsk)
	}

	game.TurnCount++
	record := domain.AskRecord{
		Turn:       game.TurnCount,
		Asker:      askerID,
		Respondent: respondentID,
		CardID:     cardID,
		Success:    respondent.HasCard(cardID),
	}

	if record.Success {
		delete(respondent.Hand, cardID)
		asker.Hand[cardID] = card
		// Turn stays with the asker; the team may reassign via SelectPlayer.
	} else {
		game.CurrentTeam = game.CurrentTeam.Opponent()
		game.CurrentPlayer = game.LowestSeatedEligible(game.CurrentTeam)
	}
	game.Asks = append(game.Asks, record)

	events := []Event{{
		Kind: EventAskResolved,
		Payload: AskResolvedPayload{
			Record:     record,
			NextTeam:   game.CurrentTeam,
			NextPlayer: game.CurrentPlayer,
		},
	}}
	if record.Success {
		events = append(events, handUpdates(game, askerID, respondentID)...)
	}

	if err := game.CheckConservation(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	return events, nil
}

// Claim resolves a direct claim: the claimant asserts the full distribution
// of a half suit within their own team. Any player may claim regardless of
// turn; the claim always ends the acting team's turn.
func (s *Service) Claim(game *domain.Game, claimantID string, hs domain.HalfSuitID, assignment map[string]string) ([]Event, error) {
	if err := requireAwaitingAction(game); err != nil {
		return nil, err
	}
	claimant, ok := game.Players[claimantID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if !hs.Valid() {
		return nil, ErrUnknownHalfSuit
	}
	if game.HalfSuits[hs].Resolved {
		return nil, ErrHalfSuitResolved
	}
	if !game.ValidAssignment(assignment, hs, claimant.Team) {
		return nil, ErrInvalidAssignment
	}

	game.TurnCount++
	var outcome domain.ClaimOutcome
	var winner domain.TeamID
	switch {
	case !game.TeamHoldsAll(hs, claimant.Team):
		// The claim boundary only permits own-team assignments, so a half
		// suit split across teams is wrong without inspecting the guess.
		outcome = domain.OutcomeSplitAutoFail
		winner = claimant.Team.Opponent()
	case game.AssignmentCorrect(assignment):
		outcome = domain.OutcomeOwnTeamCorrect
		winner = claimant.Team
	default:
		outcome = domain.OutcomeOwnTeamIncorrect
		winner = claimant.Team.Opponent()
	}

	return s.resolveClaim(game, domain.ClaimRecord{
		Turn:     game.TurnCount,
		Claimant: claimantID,
		Team:     claimant.Team,
		HalfSuit: hs,
		Outcome:  outcome,
		WonBy:    winner,
	})
}

// ClaimForOpponent opens a contested negotiation: the claimant asserts the
// opposing team holds the entire half suit, without naming a distribution.
func (s *Service) ClaimForOpponent(game *domain.Game, claimantID string, hs domain.HalfSuitID) ([]Event, error) {
	if err := requireAwaitingAction(game); err != nil {
		return nil, err
	}
	claimant, ok := game.Players[claimantID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if !hs.Valid() {
		return nil, ErrUnknownHalfSuit
	}
	if game.HalfSuits[hs].Resolved {
		return nil, ErrHalfSuitResolved
	}

	game.TurnCount++
	game.Pending = &domain.PendingClaim{
		ClaimantID:   claimantID,
		ClaimantTeam: claimant.Team,
		HalfSuit:     hs,
		Passed:       make(map[string]bool, domain.PlayersPerTeam),
	}
	game.Phase = domain.PhaseClaimPending

	return []Event{{
		Kind: EventClaimDeclared,
		Payload: ClaimDeclaredPayload{
			Claimant: claimantID,
			Team:     claimant.Team,
			HalfSuit: hs,
		},
	}}, nil
}

// PassCounterClaim records a non-claiming team member declining to counter.
// Idempotent per player.
func (s *Service) PassCounterClaim(game *domain.Game, passerID string) ([]Event, error) {
	pending, err := requirePendingClaim(game)
	if err != nil {
		return nil, err
	}
	passer, ok := game.Players[passerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if passer.Team == pending.ClaimantTeam {
		return nil, ErrWrongTeam
	}

	pending.Passed[passerID] = true
	return []Event{{
		Kind: EventClaimPassed,
		Payload: ClaimPassedPayload{
			UserID:    passerID,
			HalfSuit:  pending.HalfSuit,
			AllPassed: pending.AllPassed(),
		},
	}}, nil
}

// CounterClaim preempts a pending claim with the responder team's own
// distribution. The first valid counter wins.
func (s *Service) CounterClaim(game *domain.Game, responderID string, assignment map[string]string) ([]Event, error) {
	pending, err := requirePendingClaim(game)
	if err != nil {
		return nil, err
	}
	responder, ok := game.Players[responderID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if responder.Team == pending.ClaimantTeam {
		return nil, ErrWrongTeam
	}
	if pending.Passed[responderID] {
		return nil, ErrAlreadyPassed
	}
	if !game.ValidAssignment(assignment, pending.HalfSuit, responder.Team) {
		return nil, ErrInvalidAssignment
	}

	outcome := domain.OutcomeCounterIncorrect
	winner := pending.ClaimantTeam
	if game.AssignmentCorrect(assignment) {
		outcome = domain.OutcomeCounterCorrect
		winner = responder.Team
	}

	return s.resolveClaim(game, domain.ClaimRecord{
		Turn:     game.TurnCount,
		Claimant: responderID,
		Team:     responder.Team,
		HalfSuit: pending.HalfSuit,
		Outcome:  outcome,
		WonBy:    winner,
	})
}

// FinalizeUnopposed lets the original claimant name the opposing team's
// distribution once every opposing member has passed.
func (s *Service) FinalizeUnopposed(game *domain.Game, claimantID string, assignment map[string]string) ([]Event, error) {
	pending, err := requirePendingClaim(game)
	if err != nil {
		return nil, err
	}
	if pending.ClaimantID != claimantID {
		return nil, ErrNotClaimant
	}
	if !pending.AllPassed() {
		return nil, ErrNotAllPassed
	}
	if !game.ValidAssignment(assignment, pending.HalfSuit, pending.ClaimantTeam.Opponent()) {
		return nil, ErrInvalidAssignment
	}

	outcome := domain.OutcomeUnopposedWrong
	winner := pending.ClaimantTeam.Opponent()
	if game.AssignmentCorrect(assignment) {
		outcome = domain.OutcomeUnopposedCorrect
		winner = pending.ClaimantTeam
	}

	return s.resolveClaim(game, domain.ClaimRecord{
		Turn:     game.TurnCount,
		Claimant: claimantID,
		Team:     pending.ClaimantTeam,
		HalfSuit: pending.HalfSuit,
		Outcome:  outcome,
		WonBy:    winner,
	})
}

// SelectPlayer reassigns the current team's acting player before the next
// ask. The engine already auto-selects a deterministic default; this is the
// team's explicit override.
func (s *Service) SelectPlayer(game *domain.Game, setterID, chosenID string) ([]Event, error) {
	if err := requireAwaitingAction(game); err != nil {
		return nil, err
	}
	setter, ok := game.Players[setterID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	chosen, ok := game.Players[chosenID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if setter.Team != game.CurrentTeam {
		return nil, ErrNotYourTeamsTurn
	}
	if chosen.Team != game.CurrentTeam {
		return nil, ErrWrongTeam
	}
	if chosen.CardCount() == 0 {
		return nil, ErrNoCardsToSelect
	}

	game.CurrentPlayer = chosenID
	return []Event{{
		Kind:    EventPlayerSelected,
		Payload: PlayerSelectedPayload{UserID: chosenID, Team: game.CurrentTeam},
	}}, nil
}

// resolveClaim finalizes any claim outcome: scores, permanent half-suit
// resolution, turn flip, and termination when the ninth half suit resolves.
func (s *Service) resolveClaim(game *domain.Game, record domain.ClaimRecord) ([]Event, error) {
	if pending := game.Pending; pending != nil {
		pending.Resolved = true
		game.Pending = nil
	}
	game.Phase = domain.PhaseAwaitingAction

	game.HalfSuits[record.HalfSuit] = domain.HalfSuitState{
		Resolved:  true,
		WonBy:     record.WonBy,
		ClaimedBy: record.Claimant,
	}
	game.Teams[record.WonBy].Score++
	touched := game.RemoveHalfSuit(record.HalfSuit)
	game.Claims = append(game.Claims, record)

	// Claims always end the acting team's turn.
	game.CurrentTeam = game.CurrentTeam.Opponent()
	game.CurrentPlayer = game.LowestSeatedEligible(game.CurrentTeam)

	events := []Event{{
		Kind: EventClaimResolved,
		Payload: ClaimResolvedPayload{
			Record:     record,
			Scores:     [2]int{game.Teams[0].Score, game.Teams[1].Score},
			NextTeam:   game.CurrentTeam,
			NextPlayer: game.CurrentPlayer,
		},
	}}
	events = append(events, handUpdates(game, touched...)...)

	if game.ResolvedCount() == domain.NumHalfSuits {
		game.Phase = domain.PhaseFinished
		game.CurrentPlayer = ""

		winner := domain.Team0
		if game.Teams[1].Score > game.Teams[0].Score {
			winner = domain.Team1
		}
		events = append(events, Event{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				Scores:         [2]int{game.Teams[0].Score, game.Teams[1].Score},
				WinningTeam:    winner,
				BalanceChanges: settlement(game, winner),
			},
		})
	}

	if err := game.CheckConservation(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	return events, nil
}

// settlement moves the stake from each losing player to each winning player.
func settlement(game *domain.Game, winner domain.TeamID) map[string]int64 {
	changes := make(map[string]int64, domain.PlayersPerGame)
	for _, p := range game.Players {
		if p.Team == winner {
			changes[p.UserID] = game.Stake
		} else {
			changes[p.UserID] = -game.Stake
		}
	}
	return changes
}

func handUpdates(game *domain.Game, userIDs ...string) []Event {
	events := make([]Event, 0, len(userIDs))
	for _, userID := range userIDs {
		player, ok := game.Players[userID]
		if !ok {
			continue
		}
		events = append(events, Event{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{UserID: userID, Hand: player.Cards()},
			Recipients: []string{userID},
		})
	}
	return events
}

func requireAwaitingAction(game *domain.Game) error {
	switch game.Phase {
	case domain.PhaseAwaitingAction:
		return nil
	case domain.PhaseClaimPending:
		return ErrClaimInProgress
	case domain.PhaseFinished:
		return ErrGameFinished
	default:
		return ErrGameNotActive
	}
}

func requirePendingClaim(game *domain.Game) (*domain.PendingClaim, error) {
	switch game.Phase {
	case domain.PhaseClaimPending:
	case domain.PhaseFinished:
		return nil, ErrGameFinished
	default:
		return nil, ErrNoPendingClaim
	}
	pending := game.Pending
	if pending == nil || pending.Resolved {
		return nil, ErrClaimAlreadyResolved
	}
	return pending, nil
}
