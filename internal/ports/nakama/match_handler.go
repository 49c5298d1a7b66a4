package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"halfsuit/internal/app"
	"halfsuit/internal/bot"
	"halfsuit/internal/config"
	"halfsuit/internal/domain"
	"halfsuit/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
)

type matchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [domain.PlayersPerGame]string `json:"seats"`      // User IDs in seat order, empty string means seat is empty
	OwnerSeat int                           `json:"owner_seat"` // Seat index of the match owner
	Tick      int64                         `json:"tick"`
	StakeTier string                        `json:"stake_tier"`

	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"` // Half Suit app service with game logic
	Game      *domain.Game                `json:"-"` // Current active game state (nil if in lobby)

	BotsEnabled          bool  `json:"bots_enabled"`
	BotMinDelay          int   `json:"bot_min_delay"`
	BotMaxDelay          int   `json:"bot_max_delay"`
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64 `json:"bot_wait_until"`          // Tick when the next bot may act
	ShorthandedSinceTick int64 `json:"shorthanded_since_tick"`  // Tick when the lobby went short-handed
	ClaimDeadlineTick    int64 `json:"claim_deadline_tick"`     // Tick when pending negotiation times out, 0 when unarmed

	Bots    map[string]*bot.Agent `json:"-"` // Active bot agents, including takeover agents for departed humans
	Economy ports.EconomyPort     `json:"-"` // Interface to Nakama wallet
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.isBotControlled(seat) {
			count++
		}
	}
	return count
}

// isBotControlled covers both pool bots and seats a takeover agent plays for.
func (ms *MatchState) isBotControlled(userID string) bool {
	if bot.IsBot(userID) {
		return true
	}
	_, ok := ms.Bots[userID]
	return ok
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seatUserID := range ms.Seats {
		if seatUserID == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) findFirstHumanSeat() int {
	for i, userID := range ms.Seats {
		if userID != "" && !ms.isBotControlled(userID) {
			return i
		}
	}
	return -1
}

// newMatchHandler is the factory function registered with Nakama.
func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		OwnerSeat: -1,
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
	}
	state.App.AllowBluffs = config.AllowBluffs()

	if tier, ok := params["tier"].(string); ok {
		state.StakeTier = tier
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["halfsuit_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["halfsuit_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["halfsuit_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["halfsuit_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 10
		if cfg := config.GetGameConfig(); cfg != nil && cfg.BotAutoFillDelaySeconds > 0 {
			state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
		}
	}

	labelBytes, err := json.Marshal(matchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  MatchLabelGame,
		Phase: "lobby",
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reconnecting players always get back in.
	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}

	if matchState.Game != nil {
		return state, false, "Match in progress"
	}

	// Seat admission requires covering the table stake.
	if matchState.Economy != nil {
		stake := config.GetStake(matchState.StakeTier)
		balance, err := matchState.Economy.GetBalance(ctx, presence.GetUserId())
		if err != nil {
			logger.Warn("MatchJoinAttempt: Could not read balance for %s: %v", presence.GetUserId(), err)
		} else if balance < stake {
			return state, false, "Insufficient balance"
		}
	}

	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if bot.IsBot(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := matchState.seatOf(userID); seat >= 0 {
			// Reconnect: a takeover agent stops playing for them.
			delete(matchState.Bots, userID)
			logger.Info("MatchJoin: User %s reconnected to seat %d", userID, seat)
			mh.sendPrivateHand(matchState, dispatcher, logger, userID)
			continue
		}

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, userID, i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
			continue
		}

		if bytes, err := json.Marshal(PlayerJoinedEvent{
			UserID:      userID,
			Seat:        matchState.seatOf(userID),
			DisplayName: p.GetUsername(),
		}); err == nil {
			dispatcher.BroadcastMessage(OpPlayerJoined, bytes, nil, nil, true)
		}
	}

	// Owner must be a human player.
	if matchState.OwnerSeat < 0 || matchState.Seats[matchState.OwnerSeat] == "" || matchState.isBotControlled(matchState.Seats[matchState.OwnerSeat]) {
		matchState.OwnerSeat = matchState.findFirstHumanSeat()
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshot(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. Lobby
// leavers free their seat; mid-game leavers keep it so the deal stays valid,
// with a takeover agent playing on when bots are enabled.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}

		if bytes, err := json.Marshal(PlayerLeftEvent{UserID: userID, Seat: seat}); err == nil {
			dispatcher.BroadcastMessage(OpPlayerLeft, bytes, nil, nil, true)
		}

		if matchState.Game == nil {
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
			continue
		}

		if matchState.BotsEnabled {
			if _, exists := matchState.Bots[userID]; !exists {
				brain, err := bot.NewBrain(bot.BotLevelStandard, nil)
				if err == nil {
					matchState.Bots[userID] = &bot.Agent{ID: userID, Strategy: brain}
					logger.Info("MatchLeave: Takeover agent assigned to seat %d for departed user %s", seat, userID)
				}
			}
		}
	}

	matchState.OwnerSeat = matchState.findFirstHumanSeat()

	if matchState.findFirstHumanSeat() == -1 && len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshot(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpAsk:
			mh.handleAsk(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpClaim:
			mh.handleClaim(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpClaimForOpponent:
			mh.handleClaimForOpponent(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpPassCounterClaim:
			mh.handlePassCounterClaim(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpCounterClaim:
			mh.handleCounterClaim(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpFinalizeUnopposed:
			mh.handleFinalizeUnopposed(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		case OpSelectPlayer:
			mh.handleSelectPlayer(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetData())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceClaimDeadline(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// enforceClaimDeadline passes for every opposing player who has not acted by
// the negotiation deadline. The claimant still has to finalize themselves.
func (mh *matchHandler) enforceClaimDeadline(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Phase != domain.PhaseClaimPending || state.ClaimDeadlineTick == 0 {
		return
	}
	if state.Tick < state.ClaimDeadlineTick {
		return
	}
	state.ClaimDeadlineTick = 0

	pending := state.Game.Pending
	if pending == nil {
		return
	}
	opposing := pending.ClaimantTeam.Opponent()
	for _, userID := range state.Game.Teams[opposing].Players {
		if pending.Passed[userID] {
			continue
		}
		logger.Info("enforceClaimDeadline: Auto-passing %s on half suit %d", userID, pending.HalfSuit)
		events, err := state.App.PassCounterClaim(state.Game, userID)
		if err != nil {
			logger.Error("enforceClaimDeadline: Auto-pass failed for %s: %v", userID, err)
			continue
		}
		for _, ev := range events {
			mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
		}
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill a short-handed lobby with bots after a delay.
	if state.Game == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount >= 1 && state.GetOpenSeatsCount() > 0 {
			if state.ShorthandedSinceTick == 0 {
				state.ShorthandedSinceTick = state.Tick
				logger.Debug("processBots: Short-handed lobby detected, starting auto-fill timer.")
			}

			if state.Tick-state.ShorthandedSinceTick >= int64(state.BotAutoFillDelay) {
				added := false
				nextIdentity := 0
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(nextIdentity)
					nextIdentity++
					for identity.UserID == "" || state.seatOf(identity.UserID) >= 0 {
						if nextIdentity >= domain.PlayersPerGame {
							identity = bot.BotIdentity{}
							break
						}
						identity = bot.GetBotIdentity(nextIdentity)
						nextIdentity++
					}
					if identity.UserID == "" {
						logger.Warn("processBots: Bot pool exhausted, seat %d stays open.", i)
						break
					}
					botID := identity.UserID

					brain, err := bot.NewBrain(bot.LevelForDifficulty(identity.Difficulty), nil)
					if err != nil {
						logger.Error("processBots: Failed to create brain for %s: %v", botID, err)
						continue
					}
					state.Seats[i] = botID
					state.Bots[botID] = &bot.Agent{ID: botID, Name: identity.DisplayName, Strategy: brain}
					logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, botID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastSnapshot(state, dispatcher, logger)
				}
				state.ShorthandedSinceTick = 0
			}
		} else {
			state.ShorthandedSinceTick = 0
		}
		return
	}

	// 2. In-game bot actions. Claims and negotiation are not turn-bound, so
	// every bot-controlled seat gets polled; the first planned action per
	// pacing window is applied.
	if state.Game.Phase == domain.PhaseFinished {
		return
	}
	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	for _, seatUserID := range state.Seats {
		if seatUserID == "" || !state.isBotControlled(seatUserID) {
			continue
		}
		agent, exists := state.Bots[seatUserID]
		if !exists {
			brain, err := bot.NewBrain(bot.BotLevelStandard, nil)
			if err != nil {
				logger.Error("processBots: Failed to create fallback agent: %v", err)
				continue
			}
			agent = &bot.Agent{ID: seatUserID, Strategy: brain}
			state.Bots[seatUserID] = agent
		}

		action, err := agent.Act(state.Game)
		if err != nil {
			logger.Error("processBots: Bot %s failed to plan an action: %v", seatUserID, err)
			continue
		}
		if action.Kind == bot.ActionNone {
			continue
		}
		mh.applyBotAction(ctx, state, dispatcher, logger, seatUserID, action)
		return
	}
}

func (mh *matchHandler) applyBotAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, action bot.Action) {
	var events []app.Event
	var err error

	switch action.Kind {
	case bot.ActionAsk:
		events, err = state.App.Ask(state.Game, userID, action.Respondent, action.CardID)
	case bot.ActionClaim:
		events, err = state.App.Claim(state.Game, userID, action.HalfSuit, action.Assignment)
	case bot.ActionClaimForOpponent:
		events, err = state.App.ClaimForOpponent(state.Game, userID, action.HalfSuit)
		if err == nil {
			mh.armClaimDeadline(state)
		}
	case bot.ActionPassCounterClaim:
		events, err = state.App.PassCounterClaim(state.Game, userID)
	case bot.ActionCounterClaim:
		events, err = state.App.CounterClaim(state.Game, userID, action.Assignment)
	case bot.ActionFinalizeUnopposed:
		events, err = state.App.FinalizeUnopposed(state.Game, userID, action.Assignment)
	default:
		return
	}

	if err != nil {
		logger.Warn("applyBotAction: Bot %s action %d rejected: %v", userID, action.Kind, err)
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.settleClaimDeadline(state)
}

func (mh *matchHandler) armClaimDeadline(state *MatchState) {
	if secs := config.ClaimDeadlineSeconds(); secs > 0 {
		state.ClaimDeadlineTick = state.Tick + int64(secs)
	}
}

// settleClaimDeadline disarms the deadline once the negotiation closed.
func (mh *matchHandler) settleClaimDeadline(state *MatchState) {
	if state.Game == nil || state.Game.Phase != domain.PhaseClaimPending {
		state.ClaimDeadlineTick = 0
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	request := &StartGameRequest{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, request); err != nil {
			logger.Warn("StartGame: Invalid StartGameRequest from %s: %v", senderID, err)
			return
		}
	}

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "only the owner can start the game")
		return
	}
	if state.Game != nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game already in progress")
		return
	}
	if state.GetOccupiedSeatCount() != domain.PlayersPerGame {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "need six seated players to start")
		return
	}

	tier := request.Tier
	if tier == "" {
		tier = state.StakeTier
	}
	stake := config.GetStake(tier)

	game, events, err := state.App.StartGame(state.Seats[:], stake)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}

	state.Game = game
	state.ClaimDeadlineTick = 0
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}

	logger.Info("StartGame: Game started with stake %d.", stake)
}

func (mh *matchHandler) handleAsk(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	request := &AskRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		logger.Warn("handleAsk: Invalid AskRequest from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "malformed ask request")
		return
	}

	events, err := state.App.Ask(state.Game, senderID, request.Respondent, request.CardID)
	if err != nil {
		logger.Warn("handleAsk: User %s ask rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleClaim(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	request := &ClaimRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		logger.Warn("handleClaim: Invalid ClaimRequest from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "malformed claim request")
		return
	}

	events, err := state.App.Claim(state.Game, senderID, domain.HalfSuitID(request.HalfSuit), request.Assignment)
	if err != nil {
		logger.Warn("handleClaim: User %s claim rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleClaimForOpponent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	request := &ClaimForOpponentRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		logger.Warn("handleClaimForOpponent: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "malformed claim request")
		return
	}

	events, err := state.App.ClaimForOpponent(state.Game, senderID, domain.HalfSuitID(request.HalfSuit))
	if err != nil {
		logger.Warn("handleClaimForOpponent: User %s claim rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	mh.armClaimDeadline(state)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handlePassCounterClaim(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	events, err := state.App.PassCounterClaim(state.Game, senderID)
	if err != nil {
		logger.Warn("handlePassCounterClaim: User %s pass rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleCounterClaim(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	request := &CounterClaimRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		logger.Warn("handleCounterClaim: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "malformed counter-claim request")
		return
	}

	events, err := state.App.CounterClaim(state.Game, senderID, request.Assignment)
	if err != nil {
		logger.Warn("handleCounterClaim: User %s counter rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	mh.settleClaimDeadline(state)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleFinalizeUnopposed(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	request := &FinalizeUnopposedRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		logger.Warn("handleFinalizeUnopposed: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "malformed finalize request")
		return
	}

	events, err := state.App.FinalizeUnopposed(state.Game, senderID, request.Assignment)
	if err != nil {
		logger.Warn("handleFinalizeUnopposed: User %s finalize rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	mh.settleClaimDeadline(state)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleSelectPlayer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "game not started")
		return
	}

	request := &SelectPlayerRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		logger.Warn("handleSelectPlayer: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.CodePrecondition, "malformed select request")
		return
	}

	events, err := state.App.SelectPlayer(state.Game, senderID, request.UserID)
	if err != nil {
		logger.Warn("handleSelectPlayer: User %s select rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent converts app events to wire payloads and dispatches them.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload interface{}

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
		p := ev.Payload.(app.GameStartedPayload)
		payload = GameStartedEvent{
			FirstTeam:   int(p.FirstTeam),
			FirstPlayer: p.FirstPlayer,
			Seats:       p.Seats[:],
			Stake:       p.Stake,
		}
	case app.EventHandDealt:
		opCode = OpHandDealt
		p := ev.Payload.(app.HandDealtPayload)
		payload = HandDealtEvent{Cards: toWireCards(p.Hand)}
	case app.EventHandUpdated:
		opCode = OpHandUpdated
		p := ev.Payload.(app.HandUpdatedPayload)
		payload = HandUpdatedEvent{Cards: toWireCards(p.Hand)}
	case app.EventAskResolved:
		opCode = OpAskResolved
		p := ev.Payload.(app.AskResolvedPayload)
		payload = AskResolvedEvent{
			Turn:       p.Record.Turn,
			Asker:      p.Record.Asker,
			Respondent: p.Record.Respondent,
			CardID:     p.Record.CardID,
			Success:    p.Record.Success,
			NextTeam:   int(p.NextTeam),
			NextPlayer: p.NextPlayer,
		}
	case app.EventClaimDeclared:
		opCode = OpClaimDeclared
		p := ev.Payload.(app.ClaimDeclaredPayload)
		payload = ClaimDeclaredEvent{
			Claimant:     p.Claimant,
			Team:         int(p.Team),
			HalfSuit:     int(p.HalfSuit),
			HalfSuitName: p.HalfSuit.Name(),
		}
	case app.EventClaimPassed:
		opCode = OpClaimPassed
		p := ev.Payload.(app.ClaimPassedPayload)
		payload = ClaimPassedEvent{
			UserID:    p.UserID,
			HalfSuit:  int(p.HalfSuit),
			AllPassed: p.AllPassed,
		}
	case app.EventClaimResolved:
		opCode = OpClaimResolved
		p := ev.Payload.(app.ClaimResolvedPayload)
		payload = ClaimResolvedEvent{
			Turn:       p.Record.Turn,
			Claimant:   p.Record.Claimant,
			Team:       int(p.Record.Team),
			HalfSuit:   int(p.Record.HalfSuit),
			Outcome:    string(p.Record.Outcome),
			WonBy:      int(p.Record.WonBy),
			Scores:     p.Scores,
			NextTeam:   int(p.NextTeam),
			NextPlayer: p.NextPlayer,
		}
	case app.EventPlayerSelected:
		opCode = OpPlayerSelected
		p := ev.Payload.(app.PlayerSelectedPayload)
		payload = PlayerSelectedEvent{UserID: p.UserID, Team: int(p.Team)}
	case app.EventGameEnded:
		opCode = OpGameEnded
		p := ev.Payload.(app.GameEndedPayload)
		payload = GameEndedEvent{
			Scores:         p.Scores,
			WinningTeam:    int(p.WinningTeam),
			BalanceChanges: p.BalanceChanges,
		}

		mh.settleGame(ctx, state, logger, p.BalanceChanges)

		// Back to lobby for a rematch with the same table.
		state.Game = nil
		state.ClaimDeadlineTick = 0
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they
		// are bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleGame applies stake movements to wallets, taxing winnings.
func (mh *matchHandler) settleGame(ctx context.Context, state *MatchState, logger runtime.Logger, changes map[string]int64) {
	if state.Economy == nil {
		return
	}

	taxRate := 0.0
	if cfg := config.GetGameConfig(); cfg != nil {
		taxRate = cfg.TaxRate
	}

	updates := make([]ports.WalletUpdate, 0, len(changes))
	for userID, amount := range changes {
		if bot.IsBot(userID) {
			continue
		}
		if amount > 0 && taxRate > 0 {
			amount = int64(float64(amount) * (1 - taxRate))
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "game_settlement",
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("settleGame: Failed to update balances: %v", err)
	}
}

func (mh *matchHandler) broadcastSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var players []PlayerInfo
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			displayName = name
		}

		cardsRemaining := 0
		if state.Game != nil {
			if p := state.Game.Players[userID]; p != nil {
				cardsRemaining = p.CardCount()
			}
		}

		players = append(players, PlayerInfo{
			UserID:         userID,
			Seat:           i,
			Team:           int(domain.TeamForSeat(i)),
			IsOwner:        i == state.OwnerSeat,
			IsBot:          state.isBotControlled(userID),
			DisplayName:    displayName,
			CardsRemaining: cardsRemaining,
		})
	}

	snapshot := MatchSnapshot{
		Seats:     state.Seats[:],
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Players:   players,
		Phase:     string(domain.PhaseLobby),
	}
	if state.Game != nil {
		snapshot.Phase = string(state.Game.Phase)
		snapshot.Scores = [2]int{state.Game.Teams[0].Score, state.Game.Teams[1].Score}
		snapshot.CurrentTeam = int(state.Game.CurrentTeam)
		snapshot.CurrentPlayer = state.Game.CurrentPlayer
		snapshot.HalfSuits = toHalfSuitInfos(state.Game)
	}

	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("broadcastSnapshot: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchSnapshot, bytes, nil, nil, true)
}

// sendPrivateHand resends a player's current hand, used on reconnect.
func (mh *matchHandler) sendPrivateHand(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if state.Game == nil {
		return
	}
	player := state.Game.Players[userID]
	if player == nil {
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}

	bytes, err := json.Marshal(HandUpdatedEvent{Cards: toWireCards(player.Cards())})
	if err != nil {
		logger.Error("sendPrivateHand: Failed to marshal hand: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpHandUpdated, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := "lobby"
	if state.Game != nil {
		phase = "playing"
	}

	labelBytes, err := json.Marshal(matchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  MatchLabelGame,
		Phase: phase,
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
