package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"halfsuit/internal/app"
	"halfsuit/internal/bot"
	"halfsuit/internal/config"
	"halfsuit/internal/domain"
	"halfsuit/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

func init() {
	// Load bot identities and game config for testing.
	if err := bot.LoadIdentities("test_bot_identities.json"); err != nil {
		panic("Failed to load bot identities for tests: " + err.Error())
	}
	if err := config.LoadGameConfig("testdata/game_config.json"); err != nil {
		panic("Failed to load game config for tests: " + err.Error())
	}
}

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type mockPresence struct {
	userID   string
	username string
}

func (p *mockPresence) GetUserId() string    { return p.userID }
func (p *mockPresence) GetSessionId() string { return "session-" + p.userID }
func (p *mockPresence) GetNodeId() string    { return "node-1" }
func (p *mockPresence) GetHidden() bool      { return false }
func (p *mockPresence) GetPersistence() bool { return true }
func (p *mockPresence) GetUsername() string  { return p.username }
func (p *mockPresence) GetStatus() string    { return "" }
func (p *mockPresence) GetReason() runtime.PresenceReason {
	return runtime.PresenceReasonUnknown
}

type broadcastRecord struct {
	opCode     int64
	data       []byte
	recipients []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
	messages       []broadcastRecord
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)

	record := broadcastRecord{opCode: opCode, data: md.lastData}
	for _, p := range presences {
		record.recipients = append(record.recipients, p.GetUserId())
	}
	md.messages = append(md.messages, record)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

func (md *mockDispatcher) countOp(opCode int64) int {
	count := 0
	for _, m := range md.messages {
		if m.opCode == opCode {
			count++
		}
	}
	return count
}

func (md *mockDispatcher) lastOf(opCode int64) *broadcastRecord {
	for i := len(md.messages) - 1; i >= 0; i-- {
		if md.messages[i].opCode == opCode {
			return &md.messages[i]
		}
	}
	return nil
}

func (md *mockDispatcher) reset() {
	md.broadcastCount = 0
	md.labelUpdates = 0
	md.messages = nil
}

type mockEconomy struct {
	balances map[string]int64
	updates  []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	if balance, ok := me.balances[userID]; ok {
		return balance, nil
	}
	return 0, errors.New("balance not found")
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

func newLobbyState(seed int64) *MatchState {
	return &MatchState{
		OwnerSeat: -1,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(rand.New(rand.NewSource(seed))),
		Bots:      make(map[string]*bot.Agent),
	}
}

func joinUsers(t *testing.T, handler *matchHandler, state *MatchState, dispatcher *mockDispatcher, ids ...string) {
	t.Helper()
	presences := make([]runtime.Presence, 0, len(ids))
	for _, id := range ids {
		presences = append(presences, &mockPresence{userID: id, username: id})
	}
	if out := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, presences); out == nil {
		t.Fatal("MatchJoin returned nil state")
	}
}

// startSixPlayerGame seats u0..u5 and starts a game as the owner.
func startSixPlayerGame(t *testing.T, handler *matchHandler, state *MatchState, dispatcher *mockDispatcher) {
	t.Helper()
	joinUsers(t, handler, state, dispatcher, "u0", "u1", "u2", "u3", "u4", "u5")
	dispatcher.reset()
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, "u0", nil)
	if state.Game == nil {
		t.Fatal("expected game to start")
	}
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name     string
		seats    [domain.PlayersPerGame]string
		takeover string
		want     int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: [domain.PlayersPerGame]string{bot1, "user-1", "", "", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: [domain.PlayersPerGame]string{bot1, bot2, "", "", "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: [domain.PlayersPerGame]string{},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: [domain.PlayersPerGame]string{"user-1", bot1, "user-2", "", "", ""},
			want:  0,
		},
		{
			name:     "TakeoverAgentIsNotHuman",
			seats:    [domain.PlayersPerGame]string{"user-1", "user-2", "", "", "", ""},
			takeover: "user-1",
			want:     1,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			ms := &MatchState{Seats: test.seats, Bots: make(map[string]*bot.Agent)}
			if test.takeover != "" {
				ms.Bots[test.takeover] = &bot.Agent{ID: test.takeover}
			}
			if got := ms.findFirstHumanSeat(); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestSeatCounts(t *testing.T) {
	botID := bot.GetBotIdentity(0).UserID
	ms := &MatchState{
		Seats: [domain.PlayersPerGame]string{"user-1", botID, "user-2", "", "", ""},
		Bots:  make(map[string]*bot.Agent),
	}

	if got := ms.GetOpenSeatsCount(); got != 3 {
		t.Fatalf("GetOpenSeatsCount() = %d, want 3", got)
	}
	if got := ms.GetOccupiedSeatCount(); got != 3 {
		t.Fatalf("GetOccupiedSeatCount() = %d, want 3", got)
	}
	if got := ms.GetHumanPlayerCount(); got != 2 {
		t.Fatalf("GetHumanPlayerCount() = %d, want 2", got)
	}
}

func TestMatchLabelMarshal(t *testing.T) {
	tests := []struct {
		name     string
		label    matchLabel
		expected string
	}{
		{
			name:     "Lobby",
			label:    matchLabel{Open: 3, Game: MatchLabelGame, Phase: "lobby"},
			expected: `{"open":3,"game":"halfsuit","phase":"lobby"}`,
		},
		{
			name:     "Playing",
			label:    matchLabel{Open: 0, Game: MatchLabelGame, Phase: "playing"},
			expected: `{"open":0,"game":"halfsuit","phase":"playing"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := json.Marshal(test.label)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			if string(payload) != test.expected {
				t.Errorf("Got %s, want %s", payload, test.expected)
			}
		})
	}
}

func TestMatchJoin_AssignsSeatsAndOwner(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(1)

	joinUsers(t, handler, state, dispatcher, "u0", "u1")

	if state.Seats[0] != "u0" || state.Seats[1] != "u1" {
		t.Fatalf("Seats = %v, want u0 and u1 in the first two", state.Seats)
	}
	if state.OwnerSeat != 0 {
		t.Fatalf("OwnerSeat = %d, want 0", state.OwnerSeat)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("Expected a label update after join")
	}
	if dispatcher.countOp(OpMatchSnapshot) == 0 {
		t.Fatal("Expected a snapshot broadcast after join")
	}
}

func TestMatchJoin_HumanReplacesLobbyBot(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(1)

	joinUsers(t, handler, state, dispatcher, "u0")
	for i := 1; i < domain.PlayersPerGame; i++ {
		id := bot.GetBotIdentity(i - 1).UserID
		state.Seats[i] = id
		state.Bots[id] = &bot.Agent{ID: id}
	}

	joinUsers(t, handler, state, dispatcher, "u1")

	if state.seatOf("u1") != 1 {
		t.Fatalf("Expected u1 to take the first bot seat, seats = %v", state.Seats)
	}
	if _, exists := state.Bots[bot.GetBotIdentity(0).UserID]; exists {
		t.Fatal("Replaced bot's agent should be removed")
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(3)
	startSixPlayerGame(t, handler, state, dispatcher)

	_, allowed, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, &mockPresence{userID: "u2"}, nil)
	if !allowed {
		t.Fatal("Seated player should always be readmitted")
	}

	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, &mockPresence{userID: "stranger"}, nil)
	if allowed {
		t.Fatal("Stranger should be rejected mid-game")
	}
	if reason != "Match in progress" {
		t.Fatalf("reason = %q, want %q", reason, "Match in progress")
	}
}

func TestMatchJoinAttempt_RequiresStakeBalance(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(5)
	state.Economy = &mockEconomy{balances: map[string]int64{
		"rich": 1000,
		"poor": 10,
	}}

	_, allowed, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, &mockPresence{userID: "rich"}, nil)
	if !allowed {
		t.Fatal("Player covering the stake should be admitted")
	}

	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, &mockPresence{userID: "poor"}, nil)
	if allowed {
		t.Fatal("Player below the stake should be rejected")
	}
	if reason != "Insufficient balance" {
		t.Fatalf("reason = %q, want %q", reason, "Insufficient balance")
	}
}

func TestMatchLeave_LobbyFreesSeat(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(1)
	joinUsers(t, handler, state, dispatcher, "u0", "u1")

	out := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, []runtime.Presence{&mockPresence{userID: "u1"}})
	if out == nil {
		t.Fatal("Match should continue with a human still seated")
	}
	if state.Seats[1] != "" {
		t.Fatalf("Seat 1 = %q, want freed", state.Seats[1])
	}
}

func TestMatchLeave_MidGameAssignsTakeoverAgent(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(4)
	state.BotsEnabled = true
	startSixPlayerGame(t, handler, state, dispatcher)

	out := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, []runtime.Presence{&mockPresence{userID: "u3"}})
	if out == nil {
		t.Fatal("Match should continue with humans still connected")
	}
	if state.seatOf("u3") < 0 {
		t.Fatal("Mid-game leaver must keep their seat")
	}
	if _, exists := state.Bots["u3"]; !exists {
		t.Fatal("Expected a takeover agent for the departed player")
	}
	if !state.isBotControlled("u3") {
		t.Fatal("Departed seat should count as bot-controlled")
	}
}

func TestMatchLeave_TerminatesWithoutHumans(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(1)
	joinUsers(t, handler, state, dispatcher, "u0")

	out := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, []runtime.Presence{&mockPresence{userID: "u0"}})
	if out != nil {
		t.Fatal("Expected termination when the last human leaves an empty lobby")
	}
}

func TestStartGame_OwnerOnly(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(2)
	joinUsers(t, handler, state, dispatcher, "u0", "u1", "u2", "u3", "u4", "u5")
	dispatcher.reset()

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, "u1", nil)

	if state.Game != nil {
		t.Fatal("Non-owner must not be able to start the game")
	}
	record := dispatcher.lastOf(OpGameError)
	if record == nil {
		t.Fatal("Expected a private error message")
	}
	if len(record.recipients) != 1 || record.recipients[0] != "u1" {
		t.Fatalf("Error recipients = %v, want [u1]", record.recipients)
	}
}

func TestStartGame_RequiresFullTable(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(2)
	joinUsers(t, handler, state, dispatcher, "u0", "u1", "u2")
	dispatcher.reset()

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, "u0", nil)

	if state.Game != nil {
		t.Fatal("Game must not start with open seats")
	}
	if dispatcher.countOp(OpGameError) != 1 {
		t.Fatal("Expected a private error message")
	}
}

func TestStartGame_DealsAndBroadcasts(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(7)
	startSixPlayerGame(t, handler, state, dispatcher)

	if got := dispatcher.countOp(OpHandDealt); got != domain.PlayersPerGame {
		t.Fatalf("OpHandDealt messages = %d, want %d", got, domain.PlayersPerGame)
	}
	for _, m := range dispatcher.messages {
		if m.opCode == OpHandDealt && len(m.recipients) != 1 {
			t.Fatalf("Hand payload must go to exactly one player, got %v", m.recipients)
		}
	}

	record := dispatcher.lastOf(OpGameStarted)
	if record == nil {
		t.Fatal("Expected a GameStarted broadcast")
	}
	if len(record.recipients) != 0 {
		t.Fatalf("GameStarted must be a table-wide broadcast, got recipients %v", record.recipients)
	}

	started := GameStartedEvent{}
	if err := json.Unmarshal(record.data, &started); err != nil {
		t.Fatalf("Failed to unmarshal GameStartedEvent: %v", err)
	}
	if started.Stake != 100 {
		t.Fatalf("Stake = %d, want default tier stake 100", started.Stake)
	}
	if started.FirstPlayer != state.Game.CurrentPlayer {
		t.Fatalf("FirstPlayer = %q, want %q", started.FirstPlayer, state.Game.CurrentPlayer)
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("Expected a label update to the playing phase")
	}
}

func TestHandleAsk_RejectionIsPrivate(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(9)
	startSixPlayerGame(t, handler, state, dispatcher)

	// Any seat other than the opener is out of turn.
	asker := "u0"
	if state.Game.CurrentPlayer == asker {
		asker = "u1"
	}
	dispatcher.reset()

	payload, _ := json.Marshal(AskRequest{Respondent: state.Game.CurrentPlayer, CardID: "2S"})
	handler.handleAsk(context.Background(), state, dispatcher, noopLogger{}, asker, payload)

	record := dispatcher.lastOf(OpGameError)
	if record == nil {
		t.Fatal("Expected a private error message")
	}
	if len(record.recipients) != 1 || record.recipients[0] != asker {
		t.Fatalf("Error recipients = %v, want [%s]", record.recipients, asker)
	}

	gameError := GameErrorEvent{}
	if err := json.Unmarshal(record.data, &gameError); err != nil {
		t.Fatalf("Failed to unmarshal GameErrorEvent: %v", err)
	}
	if gameError.Code != app.CodePrecondition {
		t.Fatalf("Code = %d, want %d", gameError.Code, app.CodePrecondition)
	}
}

func TestClaimDeadline_AutoPassesOpponents(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(11)
	state.Tick = 100
	startSixPlayerGame(t, handler, state, dispatcher)
	dispatcher.reset()

	payload, _ := json.Marshal(ClaimForOpponentRequest{HalfSuit: 3})
	handler.handleClaimForOpponent(context.Background(), state, dispatcher, noopLogger{}, "u0", payload)

	if state.Game.Phase != domain.PhaseClaimPending {
		t.Fatalf("Phase = %q, want %q", state.Game.Phase, domain.PhaseClaimPending)
	}
	want := state.Tick + int64(config.ClaimDeadlineSeconds())
	if state.ClaimDeadlineTick != want {
		t.Fatalf("ClaimDeadlineTick = %d, want %d", state.ClaimDeadlineTick, want)
	}

	// Before the deadline nothing happens.
	state.Tick = want - 1
	handler.enforceClaimDeadline(context.Background(), state, dispatcher, noopLogger{})
	if state.Game.Pending.AllPassed() {
		t.Fatal("Auto-pass must wait for the deadline")
	}

	state.Tick = want + 1
	handler.enforceClaimDeadline(context.Background(), state, dispatcher, noopLogger{})

	if !state.Game.Pending.AllPassed() {
		t.Fatal("Expected every opposing player to be auto-passed")
	}
	if state.Game.Phase != domain.PhaseClaimPending {
		t.Fatal("Finalizing stays with the claimant, phase must remain claim_pending")
	}
	if state.ClaimDeadlineTick != 0 {
		t.Fatalf("ClaimDeadlineTick = %d, want disarmed", state.ClaimDeadlineTick)
	}
	if got := dispatcher.countOp(OpClaimPassed); got != domain.PlayersPerTeam {
		t.Fatalf("OpClaimPassed messages = %d, want %d", got, domain.PlayersPerTeam)
	}
}

func TestProcessBots_AutoFillsShorthandedLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:                [domain.PlayersPerGame]string{"user-1", "", "", "", "", ""},
		OwnerSeat:            0,
		Presences:            make(map[string]runtime.Presence),
		Bots:                 make(map[string]*bot.Agent),
		BotAutoFillDelay:     2,
		ShorthandedSinceTick: 8,
		Tick:                 10,
	}

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if bot.IsBot(seat) {
			botCount++
		}
	}
	if botCount != 5 {
		t.Fatalf("Expected 5 bots, got %d", botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected 0 open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if len(state.Bots) != 5 {
		t.Fatalf("Expected 5 bot agents, got %d", len(state.Bots))
	}
	if state.ShorthandedSinceTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.ShorthandedSinceTick)
	}
	if dispatcher.broadcastCount == 0 || dispatcher.labelUpdates == 0 {
		t.Fatal("Expected snapshot broadcast and label update after auto-fill")
	}

	seen := make(map[string]bool)
	for _, seat := range state.Seats {
		if seat == "" {
			continue
		}
		if seen[seat] {
			t.Fatalf("Seat user %s assigned twice", seat)
		}
		seen[seat] = true
	}
}

func TestProcessBots_WaitsForAutoFillDelay(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:            [domain.PlayersPerGame]string{"user-1", "", "", "", "", ""},
		Presences:        make(map[string]runtime.Presence),
		Bots:             make(map[string]*bot.Agent),
		BotAutoFillDelay: 5,
		Tick:             10,
	}

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.ShorthandedSinceTick != 10 {
		t.Fatalf("ShorthandedSinceTick = %d, want 10", state.ShorthandedSinceTick)
	}
	if state.GetOpenSeatsCount() != 5 {
		t.Fatal("Bots must not be added before the delay elapses")
	}
}

func TestSettleGame_TaxesWinningsAndSkipsBots(t *testing.T) {
	handler := &matchHandler{}
	economy := &mockEconomy{}
	state := &MatchState{Economy: economy}
	botID := bot.GetBotIdentity(0).UserID

	handler.settleGame(context.Background(), state, noopLogger{}, map[string]int64{
		"u0":  100,
		"u1":  -100,
		botID: 100,
	})

	amounts := make(map[string]int64)
	for _, update := range economy.updates {
		amounts[update.UserID] = update.Amount
	}

	if len(amounts) != 2 {
		t.Fatalf("Expected 2 wallet updates, got %d", len(amounts))
	}
	if amounts["u0"] != 95 {
		t.Fatalf("Winner amount = %d, want 95 after 5%% tax", amounts["u0"])
	}
	if amounts["u1"] != -100 {
		t.Fatalf("Loser amount = %d, want -100 untaxed", amounts["u1"])
	}
	if _, ok := amounts[botID]; ok {
		t.Fatal("Bot wallets must not be settled")
	}
}

func TestBroadcastSnapshot_RedactsHands(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newLobbyState(13)
	startSixPlayerGame(t, handler, state, dispatcher)
	dispatcher.reset()

	handler.broadcastSnapshot(state, dispatcher, noopLogger{})

	record := dispatcher.lastOf(OpMatchSnapshot)
	if record == nil {
		t.Fatal("Expected a snapshot broadcast")
	}
	if len(record.recipients) != 0 {
		t.Fatalf("Snapshot must be a table-wide broadcast, got %v", record.recipients)
	}

	snapshot := MatchSnapshot{}
	if err := json.Unmarshal(record.data, &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	if snapshot.Phase != string(domain.PhaseAwaitingAction) {
		t.Fatalf("Phase = %q, want %q", snapshot.Phase, domain.PhaseAwaitingAction)
	}
	if len(snapshot.Players) != domain.PlayersPerGame {
		t.Fatalf("Players = %d, want %d", len(snapshot.Players), domain.PlayersPerGame)
	}
	for _, p := range snapshot.Players {
		if p.CardsRemaining != domain.CardsPerPlayer {
			t.Fatalf("Player %s CardsRemaining = %d, want %d", p.UserID, p.CardsRemaining, domain.CardsPerPlayer)
		}
	}
	if len(snapshot.HalfSuits) != domain.NumHalfSuits {
		t.Fatalf("HalfSuits = %d, want %d", len(snapshot.HalfSuits), domain.NumHalfSuits)
	}
	if snapshot.CurrentPlayer == "" {
		t.Fatal("Expected a current player in an active game")
	}
}
