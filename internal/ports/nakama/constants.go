package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken is the Nakama RPC id clients call to obtain a signed voice chat token.
	RpcVoiceToken = "voice_token"

	// MatchNameHalfSuit is the authoritative match handler name registered with Nakama.
	MatchNameHalfSuit = "halfsuit_match"

	// MatchLabelGame is the label value quick-match queries filter on.
	MatchLabelGame = "halfsuit"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame         int64 = 1
	OpAsk               int64 = 2
	OpClaim             int64 = 3
	OpClaimForOpponent  int64 = 4
	OpPassCounterClaim  int64 = 5
	OpCounterClaim      int64 = 6
	OpFinalizeUnopposed int64 = 7
	OpSelectPlayer      int64 = 8

	// Server -> Client events
	OpMatchSnapshot  int64 = 100
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameStarted    int64 = 103
	OpHandDealt      int64 = 104 // send privately
	OpAskResolved    int64 = 105
	OpClaimDeclared  int64 = 106
	OpClaimPassed    int64 = 107
	OpClaimResolved  int64 = 108
	OpPlayerSelected int64 = 109
	OpGameEnded      int64 = 110
	OpHandUpdated    int64 = 111 // send privately
	OpGameError      int64 = 120 // send privately
)
