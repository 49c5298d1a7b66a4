package nakama

// Wire structs for client requests and server events. All match messages are
// JSON; card ids use the catalog form ("10H", "JokerJ").

type StartGameRequest struct {
	Tier string `json:"tier,omitempty"`
}

type AskRequest struct {
	Respondent string `json:"respondent"`
	CardID     string `json:"card_id"`
}

type ClaimRequest struct {
	HalfSuit   int               `json:"half_suit"`
	Assignment map[string]string `json:"assignment"`
}

type ClaimForOpponentRequest struct {
	HalfSuit int `json:"half_suit"`
}

type CounterClaimRequest struct {
	Assignment map[string]string `json:"assignment"`
}

type FinalizeUnopposedRequest struct {
	Assignment map[string]string `json:"assignment"`
}

type SelectPlayerRequest struct {
	UserID string `json:"user_id"`
}

// WireCard is the client-facing card representation.
type WireCard struct {
	ID   string `json:"id"`
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// PlayerInfo is the public view of one seated player. Hands never appear
// here; only the count does.
type PlayerInfo struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	Team           int    `json:"team"`
	IsOwner        bool   `json:"is_owner"`
	IsBot          bool   `json:"is_bot"`
	DisplayName    string `json:"display_name"`
	CardsRemaining int    `json:"cards_remaining"`
}

type HalfSuitInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Resolved  bool   `json:"resolved"`
	WonBy     int    `json:"won_by"`
	ClaimedBy string `json:"claimed_by,omitempty"`
}

// MatchSnapshot is the full redacted match view broadcast on joins and
// leaves so late arrivals can render the table.
type MatchSnapshot struct {
	Seats         []string       `json:"seats"`
	OwnerSeat     int            `json:"owner_seat"`
	Tick          int64          `json:"tick"`
	Players       []PlayerInfo   `json:"players"`
	Phase         string         `json:"phase"`
	Scores        [2]int         `json:"scores"`
	CurrentTeam   int            `json:"current_team"`
	CurrentPlayer string         `json:"current_player"`
	HalfSuits     []HalfSuitInfo `json:"half_suits"`
}

type PlayerJoinedEvent struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
}

type PlayerLeftEvent struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

type GameStartedEvent struct {
	FirstTeam   int      `json:"first_team"`
	FirstPlayer string   `json:"first_player"`
	Seats       []string `json:"seats"`
	Stake       int64    `json:"stake"`
}

type HandDealtEvent struct {
	Cards []WireCard `json:"cards"`
}

type HandUpdatedEvent struct {
	Cards []WireCard `json:"cards"`
}

type AskResolvedEvent struct {
	Turn       int    `json:"turn"`
	Asker      string `json:"asker"`
	Respondent string `json:"respondent"`
	CardID     string `json:"card_id"`
	Success    bool   `json:"success"`
	NextTeam   int    `json:"next_team"`
	NextPlayer string `json:"next_player"`
}

type ClaimDeclaredEvent struct {
	Claimant     string `json:"claimant"`
	Team         int    `json:"team"`
	HalfSuit     int    `json:"half_suit"`
	HalfSuitName string `json:"half_suit_name"`
}

type ClaimPassedEvent struct {
	UserID    string `json:"user_id"`
	HalfSuit  int    `json:"half_suit"`
	AllPassed bool   `json:"all_passed"`
}

type ClaimResolvedEvent struct {
	Turn       int    `json:"turn"`
	Claimant   string `json:"claimant"`
	Team       int    `json:"team"`
	HalfSuit   int    `json:"half_suit"`
	Outcome    string `json:"outcome"`
	WonBy      int    `json:"won_by"`
	Scores     [2]int `json:"scores"`
	NextTeam   int    `json:"next_team"`
	NextPlayer string `json:"next_player"`
}

type PlayerSelectedEvent struct {
	UserID string `json:"user_id"`
	Team   int    `json:"team"`
}

type GameEndedEvent struct {
	Scores         [2]int           `json:"scores"`
	WinningTeam    int              `json:"winning_team"`
	BalanceChanges map[string]int64 `json:"balance_changes"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
