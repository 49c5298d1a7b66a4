package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"halfsuit/internal/app"
	"halfsuit/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// VoiceTokenRequest asks for a signed voice token. Join tokens are scoped to
// the caller's own team channel of the named match so opponents can never
// listen in on each other.
type VoiceTokenRequest struct {
	Action  string `json:"action"` // "login" or "join"
	MatchID string `json:"match_id,omitempty"`
	Team    int    `json:"team,omitempty"`
}

type VoiceTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel,omitempty"`
}

// rpcVoiceToken handles the RPC call from the client to obtain a voice token.
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Unauthenticated", 16) // UNAUTHENTICATED
	}

	var req VoiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	issuer := env["voice_issuer"]
	secret := env["voice_secret"]
	voiceDomain := env["voice_domain"]
	if issuer == "" || secret == "" || voiceDomain == "" {
		logger.Warn("rpcVoiceToken: Voice credentials missing from env.")
		return "", runtime.NewError("Voice chat not configured", 13) // INTERNAL
	}

	channel := ""
	switch req.Action {
	case app.VoiceTokenActionLogin:
	case app.VoiceTokenActionJoin:
		if req.MatchID == "" {
			return "", runtime.NewError("match_id required for join", 3)
		}
		if req.Team != int(domain.Team0) && req.Team != int(domain.Team1) {
			return "", runtime.NewError("team must be 0 or 1", 3)
		}
		channel = app.TeamChannelName(req.MatchID, domain.TeamID(req.Team))
	default:
		return "", runtime.NewError("unsupported action", 3)
	}

	svc := app.NewVoiceService(secret, issuer, voiceDomain)
	token, err := svc.GenerateToken(userID, req.Action, channel)
	if err != nil {
		logger.Error("rpcVoiceToken: Failed to generate token: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	b, _ := json.Marshal(VoiceTokenResponse{Token: token, Channel: channel})
	return string(b), nil
}
