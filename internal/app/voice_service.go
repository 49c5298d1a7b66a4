package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"halfsuit/internal/domain"
)

// VoiceService signs Vivox access tokens so teammates can talk on a private
// per-team channel while a match runs.
type VoiceService struct {
	vivoxSecret string
	vivoxIssuer string
	vivoxDomain string
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"
)

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		vivoxSecret: secret,
		vivoxIssuer: issuer,
		vivoxDomain: domain,
	}
}

// TeamChannelName derives the voice channel for one team of a match. Each
// team gets its own channel; table talk between opponents stays out of band.
func TeamChannelName(matchID string, team domain.TeamID) string {
	return fmt.Sprintf("hs-%s-t%d", matchID, team)
}

func (s *VoiceService) GenerateToken(user, action, channelName string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.vivoxSecret == "" || s.vivoxIssuer == "" || s.vivoxDomain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, channelName, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.vivoxIssuer,
		"sub": user,
		"exp": time.Now().Add(time.Hour * 1).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.vivoxSecret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.vivoxIssuer + "." + user + ".@" + s.vivoxDomain
}

func (s *VoiceService) channelURI(channelName string) string {
	return "sip:confctl-g-" + channelName + "@" + s.vivoxDomain
}

func (s *VoiceService) targetURI(action, channelName, userURI string) (string, error) {
	switch action {
	case VoiceTokenActionLogin:
		return userURI, nil
	case VoiceTokenActionJoin:
		if channelName == "" {
			return "", fmt.Errorf("channel name is required for join tokens")
		}
		return s.channelURI(channelName), nil
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}
}
