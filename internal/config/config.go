package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type StakeTier struct {
	ID    string `json:"id"`
	Stake int64  `json:"stake"`
}

type GameConfig struct {
	TaxRate     float64     `json:"tax_rate"`
	DefaultTier string      `json:"default_tier"`
	Tiers       []StakeTier `json:"tiers"`
	// ClaimDeadlineSeconds bounds a contested-claim negotiation; opposing
	// players who have not acted by then are passed automatically. Zero
	// disables the deadline.
	ClaimDeadlineSeconds int `json:"claim_deadline_seconds"`
	// AllowBluffs permits asking for a card the asker already holds.
	AllowBluffs bool `json:"allow_bluffs"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a short-handed lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetStake returns the per-player stake for a given tier ID, or the default
// tier's stake if not found.
func GetStake(tierID string) int64 {
	if cfg == nil {
		return 100 // Safe default
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.Stake
		}
	}

	// Fallback to default tier if specific ID not found
	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.Stake
		}
	}

	return 100
}

// AllowBluffs reports the bluff-ask setting, defaulting to off.
func AllowBluffs() bool {
	return cfg != nil && cfg.AllowBluffs
}

// ClaimDeadlineSeconds returns the negotiation deadline, zero when unset.
func ClaimDeadlineSeconds() int {
	if cfg == nil {
		return 0
	}
	return cfg.ClaimDeadlineSeconds
}
