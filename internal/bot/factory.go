package bot

import (
	"fmt"
	"math/rand"
)

// BotLevel selects the strategy strength.
type BotLevel int

const (
	BotLevelStandard BotLevel = iota
	BotLevelSmart
)

// LevelForDifficulty maps an identity difficulty string to a strategy level.
func LevelForDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "hard", "smart":
		return BotLevelSmart
	default:
		return BotLevelStandard
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelStandard:
		return &StandardBot{rng: rng}, nil
	case BotLevelSmart:
		return &SmartBot{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
