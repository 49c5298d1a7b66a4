package bot

import (
	"halfsuit/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Act asks the agent to plan its next action for the current game state.
func (a *Agent) Act(game *domain.Game) (Action, error) {
	player, ok := game.Players[a.ID]
	if !ok {
		// Agent is not part of this game
		return Action{Kind: ActionNone}, nil
	}

	action, err := a.Strategy.PlanAction(game, player)
	if err != nil {
		return Action{Kind: ActionNone}, err
	}
	return action, nil
}
