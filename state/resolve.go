package state

import "github.com/wfunc/rpsserver/models"

// beats maps each choice to the choice it defeats.
var beats = map[models.Choice]models.Choice{
	models.Rock:     models.Scissors,
	models.Scissors: models.Paper,
	models.Paper:    models.Rock,
}

// Resolve applies the rock-paper-scissors dominance rule to a pair of moves.
func Resolve(left, right models.Choice) (models.Result, error) {
	if !left.Valid() || !right.Valid() {
		return "", ErrInvalidChoice
	}
	switch {
	case left == right:
		return models.Draw, nil
	case beats[left] == right:
		return models.WinLeft, nil
	default:
		return models.WinRight, nil
	}
}
