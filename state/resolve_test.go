package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpsserver/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		left, right models.Choice
		want        models.Result
	}{
		{models.Rock, models.Scissors, models.WinLeft},
		{models.Scissors, models.Paper, models.WinLeft},
		{models.Paper, models.Rock, models.WinLeft},
		{models.Scissors, models.Rock, models.WinRight},
		{models.Paper, models.Scissors, models.WinRight},
		{models.Rock, models.Paper, models.WinRight},
		{models.Rock, models.Rock, models.Draw},
		{models.Paper, models.Paper, models.Draw},
		{models.Scissors, models.Scissors, models.Draw},
	}

	for _, tt := range tests {
		t.Run(string(tt.left)+"_vs_"+string(tt.right), func(t *testing.T) {
			got, err := Resolve(tt.left, tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Symmetric(t *testing.T) {
	mirror := map[models.Result]models.Result{
		models.WinLeft:  models.WinRight,
		models.WinRight: models.WinLeft,
		models.Draw:     models.Draw,
	}
	for _, a := range allChoices {
		for _, b := range allChoices {
			ab, err := Resolve(a, b)
			require.NoError(t, err)
			ba, err := Resolve(b, a)
			require.NoError(t, err)
			assert.Equal(t, mirror[ab], ba, "%s vs %s", a, b)
		}
	}
}

func TestResolve_InvalidChoice(t *testing.T) {
	_, err := Resolve("lizard", models.Rock)
	assert.ErrorIs(t, err, ErrInvalidChoice)

	_, err = Resolve(models.Rock, "")
	assert.ErrorIs(t, err, ErrInvalidChoice)
}
