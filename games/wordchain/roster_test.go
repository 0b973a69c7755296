/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterOf(t *testing.T, names ...string) (*Roster, []*Player) {
	t.Helper()

	r := &Roster{}
	players := make([]*Player, 0, len(names))

	for _, name := range names {
		p := newPlayer(uuid.New(), name)
		require.NoError(t, r.Add(p))
		players = append(players, p)
	}

	return r, players
}

func TestRosterAdd(t *testing.T) {
	r, _ := rosterOf(t, "Ann", "Bo")

	assert.ErrorIs(t, r.Add(newPlayer(uuid.New(), "ANN")), ErrNicknameInUse)
	assert.Equal(t, []string{"Ann", "Bo"}, r.Names())
	assert.True(t, r.Has("bo"))
	assert.Nil(t, r.At(2))
	assert.Nil(t, r.At(-1))
}

func TestRosterRemove(t *testing.T) {
	r, players := rosterOf(t, "Ann", "Bo", "Cy")

	assert.Equal(t, 1, r.Remove(players[1]))
	assert.Equal(t, []string{"Ann", "Cy"}, r.Names())
	assert.Equal(t, -1, r.Remove(players[1]))
	assert.Equal(t, 1, r.Index(players[2]))
}

func TestRosterStandings(t *testing.T) {
	r, players := rosterOf(t, "Ann", "Bo", "Cy")

	players[0].Score = 5
	players[1].Score = 9
	players[2].Score = 5

	assert.Equal(t, []Standing{
		{Rank: 1, Nickname: "Bo", Score: 9},
		{Rank: 2, Nickname: "Ann", Score: 5},
		{Rank: 3, Nickname: "Cy", Score: 5},
	}, r.Standings())

	assert.Equal(t, []string{"Ann", "Bo", "Cy"}, r.Names())
}
