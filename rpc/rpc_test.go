package rpc

import (
	"context"
	"net/rpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/monitor"
	"github.com/wfunc/rpsserver/persistence"
	"github.com/wfunc/rpsserver/services"
)

func TestGameService_OverTCP(t *testing.T) {
	store := persistence.NewMemoryStore()
	require.NoError(t, store.SaveUser(context.Background(), &models.User{ID: 1}))
	games := services.NewGameService(store, monitor.NewMonitor("test"), nil)

	created, err := games.CreateGame(context.Background(), &models.User{ID: 1})
	require.NoError(t, err)

	srv, err := NewServer("127.0.0.1:0", games)
	require.NoError(t, err)
	go srv.Start()
	defer srv.Stop()

	client, err := rpc.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	var got GetGameReply
	require.NoError(t, client.Call("GameService.GetGame", &GetGameArgs{GameID: created.ID}, &got))
	assert.Equal(t, created, got.Game)

	var list ListGamesReply
	require.NoError(t, client.Call("GameService.ListGames", &ListGamesArgs{}, &list))
	assert.Len(t, list.Games, 1)

	var ongoing ListGamesReply
	require.NoError(t, client.Call("GameService.ListGames", &ListGamesArgs{State: models.StateOngoing}, &ongoing))
	assert.Empty(t, ongoing.Games)

	err = client.Call("GameService.GetGame", &GetGameArgs{GameID: 999}, &got)
	require.Error(t, err)
	assert.Equal(t, services.ErrGameNotFound.Error(), err.Error())
}
