package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/monitor"
	"github.com/wfunc/rpsserver/persistence"
	"github.com/wfunc/rpsserver/state"
)

type recordingBroadcaster struct {
	mu      sync.Mutex
	updated []models.Game
	deleted []int64
}

func (b *recordingBroadcaster) GameUpdated(g *models.Game) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, *g.Clone())
}

func (b *recordingBroadcaster) GameDeleted(g *models.Game) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, g.ID)
}

// failingSaveStore wraps a store and fails every SaveGame after creation.
type failingSaveStore struct {
	persistence.Store
	err error
}

func (s failingSaveStore) SaveGame(ctx context.Context, g *models.Game) error {
	if g.ID == 0 {
		return s.Store.SaveGame(ctx, g)
	}
	return s.err
}

type fixture struct {
	svc     *GameService
	store   *persistence.MemoryStore
	monitor *monitor.Monitor
	events  *recordingBroadcaster
	users   map[int64]*models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := persistence.NewMemoryStore()
	users := make(map[int64]*models.User)
	for _, id := range []int64{1, 2, 3} {
		u := &models.User{ID: id}
		require.NoError(t, store.SaveUser(context.Background(), u))
		users[id] = u
	}
	mon := monitor.NewMonitor("test")
	events := &recordingBroadcaster{}
	return &fixture{
		svc:     NewGameService(store, mon, events),
		store:   store,
		monitor: mon,
		events:  events,
		users:   users,
	}
}

func (f *fixture) ongoing(t *testing.T) *models.Game {
	t.Helper()
	ctx := context.Background()
	g, err := f.svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)
	g, err = f.svc.InviteOpponent(ctx, f.users[1], g.ID, 2)
	require.NoError(t, err)
	return g
}

func TestCreateGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, models.StatePending, g.State)
	assert.Equal(t, int64(1), g.PlayerLeft)

	stored, err := f.svc.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g, stored)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.monitor.Metrics().GamesCreated))
	assert.Len(t, f.events.updated, 1)
}

func TestGetGame_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetGame(context.Background(), 42)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestListGames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	games, err := f.svc.ListGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, games)

	_, err = f.svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)
	_, err = f.svc.CreateGame(ctx, f.users[2])
	require.NoError(t, err)

	games, err = f.svc.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestInviteOpponent(t *testing.T) {
	f := newFixture(t)
	g := f.ongoing(t)

	assert.Equal(t, models.StateOngoing, g.State)
	require.NotNil(t, g.PlayerRight)
	assert.Equal(t, int64(2), *g.PlayerRight)

	stored, err := f.svc.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOngoing, stored.State)
}

func TestInviteOpponent_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)

	_, err = f.svc.InviteOpponent(ctx, f.users[1], 999, 2)
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = f.svc.InviteOpponent(ctx, f.users[1], pending.ID, 999)
	assert.ErrorIs(t, err, ErrOpponentNotFound)

	_, err = f.svc.InviteOpponent(ctx, f.users[1], pending.ID, 1)
	assert.ErrorIs(t, err, state.ErrSelfPlay)

	stored, err := f.svc.GetGame(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, stored.State)
	assert.Nil(t, stored.PlayerRight)

	started := f.ongoing(t)
	// An already started game is reported before the opponent lookup.
	_, err = f.svc.InviteOpponent(ctx, f.users[1], started.ID, 999)
	assert.ErrorIs(t, err, state.ErrInvalidState)
}

func TestPlay_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.ongoing(t)

	g, err := f.svc.Play(ctx, f.users[1], g.ID, "rock")
	require.NoError(t, err)
	assert.Equal(t, models.StateOngoing, g.State)
	assert.Nil(t, g.Result)

	g, err = f.svc.Play(ctx, f.users[2], g.ID, "scissors")
	require.NoError(t, err)
	assert.Equal(t, models.StateFinished, g.State)
	require.NotNil(t, g.Result)
	assert.Equal(t, models.WinLeft, *g.Result)

	stored, err := f.svc.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g, stored)

	metrics := f.monitor.Metrics()
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MovesSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GamesFinished.WithLabelValues("winLeft")))

	last := f.events.updated[len(f.events.updated)-1]
	assert.Equal(t, models.StateFinished, last.State)
}

func TestPlay_Draw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.ongoing(t)

	_, err := f.svc.Play(ctx, f.users[1], g.ID, "paper")
	require.NoError(t, err)
	g, err = f.svc.Play(ctx, f.users[2], g.ID, "paper")
	require.NoError(t, err)
	assert.Equal(t, models.Draw, *g.Result)
}

func TestPlay_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)
	_, err = f.svc.Play(ctx, f.users[3], pending.ID, "garbage")
	assert.ErrorIs(t, err, state.ErrInvalidState)

	g := f.ongoing(t)
	_, err = f.svc.Play(ctx, f.users[3], g.ID, "rock")
	assert.ErrorIs(t, err, state.ErrNotAParticipant)

	_, err = f.svc.Play(ctx, f.users[1], g.ID, "")
	assert.ErrorIs(t, err, state.ErrInvalidChoice)

	_, err = f.svc.Play(ctx, f.users[1], 999, "rock")
	assert.ErrorIs(t, err, ErrGameNotFound)

	assert.Equal(t, 0.0, testutil.ToFloat64(f.monitor.Metrics().MovesSubmitted))
}

func TestPlay_SaveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("disk full")
	svc := NewGameService(failingSaveStore{Store: f.store, err: boom}, f.monitor, nil)

	pending, err := svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)

	_, err = svc.InviteOpponent(ctx, f.users[1], pending.ID, 2)
	assert.ErrorIs(t, err, boom)

	stored, err := svc.GetGame(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, stored.State)
}

func TestPlay_GameDeletedConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.ongoing(t)

	svc := NewGameService(failingSaveStore{Store: f.store, err: persistence.ErrRecordNotFound}, f.monitor, nil)
	_, err := svc.Play(ctx, f.users[1], g.ID, "rock")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestDeleteGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.ongoing(t)

	err := f.svc.DeleteGame(ctx, f.users[3], g.ID)
	assert.ErrorIs(t, err, state.ErrNotAParticipant)
	_, err = f.svc.GetGame(ctx, g.ID)
	require.NoError(t, err, "game must survive a rejected delete")

	require.NoError(t, f.svc.DeleteGame(ctx, f.users[2], g.ID))
	_, err = f.svc.GetGame(ctx, g.ID)
	assert.ErrorIs(t, err, ErrGameNotFound)

	assert.ErrorIs(t, f.svc.DeleteGame(ctx, f.users[1], g.ID), ErrGameNotFound)
	assert.Equal(t, []int64{g.ID}, f.events.deleted)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.monitor.Metrics().GamesDeleted))
}

func TestDeleteGame_AnyState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteGame(ctx, f.users[1], pending.ID))

	finished := f.ongoing(t)
	_, err = f.svc.Play(ctx, f.users[1], finished.ID, "rock")
	require.NoError(t, err)
	_, err = f.svc.Play(ctx, f.users[2], finished.ID, "paper")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteGame(ctx, f.users[1], finished.ID))
}

func TestGameService_WithoutMonitor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewGameService(f.store, nil, nil)

	g, err := svc.CreateGame(ctx, f.users[1])
	require.NoError(t, err)
	_, err = svc.InviteOpponent(ctx, f.users[1], g.ID, 2)
	require.NoError(t, err)
	_, err = svc.Play(ctx, f.users[1], g.ID, "rock")
	require.NoError(t, err)
	g, err = svc.Play(ctx, f.users[2], g.ID, "rock")
	require.NoError(t, err)
	assert.Equal(t, models.StateFinished, g.State)
	require.NoError(t, svc.DeleteGame(ctx, f.users[2], g.ID))
}
