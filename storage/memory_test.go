package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

func seedRoom(t *testing.T, m *MemoryStore, id, code string) domain.Room {
	t.Helper()
	room := domain.Room{
		ID:        id,
		Code:      code,
		HostID:    "host",
		Settings:  domain.DefaultSettings(),
		GameState: domain.NewLobbyState(domain.DefaultSettings()),
	}
	require.NoError(t, m.CreateRoom(context.Background(), room))
	return room
}

func TestMemoryStoreRooms(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	t.Run("get missing room", func(t *testing.T) {
		_, err := m.GetRoom(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	seedRoom(t, m, "r1", "ABC123")

	t.Run("round trip", func(t *testing.T) {
		got, err := m.GetRoom(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "ABC123", got.Code)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("lookup by code is case-insensitive", func(t *testing.T) {
		got, err := m.GetRoomByCode(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "r1", got.ID)

		_, err = m.GetRoomByCode(ctx, "ZZZZZZ")
		require.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("update bumps UpdatedAt and keeps CreatedAt", func(t *testing.T) {
		before, err := m.GetRoom(ctx, "r1")
		require.NoError(t, err)

		room := before
		room.GameState.Phase = domain.PhaseDrawing
		require.NoError(t, m.UpdateRoom(ctx, room))

		after, err := m.GetRoom(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseDrawing, after.GameState.Phase)
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
		assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	})

	t.Run("update missing room", func(t *testing.T) {
		err := m.UpdateRoom(ctx, domain.Room{ID: "nope"})
		require.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("returned room is a copy", func(t *testing.T) {
		room, err := m.GetRoom(ctx, "r1")
		require.NoError(t, err)
		room.GameState.TurnOrder = append(room.GameState.TurnOrder, "intruder")

		again, err := m.GetRoom(ctx, "r1")
		require.NoError(t, err)
		assert.NotContains(t, again.GameState.TurnOrder, "intruder")
	})
}

func TestMemoryStorePlayers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedRoom(t, m, "r1", "ABC123")

	base := time.Now()
	for i, id := range []string{"p3", "p1", "p2"} {
		require.NoError(t, m.UpsertPlayer(ctx, domain.Player{
			ID:       id,
			RoomID:   "r1",
			Name:     id,
			JoinedAt: base.Add(-time.Duration(i) * time.Minute),
		}))
	}

	t.Run("listed in join order", func(t *testing.T) {
		players, err := m.ListPlayers(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, players, 3)
		assert.Equal(t, "p2", players[0].ID)
		assert.Equal(t, "p1", players[1].ID)
		assert.Equal(t, "p3", players[2].ID)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		p, err := m.GetPlayer(ctx, "r1", "p1")
		require.NoError(t, err)
		p.Score = 42
		require.NoError(t, m.UpsertPlayer(ctx, p))

		got, err := m.GetPlayer(ctx, "r1", "p1")
		require.NoError(t, err)
		assert.Equal(t, 42, got.Score)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.DeletePlayer(ctx, "r1", "p3"))
		_, err := m.GetPlayer(ctx, "r1", "p3")
		require.ErrorIs(t, err, domain.ErrPlayerNotFound)
		require.ErrorIs(t, m.DeletePlayer(ctx, "r1", "p3"), domain.ErrPlayerNotFound)
	})
}

func TestMemoryStoreMessages(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedRoom(t, m, "r1", "ABC123")

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, m.AppendMessage(ctx, domain.ChatMessage{ID: content, RoomID: "r1", Content: content}))
	}

	all, err := m.ListMessages(ctx, "r1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Content)

	tail, err := m.ListMessages(ctx, "r1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "two", tail[0].Content)
	assert.Equal(t, "three", tail[1].Content)
}

func TestMemoryStoreSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.GetSession(ctx, "r1", "p1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	s := domain.Session{RoomID: "r1", PlayerID: "p1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, m.PutSession(ctx, s))

	got, err := m.GetSession(ctx, "r1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, m.DeleteSession(ctx, "r1", "p1"))
	_, err = m.GetSession(ctx, "r1", "p1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStoreDeleteRoomCascades(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seedRoom(t, m, "r1", "ABC123")
	seedRoom(t, m, "r2", "XYZ789")

	require.NoError(t, m.UpsertPlayer(ctx, domain.Player{ID: "p1", RoomID: "r1"}))
	require.NoError(t, m.UpsertPlayer(ctx, domain.Player{ID: "p2", RoomID: "r2"}))
	require.NoError(t, m.AppendMessage(ctx, domain.ChatMessage{ID: "m1", RoomID: "r1"}))
	require.NoError(t, m.PutSession(ctx, domain.Session{RoomID: "r1", PlayerID: "p1", Token: "tok"}))
	require.NoError(t, m.PutVault(ctx, domain.VaultEntry{RoomID: "r1", CurrentWord: "secret"}))

	require.NoError(t, m.DeleteRoom(ctx, "r1"))

	_, err := m.GetRoom(ctx, "r1")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = m.GetPlayer(ctx, "r1", "p1")
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
	_, err = m.GetSession(ctx, "r1", "p1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = m.GetVault(ctx, "r1")
	require.Error(t, err)
	msgs, err := m.ListMessages(ctx, "r1", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// The other room is untouched.
	_, err = m.GetPlayer(ctx, "r2", "p2")
	require.NoError(t, err)
}

func TestMemoryStoreVault(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.PutVault(ctx, domain.VaultEntry{RoomID: "r1", WordOptions: []string{"cat", "dog"}}))
	e, err := m.GetVault(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, e.WordOptions)

	// Returned entry is a copy.
	e.WordOptions[0] = "mutated"
	again, err := m.GetVault(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "cat", again.WordOptions[0])

	require.NoError(t, m.DeleteVault(ctx, "r1"))
	_, err = m.GetVault(ctx, "r1")
	require.Error(t, err)
}

func TestMemoryStoreListRoomsIdleSince(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	old := domain.Room{ID: "old", Code: "OLDOLD", UpdatedAt: time.Now().Add(-48 * time.Hour), CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, m.CreateRoom(ctx, old))
	seedRoom(t, m, "fresh", "FRESH1")

	stale, err := m.ListRoomsIdleSince(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)
}
