package directory

import (
	"context"
	"math/rand"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikhilRaikwar/DrawParty/crypto"
	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/locker"
	"github.com/NikhilRaikwar/DrawParty/realtime"
	"github.com/NikhilRaikwar/DrawParty/session"
	"github.com/NikhilRaikwar/DrawParty/storage"
)

type recordingPub struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPub) Publish(e realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPub) last() realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fakeTickers struct {
	ch chan time.Time
}

func (f *fakeTickers) Create(d time.Duration) <-chan time.Time { return f.ch }

func newDirectory(t *testing.T) (*Directory, *storage.MemoryStore, *recordingPub) {
	t.Helper()
	store := storage.NewMemoryStore()
	auth := session.NewAuthority(crypto.NewJWTManager("test-secret"), store)
	pub := &recordingPub{}
	d := New(store, auth, pub, locker.NewKeyed(), rand.New(rand.NewSource(1)))
	return d, store, pub
}

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateRoom(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	res, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	assert.Regexp(t, codePattern, res.Code)
	assert.NotEmpty(t, res.RoomID)
	assert.NotEmpty(t, res.PlayerID)
	assert.NotEmpty(t, res.SessionToken)

	room, err := store.GetRoom(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Equal(t, res.PlayerID, room.HostID)
	assert.Equal(t, domain.PhaseLobby, room.GameState.Phase)

	players, err := store.ListPlayers(ctx, res.RoomID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.True(t, players[0].IsHost)
	assert.True(t, players[0].IsReady)

	// Vault entry is seeded empty alongside the room.
	entry, err := store.GetVault(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Empty(t, entry.CurrentWord)
	assert.Empty(t, entry.WordOptions)
}

func TestCreateRoomValidation(t *testing.T) {
	d, _, _ := newDirectory(t)
	ctx := context.Background()

	tests := []struct {
		desc     string
		name     string
		settings domain.Settings
	}{
		{desc: "empty name", name: "", settings: domain.DefaultSettings()},
		{desc: "name too long", name: "abcdefghijklmnopqrstu", settings: domain.DefaultSettings()},
		{desc: "name with bad characters", name: "al<ice>", settings: domain.DefaultSettings()},
		{desc: "max players too high", name: "Alice", settings: domain.Settings{MaxPlayers: 99, DrawTime: 80, TotalRounds: 3, WordCount: 3, Language: "en"}},
		{desc: "draw time too short", name: "Alice", settings: domain.Settings{MaxPlayers: 8, DrawTime: 5, TotalRounds: 3, WordCount: 3, Language: "en"}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := d.Create(ctx, tt.name, "🦊", tt.settings)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateRoomCodesAreUnique(t *testing.T) {
	d, _, _ := newDirectory(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		res, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
		require.NoError(t, err)
		assert.False(t, seen[res.Code], "duplicate code %s", res.Code)
		seen[res.Code] = true
	}
}

func TestJoinRoom(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)

	t.Run("new player joins by code", func(t *testing.T) {
		res, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
		require.NoError(t, err)
		assert.Equal(t, created.RoomID, res.RoomID)
		assert.NotEmpty(t, res.SessionToken)

		players, err := store.ListPlayers(ctx, created.RoomID)
		require.NoError(t, err)
		assert.Len(t, players, 2)
	})

	t.Run("code is case-insensitive and trimmed", func(t *testing.T) {
		res, err := d.Join(ctx, "  "+toLower(created.Code)+" ", "Carol", "🐱", "")
		require.NoError(t, err)
		assert.Equal(t, created.RoomID, res.RoomID)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := d.Join(ctx, "ZZZZZ0", "Dave", "🐶", "")
		require.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("malformed code", func(t *testing.T) {
		_, err := d.Join(ctx, "abc", "Dave", "🐶", "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func toLower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + 32
		}
	}
	return string(out)
}

func TestJoinRejoinByIdentity(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	joined, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)

	// Same identity reconnects: no duplicate row, fresh token.
	again, err := d.Join(ctx, created.Code, "Bob", "🐻", joined.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, joined.PlayerID, again.PlayerID)

	players, err := store.ListPlayers(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestJoinRejoinByNameSwapsIdentity(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	joined, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)

	// A refreshed browser has no identity but the same display name.
	swapped, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)
	assert.NotEqual(t, joined.PlayerID, swapped.PlayerID)

	players, err := store.ListPlayers(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Len(t, players, 2)

	// The old session is gone with the old identity.
	_, err = store.GetSession(ctx, created.RoomID, joined.PlayerID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestJoinRejoinMidGameKeepsRoundStanding(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	joined, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)

	room, err := store.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	room.GameState.Phase = domain.PhaseDrawing
	room.GameState.CurrentDrawerID = joined.PlayerID
	room.GameState.TurnOrder = []string{created.PlayerID, joined.PlayerID}
	room.GameState.CorrectGuessers = []string{joined.PlayerID}
	room.GameState.RevealedForPlayers = []string{joined.PlayerID}
	require.NoError(t, store.UpdateRoom(ctx, room))

	swapped, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)
	require.NotEqual(t, joined.PlayerID, swapped.PlayerID)

	room, err = store.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	gs := room.GameState
	assert.Equal(t, swapped.PlayerID, gs.CurrentDrawerID)
	assert.Equal(t, []string{created.PlayerID, swapped.PlayerID}, gs.TurnOrder)
	assert.Equal(t, []string{swapped.PlayerID}, gs.CorrectGuessers)
	assert.Equal(t, []string{swapped.PlayerID}, gs.RevealedForPlayers)
	assert.NotContains(t, gs.CorrectGuessers, joined.PlayerID)
}

func TestJoinRejoinHostKeepsHostship(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)

	swapped, err := d.Join(ctx, created.Code, "Alice", "🦊", "")
	require.NoError(t, err)
	assert.NotEqual(t, created.PlayerID, swapped.PlayerID)

	room, err := store.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	assert.Equal(t, swapped.PlayerID, room.HostID)
}

func TestJoinFullRoom(t *testing.T) {
	d, _, _ := newDirectory(t)
	ctx := context.Background()

	settings := domain.DefaultSettings()
	settings.MaxPlayers = 2
	created, err := d.Create(ctx, "Alice", "🦊", settings)
	require.NoError(t, err)
	_, err = d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)

	_, err = d.Join(ctx, created.Code, "Carol", "🐱", "")
	require.ErrorIs(t, err, domain.ErrRoomFull)
}

func TestJoinGameInProgress(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	room, err := store.GetRoom(ctx, created.RoomID)
	require.NoError(t, err)
	room.GameState.Phase = domain.PhaseDrawing
	require.NoError(t, store.UpdateRoom(ctx, room))

	_, err = d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.ErrorIs(t, err, domain.ErrGameInProgress)

	// A rejoining player is still admitted mid-game.
	_, err = d.Join(ctx, created.Code, "Alice", "🦊", "")
	require.NoError(t, err)
}

func TestLeave(t *testing.T) {
	d, store, pub := newDirectory(t)
	ctx := context.Background()

	created, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	joined, err := d.Join(ctx, created.Code, "Bob", "🐻", "")
	require.NoError(t, err)

	t.Run("unknown player", func(t *testing.T) {
		err := d.Leave(ctx, created.RoomID, "nope")
		require.ErrorIs(t, err, domain.ErrPlayerNotFound)
	})

	t.Run("departure posts a system message", func(t *testing.T) {
		require.NoError(t, d.Leave(ctx, created.RoomID, joined.PlayerID))
		msgs, err := store.ListMessages(ctx, created.RoomID, 0)
		require.NoError(t, err)
		last := msgs[len(msgs)-1]
		assert.True(t, last.IsSystemMessage)
		assert.Contains(t, last.Content, "Bob left")
	})

	t.Run("last player out deletes the room", func(t *testing.T) {
		require.NoError(t, d.Leave(ctx, created.RoomID, created.PlayerID))
		_, err := store.GetRoom(ctx, created.RoomID)
		require.ErrorIs(t, err, domain.ErrRoomNotFound)
		_, err = store.GetVault(ctx, created.RoomID)
		require.Error(t, err)

		evt := pub.last()
		assert.Equal(t, realtime.TableRooms, evt.Table)
		assert.Equal(t, realtime.KindDelete, evt.Kind)
	})
}

func TestListPublic(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	private := domain.DefaultSettings()
	public := domain.DefaultSettings()
	public.IsPublic = true

	_, err := d.Create(ctx, "Alice", "🦊", private)
	require.NoError(t, err)
	open, err := d.Create(ctx, "Bob", "🐻", public)
	require.NoError(t, err)
	playing, err := d.Create(ctx, "Carol", "🐱", public)
	require.NoError(t, err)

	room, err := store.GetRoom(ctx, playing.RoomID)
	require.NoError(t, err)
	room.GameState.Phase = domain.PhaseDrawing
	require.NoError(t, store.UpdateRoom(ctx, room))

	rooms, err := d.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, open.Code, rooms[0].Code)
	assert.Equal(t, 1, rooms[0].PlayerCount)
	assert.Equal(t, 8, rooms[0].MaxPlayers)
}

func TestReap(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx := context.Background()

	// Rooms created with an old clock keep their old UpdatedAt stamp.
	d.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	stale, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)

	d.now = time.Now
	fresh, err := d.Create(ctx, "Bob", "🐻", domain.DefaultSettings())
	require.NoError(t, err)

	reaped, err := d.Reap(ctx, MaxRoomIdle)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	_, err = store.GetRoom(ctx, stale.RoomID)
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = store.GetRoom(ctx, fresh.RoomID)
	require.NoError(t, err)
}

func TestRunReaper(t *testing.T) {
	d, store, _ := newDirectory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	stale, err := d.Create(ctx, "Alice", "🦊", domain.DefaultSettings())
	require.NoError(t, err)
	d.now = time.Now

	tickers := &fakeTickers{ch: make(chan time.Time)}
	done := make(chan struct{})
	go func() {
		d.RunReaper(ctx, tickers, time.Hour)
		close(done)
	}()

	tickers.ch <- time.Now()
	require.Eventually(t, func() bool {
		_, err := store.GetRoom(context.Background(), stale.RoomID)
		return err != nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
