package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NikhilRaikwar/DrawParty/crypto"
	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/locker"
	"github.com/NikhilRaikwar/DrawParty/realtime"
	"github.com/NikhilRaikwar/DrawParty/session"
	"github.com/NikhilRaikwar/DrawParty/storage"
	"github.com/NikhilRaikwar/DrawParty/vault"
)

const testRoomID = "room-1"

// stubWords always offers the same candidates so scenarios can guess
// deterministically.
type stubWords struct {
	words []string
}

func (s stubWords) Generate(language string, count int) []string {
	out := append([]string(nil), s.words...)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

type recordingPub struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPub) Publish(e realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPub) count(table string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Table == table {
			n++
		}
	}
	return n
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *storage.MemoryStore
	vault   *vault.Vault
	service *Service
	pub     *recordingPub
	tokens  map[string]string
}

// newFixture wires the service against the in-memory store with real
// sessions and a real vault, then seeds one room with the given players.
// The first player is the host.
func newFixture(t *testing.T, settings domain.Settings, words []string, playerIDs ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStore()
	rng := rand.New(rand.NewSource(1))
	v := vault.New(store, store, rng)
	auth := session.NewAuthority(crypto.NewJWTManager("test-secret"), store)
	pub := &recordingPub{}

	svc := NewService(store, v, auth, stubWords{words: words}, pub, locker.NewKeyed(), rng)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }

	f := &fixture{
		t:       t,
		ctx:     ctx,
		store:   store,
		vault:   v,
		service: svc,
		pub:     pub,
		tokens:  map[string]string{},
	}

	room := domain.Room{
		ID:        testRoomID,
		Code:      "ABC123",
		HostID:    playerIDs[0],
		Settings:  settings,
		GameState: domain.NewLobbyState(settings),
	}
	require.NoError(t, store.CreateRoom(ctx, room))

	for i, id := range playerIDs {
		p := domain.Player{
			ID:          id,
			RoomID:      testRoomID,
			Name:        fmt.Sprintf("Player%d", i+1),
			Avatar:      "🙂",
			IsHost:      i == 0,
			IsConnected: true,
			JoinedAt:    time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.UpsertPlayer(ctx, p))

		token, err := auth.Issue(ctx, id, testRoomID)
		require.NoError(t, err)
		f.tokens[id] = token
	}
	return f
}

func (f *fixture) room() domain.Room {
	f.t.Helper()
	room, err := f.store.GetRoom(f.ctx, testRoomID)
	require.NoError(f.t, err)
	return room
}

func (f *fixture) player(id string) domain.Player {
	f.t.Helper()
	p, err := f.store.GetPlayer(f.ctx, testRoomID, id)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) messages() []domain.ChatMessage {
	f.t.Helper()
	msgs, err := f.store.ListMessages(f.ctx, testRoomID, 0)
	require.NoError(f.t, err)
	return msgs
}

// setGameState writes the room's game state directly, for scenarios that
// need to start mid-phase.
func (f *fixture) setGameState(mutate func(gs *domain.GameState)) {
	f.t.Helper()
	room := f.room()
	mutate(&room.GameState)
	require.NoError(f.t, f.store.UpdateRoom(f.ctx, room))
}
