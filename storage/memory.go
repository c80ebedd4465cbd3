package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

type playerKey struct {
	roomID   string
	playerID string
}

// MemoryStore keeps everything in maps behind one RWMutex. State is lost
// on restart; durability comes from the Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]domain.Room
	players  map[playerKey]domain.Player
	messages map[string][]domain.ChatMessage
	sessions map[playerKey]domain.Session
	vaults   map[string]domain.VaultEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    map[string]domain.Room{},
		players:  map[playerKey]domain.Player{},
		messages: map[string][]domain.ChatMessage{},
		sessions: map[playerKey]domain.Session{},
		vaults:   map[string]domain.VaultEntry{},
	}
}

var _ Store = (*MemoryStore)(nil)

func copyRoom(r domain.Room) domain.Room {
	r.GameState.CorrectGuessers = append([]string(nil), r.GameState.CorrectGuessers...)
	r.GameState.RevealedForPlayers = append([]string(nil), r.GameState.RevealedForPlayers...)
	r.GameState.TurnOrder = append([]string(nil), r.GameState.TurnOrder...)
	return r
}

func copyVault(e domain.VaultEntry) domain.VaultEntry {
	e.WordOptions = append([]string(nil), e.WordOptions...)
	return e
}

func (m *MemoryStore) CreateRoom(ctx context.Context, r domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	m.rooms[r.ID] = copyRoom(r)
	return nil
}

func (m *MemoryStore) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return copyRoom(r), nil
}

func (m *MemoryStore) GetRoomByCode(ctx context.Context, code string) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		if strings.EqualFold(r.Code, code) {
			return copyRoom(r), nil
		}
	}
	return domain.Room{}, domain.ErrRoomNotFound
}

func (m *MemoryStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rooms[r.ID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now()
	m.rooms[r.ID] = copyRoom(r)
	return nil
}

func (m *MemoryStore) DeleteRoom(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(m.rooms, id)
	delete(m.messages, id)
	delete(m.vaults, id)
	for key := range m.players {
		if key.roomID == id {
			delete(m.players, key)
		}
	}
	for key := range m.sessions {
		if key.roomID == id {
			delete(m.sessions, key)
		}
	}
	return nil
}

func (m *MemoryStore) ListPublicRooms(ctx context.Context) ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Room
	for _, r := range m.rooms {
		if r.Settings.IsPublic {
			out = append(out, copyRoom(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListRoomsIdleSince(ctx context.Context, cutoff time.Time) ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Room
	for _, r := range m.rooms {
		if r.UpdatedAt.Before(cutoff) {
			out = append(out, copyRoom(r))
		}
	}
	return out, nil
}

func (m *MemoryStore) UpsertPlayer(ctx context.Context, p domain.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	m.players[playerKey{p.RoomID, p.ID}] = p
	return nil
}

func (m *MemoryStore) GetPlayer(ctx context.Context, roomID, playerID string) (domain.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[playerKey{roomID, playerID}]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return p, nil
}

func (m *MemoryStore) ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Player
	for key, p := range m.players {
		if key.roomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeletePlayer(ctx context.Context, roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := playerKey{roomID, playerID}
	if _, ok := m.players[key]; !ok {
		return domain.ErrPlayerNotFound
	}
	delete(m.players, key)
	return nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, msg domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	m.messages[msg.RoomID] = append(m.messages[msg.RoomID], msg)
	return nil
}

func (m *MemoryStore) ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[roomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]domain.ChatMessage(nil), msgs...), nil
}

func (m *MemoryStore) PutSession(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[playerKey{s.RoomID, s.PlayerID}] = s
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, roomID, playerID string) (domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[playerKey{roomID, playerID}]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, playerKey{roomID, playerID})
	return nil
}

func (m *MemoryStore) GetVault(ctx context.Context, roomID string) (domain.VaultEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.vaults[roomID]
	if !ok {
		return domain.VaultEntry{}, domain.ErrRoomNotFound
	}
	return copyVault(e), nil
}

func (m *MemoryStore) PutVault(ctx context.Context, e domain.VaultEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vaults[e.RoomID] = copyVault(e)
	return nil
}

func (m *MemoryStore) DeleteVault(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vaults, roomID)
	return nil
}
