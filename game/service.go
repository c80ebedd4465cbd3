// Package game is the authoritative state machine for every room: phase
// transitions, turn and round rotation, tick-driven timers, the hint
// reveal schedule, guess routing and scoring. The server executes
// actions; it runs no scheduler of its own. The host client submits
// ticks, so a stalled host freezes its room (no failover is attempted).
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/locker"
	"github.com/NikhilRaikwar/DrawParty/realtime"
	"github.com/NikhilRaikwar/DrawParty/vault"
)

// Chat throughput per player: sustained 1 msg/s, bursts of 5.
const (
	chatRateLimit = rate.Limit(1)
	chatRateBurst = 5
)

type Service struct {
	store    Store
	vault    *vault.Vault
	sessions SessionValidator
	words    WordSource
	pub      Publisher
	locks    *locker.Keyed
	rng      *rand.Rand
	now      func() time.Time

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

func NewService(store Store, v *vault.Vault, sessions SessionValidator, words WordSource, pub Publisher, locks *locker.Keyed, rng *rand.Rand) *Service {
	return &Service{
		store:    store,
		vault:    v,
		sessions: sessions,
		words:    words,
		pub:      pub,
		locks:    locks,
		rng:      rng,
		now:      time.Now,
		limiters: map[string]*rate.Limiter{},
	}
}

// authorized locks the room, validates the session, and loads the room
// so the role check and the mutation it guards see the same state.
func (s *Service) authorized(ctx context.Context, roomID, playerID, token string) (domain.Room, func(), error) {
	unlock := s.locks.Lock(roomID)

	if err := s.sessions.Validate(ctx, roomID, playerID, token); err != nil {
		unlock()
		return domain.Room{}, nil, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		unlock()
		return domain.Room{}, nil, err
	}
	return room, unlock, nil
}

func (s *Service) requireHost(room domain.Room, playerID string) error {
	if room.HostID != playerID {
		return domain.ErrNotAuthorized
	}
	return nil
}

func (s *Service) saveRoom(ctx context.Context, room domain.Room) error {
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return err
	}
	s.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TableRooms, Kind: realtime.KindUpdate, Row: room})
	return nil
}

func (s *Service) savePlayer(ctx context.Context, p domain.Player) error {
	if err := s.store.UpsertPlayer(ctx, p); err != nil {
		return err
	}
	s.pub.Publish(realtime.Event{RoomID: p.RoomID, Table: realtime.TablePlayers, Kind: realtime.KindUpdate, Row: p})
	return nil
}

// systemMessage appends to the transcript without a session check; it
// has no human principal.
func (s *Service) systemMessage(ctx context.Context, roomID, content string) error {
	msg := domain.ChatMessage{
		ID:              uuid.NewString(),
		RoomID:          roomID,
		Content:         content,
		IsSystemMessage: true,
		SentAt:          s.now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return err
	}
	s.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TableMessages, Kind: realtime.KindInsert, Row: msg})
	return nil
}

func (s *Service) chatLimiter(roomID, playerID string) *rate.Limiter {
	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()
	key := roomID + "/" + playerID
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(chatRateLimit, chatRateBurst)
		s.limiters[key] = limiter
	}
	return limiter
}

func (s *Service) logAction(action, roomID, playerID string) {
	log.Debug().Str("action", action).Str("room", roomID).Str("player", playerID).Msg("executing action")
}
