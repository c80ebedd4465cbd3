// Package directory creates rooms with unique short join codes, tracks
// membership and capacity, supports public-room discovery, and reaps
// rooms that have gone quiet.
package directory

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/locker"
	"github.com/NikhilRaikwar/DrawParty/realtime"
)

const (
	codeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Rooms untouched for this long are swept by the reaper.
	MaxRoomIdle = 24 * time.Hour
)

type Store interface {
	CreateRoom(ctx context.Context, r domain.Room) error
	GetRoom(ctx context.Context, id string) (domain.Room, error)
	GetRoomByCode(ctx context.Context, code string) (domain.Room, error)
	UpdateRoom(ctx context.Context, r domain.Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListPublicRooms(ctx context.Context) ([]domain.Room, error)
	ListRoomsIdleSince(ctx context.Context, cutoff time.Time) ([]domain.Room, error)

	UpsertPlayer(ctx context.Context, p domain.Player) error
	ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error)
	DeletePlayer(ctx context.Context, roomID, playerID string) error
	DeleteSession(ctx context.Context, roomID, playerID string) error
	AppendMessage(ctx context.Context, m domain.ChatMessage) error
	PutVault(ctx context.Context, e domain.VaultEntry) error
}

type SessionIssuer interface {
	Issue(ctx context.Context, playerID, roomID string) (string, error)
}

type Publisher interface {
	Publish(evt realtime.Event)
}

// PeriodicTickerChannelCreator is the seam that lets tests drive the
// reaper's clock.
type PeriodicTickerChannelCreator interface {
	Create(d time.Duration) <-chan time.Time
}

type Directory struct {
	store    Store
	sessions SessionIssuer
	pub      Publisher
	locks    *locker.Keyed
	rng      *rand.Rand
	now      func() time.Time
}

func New(store Store, sessions SessionIssuer, pub Publisher, locks *locker.Keyed, rng *rand.Rand) *Directory {
	return &Directory{
		store:    store,
		sessions: sessions,
		pub:      pub,
		locks:    locks,
		rng:      rng,
		now:      time.Now,
	}
}

type CreateResult struct {
	RoomID       string `json:"roomId"`
	Code         string `json:"code"`
	PlayerID     string `json:"playerId"`
	SessionToken string `json:"sessionToken"`
}

func (d *Directory) Create(ctx context.Context, hostName, hostAvatar string, settings domain.Settings) (CreateResult, error) {
	if err := domain.ValidatePlayerName(hostName); err != nil {
		return CreateResult{}, err
	}
	if err := domain.ValidateAvatar(hostAvatar); err != nil {
		return CreateResult{}, err
	}
	if err := settings.Validate(); err != nil {
		return CreateResult{}, err
	}

	code, err := d.uniqueCode(ctx)
	if err != nil {
		return CreateResult{}, err
	}

	roomID := uuid.NewString()
	hostID := uuid.NewString()
	now := d.now()

	room := domain.Room{
		ID:        roomID,
		Code:      code,
		HostID:    hostID,
		Settings:  settings,
		GameState: domain.NewLobbyState(settings),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.store.CreateRoom(ctx, room); err != nil {
		return CreateResult{}, err
	}

	host := domain.Player{
		ID:          hostID,
		RoomID:      roomID,
		Name:        hostName,
		Avatar:      hostAvatar,
		IsHost:      true,
		IsReady:     true,
		IsConnected: true,
		JoinedAt:    now,
	}
	if err := d.store.UpsertPlayer(ctx, host); err != nil {
		return CreateResult{}, err
	}
	if err := d.store.PutVault(ctx, domain.VaultEntry{RoomID: roomID}); err != nil {
		return CreateResult{}, err
	}

	token, err := d.sessions.Issue(ctx, hostID, roomID)
	if err != nil {
		return CreateResult{}, err
	}

	d.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TableRooms, Kind: realtime.KindInsert, Row: room})
	d.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TablePlayers, Kind: realtime.KindInsert, Row: host})

	log.Info().Str("room", roomID).Str("code", code).Msg("room created")

	return CreateResult{RoomID: roomID, Code: code, PlayerID: hostID, SessionToken: token}, nil
}

type JoinResult struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	SessionToken string `json:"sessionToken"`
}

// Join admits a player by code. A playerID already present in the room
// reconnects and gets a fresh token without a duplicate row. A matching
// display name with a different identity is treated as the same player
// returning after a refresh: the identity is swapped in place.
func (d *Directory) Join(ctx context.Context, code, name, avatar, playerID string) (JoinResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := domain.ValidateRoomCode(code); err != nil {
		return JoinResult{}, err
	}
	if err := domain.ValidatePlayerName(name); err != nil {
		return JoinResult{}, err
	}
	if err := domain.ValidateAvatar(avatar); err != nil {
		return JoinResult{}, err
	}

	room, err := d.store.GetRoomByCode(ctx, code)
	if err != nil {
		return JoinResult{}, err
	}

	unlock := d.locks.Lock(room.ID)
	defer unlock()

	// Reload under the lock; the room may have changed or vanished.
	room, err = d.store.GetRoom(ctx, room.ID)
	if err != nil {
		return JoinResult{}, err
	}

	players, err := d.store.ListPlayers(ctx, room.ID)
	if err != nil {
		return JoinResult{}, err
	}

	// Rejoin by identity: reconnect without a duplicate row.
	if playerID != "" {
		for _, p := range players {
			if p.ID == playerID {
				p.IsConnected = true
				if err := d.store.UpsertPlayer(ctx, p); err != nil {
					return JoinResult{}, err
				}
				token, err := d.sessions.Issue(ctx, playerID, room.ID)
				if err != nil {
					return JoinResult{}, err
				}
				d.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TablePlayers, Kind: realtime.KindUpdate, Row: p})
				return JoinResult{RoomID: room.ID, PlayerID: playerID, SessionToken: token}, nil
			}
		}
	}

	// Rejoin by display name: a refreshed browser generates a new
	// identity but must not leave a phantom duplicate behind. Known
	// hazard: colliding names let one player take another's seat.
	for _, p := range players {
		if p.Name == name && !p.IsBot {
			return d.swapIdentity(ctx, room, p)
		}
	}

	if room.GameState.Phase != domain.PhaseLobby {
		return JoinResult{}, domain.ErrGameInProgress
	}
	if len(players) >= room.Settings.MaxPlayers {
		return JoinResult{}, domain.ErrRoomFull
	}

	newID := uuid.NewString()
	player := domain.Player{
		ID:          newID,
		RoomID:      room.ID,
		Name:        name,
		Avatar:      avatar,
		IsConnected: true,
		JoinedAt:    d.now(),
	}
	if err := d.store.UpsertPlayer(ctx, player); err != nil {
		return JoinResult{}, err
	}
	token, err := d.sessions.Issue(ctx, newID, room.ID)
	if err != nil {
		return JoinResult{}, err
	}

	if err := d.systemMessage(ctx, room.ID, fmt.Sprintf("%s joined the room", name)); err != nil {
		return JoinResult{}, err
	}
	d.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TablePlayers, Kind: realtime.KindInsert, Row: player})

	return JoinResult{RoomID: room.ID, PlayerID: newID, SessionToken: token}, nil
}

func (d *Directory) swapIdentity(ctx context.Context, room domain.Room, old domain.Player) (JoinResult, error) {
	newID := uuid.NewString()

	updated := old
	updated.ID = newID
	updated.IsConnected = true

	if err := d.store.DeletePlayer(ctx, room.ID, old.ID); err != nil {
		return JoinResult{}, err
	}
	if err := d.store.DeleteSession(ctx, room.ID, old.ID); err != nil {
		return JoinResult{}, err
	}
	if err := d.store.UpsertPlayer(ctx, updated); err != nil {
		return JoinResult{}, err
	}

	// The room record may reference the old identity: hostship, and
	// mid-game the drawer role, turn order and guessed-already status.
	// All of it follows the swap or the player would re-enter as a
	// stranger to the round.
	changed := room.GameState.ReplacePlayerID(old.ID, newID)
	if room.HostID == old.ID {
		room.HostID = newID
		changed = true
	}
	if changed {
		if err := d.store.UpdateRoom(ctx, room); err != nil {
			return JoinResult{}, err
		}
		d.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TableRooms, Kind: realtime.KindUpdate, Row: room})
	}

	token, err := d.sessions.Issue(ctx, newID, room.ID)
	if err != nil {
		return JoinResult{}, err
	}

	d.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TablePlayers, Kind: realtime.KindDelete, Row: old})
	d.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TablePlayers, Kind: realtime.KindInsert, Row: updated})

	log.Info().Str("room", room.ID).Str("name", old.Name).Msg("player identity swapped on rejoin")

	return JoinResult{RoomID: room.ID, PlayerID: newID, SessionToken: token}, nil
}

// Leave removes the player and their session. The last player out takes
// the room, its vault entry and everything else with them. A departing
// drawer does not auto-advance the turn; the client issues next-turn.
func (d *Directory) Leave(ctx context.Context, roomID, playerID string) error {
	unlock := d.locks.Lock(roomID)
	defer unlock()

	room, err := d.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	players, err := d.store.ListPlayers(ctx, roomID)
	if err != nil {
		return err
	}
	var leaver domain.Player
	found := false
	for _, p := range players {
		if p.ID == playerID {
			leaver = p
			found = true
			break
		}
	}
	if !found {
		return domain.ErrPlayerNotFound
	}

	if err := d.store.DeletePlayer(ctx, roomID, playerID); err != nil {
		return err
	}
	if err := d.store.DeleteSession(ctx, roomID, playerID); err != nil {
		return err
	}
	d.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TablePlayers, Kind: realtime.KindDelete, Row: leaver})

	if len(players) == 1 {
		// Cascade removes the vault entry and transcript.
		if err := d.store.DeleteRoom(ctx, roomID); err != nil {
			return err
		}
		d.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TableRooms, Kind: realtime.KindDelete, Row: room})
		log.Info().Str("room", roomID).Msg("last player left, room deleted")
		return nil
	}

	return d.systemMessage(ctx, roomID, fmt.Sprintf("%s left the room", leaver.Name))
}

type PublicRoom struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Language    string `json:"language"`
}

// ListPublic returns joinable rooms: public ones still in the lobby.
func (d *Directory) ListPublic(ctx context.Context) ([]PublicRoom, error) {
	rooms, err := d.store.ListPublicRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PublicRoom, 0, len(rooms))
	for _, r := range rooms {
		if r.GameState.Phase != domain.PhaseLobby {
			continue
		}
		players, err := d.store.ListPlayers(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, PublicRoom{
			Code:        r.Code,
			PlayerCount: len(players),
			MaxPlayers:  r.Settings.MaxPlayers,
			Language:    r.Settings.Language,
		})
	}
	return out, nil
}

// Reap deletes rooms idle longer than maxIdle. Runs in the background
// sweep, never on the request path.
func (d *Directory) Reap(ctx context.Context, maxIdle time.Duration) (int, error) {
	stale, err := d.store.ListRoomsIdleSince(ctx, d.now().Add(-maxIdle))
	if err != nil {
		return 0, err
	}
	reaped := 0
	for _, room := range stale {
		unlock := d.locks.Lock(room.ID)
		err := d.store.DeleteRoom(ctx, room.ID)
		unlock()
		if err != nil {
			if errors.Is(err, domain.ErrRoomNotFound) {
				continue
			}
			return reaped, err
		}
		d.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TableRooms, Kind: realtime.KindDelete, Row: room})
		reaped++
	}
	if reaped > 0 {
		log.Info().Int("count", reaped).Msg("reaped stale rooms")
	}
	return reaped, nil
}

// RunReaper sweeps until ctx is done.
func (d *Directory) RunReaper(ctx context.Context, tickers PeriodicTickerChannelCreator, interval time.Duration) {
	ticks := tickers.Create(interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if _, err := d.Reap(ctx, MaxRoomIdle); err != nil {
				log.Error().Err(err).Msg("room reap sweep failed")
			}
		}
	}
}

func (d *Directory) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeCharset[d.rng.Intn(len(codeCharset))]
		}
		code := string(buf)
		_, err := d.store.GetRoomByCode(ctx, code)
		if errors.Is(err, domain.ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique room code", domain.UnexpectedDatabaseError)
}

func (d *Directory) systemMessage(ctx context.Context, roomID, content string) error {
	msg := domain.ChatMessage{
		ID:              uuid.NewString(),
		RoomID:          roomID,
		Content:         content,
		IsSystemMessage: true,
		SentAt:          d.now(),
	}
	if err := d.store.AppendMessage(ctx, msg); err != nil {
		return err
	}
	d.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TableMessages, Kind: realtime.KindInsert, Row: msg})
	return nil
}
