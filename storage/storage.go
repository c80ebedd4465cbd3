// Package storage persists rooms, players, messages, sessions and vault
// entries. Two implementations share one contract: an in-memory store
// for development and tests, and a pgx-backed Postgres store. Deleting a
// room cascades to its players, messages, sessions and vault entry.
package storage

import (
	"context"
	"time"

	"github.com/NikhilRaikwar/DrawParty/domain"
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
	GetPlayer(ctx context.Context, roomID, playerID string) (domain.Player, error)
	ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error)
	DeletePlayer(ctx context.Context, roomID, playerID string) error

	AppendMessage(ctx context.Context, m domain.ChatMessage) error
	ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)

	PutSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, roomID, playerID string) (domain.Session, error)
	DeleteSession(ctx context.Context, roomID, playerID string) error

	GetVault(ctx context.Context, roomID string) (domain.VaultEntry, error)
	PutVault(ctx context.Context, e domain.VaultEntry) error
	DeleteVault(ctx context.Context, roomID string) error
}
