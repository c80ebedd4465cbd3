package game

import (
	"context"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/realtime"
)

type Store interface {
	GetRoom(ctx context.Context, id string) (domain.Room, error)
	UpdateRoom(ctx context.Context, r domain.Room) error

	UpsertPlayer(ctx context.Context, p domain.Player) error
	GetPlayer(ctx context.Context, roomID, playerID string) (domain.Player, error)
	ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error)

	AppendMessage(ctx context.Context, m domain.ChatMessage) error
}

type SessionValidator interface {
	Validate(ctx context.Context, roomID, playerID, token string) error
}

type WordSource interface {
	Generate(language string, count int) []string
}

type Publisher interface {
	Publish(evt realtime.Event)
}
