package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/realtime"
)

// applyCorrectGuess records a correct guess: the guesser joins the
// correct-guessers list and gets the full word revealed, both guesser and
// drawer score, and the transcript gets a celebratory entry in place of
// the guessed word. The caller has already verified the guess and holds
// the room lock.
func (s *Service) applyCorrectGuess(ctx context.Context, room *domain.Room, player domain.Player) (domain.ChatMessage, error) {
	gs := &room.GameState
	gs.CorrectGuessers = append(gs.CorrectGuessers, player.ID)
	gs.RevealedForPlayers = append(gs.RevealedForPlayers, player.ID)

	players, err := s.store.ListPlayers(ctx, room.ID)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	guessOrder := len(gs.CorrectGuessers)
	player.Score = addPoints(player.Score, guesserPoints(gs.TimeRemaining, gs.DrawTime, len(players), guessOrder))
	if err := s.savePlayer(ctx, player); err != nil {
		return domain.ChatMessage{}, err
	}

	if gs.CurrentDrawerID != "" {
		drawer, err := s.store.GetPlayer(ctx, room.ID, gs.CurrentDrawerID)
		if err == nil {
			drawer.Score = addPoints(drawer.Score, drawerPoints(gs.TimeRemaining, gs.DrawTime))
			if err := s.savePlayer(ctx, drawer); err != nil {
				return domain.ChatMessage{}, err
			}
		}
	}

	if err := s.saveRoom(ctx, *room); err != nil {
		return domain.ChatMessage{}, err
	}

	msg := domain.ChatMessage{
		ID:             uuid.NewString(),
		RoomID:         room.ID,
		PlayerID:       player.ID,
		PlayerName:     player.Name,
		Content:        "🎉",
		IsCorrectGuess: true,
		SentAt:         s.now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return domain.ChatMessage{}, err
	}
	s.pub.Publish(realtime.Event{RoomID: room.ID, Table: realtime.TableMessages, Kind: realtime.KindInsert, Row: msg})

	if err := s.systemMessage(ctx, room.ID, fmt.Sprintf("%s guessed the word!", player.Name)); err != nil {
		return domain.ChatMessage{}, err
	}
	return msg, nil
}
