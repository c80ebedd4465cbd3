package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/realtime"
)

func (s *Service) ToggleReady(ctx context.Context, roomID, playerID, token string) (domain.Player, error) {
	s.logAction("toggle-ready", roomID, playerID)
	_, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.Player{}, err
	}
	defer unlock()

	player, err := s.store.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		return domain.Player{}, err
	}
	player.IsReady = !player.IsReady
	if err := s.savePlayer(ctx, player); err != nil {
		return domain.Player{}, err
	}
	return player, nil
}

func (s *Service) ToggleMute(ctx context.Context, roomID, playerID, token string) (domain.Player, error) {
	s.logAction("toggle-mute", roomID, playerID)
	_, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.Player{}, err
	}
	defer unlock()

	player, err := s.store.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		return domain.Player{}, err
	}
	player.IsMuted = !player.IsMuted
	if err := s.savePlayer(ctx, player); err != nil {
		return domain.Player{}, err
	}
	return player, nil
}

// UpdateSettings is host-only and restricted to the lobby, so nobody can
// shrink the draw timer mid-turn.
func (s *Service) UpdateSettings(ctx context.Context, roomID, playerID, token string, settings domain.Settings) (domain.Room, error) {
	s.logAction("update-settings", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.Room{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.Room{}, err
	}
	if room.GameState.Phase != domain.PhaseLobby {
		return domain.Room{}, domain.ErrGameInProgress
	}
	if err := settings.Validate(); err != nil {
		return domain.Room{}, err
	}

	room.Settings = settings
	room.GameState.TotalRounds = settings.TotalRounds
	room.GameState.DrawTime = settings.DrawTime
	if err := s.saveRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// UpdateScore lets the host set a score directly. Bounds are a sanity
// rail, not game logic: anything outside [0, 10000] is rejected.
func (s *Service) UpdateScore(ctx context.Context, roomID, playerID, token, targetID string, score int) (domain.Player, error) {
	s.logAction("update-score", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.Player{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.Player{}, err
	}
	if err := domain.ValidateScore(score); err != nil {
		return domain.Player{}, err
	}

	target, err := s.store.GetPlayer(ctx, roomID, targetID)
	if err != nil {
		return domain.Player{}, err
	}
	target.Score = score
	if err := s.savePlayer(ctx, target); err != nil {
		return domain.Player{}, err
	}
	return target, nil
}

var botNames = []string{"Doodle", "Sketchy", "Picasso", "Crayon", "Inky", "Smudge"}

// AddBot fills a lobby seat with a bot. Bots never draw a turn well, but
// they do count toward the 2-player start minimum.
func (s *Service) AddBot(ctx context.Context, roomID, playerID, token string) (domain.Player, error) {
	s.logAction("add-bot", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.Player{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.Player{}, err
	}
	if room.GameState.Phase != domain.PhaseLobby {
		return domain.Player{}, domain.ErrGameInProgress
	}
	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return domain.Player{}, err
	}
	if len(players) >= room.Settings.MaxPlayers {
		return domain.Player{}, domain.ErrRoomFull
	}

	bot := domain.Player{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		Name:        fmt.Sprintf("%s Bot", botNames[s.rng.Intn(len(botNames))]),
		Avatar:      "🤖",
		IsReady:     true,
		IsConnected: true,
		IsBot:       true,
		JoinedAt:    s.now(),
	}
	if err := s.store.UpsertPlayer(ctx, bot); err != nil {
		return domain.Player{}, err
	}
	s.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TablePlayers, Kind: realtime.KindInsert, Row: bot})

	if err := s.systemMessage(ctx, roomID, fmt.Sprintf("%s joined the room", bot.Name)); err != nil {
		return domain.Player{}, err
	}
	return bot, nil
}

type SendMessageResult struct {
	IsCorrect bool               `json:"isCorrect"`
	Message   domain.ChatMessage `json:"message"`
}

// SendMessage ingests chat. During the drawing phase a non-drawer's
// message doubles as a guess: a match scores and celebrates without ever
// echoing the word back through the transcript; a miss is posted as an
// ordinary message since near-misses are useful social signal.
func (s *Service) SendMessage(ctx context.Context, roomID, playerID, token, content string) (SendMessageResult, error) {
	s.logAction("send-message", roomID, playerID)
	if err := domain.ValidateMessage(content); err != nil {
		return SendMessageResult{}, err
	}
	if !s.chatLimiter(roomID, playerID).Allow() {
		return SendMessageResult{}, domain.ErrRateLimited
	}

	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return SendMessageResult{}, err
	}
	defer unlock()

	player, err := s.store.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		return SendMessageResult{}, err
	}

	gs := &room.GameState
	guessable := gs.Phase == domain.PhaseDrawing &&
		playerID != gs.CurrentDrawerID &&
		!gs.HasGuessed(playerID)

	if guessable {
		correct, err := s.vault.CheckGuess(ctx, roomID, content)
		if err != nil {
			return SendMessageResult{}, err
		}
		if correct {
			msg, err := s.applyCorrectGuess(ctx, &room, player)
			if err != nil {
				return SendMessageResult{}, err
			}
			return SendMessageResult{IsCorrect: true, Message: msg}, nil
		}
	}

	msg := domain.ChatMessage{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		PlayerID:   playerID,
		PlayerName: player.Name,
		Content:    content,
		SentAt:     s.now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return SendMessageResult{}, err
	}
	s.pub.Publish(realtime.Event{RoomID: roomID, Table: realtime.TableMessages, Kind: realtime.KindInsert, Row: msg})
	return SendMessageResult{Message: msg}, nil
}

// CheckGuess answers whether a guess matches without persisting anything.
// Scoring happens only through SendMessage.
func (s *Service) CheckGuess(ctx context.Context, roomID, playerID, token, guess string) (bool, error) {
	s.logAction("check-guess", roomID, playerID)
	_, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.vault.CheckGuess(ctx, roomID, guess)
}
