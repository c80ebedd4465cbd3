package server

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

// Transcript window returned with a room snapshot.
const snapshotMessageLimit = 100

type actionRequest struct {
	Action       string          `json:"action"`
	RoomID       string          `json:"roomId"`
	PlayerID     string          `json:"playerId"`
	SessionToken string          `json:"sessionToken"`
	Payload      json.RawMessage `json:"payload"`
}

func (req *actionRequest) decode(v any) error {
	if len(req.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(req.Payload, v)
}

type createRoomPayload struct {
	Name     string           `json:"name"`
	Avatar   string           `json:"avatar"`
	Settings *domain.Settings `json:"settings"`
}

type joinRoomPayload struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	PlayerID string `json:"playerId"`
}

type settingsPayload struct {
	Settings domain.Settings `json:"settings"`
}

type scorePayload struct {
	TargetID string `json:"targetId"`
	Score    int    `json:"score"`
}

type messagePayload struct {
	Content string `json:"content"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

type wordPayload struct {
	Word string `json:"word"`
}

type roomSnapshot struct {
	Room     domain.Room          `json:"room"`
	Players  []domain.Player      `json:"players"`
	Messages []domain.ChatMessage `json:"messages"`
}

// ActionHandler executes one envelope-framed action. Every room mutation
// and query flows through here; the feed endpoint carries no writes.
func (s *Server) ActionHandler(ctx *gin.Context) {
	var req actionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		failBadRequest(ctx, ErrBadRequestStr)
		return
	}

	reqCtx := ctx.Request.Context()

	switch req.Action {
	case "create-room":
		var p createRoomPayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		settings := domain.DefaultSettings()
		if p.Settings != nil {
			settings = *p.Settings
		}
		res, err := s.rooms.Create(reqCtx, p.Name, p.Avatar, settings)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, res)

	case "join-room":
		var p joinRoomPayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		res, err := s.rooms.Join(reqCtx, p.Code, p.Name, p.Avatar, p.PlayerID)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, res)

	case "leave-room":
		if err := s.sessions.Validate(reqCtx, req.RoomID, req.PlayerID, req.SessionToken); err != nil {
			fail(ctx, req.Action, err)
			return
		}
		if err := s.rooms.Leave(reqCtx, req.RoomID, req.PlayerID); err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, gin.H{})

	case "get-room":
		if err := s.sessions.Validate(reqCtx, req.RoomID, req.PlayerID, req.SessionToken); err != nil {
			fail(ctx, req.Action, err)
			return
		}
		room, err := s.store.GetRoom(reqCtx, req.RoomID)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		players, err := s.store.ListPlayers(reqCtx, req.RoomID)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		messages, err := s.store.ListMessages(reqCtx, req.RoomID, snapshotMessageLimit)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, roomSnapshot{Room: room, Players: players, Messages: messages})

	case "get-public-rooms":
		rooms, err := s.rooms.ListPublic(reqCtx)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, rooms)

	case "get-ice-servers":
		respond(ctx, gin.H{"iceServers": s.iceServers})

	case "toggle-ready":
		player, err := s.games.ToggleReady(reqCtx, req.RoomID, req.PlayerID, req.SessionToken)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, player)

	case "toggle-mute":
		player, err := s.games.ToggleMute(reqCtx, req.RoomID, req.PlayerID, req.SessionToken)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, player)

	case "update-settings":
		var p settingsPayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		room, err := s.games.UpdateSettings(reqCtx, req.RoomID, req.PlayerID, req.SessionToken, p.Settings)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, room)

	case "update-score":
		var p scorePayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		player, err := s.games.UpdateScore(reqCtx, req.RoomID, req.PlayerID, req.SessionToken, p.TargetID, p.Score)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, player)

	case "add-bot":
		bot, err := s.games.AddBot(reqCtx, req.RoomID, req.PlayerID, req.SessionToken)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, bot)

	case "send-message":
		var p messagePayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		res, err := s.games.SendMessage(reqCtx, req.RoomID, req.PlayerID, req.SessionToken, p.Content)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, res)

	case "check-guess":
		var p guessPayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		correct, err := s.games.CheckGuess(reqCtx, req.RoomID, req.PlayerID, req.SessionToken, p.Guess)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, gin.H{"isCorrect": correct})

	case "start-game":
		s.gameStateAction(ctx, req, s.games.StartGame)

	case "get-word-options":
		options, err := s.games.WordOptions(reqCtx, req.RoomID, req.PlayerID, req.SessionToken)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, gin.H{"words": options})

	case "select-word":
		var p wordPayload
		if err := req.decode(&p); err != nil {
			failBadRequest(ctx, ErrBadRequestStr)
			return
		}
		res, err := s.games.SelectWord(reqCtx, req.RoomID, req.PlayerID, req.SessionToken, p.Word)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, res)

	case "tick", "update-game-state":
		// The host clock update. Older clients send update-game-state
		// with a full state blob; only the tick semantics are honored.
		s.gameStateAction(ctx, req, s.games.Tick)

	case "next-turn":
		s.gameStateAction(ctx, req, s.games.NextTurn)

	case "reveal-word":
		word, err := s.games.RevealWord(reqCtx, req.RoomID, req.PlayerID, req.SessionToken)
		if err != nil {
			fail(ctx, req.Action, err)
			return
		}
		respond(ctx, gin.H{"word": word})

	case "end-game":
		s.gameStateAction(ctx, req, s.games.EndGame)

	case "reset-game":
		s.gameStateAction(ctx, req, s.games.ResetGame)

	default:
		failBadRequest(ctx, ErrUnknownActionStr)
	}
}

type gameStateFunc func(ctx context.Context, roomID, playerID, token string) (domain.GameState, error)

func (s *Server) gameStateAction(ctx *gin.Context, req actionRequest, call gameStateFunc) {
	state, err := call(ctx.Request.Context(), req.RoomID, req.PlayerID, req.SessionToken)
	if err != nil {
		fail(ctx, req.Action, err)
		return
	}
	respond(ctx, state)
}
