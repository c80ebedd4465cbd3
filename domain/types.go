package domain

import "time"

// Phase is the closed set of room lifecycle states. RoundEnd is a labeled
// state kept for clients; server-side it collapses into Revealing before
// the next turn begins.
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseWordSelection Phase = "wordSelection"
	PhaseDrawing       Phase = "drawing"
	PhaseRevealing     Phase = "revealing"
	PhaseRoundEnd      Phase = "roundEnd"
	PhaseGameEnd       Phase = "gameEnd"
)

type Settings struct {
	MaxPlayers  int    `json:"maxPlayers"`
	DrawTime    int    `json:"drawTime"` // seconds
	TotalRounds int    `json:"totalRounds"`
	WordCount   int    `json:"wordCount"`
	IsPublic    bool   `json:"isPublic"`
	Language    string `json:"language"`
	ShowHints   bool   `json:"showHints"`
	HintLevel   int    `json:"hintLevel"` // 0-5, caps how many letters hints may reveal
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:  8,
		DrawTime:    80,
		TotalRounds: 3,
		WordCount:   3,
		IsPublic:    false,
		Language:    "en",
		ShowHints:   true,
		HintLevel:   2,
	}
}

// GameState is replicated to every connected client. The literal secret
// word is never a field here; it lives only in the vault.
type GameState struct {
	Phase              Phase    `json:"phase"`
	CurrentRound       int      `json:"currentRound"`
	TotalRounds        int      `json:"totalRounds"`
	CurrentDrawerID    string   `json:"currentDrawerId"`
	WordHint           string   `json:"wordHint"` // '_' per hidden letter, spaces preserved
	TimeRemaining      int      `json:"timeRemaining"`
	DrawTime           int      `json:"drawTime"`
	CorrectGuessers    []string `json:"correctGuessers"` // append-only within a turn, guess order
	RevealedForPlayers []string `json:"revealedForPlayers"`
	TurnOrder          []string `json:"turnOrder"` // shuffled fresh every round
	TurnIndex          int      `json:"turnIndex"`
}

func NewLobbyState(s Settings) GameState {
	return GameState{
		Phase:              PhaseLobby,
		CurrentRound:       0,
		TotalRounds:        s.TotalRounds,
		DrawTime:           s.DrawTime,
		CorrectGuessers:    []string{},
		RevealedForPlayers: []string{},
		TurnOrder:          []string{},
	}
}

// ReplacePlayerID rewrites every reference to oldID so a player who
// rejoined under a fresh identity keeps their in-round standing (drawer
// role, guessed-already status, turn slot). Reports whether anything
// changed.
func (gs *GameState) ReplacePlayerID(oldID, newID string) bool {
	changed := false
	if gs.CurrentDrawerID == oldID {
		gs.CurrentDrawerID = newID
		changed = true
	}
	for _, list := range [][]string{gs.CorrectGuessers, gs.RevealedForPlayers, gs.TurnOrder} {
		for i, id := range list {
			if id == oldID {
				list[i] = newID
				changed = true
			}
		}
	}
	return changed
}

func (gs *GameState) HasGuessed(playerID string) bool {
	for _, id := range gs.CorrectGuessers {
		if id == playerID {
			return true
		}
	}
	return false
}

type Room struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"` // 6 uppercase alphanumeric chars, unique among live rooms
	HostID    string    `json:"hostId"`
	Settings  Settings  `json:"settings"`
	GameState GameState `json:"gameState"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Player struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	Score       int       `json:"score"`
	IsHost      bool      `json:"isHost"`
	IsReady     bool      `json:"isReady"`
	IsMuted     bool      `json:"isMuted"`
	IsConnected bool      `json:"isConnected"`
	IsBot       bool      `json:"isBot"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type ChatMessage struct {
	ID              string    `json:"id"`
	RoomID          string    `json:"roomId"`
	PlayerID        string    `json:"playerId"` // empty for system messages
	PlayerName      string    `json:"playerName"`
	Content         string    `json:"content"`
	IsCorrectGuess  bool      `json:"isCorrectGuess"`
	IsSystemMessage bool      `json:"isSystemMessage"`
	SentAt          time.Time `json:"sentAt"`
}

// Session is the stored side of an issued token. One active token per
// (room, player); re-issue overwrites.
type Session struct {
	RoomID    string    `json:"roomId"`
	PlayerID  string    `json:"playerId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VaultEntry holds the per-room secret. WordOptions and CurrentWord are
// mutually exclusive: choosing a word clears the options, offering fresh
// options clears the word.
type VaultEntry struct {
	RoomID      string   `json:"roomId"`
	WordOptions []string `json:"wordOptions"`
	CurrentWord string   `json:"currentWord"`
}
