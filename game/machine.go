package game

import (
	"context"
	"fmt"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/vault"
)

// StartGame shuffles a fresh drawing order and enters word selection for
// round 1. Host-only; needs at least two players.
func (s *Service) StartGame(ctx context.Context, roomID, playerID, token string) (domain.GameState, error) {
	s.logAction("start-game", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.GameState{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.GameState{}, err
	}
	if room.GameState.Phase != domain.PhaseLobby {
		return domain.GameState{}, domain.ErrGameInProgress
	}
	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return domain.GameState{}, err
	}
	if len(players) < domain.MinPlayers {
		return domain.GameState{}, fmt.Errorf("%w: need at least %d players to start", domain.ErrValidation, domain.MinPlayers)
	}

	gs := &room.GameState
	gs.CurrentRound = 1
	gs.TotalRounds = room.Settings.TotalRounds
	gs.DrawTime = room.Settings.DrawTime
	gs.TurnOrder = s.shuffledOrder(players)
	gs.TurnIndex = 0

	if err := s.systemMessage(ctx, roomID, "The game has started!"); err != nil {
		return domain.GameState{}, err
	}
	if err := s.enterWordSelection(ctx, &room, players, gs.TurnOrder[0]); err != nil {
		return domain.GameState{}, err
	}
	if err := s.saveRoom(ctx, room); err != nil {
		return domain.GameState{}, err
	}
	return room.GameState, nil
}

// WordOptions hands the candidate list to the current drawer, and nobody
// else.
func (s *Service) WordOptions(ctx context.Context, roomID, playerID, token string) ([]string, error) {
	s.logAction("get-word-options", roomID, playerID)
	_, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.vault.Options(ctx, roomID, playerID)
}

type SelectWordResult struct {
	Word      string           `json:"word"` // only the drawer receives this response
	GameState domain.GameState `json:"gameState"`
}

// SelectWord records the drawer's choice and starts the drawing phase.
// The chosen word goes back to the drawer alone; everyone else sees only
// the hint mask.
func (s *Service) SelectWord(ctx context.Context, roomID, playerID, token, word string) (SelectWordResult, error) {
	s.logAction("select-word", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return SelectWordResult{}, err
	}
	defer unlock()

	if room.GameState.Phase != domain.PhaseWordSelection {
		return SelectWordResult{}, fmt.Errorf("%w: no word selection in progress", domain.ErrValidation)
	}

	hint, err := s.vault.Choose(ctx, roomID, playerID, word)
	if err != nil {
		return SelectWordResult{}, err
	}

	gs := &room.GameState
	gs.Phase = domain.PhaseDrawing
	gs.WordHint = hint
	gs.TimeRemaining = room.Settings.DrawTime
	gs.DrawTime = room.Settings.DrawTime
	gs.CorrectGuessers = []string{}
	gs.RevealedForPlayers = []string{}

	if err := s.saveRoom(ctx, room); err != nil {
		return SelectWordResult{}, err
	}

	drawer, err := s.store.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		return SelectWordResult{}, err
	}
	if err := s.systemMessage(ctx, roomID, fmt.Sprintf("%s is drawing now!", drawer.Name)); err != nil {
		return SelectWordResult{}, err
	}
	return SelectWordResult{Word: word, GameState: room.GameState}, nil
}

// Tick advances the room clock by one second. The host client calls this
// on its local interval; the server holds no timers. Outside the drawing
// phase a tick is a harmless no-op so a racing tick never errors.
func (s *Service) Tick(ctx context.Context, roomID, playerID, token string) (domain.GameState, error) {
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.GameState{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.GameState{}, err
	}
	gs := &room.GameState
	if gs.Phase != domain.PhaseDrawing {
		return *gs, nil
	}

	if gs.TimeRemaining > 0 {
		gs.TimeRemaining--
	}

	if room.Settings.ShowHints && room.Settings.HintLevel > 0 && gs.WordHint != "" {
		letters := vault.Letters(gs.WordHint)
		target := hintTarget(gs.TimeRemaining, gs.DrawTime, letters, room.Settings.HintLevel)
		if target > vault.RevealedCount(gs.WordHint) {
			hint, err := s.vault.RevealLetters(ctx, roomID, gs.WordHint, target)
			if err != nil {
				return domain.GameState{}, err
			}
			gs.WordHint = hint
		}
	}

	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return domain.GameState{}, err
	}
	if gs.TimeRemaining <= 0 || len(gs.CorrectGuessers) >= len(players)-1 {
		if err := s.endTurn(ctx, &room, players, playerID); err != nil {
			return domain.GameState{}, err
		}
	}

	if err := s.saveRoom(ctx, room); err != nil {
		return domain.GameState{}, err
	}
	return room.GameState, nil
}

// endTurn moves the room to revealing and discloses the word to everyone
// through the sanctioned system-message broadcast. The host waits out a
// short client-side delay and then submits next-turn.
func (s *Service) endTurn(ctx context.Context, room *domain.Room, players []domain.Player, hostID string) error {
	gs := &room.GameState
	gs.Phase = domain.PhaseRevealing
	gs.RevealedForPlayers = make([]string, 0, len(players))
	for _, p := range players {
		gs.RevealedForPlayers = append(gs.RevealedForPlayers, p.ID)
	}

	word, err := s.vault.Reveal(ctx, room.ID, hostID)
	if err != nil {
		return err
	}
	if word != "" {
		gs.WordHint = word
		if err := s.systemMessage(ctx, room.ID, fmt.Sprintf("The word was '%s'", word)); err != nil {
			return err
		}
	}
	return nil
}

// NextTurn rotates the drawer. Exhausting the order ends the round; a
// new round reshuffles the order over the players still present, so
// every round's turn order is independently random. Past the final round
// the game ends. Also the path a client takes when the current drawer
// leaves mid-turn.
func (s *Service) NextTurn(ctx context.Context, roomID, playerID, token string) (domain.GameState, error) {
	s.logAction("next-turn", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.GameState{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.GameState{}, err
	}
	gs := &room.GameState
	switch gs.Phase {
	case domain.PhaseWordSelection, domain.PhaseDrawing, domain.PhaseRevealing, domain.PhaseRoundEnd:
	default:
		return domain.GameState{}, fmt.Errorf("%w: no turn in progress", domain.ErrValidation)
	}

	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return domain.GameState{}, err
	}
	present := map[string]bool{}
	for _, p := range players {
		present[p.ID] = true
	}

	// Skip turn-order entries whose player has left.
	gs.TurnIndex++
	for gs.TurnIndex < len(gs.TurnOrder) && !present[gs.TurnOrder[gs.TurnIndex]] {
		gs.TurnIndex++
	}

	if gs.TurnIndex >= len(gs.TurnOrder) {
		gs.CurrentRound++
		if gs.CurrentRound > gs.TotalRounds || len(players) < domain.MinPlayers {
			if err := s.finishGame(ctx, &room, players); err != nil {
				return domain.GameState{}, err
			}
			if err := s.saveRoom(ctx, room); err != nil {
				return domain.GameState{}, err
			}
			return room.GameState, nil
		}
		gs.TurnOrder = s.shuffledOrder(players)
		gs.TurnIndex = 0
		if err := s.systemMessage(ctx, roomID, fmt.Sprintf("Round %d of %d", gs.CurrentRound, gs.TotalRounds)); err != nil {
			return domain.GameState{}, err
		}
	}

	if err := s.enterWordSelection(ctx, &room, players, gs.TurnOrder[gs.TurnIndex]); err != nil {
		return domain.GameState{}, err
	}
	if err := s.saveRoom(ctx, room); err != nil {
		return domain.GameState{}, err
	}
	return room.GameState, nil
}

// RevealWord is the host's explicit disclosure path; the word reaches
// clients as a system message, never through replicated game state.
func (s *Service) RevealWord(ctx context.Context, roomID, playerID, token string) (string, error) {
	s.logAction("reveal-word", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return "", err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return "", err
	}
	word, err := s.vault.Reveal(ctx, roomID, playerID)
	if err != nil {
		return "", err
	}
	if word != "" {
		if err := s.systemMessage(ctx, roomID, fmt.Sprintf("The word was '%s'", word)); err != nil {
			return "", err
		}
	}
	return word, nil
}

// EndGame jumps straight to the terminal phase from anywhere.
func (s *Service) EndGame(ctx context.Context, roomID, playerID, token string) (domain.GameState, error) {
	s.logAction("end-game", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.GameState{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.GameState{}, err
	}
	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return domain.GameState{}, err
	}
	if err := s.finishGame(ctx, &room, players); err != nil {
		return domain.GameState{}, err
	}
	if err := s.saveRoom(ctx, room); err != nil {
		return domain.GameState{}, err
	}
	return room.GameState, nil
}

// ResetGame returns the room to a fresh lobby, zeroing scores and
// keeping drawTime/totalRounds from the current settings.
func (s *Service) ResetGame(ctx context.Context, roomID, playerID, token string) (domain.GameState, error) {
	s.logAction("reset-game", roomID, playerID)
	room, unlock, err := s.authorized(ctx, roomID, playerID, token)
	if err != nil {
		return domain.GameState{}, err
	}
	defer unlock()

	if err := s.requireHost(room, playerID); err != nil {
		return domain.GameState{}, err
	}
	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return domain.GameState{}, err
	}
	for _, p := range players {
		if p.Score != 0 {
			p.Score = 0
			if err := s.savePlayer(ctx, p); err != nil {
				return domain.GameState{}, err
			}
		}
	}

	room.GameState = domain.NewLobbyState(room.Settings)
	if err := s.vault.Clear(ctx, roomID); err != nil {
		return domain.GameState{}, err
	}
	if err := s.saveRoom(ctx, room); err != nil {
		return domain.GameState{}, err
	}
	if err := s.systemMessage(ctx, roomID, "The game has been reset"); err != nil {
		return domain.GameState{}, err
	}
	return room.GameState, nil
}

func (s *Service) enterWordSelection(ctx context.Context, room *domain.Room, players []domain.Player, drawerID string) error {
	gs := &room.GameState
	gs.Phase = domain.PhaseWordSelection
	gs.CurrentDrawerID = drawerID
	gs.WordHint = ""
	gs.TimeRemaining = room.Settings.DrawTime
	gs.CorrectGuessers = []string{}
	gs.RevealedForPlayers = []string{}

	options := s.words.Generate(room.Settings.Language, room.Settings.WordCount)
	if err := s.vault.SetOptions(ctx, room.ID, options); err != nil {
		return err
	}

	for _, p := range players {
		if p.ID == drawerID {
			return s.systemMessage(ctx, room.ID, fmt.Sprintf("%s is choosing a word", p.Name))
		}
	}
	return nil
}

func (s *Service) finishGame(ctx context.Context, room *domain.Room, players []domain.Player) error {
	gs := &room.GameState
	gs.Phase = domain.PhaseGameEnd
	gs.CurrentDrawerID = ""
	gs.WordHint = ""
	gs.TimeRemaining = 0
	gs.TurnOrder = []string{}
	gs.TurnIndex = 0

	if err := s.vault.Clear(ctx, room.ID); err != nil {
		return err
	}

	var winner *domain.Player
	for i := range players {
		if winner == nil || players[i].Score > winner.Score {
			winner = &players[i]
		}
	}
	if winner != nil {
		return s.systemMessage(ctx, room.ID, fmt.Sprintf("Game over! %s wins with %d points", winner.Name, winner.Score))
	}
	return s.systemMessage(ctx, room.ID, "Game over!")
}

func (s *Service) shuffledOrder(players []domain.Player) []string {
	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	// Fisher-Yates.
	for i := len(order) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
