package domain

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Boundary validation bounds. Everything here rejects before any state is
// touched.
const (
	MinPlayers = 2
	MaxPlayers = 16

	MinDrawTime = 30
	MaxDrawTime = 180

	MinRounds = 1
	MaxRounds = 10

	MinWordCount = 2
	MaxWordCount = 5

	MinHintLevel = 0
	MaxHintLevel = 5

	MaxMessageLen = 500
	MaxScore      = 10000
)

var (
	nameRe = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,20}$`)
	codeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

func ValidatePlayerName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: player name must be 1-20 chars (alnum, space, dash, underscore)", ErrValidation)
	}
	return nil
}

func ValidateRoomCode(code string) error {
	if !codeRe.MatchString(code) {
		return fmt.Errorf("%w: room code must be exactly 6 uppercase alphanumeric chars", ErrValidation)
	}
	return nil
}

func ValidateAvatar(avatar string) error {
	if n := utf8.RuneCountInString(avatar); n < 1 || n > 10 {
		return fmt.Errorf("%w: avatar must be 1-10 chars", ErrValidation)
	}
	return nil
}

func ValidateMessage(content string) error {
	if n := utf8.RuneCountInString(content); n < 1 || n > MaxMessageLen {
		return fmt.Errorf("%w: message must be 1-%d chars", ErrValidation, MaxMessageLen)
	}
	return nil
}

func ValidateScore(score int) error {
	if score < 0 || score > MaxScore {
		return fmt.Errorf("%w: score must be within [0, %d]", ErrInvalidScore, MaxScore)
	}
	return nil
}

func (s Settings) Validate() error {
	switch {
	case s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayers:
		return fmt.Errorf("%w: maxPlayers must be %d-%d", ErrValidation, MinPlayers, MaxPlayers)
	case s.DrawTime < MinDrawTime || s.DrawTime > MaxDrawTime:
		return fmt.Errorf("%w: drawTime must be %d-%d seconds", ErrValidation, MinDrawTime, MaxDrawTime)
	case s.TotalRounds < MinRounds || s.TotalRounds > MaxRounds:
		return fmt.Errorf("%w: totalRounds must be %d-%d", ErrValidation, MinRounds, MaxRounds)
	case s.WordCount < MinWordCount || s.WordCount > MaxWordCount:
		return fmt.Errorf("%w: wordCount must be %d-%d", ErrValidation, MinWordCount, MaxWordCount)
	case s.HintLevel < MinHintLevel || s.HintLevel > MaxHintLevel:
		return fmt.Errorf("%w: hintLevel must be %d-%d", ErrValidation, MinHintLevel, MaxHintLevel)
	case s.Language == "":
		return fmt.Errorf("%w: language is required", ErrValidation)
	}
	return nil
}
