// Package vault is the only holder of a round's secret word. Reads and
// writes pass role checks against the room's current drawer or host; the
// word never appears in replicated game state, and letter reveals are
// computed in here so the literal word never crosses the package boundary
// except through Choose (to the drawer) and Reveal (to the host).
package vault

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

type Store interface {
	GetVault(ctx context.Context, roomID string) (domain.VaultEntry, error)
	PutVault(ctx context.Context, e domain.VaultEntry) error
	DeleteVault(ctx context.Context, roomID string) error
}

type RoomGetter interface {
	GetRoom(ctx context.Context, id string) (domain.Room, error)
}

type Vault struct {
	store Store
	rooms RoomGetter
	rng   *rand.Rand
}

func New(store Store, rooms RoomGetter, rng *rand.Rand) *Vault {
	return &Vault{store: store, rooms: rooms, rng: rng}
}

// SetOptions replaces the candidate list and clears any chosen word. No
// two turns' candidate sets are ever visible simultaneously.
func (v *Vault) SetOptions(ctx context.Context, roomID string, options []string) error {
	return v.store.PutVault(ctx, domain.VaultEntry{
		RoomID:      roomID,
		WordOptions: options,
		CurrentWord: "",
	})
}

// Options returns the candidate list, only to the current drawer.
func (v *Vault) Options(ctx context.Context, roomID, callerID string) ([]string, error) {
	room, err := v.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.GameState.CurrentDrawerID != callerID {
		return nil, domain.ErrNotAuthorized
	}
	entry, err := v.store.GetVault(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return entry.WordOptions, nil
}

// Choose records the drawer's pick and returns the initial hint mask. A
// word outside the offered candidates is a tamper attempt, not a typo:
// the caller never typed it into a free-text field.
func (v *Vault) Choose(ctx context.Context, roomID, callerID, word string) (string, error) {
	room, err := v.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return "", err
	}
	if room.GameState.CurrentDrawerID != callerID {
		return "", domain.ErrNotAuthorized
	}

	entry, err := v.store.GetVault(ctx, roomID)
	if err != nil {
		return "", err
	}

	offered := false
	for _, option := range entry.WordOptions {
		if option == word {
			offered = true
			break
		}
	}
	if !offered {
		return "", fmt.Errorf("%w: word was not among the offered options", domain.ErrInvalidWordSelection)
	}

	entry.CurrentWord = word
	entry.WordOptions = nil
	if err := v.store.PutVault(ctx, entry); err != nil {
		return "", err
	}
	return Mask(word), nil
}

// CheckGuess is a case-insensitive, whitespace-trimmed exact match. An
// unset word answers false rather than erroring so a guess racing a
// phase transition stays an ordinary chat message.
func (v *Vault) CheckGuess(ctx context.Context, roomID, guess string) (bool, error) {
	entry, err := v.store.GetVault(ctx, roomID)
	if err != nil {
		return false, err
	}
	if entry.CurrentWord == "" {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(entry.CurrentWord)), nil
}

// Reveal hands the literal word to the host for the end-of-round system
// broadcast. That broadcast is the only sanctioned path that discloses
// the word to every client.
func (v *Vault) Reveal(ctx context.Context, roomID, callerID string) (string, error) {
	room, err := v.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return "", err
	}
	if room.HostID != callerID {
		return "", domain.ErrNotAuthorized
	}
	entry, err := v.store.GetVault(ctx, roomID)
	if err != nil {
		return "", err
	}
	return entry.CurrentWord, nil
}

// RevealLetters advances the hint toward target revealed letters, never
// re-hiding a revealed position. Returns the hint unchanged when the
// target is already met.
func (v *Vault) RevealLetters(ctx context.Context, roomID, hint string, target int) (string, error) {
	entry, err := v.store.GetVault(ctx, roomID)
	if err != nil {
		return hint, err
	}
	if entry.CurrentWord == "" {
		return hint, nil
	}

	word := []rune(entry.CurrentWord)
	current := []rune(hint)
	if len(current) != len(word) {
		current = []rune(Mask(entry.CurrentWord))
	}

	var hidden []int
	revealed := 0
	for i, r := range current {
		if word[i] == ' ' {
			continue
		}
		if r == '_' {
			hidden = append(hidden, i)
		} else {
			revealed++
		}
	}

	v.rng.Shuffle(len(hidden), func(i, j int) {
		hidden[i], hidden[j] = hidden[j], hidden[i]
	})
	for _, pos := range hidden {
		if revealed >= target {
			break
		}
		current[pos] = word[pos]
		revealed++
	}
	return string(current), nil
}

// Clear empties the entry, keeping the row so a fresh turn can seed it.
func (v *Vault) Clear(ctx context.Context, roomID string) error {
	return v.store.PutVault(ctx, domain.VaultEntry{RoomID: roomID})
}

// Mask is the zero-knowledge hint for a word: one underscore per letter,
// spaces preserved.
func Mask(word string) string {
	masked := []rune(word)
	for i, r := range masked {
		if r != ' ' {
			masked[i] = '_'
		}
	}
	return string(masked)
}

// Letters counts hideable positions in a word (spaces excluded).
func Letters(word string) int {
	n := 0
	for _, r := range word {
		if r != ' ' {
			n++
		}
	}
	return n
}

// RevealedCount counts already-revealed letters in a hint.
func RevealedCount(hint string) int {
	n := 0
	for _, r := range hint {
		if r != '_' && r != ' ' {
			n++
		}
	}
	return n
}
