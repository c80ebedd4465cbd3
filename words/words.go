// Package words supplies the candidate words offered to a drawer. Picks
// follow a fixed difficulty mix: roughly half easy, the rest medium with
// at most a couple of hard words, so every selection has an approachable
// option.
package words

import (
	"bufio"
	"embed"
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

//go:embed lists/*.txt
var listFS embed.FS

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Source struct {
	mu    sync.Mutex
	rng   *rand.Rand
	lists map[string][]string // difficulty -> words
}

func NewSource(rng *rand.Rand) (*Source, error) {
	s := &Source{rng: rng, lists: map[string][]string{}}
	for _, difficulty := range difficulties {
		list, err := loadList(difficulty)
		if err != nil {
			return nil, err
		}
		s.lists[difficulty] = list
	}
	return s, nil
}

func loadList(difficulty string) ([]string, error) {
	f, err := listFS.Open("lists/" + difficulty + ".txt")
	if err != nil {
		return nil, fmt.Errorf("opening %s word list: %w", difficulty, err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		list = append(list, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s word list: %w", difficulty, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s word list is empty", difficulty)
	}
	return list, nil
}

// Mix returns per-difficulty pick counts for a candidate set of size
// count: ceil(count/2) easy, the remainder split medium-first.
func Mix(count int) (easy, medium, hard int) {
	easy = (count + 1) / 2
	rest := count - easy
	medium = (rest + 1) / 2
	hard = rest - medium
	return easy, medium, hard
}

// Generate picks count distinct words. Only English lists ship embedded;
// other languages fall back to English rather than failing the round.
func (s *Source) Generate(language string, count int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	easy, medium, hard := Mix(count)
	picked := make([]string, 0, count)
	seen := map[string]struct{}{}

	for difficulty, n := range map[string]int{
		DifficultyEasy:   easy,
		DifficultyMedium: medium,
		DifficultyHard:   hard,
	} {
		list := s.lists[difficulty]
		for taken, attempts := 0, 0; taken < n && attempts < 10*len(list); attempts++ {
			word := list[s.rng.Intn(len(list))]
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			picked = append(picked, word)
			taken++
		}
	}

	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked
}
