// Package wordle scores guesses against the daily secret word.
package wordle

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/TheRealTwizzy/raiderdle/internal/localday"
	"github.com/TheRealTwizzy/raiderdle/internal/seeded"
)

// WordLength is the length of every secret and every accepted guess.
const WordLength = 5

// SeedTag prefixes the date digits when seeding the secret selection.
const SeedTag = "secret"

type Status string

const (
	Correct Status = "correct"
	Present Status = "present"
	Absent  Status = "absent"
)

var (
	ErrInvalidLength = errors.New("guess must be 5 letters")
	ErrNotInWordList = errors.New("guess is not in the word list")
)

//go:embed words.yaml
var defaultWords []byte

// LetterResult is the verdict for one position of a guess.
type LetterResult struct {
	Letter string `json:"letter"`
	Status Status `json:"status"`
}

// Vocabulary holds the possible secrets and the wider set of accepted
// guesses. Answers keep file order: the secret is chosen by index.
type Vocabulary struct {
	answers  []string
	accepted map[string]struct{}
}

type wordFile struct {
	Answers  []string `yaml:"answers"`
	Accepted []string `yaml:"accepted"`
}

// Default returns the vocabulary embedded in the binary.
func Default() (*Vocabulary, error) {
	return Parse(defaultWords)
}

// Parse reads a YAML word file. Every answer is also an accepted guess.
func Parse(data []byte) (*Vocabulary, error) {
	var wf wordFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse word list: %w", err)
	}
	v := &Vocabulary{accepted: make(map[string]struct{}, len(wf.Answers)+len(wf.Accepted))}
	for _, w := range wf.Answers {
		w = Normalize(w)
		if utf8.RuneCountInString(w) != WordLength {
			return nil, fmt.Errorf("answer %q is not %d letters", w, WordLength)
		}
		v.answers = append(v.answers, w)
		v.accepted[w] = struct{}{}
	}
	for _, w := range wf.Accepted {
		w = Normalize(w)
		if utf8.RuneCountInString(w) != WordLength {
			return nil, fmt.Errorf("accepted word %q is not %d letters", w, WordLength)
		}
		v.accepted[w] = struct{}{}
	}
	if len(v.answers) == 0 {
		return nil, errors.New("word list has no answers")
	}
	return v, nil
}

// Normalize trims and upper-cases a word.
func Normalize(word string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(word))
}

// Answers reports how many possible secrets exist.
func (v *Vocabulary) Answers() int {
	return len(v.answers)
}

// Accepts reports whether word (already normalised) may be guessed.
func (v *Vocabulary) Accepts(word string) bool {
	_, ok := v.accepted[word]
	return ok
}

// Validate normalises guess and checks it against the vocabulary.
func (v *Vocabulary) Validate(guess string) (string, error) {
	g := Normalize(guess)
	if utf8.RuneCountInString(g) != WordLength {
		return "", ErrInvalidLength
	}
	if !v.Accepts(g) {
		return "", ErrNotInWordList
	}
	return g, nil
}

// Secret derives the secret word for day. It is never stored.
func (v *Vocabulary) Secret(day localday.Day) string {
	idx, err := seeded.Select(day.Seed(SeedTag), len(v.answers))
	if err != nil {
		// Parse guarantees at least one answer.
		panic(err)
	}
	return v.answers[idx]
}

// Evaluate scores guess against secret. Exact matches are settled first so
// that repeated letters are only credited as present while unmatched copies
// remain in the secret.
func Evaluate(secret, guess string) []LetterResult {
	s := []rune(secret)
	g := []rune(guess)
	results := make([]LetterResult, len(g))
	remaining := make(map[rune]int, len(s))
	for _, r := range s {
		remaining[r]++
	}

	for i, r := range g {
		results[i].Letter = string(r)
		if i < len(s) && s[i] == r {
			results[i].Status = Correct
			remaining[r]--
		}
	}
	for i, r := range g {
		if results[i].Status != "" {
			continue
		}
		if remaining[r] > 0 {
			results[i].Status = Present
			remaining[r]--
		} else {
			results[i].Status = Absent
		}
	}
	return results
}

// Solved reports whether every position is correct.
func Solved(results []LetterResult) bool {
	for _, r := range results {
		if r.Status != Correct {
			return false
		}
	}
	return len(results) > 0
}
