package daily

import (
	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/localday"
	"github.com/TheRealTwizzy/raiderdle/internal/wordle"
)

// GuessResult is the verdict for one guess. Word is only set once solved.
type GuessResult struct {
	Result    []wordle.LetterResult `json:"result"`
	IsCorrect bool                  `json:"isCorrect"`
	Word      string                `json:"word,omitempty"`
}

type RevealResult struct {
	Word string `json:"word"`
}

// Guess scores guess against the secret of the client's local day. Invalid
// guesses are rejected before the secret is derived.
func (s *Service) Guess(guess string, offset int) (GuessResult, error) {
	g, err := s.words.Validate(guess)
	if err != nil {
		return GuessResult{}, err
	}
	day := localday.Resolve(s.now(), offset).Day
	secret := s.words.Secret(day)

	res := GuessResult{Result: wordle.Evaluate(secret, g)}
	res.IsCorrect = wordle.Solved(res.Result)
	if res.IsCorrect {
		res.Word = secret
	}
	s.log.Debug("scored guess", zap.Stringer("day", day), zap.Bool("correct", res.IsCorrect))
	return res, nil
}

// Reveal gives up the secret of the client's local day.
func (s *Service) Reveal(offset int) RevealResult {
	day := localday.Resolve(s.now(), offset).Day
	return RevealResult{Word: s.words.Secret(day)}
}
