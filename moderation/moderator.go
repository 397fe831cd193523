// Package moderation masks censored words in chat text.
package moderation

import (
	"line-chat/errors"
	"log/slog"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// leet maps look-alike characters to the letter they stand for.
var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// Moderator is safe for concurrent use, the automaton is read only after build.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

// folded is a text reduced to lower case letters, with the index of each
// kept rune in the input.
type folded struct {
	runes     []rune
	positions []int
}

// NewModerator builds the Aho-Corasick automaton over the folded censored words.
// Words made only of separators are skipped, ErrEmptyWords is returned when
// nothing is left.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if f := fold(word); len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// Censor masks every rune of the input covered by a censored word, separators
// inside the word included. It returns the masked text and the matched words
// in order of appearance.
func (m *Moderator) Censor(text string) (string, []string) {
	f := fold(text)
	if len(f.runes) == 0 {
		return text, nil
	}

	terms := m.matcher.MultiPatternSearch(f.runes, false)
	if len(terms) == 0 {
		return text, nil
	}

	masked := []rune(text)
	words := make([]string, 0, len(terms))
	for _, term := range terms {
		last := term.Pos + len(term.Word) - 1
		if term.Pos < 0 || last >= len(f.positions) {
			continue
		}
		for i := f.positions[term.Pos]; i <= f.positions[last]; i++ {
			masked[i] = m.censoredChar
		}
		words = append(words, string(term.Word))
	}

	m.log.Info("Censored words replaced",
		"count", len(words),
		"lang", whatlanggo.DetectLang(text).Iso6391())
	return string(masked), words
}

// fold drops separators, undoes leet substitutions and lowers the case.
func fold(text string) folded {
	input := []rune(text)
	f := folded{
		runes:     make([]rune, 0, len(input)),
		positions: make([]int, 0, len(input)),
	}
	for i, r := range input {
		if plain, ok := leet[r]; ok {
			r = plain
		}
		if isSeparator(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}

func isSeparator(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
