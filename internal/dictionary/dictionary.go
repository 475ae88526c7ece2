// Package dictionary answers word membership for submitted words.
//
// Membership is exact string equality after uppercasing. The grid is not
// consulted: a word is legal when it is in the list.
package dictionary

import (
	"bytes"
	_ "embed"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal/utils"
)

//go:embed words.csv
var embeddedWords []byte

var ErrEmpty = errors.New("dictionary: word list is empty")

type Dictionary struct {
	words map[string]struct{}
}

// New builds a dictionary from words; entries are uppercased and trimmed.
func New(words []string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		d.words[w] = struct{}{}
	}
	return d
}

// Default returns the embedded French word list.
func Default() (*Dictionary, error) {
	words, err := utils.ReadCsv(bytes.NewReader(embeddedWords))
	if err != nil {
		return nil, err
	}
	return build(words)
}

// Load reads the word list at path, or the embedded list when path is empty.
func Load(path string) (*Dictionary, error) {
	if path == "" {
		return Default()
	}
	words, err := utils.ReadCsvFile(path)
	if err != nil {
		return nil, err
	}
	d, err := build(words)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("words", d.Len()).Msg("[dictionary] loaded word list")
	return d, nil
}

func build(words []string) (*Dictionary, error) {
	d := New(words)
	if d.Len() == 0 {
		return nil, ErrEmpty
	}
	return d, nil
}

// Contains reports whether word is in the dictionary, ignoring case.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[strings.ToUpper(word)]
	return ok
}

func (d *Dictionary) Len() int {
	return len(d.words)
}
