package internal

import (
	"strings"
	"time"
)

type Player struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`

	// FoundWords holds normalized (uppercase) words in the order they were accepted
	FoundWords []string `json:"found_words"`
	found      map[string]struct{}

	JoinedAt time.Time `json:"joined_at"`
}

func NewPlayer(id, username string) *Player {
	if strings.TrimSpace(username) == "" {
		username = DefaultUsername
	}
	return &Player{
		Id:         id,
		Username:   username,
		FoundWords: make([]string, 0),
		found:      make(map[string]struct{}),
		JoinedAt:   time.Now(),
	}
}

// NormalizeWord is the form words are stored and compared in.
func NormalizeWord(word string) string {
	return strings.ToUpper(word)
}

// HasFound reports whether the player already scored word (case-insensitive).
func (p *Player) HasFound(word string) bool {
	_, ok := p.found[NormalizeWord(word)]
	return ok
}

// AddWord records word and adds points to the running score, returning the new total.
// Callers must check HasFound first; a word already found is not credited again.
func (p *Player) AddWord(word string, points int) int {
	normalized := NormalizeWord(word)
	if _, ok := p.found[normalized]; ok {
		return p.Score
	}
	if p.found == nil {
		p.found = make(map[string]struct{})
	}
	p.found[normalized] = struct{}{}
	p.FoundWords = append(p.FoundWords, normalized)
	p.Score += points
	return p.Score
}

func (p *Player) ToResult() PlayerResult {
	words := make([]string, len(p.FoundWords))
	copy(words, p.FoundWords)
	return PlayerResult{
		Username: p.Username,
		Score:    p.Score,
		Words:    words,
	}
}
